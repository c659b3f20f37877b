package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avlogix/flightscope/internal/metrics"
	"github.com/avlogix/flightscope/internal/persistence"
	"github.com/avlogix/flightscope/internal/telemetry"
)

// ReportRenderer is satisfied by the report package; declared here so the
// service does not import it.
type ReportRenderer interface {
	Render(ctx context.Context, outcome *Outcome) (string, error)
}

// Service runs analyses end to end: pipeline, report, sink. A sink failure
// surfaces as SINK_UNAVAILABLE while the completed analysis stays available
// on the returned Analysis.
type Service struct {
	analyzer *Analyzer
	sink     persistence.Store
	renderer ReportRenderer
	metrics  *metrics.Metrics
}

// Analysis is the service-level output: the outcome plus its report and,
// when persistence succeeded, the sink receipt.
type Analysis struct {
	Outcome   *Outcome
	Report    string
	ReceiptID string
	Duration  time.Duration
}

func NewService(analyzer *Analyzer, sink persistence.Store, renderer ReportRenderer, m *metrics.Metrics) *Service {
	return &Service{analyzer: analyzer, sink: sink, renderer: renderer, metrics: m}
}

// Run analyzes one frame, renders the report, and persists the record.
//
// Canceled analyses are returned but never persisted. Invalid input and an
// untrained model return a nil Analysis. When only the sink fails, the
// Analysis is complete and the error kind is SINK_UNAVAILABLE.
func (s *Service) Run(ctx context.Context, frame *telemetry.Frame) (*Analysis, error) {
	start := time.Now()

	outcome, err := s.analyzer.Analyze(ctx, frame)
	if err != nil {
		if KindOf(err) == KindCanceled && outcome != nil {
			return &Analysis{Outcome: outcome, Duration: time.Since(start)}, err
		}
		return nil, err
	}

	reportText := ""
	if s.renderer != nil {
		if reportText, err = s.renderer.Render(ctx, outcome); err != nil {
			log.Warn().Err(err).Msg("report rendering failed, persisting without report")
			reportText = ""
		}
	}

	analysis := &Analysis{
		Outcome:  outcome,
		Report:   reportText,
		Duration: time.Since(start),
	}

	if s.metrics != nil {
		s.metrics.AnalysisDuration.Observe(analysis.Duration.Seconds())
		s.metrics.AnalysesTotal.WithLabelValues(
			outcome.Result.AircraftType, string(outcome.Result.RiskLevel)).Inc()
		s.metrics.EventsExtracted.Add(float64(len(outcome.Result.Anomalies)))
	}

	if s.sink == nil {
		return analysis, nil
	}

	rec := buildRecord(analysis)
	id, sinkErr := s.sink.Persist(ctx, rec)
	if sinkErr != nil {
		if s.metrics != nil {
			s.metrics.SinkErrors.Inc()
		}
		log.Error().Err(sinkErr).Msg("result sink unavailable, analysis held in memory")
		return analysis, newError(KindSinkUnavailable, sinkErr, "persist analysis")
	}
	analysis.ReceiptID = id

	log.Info().
		Str("analysis_id", id).
		Str("class", outcome.Result.AircraftType).
		Str("risk_level", string(outcome.Result.RiskLevel)).
		Dur("duration", analysis.Duration).
		Msg("analysis persisted")

	return analysis, nil
}

// buildRecord flattens an analysis into the sink record shape. Serialization
// failures degrade to empty JSON documents rather than blocking persistence.
func buildRecord(a *Analysis) *persistence.Record {
	res := a.Outcome.Result

	anomalies := "[]"
	if b, err := json.Marshal(res.Anomalies); err == nil {
		anomalies = string(b)
	}
	shap := "{}"
	if a.Outcome.Attribution != nil {
		if b, err := json.Marshal(a.Outcome.Attribution); err == nil {
			shap = string(b)
		}
	}

	return &persistence.Record{
		DetectedAircraftType: res.AircraftType,
		AircraftConfidence:   res.AircraftConfidence,
		AnomalyDetected:      res.CriticalAnomaly(),
		AnomalyScore:         res.RiskScore,
		RiskScore:            res.RiskScore,
		RiskLevel:            string(res.RiskLevel),
		Anomalies:            anomalies,
		ShapValues:           shap,
		AIReportContent:      a.Report,
		InternalError:        res.InternalError,
		ProcessingTimeMS:     a.Duration.Milliseconds(),
		AnalysisTimestamp:    res.AnalysisTimestamp,
	}
}
