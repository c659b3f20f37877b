// Package pipeline orchestrates the full flight log analysis: class
// detection, anomaly scoring, event extraction, explanation, phase and
// performance summaries, and the handoff to the result sink.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avlogix/flightscope/internal/domain/classify"
	"github.com/avlogix/flightscope/internal/domain/rules"
	"github.com/avlogix/flightscope/internal/ml/explain"
	"github.com/avlogix/flightscope/internal/ml/model"
	"github.com/avlogix/flightscope/internal/telemetry"
)

// Thresholds collects every tunable cutoff the pipeline consults. All
// threshold reads go through this one struct so a config change lands in
// every stage at once.
type Thresholds struct {
	ClassConfidence     float64 `yaml:"class_confidence"`
	EventProbability    float64 `yaml:"event_probability"`
	CriticalCutoff      float64 `yaml:"critical_cutoff"`
	DisplayEventCap     int     `yaml:"display_event_cap"`
	ExplainerSampleSize int     `yaml:"explainer_sample_size"`
	SampleRateHz        float64 `yaml:"sample_rate_hz"`
	MinFrameLength      int     `yaml:"min_frame_length"`
}

// DefaultThresholds returns the production cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ClassConfidence:     0.8,
		EventProbability:    0.7,
		CriticalCutoff:      0.9,
		DisplayEventCap:     10,
		ExplainerSampleSize: 100,
		SampleRateHz:        10,
		MinFrameLength:      10,
	}
}

// Outcome pairs the analysis result with its feature attribution bundle.
type Outcome struct {
	Result      *Result
	Attribution *explain.Bundle
}

// Analyzer runs one frame through the full pipeline. It is safe for
// concurrent use; per-analysis state lives on the stack.
type Analyzer struct {
	detector   *classify.Detector
	registry   *model.Registry
	extractor  *rules.Extractor
	explainer  *explain.Explainer
	thresholds Thresholds
}

// NewAnalyzer wires the pipeline stages around a shared model registry.
func NewAnalyzer(registry *model.Registry, th Thresholds, seed int64) *Analyzer {
	return &Analyzer{
		detector:   classify.NewDetector(th.ClassConfidence),
		registry:   registry,
		extractor:  rules.NewExtractor(th.EventProbability, th.CriticalCutoff, th.SampleRateHz),
		explainer:  explain.NewExplainer(registry, th.ExplainerSampleSize, seed),
		thresholds: th,
	}
}

// Thresholds returns the active cutoffs.
func (a *Analyzer) Thresholds() Thresholds { return a.thresholds }

// Analyze runs the full pipeline on one frame.
//
// Invalid input and an untrained model fail fast with a nil outcome. A
// canceled context returns the neutral outcome alongside the error so the
// caller can decide what to show; it is never persisted. Any panic inside
// the analysis stages degrades to the neutral outcome with InternalError
// set, and a nil error.
func (a *Analyzer) Analyze(ctx context.Context, frame *telemetry.Frame) (outcome *Outcome, err error) {
	if frame == nil || frame.Len() == 0 {
		return nil, newError(KindInvalidInput, nil, "empty frame")
	}
	if frame.Len() < a.thresholds.MinFrameLength {
		return nil, newError(KindInvalidInput, nil,
			"frame too short: %d rows, need %d", frame.Len(), a.thresholds.MinFrameLength)
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("analysis stage panicked, degrading to neutral result")
			outcome = &Outcome{
				Result:      neutralResult(fmt.Sprintf("analysis failure: %v", r)),
				Attribution: nil,
			}
			err = nil
		}
	}()

	detection := a.detector.Detect(frame)
	modelClass := detection.Class.ModelClass()

	mdl, mErr := a.registry.ForClass(modelClass)
	if mErr != nil {
		return nil, newError(KindInternal, mErr, "no model for class %s", modelClass)
	}

	predictions, pErr := mdl.Predict(ctx, frame)
	if pErr != nil {
		switch {
		case errors.Is(pErr, model.ErrNotReady):
			return nil, newError(KindModelNotReady, pErr, "model for %s not trained", modelClass)
		case errors.Is(pErr, context.Canceled) || errors.Is(pErr, context.DeadlineExceeded):
			return &Outcome{Result: neutralResult("analysis canceled")},
				newError(KindCanceled, pErr, "analysis canceled")
		default:
			return nil, newError(KindInternal, pErr, "anomaly scoring failed")
		}
	}

	risk := meanOf(predictions)
	events := a.extractor.Extract(frame, predictions, detection.Class)
	attribution := a.explainer.Explain(ctx, frame, detection.Class)

	if cErr := ctx.Err(); cErr != nil {
		return &Outcome{Result: neutralResult("analysis canceled")},
			newError(KindCanceled, cErr, "analysis canceled")
	}

	result := &Result{
		AircraftType:       detection.Class.String(),
		AircraftConfidence: detection.Confidence,
		RiskScore:          risk,
		RiskLevel:          RiskLevelOf(risk),
		Anomalies:          events,
		FlightPhases:       phaseStats(frame, detection.Class, a.thresholds.SampleRateHz),
		PerformanceMetrics: perfMetrics(frame, detection.Class),
		TotalSamples:       frame.Len(),
		AnalysisTimestamp:  time.Now().UTC(),
		Class:              detection.Class,
	}

	log.Debug().
		Str("class", result.AircraftType).
		Float64("confidence", result.AircraftConfidence).
		Float64("risk_score", result.RiskScore).
		Str("risk_level", string(result.RiskLevel)).
		Int("events", len(result.Anomalies)).
		Msg("analysis complete")

	return &Outcome{Result: result, Attribution: attribution}, nil
}

func meanOf(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
