package pipeline

import (
	"time"

	"github.com/avlogix/flightscope/internal/domain/aircraft"
	"github.com/avlogix/flightscope/internal/domain/rules"
)

// RiskLevel grades the aggregate risk score.
type RiskLevel string

const (
	RiskCritical RiskLevel = "CRITICAL"
	RiskWarning  RiskLevel = "WARNING"
	RiskElevated RiskLevel = "ELEVATED"
	RiskNormal   RiskLevel = "NORMAL"
)

// RiskLevelOf is a total function of the risk score.
func RiskLevelOf(score float64) RiskLevel {
	switch {
	case score >= 0.9:
		return RiskCritical
	case score >= 0.7:
		return RiskWarning
	case score >= 0.3:
		return RiskElevated
	default:
		return RiskNormal
	}
}

// Result is the analysis output for one frame. Ownership transfers to the
// sink once the service persists it.
type Result struct {
	AircraftType       string                 `json:"aircraft_type"`
	AircraftConfidence float64                `json:"aircraft_confidence"`
	RiskScore          float64                `json:"risk_score"`
	RiskLevel          RiskLevel              `json:"risk_level"`
	Anomalies          []rules.Event          `json:"anomalies"`
	FlightPhases       map[string]float64     `json:"flight_phases"`
	PerformanceMetrics map[string]interface{} `json:"performance_metrics"`
	TotalSamples       int                    `json:"total_samples"`
	AnalysisTimestamp  time.Time              `json:"analysis_timestamp"`

	// InternalError carries the absorbed exception summary when the neutral
	// fallback was taken; empty on clean runs.
	InternalError string `json:"internal_error,omitempty"`

	Class aircraft.Class `json:"-"`
}

// neutralResult is the degraded output when the pipeline absorbs a failure:
// neutral risk, no events, empty stats.
func neutralResult(summary string) *Result {
	return &Result{
		AircraftType:       aircraft.Unknown.String(),
		AircraftConfidence: 0,
		RiskScore:          0.5,
		RiskLevel:          RiskLevelOf(0.5),
		Anomalies:          []rules.Event{},
		FlightPhases:       map[string]float64{},
		PerformanceMetrics: map[string]interface{}{},
		AnalysisTimestamp:  time.Now().UTC(),
		InternalError:      summary,
		Class:              aircraft.Unknown,
	}
}

// CriticalAnomaly reports whether any event is CRITICAL.
func (r *Result) CriticalAnomaly() bool {
	for _, ev := range r.Anomalies {
		if ev.Severity == rules.SeverityCritical {
			return true
		}
	}
	return false
}

// DisplayAnomalies caps the event list for presentation. The full list is
// always retained on the result itself.
func (r *Result) DisplayAnomalies(cap int) []rules.Event {
	if cap <= 0 || len(r.Anomalies) <= cap {
		return r.Anomalies
	}
	return r.Anomalies[:cap]
}
