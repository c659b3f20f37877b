package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avlogix/flightscope/internal/domain/aircraft"
	"github.com/avlogix/flightscope/internal/domain/rules"
	"github.com/avlogix/flightscope/internal/ml/explain"
	"github.com/avlogix/flightscope/internal/pipeline"
)

func sampleOutcome() *pipeline.Outcome {
	return &pipeline.Outcome{
		Result: &pipeline.Result{
			AircraftType:       "multirotor",
			AircraftConfidence: 0.92,
			RiskScore:          0.81,
			RiskLevel:          pipeline.RiskWarning,
			Anomalies: []rules.Event{
				{Index: 42, Timestamp: 4.2, RiskScore: 0.95, Severity: rules.SeverityCritical,
					Description: "Motor failure detected", AircraftType: "multirotor"},
				{Index: 50, Timestamp: 5.0, RiskScore: 0.75, Severity: rules.SeverityWarning,
					Description: "High vibration levels", AircraftType: "multirotor"},
			},
			FlightPhases:      map[string]float64{"hover_time_s": 120.5, "forward_flight_time_s": 30},
			TotalSamples:      1500,
			AnalysisTimestamp: time.Now().UTC(),
			Class:             aircraft.Multirotor,
		},
		Attribution: &explain.Bundle{
			ExplanationText: "Motor RPM readings dominate the anomaly signal",
			AircraftType:    "multirotor",
		},
	}
}

func TestTemplateRender(t *testing.T) {
	out, err := NewTemplateRenderer(10).Render(context.Background(), sampleOutcome())
	require.NoError(t, err)

	assert.Contains(t, out, "multirotor")
	assert.Contains(t, out, "WARNING")
	assert.Contains(t, out, "Motor failure detected")
	assert.Contains(t, out, "[CRITICAL]")
	assert.Contains(t, out, "hover_time_s")
	assert.Contains(t, out, "Motor RPM readings dominate")
}

func TestTemplateRenderDeterministic(t *testing.T) {
	r := NewTemplateRenderer(10)
	first, err := r.Render(context.Background(), sampleOutcome())
	require.NoError(t, err)
	second, err := r.Render(context.Background(), sampleOutcome())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTemplateRenderCapsEvents(t *testing.T) {
	outcome := sampleOutcome()
	outcome.Result.Anomalies = nil
	for i := 0; i < 15; i++ {
		outcome.Result.Anomalies = append(outcome.Result.Anomalies, rules.Event{
			Index: i, RiskScore: 0.8, Severity: rules.SeverityWarning, Description: "Flight parameter anomaly detected",
		})
	}

	out, err := NewTemplateRenderer(10).Render(context.Background(), outcome)
	require.NoError(t, err)
	assert.Contains(t, out, "15 total, top 10 shown")
}

func TestTemplateRenderNilOutcome(t *testing.T) {
	_, err := NewTemplateRenderer(10).Render(context.Background(), nil)
	assert.Error(t, err)
}

type flakyRenderer struct{ calls int }

func (r *flakyRenderer) Render(context.Context, *pipeline.Outcome) (string, error) {
	r.calls++
	return "", errors.New("upstream unavailable")
}

func TestBreakerFallsBack(t *testing.T) {
	primary := &flakyRenderer{}
	r := NewBreakerRenderer(primary, NewTemplateRenderer(10))

	for i := 0; i < 5; i++ {
		out, err := r.Render(context.Background(), sampleOutcome())
		require.NoError(t, err)
		assert.Contains(t, out, "FLIGHT ANALYSIS REPORT")
	}

	// breaker opens after three consecutive failures; later calls skip the
	// primary entirely
	assert.Equal(t, 3, primary.calls)
}

func TestBreakerNilPrimary(t *testing.T) {
	r := NewBreakerRenderer(nil, NewTemplateRenderer(10))
	out, err := r.Render(context.Background(), sampleOutcome())
	require.NoError(t, err)
	assert.Contains(t, out, "FLIGHT ANALYSIS REPORT")
}
