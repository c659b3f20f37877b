package explain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avlogix/flightscope/internal/domain/aircraft"
	"github.com/avlogix/flightscope/internal/ml/gbdt"
	"github.com/avlogix/flightscope/internal/ml/model"
	"github.com/avlogix/flightscope/internal/ml/synth"
	"github.com/avlogix/flightscope/internal/telemetry"
)

func trainedRegistry(t *testing.T) *model.Registry {
	t.Helper()
	r := model.NewRegistry(model.Config{
		Seed:         42,
		TrainingSize: 300,
		Boosting: gbdt.Config{
			NEstimators:    12,
			MaxDepth:       3,
			LearningRate:   0.2,
			MinSamplesLeaf: 5,
			Lambda:         1.0,
		},
	})
	_, err := r.TrainAll(context.Background())
	require.NoError(t, err)
	return r
}

func TestExplainProducesTopFive(t *testing.T) {
	r := trainedRegistry(t)
	e := NewExplainer(r, 100, 42)

	frame, _, err := synth.NewGenerator(5).Generate(aircraft.Multirotor, 250)
	require.NoError(t, err)

	b := e.Explain(context.Background(), frame, aircraft.Multirotor)
	require.Len(t, b.TopFeatures, 5)
	assert.Equal(t, 100, b.SampleSize)
	assert.Equal(t, "multirotor", b.AircraftType)
	assert.Greater(t, b.OverallImpact, 0.0)
	assert.NotEqual(t, FallbackText, b.ExplanationText)

	// Ranked by importance.
	for i := 1; i < len(b.TopFeatures); i++ {
		assert.GreaterOrEqual(t, b.TopFeatures[i-1].Importance, b.TopFeatures[i].Importance)
	}
	for _, fi := range b.TopFeatures {
		assert.Contains(t, []string{"positive", "negative"}, fi.Impact)
		assert.Equal(t, "multirotor", fi.AircraftType)
	}
}

func TestExplainDeterministic(t *testing.T) {
	r := trainedRegistry(t)
	frame, _, err := synth.NewGenerator(5).Generate(aircraft.VTOL, 250)
	require.NoError(t, err)

	a := NewExplainer(r, 100, 42).Explain(context.Background(), frame, aircraft.VTOL)
	b := NewExplainer(r, 100, 42).Explain(context.Background(), frame, aircraft.VTOL)
	assert.Equal(t, a, b)
}

func TestExplainSmallFrameUsesAllRows(t *testing.T) {
	r := trainedRegistry(t)
	e := NewExplainer(r, 100, 42)

	frame, _, err := synth.NewGenerator(6).Generate(aircraft.FixedWing, 30)
	require.NoError(t, err)

	b := e.Explain(context.Background(), frame, aircraft.FixedWing)
	assert.Equal(t, 30, b.SampleSize)
}

func TestExplainUnknownUsesFallbackModel(t *testing.T) {
	r := trainedRegistry(t)
	e := NewExplainer(r, 50, 42)

	frame, _, err := synth.NewGenerator(8).Generate(aircraft.Multirotor, 60)
	require.NoError(t, err)

	b := e.Explain(context.Background(), frame, aircraft.Unknown)
	assert.Equal(t, "unknown", b.AircraftType)
	assert.Len(t, b.TopFeatures, 5)
}

func TestExplainDegradesWhenModelNotTrained(t *testing.T) {
	r := model.NewRegistry(model.Config{Seed: 1, TrainingSize: 100, Boosting: gbdt.DefaultConfig()})
	e := NewExplainer(r, 50, 42)

	frame, _, err := synth.NewGenerator(8).Generate(aircraft.Multirotor, 60)
	require.NoError(t, err)

	b := e.Explain(context.Background(), frame, aircraft.Multirotor)
	assert.Empty(t, b.TopFeatures)
	assert.Zero(t, b.OverallImpact)
	assert.Equal(t, FallbackText, b.ExplanationText)
}

func TestExplainNilAndEmptyFrames(t *testing.T) {
	r := trainedRegistry(t)
	e := NewExplainer(r, 50, 42)

	b := e.Explain(context.Background(), nil, aircraft.Multirotor)
	assert.Equal(t, FallbackText, b.ExplanationText)

	empty, err := telemetry.NewFrame(map[string][]float64{})
	require.NoError(t, err)
	b = e.Explain(context.Background(), empty, aircraft.Multirotor)
	assert.Equal(t, FallbackText, b.ExplanationText)
}

func TestExplainCanceledContext(t *testing.T) {
	r := trainedRegistry(t)
	e := NewExplainer(r, 50, 42)

	frame, _, err := synth.NewGenerator(8).Generate(aircraft.Multirotor, 60)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := e.Explain(ctx, frame, aircraft.Multirotor)
	assert.Equal(t, FallbackText, b.ExplanationText)
}

func TestExplanationTextComposesPhrases(t *testing.T) {
	impacts := []FeatureImpact{
		{Feature: "airspeed"},
		{Feature: "motor_rpm"},
		{Feature: "battery_voltage"},
		{Feature: "altitude"},
	}
	text := explanationText(impacts, aircraft.FixedWing)
	assert.Contains(t, text, "airspeed deviations dominate")
	assert.Contains(t, text, "engine RPM behavior")
	assert.Contains(t, text, "battery voltage trends")
	// Capped at three phrases.
	assert.NotContains(t, text, "altitude profile")
}
