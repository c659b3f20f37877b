package pipeline

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avlogix/flightscope/internal/domain/rules"
	"github.com/avlogix/flightscope/internal/ml/gbdt"
	"github.com/avlogix/flightscope/internal/ml/model"
	"github.com/avlogix/flightscope/internal/telemetry"
)

var (
	regOnce  sync.Once
	regErr   error
	registry *model.Registry
)

// trainedRegistry trains all class models once with a small configuration
// shared by every test in the package.
func trainedRegistry(t *testing.T) *model.Registry {
	t.Helper()
	regOnce.Do(func() {
		cfg := model.Config{
			Seed:         42,
			TrainingSize: 400,
			Boosting: gbdt.Config{
				NEstimators:    15,
				MaxDepth:       3,
				LearningRate:   0.1,
				MinSamplesLeaf: 5,
				Lambda:         1.0,
			},
		}
		registry = model.NewRegistry(cfg)
		_, regErr = registry.TrainAll(context.Background())
	})
	require.NoError(t, regErr)
	return registry
}

func noisy(rng *rand.Rand, n int, mean, sigma float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = mean + rng.NormFloat64()*sigma
	}
	return out
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func hoverFrame(t *testing.T) *telemetry.Frame {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	n := 300
	frame, err := telemetry.NewFrame(map[string][]float64{
		"motor_1_rpm":     noisy(rng, n, 3000, 50),
		"motor_2_rpm":     noisy(rng, n, 3000, 50),
		"motor_3_rpm":     noisy(rng, n, 3000, 50),
		"motor_4_rpm":     noisy(rng, n, 3000, 50),
		"speed":           noisy(rng, n, 0.5, 0.3),
		"altitude":        constant(n, 50),
		"battery_voltage": noisy(rng, n, 15.8, 0.05),
		"vibration_x":     noisy(rng, n, 0, 0.5),
		"vibration_y":     noisy(rng, n, 0, 0.5),
		"vibration_z":     noisy(rng, n, 0, 0.5),
	})
	require.NoError(t, err)
	return frame
}

func testAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	return NewAnalyzer(trainedRegistry(t), DefaultThresholds(), 42)
}

func TestAnalyzeMultirotorHover(t *testing.T) {
	outcome, err := testAnalyzer(t).Analyze(context.Background(), hoverFrame(t))
	require.NoError(t, err)
	require.NotNil(t, outcome.Result)

	res := outcome.Result
	assert.Equal(t, "multirotor", res.AircraftType)
	assert.GreaterOrEqual(t, res.AircraftConfidence, 0.7)
	assert.GreaterOrEqual(t, res.RiskScore, 0.0)
	assert.LessOrEqual(t, res.RiskScore, 1.0)
	assert.Equal(t, RiskLevelOf(res.RiskScore), res.RiskLevel)
	assert.Equal(t, 300, res.TotalSamples)
	assert.Empty(t, res.InternalError)

	assert.Greater(t, res.FlightPhases["hover_time_s"], 0.0)
	assert.Contains(t, res.PerformanceMetrics, "motor_symmetry")
	assert.Contains(t, res.PerformanceMetrics, "battery_consumption")

	require.NotNil(t, outcome.Attribution)
	assert.Equal(t, "multirotor", outcome.Attribution.AircraftType)
	assert.NotEmpty(t, outcome.Attribution.TopFeatures)
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := testAnalyzer(t)
	first, err := a.Analyze(context.Background(), hoverFrame(t))
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), hoverFrame(t))
	require.NoError(t, err)

	assert.Equal(t, first.Result.AircraftType, second.Result.AircraftType)
	assert.Equal(t, first.Result.RiskScore, second.Result.RiskScore)
	assert.Equal(t, len(first.Result.Anomalies), len(second.Result.Anomalies))
	assert.Equal(t, first.Attribution.TopFeatures, second.Attribution.TopFeatures)
}

func TestAnalyzeRejectsInvalidInput(t *testing.T) {
	a := testAnalyzer(t)

	outcome, err := a.Analyze(context.Background(), nil)
	assert.Nil(t, outcome)
	assert.Equal(t, KindInvalidInput, KindOf(err))

	short, fErr := telemetry.NewFrame(map[string][]float64{"speed": constant(5, 1)})
	require.NoError(t, fErr)
	outcome, err = a.Analyze(context.Background(), short)
	assert.Nil(t, outcome)
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestAnalyzeModelNotReady(t *testing.T) {
	untrained := model.NewRegistry(model.DefaultConfig())
	a := NewAnalyzer(untrained, DefaultThresholds(), 42)

	outcome, err := a.Analyze(context.Background(), hoverFrame(t))
	assert.Nil(t, outcome)
	assert.Equal(t, KindModelNotReady, KindOf(err))
}

func TestAnalyzeCanceledContext(t *testing.T) {
	a := testAnalyzer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := a.Analyze(ctx, hoverFrame(t))
	assert.Equal(t, KindCanceled, KindOf(err))
	require.NotNil(t, outcome)
	assert.Equal(t, "unknown", outcome.Result.AircraftType)
	assert.Equal(t, 0.5, outcome.Result.RiskScore)
	assert.NotEmpty(t, outcome.Result.InternalError)
}

func TestRiskLevelBoundaries(t *testing.T) {
	assert.Equal(t, RiskCritical, RiskLevelOf(0.9))
	assert.Equal(t, RiskWarning, RiskLevelOf(0.89))
	assert.Equal(t, RiskWarning, RiskLevelOf(0.7))
	assert.Equal(t, RiskElevated, RiskLevelOf(0.69))
	assert.Equal(t, RiskElevated, RiskLevelOf(0.3))
	assert.Equal(t, RiskNormal, RiskLevelOf(0.29))
	assert.Equal(t, RiskNormal, RiskLevelOf(0))
}

func TestNeutralResultShape(t *testing.T) {
	res := neutralResult("boom")
	assert.Equal(t, "unknown", res.AircraftType)
	assert.Zero(t, res.AircraftConfidence)
	assert.Equal(t, 0.5, res.RiskScore)
	assert.Equal(t, RiskElevated, res.RiskLevel)
	assert.Empty(t, res.Anomalies)
	assert.Equal(t, "boom", res.InternalError)
}

func TestDisplayAnomaliesCap(t *testing.T) {
	res := neutralResult("")
	for i := 0; i < 15; i++ {
		res.Anomalies = append(res.Anomalies, rules.Event{Index: i, RiskScore: 0.8})
	}
	assert.Len(t, res.DisplayAnomalies(10), 10)
	assert.Len(t, res.Anomalies, 15)
	assert.Len(t, res.DisplayAnomalies(0), 15)
}
