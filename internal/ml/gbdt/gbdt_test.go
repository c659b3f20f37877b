package gbdt

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separable builds a two-feature dataset where class 1 concentrates in the
// upper-right quadrant.
func separable(n int, seed int64) ([][]float64, []float64) {
	rng := rand.New(rand.NewSource(seed))
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			x[i] = []float64{rng.NormFloat64() - 2, rng.NormFloat64() - 2}
			y[i] = 0
		} else {
			x[i] = []float64{rng.NormFloat64() + 2, rng.NormFloat64() + 2}
			y[i] = 1
		}
	}
	return x, y
}

func smallConfig() Config {
	return Config{NEstimators: 20, MaxDepth: 3, LearningRate: 0.2, MinSamplesLeaf: 2, Lambda: 1.0}
}

func TestFitRejectsBadInput(t *testing.T) {
	c := NewClassifier(smallConfig())
	require.Error(t, c.Fit(nil, nil))
	require.Error(t, c.Fit([][]float64{{1}}, []float64{0, 1}))
	require.Error(t, c.Fit([][]float64{{1}}, []float64{0.5}))
	assert.False(t, c.Fitted())
}

func TestFitSeparatesClasses(t *testing.T) {
	x, y := separable(400, 1)
	c := NewClassifier(smallConfig())
	require.NoError(t, c.Fit(x, y))
	require.True(t, c.Fitted())

	probs := c.PredictProba(x)
	correct := 0
	for i, p := range probs {
		require.GreaterOrEqual(t, p, 0.0)
		require.LessOrEqual(t, p, 1.0)
		if (p > 0.5) == (y[i] == 1) {
			correct++
		}
	}
	assert.Greater(t, float64(correct)/float64(len(y)), 0.95)
}

func TestFitDeterministic(t *testing.T) {
	x, y := separable(200, 2)

	a := NewClassifier(smallConfig())
	require.NoError(t, a.Fit(x, y))
	b := NewClassifier(smallConfig())
	require.NoError(t, b.Fit(x, y))

	pa := a.PredictProba(x)
	pb := b.PredictProba(x)
	for i := range pa {
		assert.Equal(t, pa[i], pb[i])
	}
}

func TestContributionsReconstructPrediction(t *testing.T) {
	x, y := separable(200, 3)
	c := NewClassifier(smallConfig())
	require.NoError(t, c.Fit(x, y))

	for _, row := range x[:20] {
		contrib, bias := c.Contributions(row)
		logit := bias
		for _, v := range contrib {
			logit += v
		}
		assert.InDelta(t, c.predictRow(row), sigmoid(logit), 1e-9)
	}
}

func TestSkewedPriorStaysBounded(t *testing.T) {
	// All-normal labels: probabilities must stay in [0,1] and low.
	n := 50
	x := make([][]float64, n)
	y := make([]float64, n)
	rng := rand.New(rand.NewSource(4))
	for i := range x {
		x[i] = []float64{rng.NormFloat64()}
	}
	c := NewClassifier(smallConfig())
	require.NoError(t, c.Fit(x, y))

	for _, p := range c.PredictProba(x) {
		assert.False(t, math.IsNaN(p))
		assert.GreaterOrEqual(t, p, 0.0)
		assert.Less(t, p, 0.5)
	}
}

func TestScalerRoundTrip(t *testing.T) {
	x := [][]float64{{1, 10, 5}, {3, 10, 7}, {5, 10, 9}}
	var s StandardScaler
	require.NoError(t, s.Fit(x))
	require.True(t, s.Fitted())

	scaled := s.Transform(x)
	// Centered columns.
	for j := 0; j < 3; j++ {
		sum := 0.0
		for i := range scaled {
			sum += scaled[i][j]
		}
		assert.InDelta(t, 0, sum, 1e-9)
	}
	// Constant column scales by 1, not NaN.
	assert.Equal(t, 0.0, scaled[1][1])
}

func TestScalerRejectsEmpty(t *testing.T) {
	var s StandardScaler
	require.Error(t, s.Fit(nil))
	assert.False(t, s.Fitted())
}
