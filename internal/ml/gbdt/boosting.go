// Package gbdt implements a gradient-boosted tree ensemble for binary
// classification with logistic loss, plus the feature scaler that fronts it.
// Training is exact greedy and fully deterministic: same data in, same model
// out.
package gbdt

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Config holds the boosting hyperparameters.
type Config struct {
	NEstimators    int     `yaml:"n_estimators" json:"n_estimators"`
	MaxDepth       int     `yaml:"max_depth" json:"max_depth"`
	LearningRate   float64 `yaml:"learning_rate" json:"learning_rate"`
	MinSamplesLeaf int     `yaml:"min_samples_leaf" json:"min_samples_leaf"`
	Lambda         float64 `yaml:"lambda" json:"lambda"`
}

// DefaultConfig mirrors the release-fixed model shape: ~100 estimators,
// depth 6, shrinkage 0.1.
func DefaultConfig() Config {
	return Config{
		NEstimators:    100,
		MaxDepth:       6,
		LearningRate:   0.1,
		MinSamplesLeaf: 5,
		Lambda:         1.0,
	}
}

// Classifier is a fitted gradient-boosted binary classifier.
type Classifier struct {
	cfg   Config
	base  float64 // initial log-odds
	trees []*Tree
}

// NewClassifier builds an unfitted classifier.
func NewClassifier(cfg Config) *Classifier {
	if cfg.NEstimators <= 0 {
		cfg = DefaultConfig()
	}
	return &Classifier{cfg: cfg}
}

// Fitted reports whether Fit has completed.
func (c *Classifier) Fitted() bool { return len(c.trees) > 0 }

// Fit trains the ensemble on a row-major feature matrix and 0/1 labels.
func (c *Classifier) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("gbdt: %d samples vs %d labels", len(x), len(y))
	}
	for _, label := range y {
		if label != 0 && label != 1 {
			return fmt.Errorf("gbdt: labels must be 0 or 1, got %v", label)
		}
	}

	n := len(x)
	prior := floats.Sum(y) / float64(n)
	prior = math.Min(math.Max(prior, 1e-6), 1-1e-6)
	c.base = math.Log(prior / (1 - prior))

	score := make([]float64, n)
	for i := range score {
		score[i] = c.base
	}

	grad := make([]float64, n)
	hess := make([]float64, n)
	trees := make([]*Tree, 0, c.cfg.NEstimators)

	for m := 0; m < c.cfg.NEstimators; m++ {
		for i := 0; i < n; i++ {
			p := sigmoid(score[i])
			grad[i] = y[i] - p
			hess[i] = p * (1 - p)
		}

		tree := buildTree(x, grad, hess, c.cfg.MaxDepth, c.cfg.MinSamplesLeaf, c.cfg.Lambda)
		trees = append(trees, tree)

		for i := 0; i < n; i++ {
			score[i] += c.cfg.LearningRate * tree.Predict(x[i])
		}
	}

	c.trees = trees
	return nil
}

// PredictProba returns P(anomaly) per row, each in [0,1].
func (c *Classifier) PredictProba(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = c.predictRow(row)
	}
	return out
}

func (c *Classifier) predictRow(row []float64) float64 {
	score := c.base
	for _, tree := range c.trees {
		score += c.cfg.LearningRate * tree.Predict(row)
	}
	return sigmoid(score)
}

// Contributions decomposes a sample's log-odds into per-feature terms plus
// the returned bias. sigmoid(bias + sum(contrib)) equals the predicted
// probability.
func (c *Classifier) Contributions(row []float64) ([]float64, float64) {
	contrib := make([]float64, len(row))
	treeContrib := make([]float64, len(row))
	bias := c.base
	for _, tree := range c.trees {
		for j := range treeContrib {
			treeContrib[j] = 0
		}
		bias += c.cfg.LearningRate * tree.Contributions(row, treeContrib)
		floats.AddScaled(contrib, c.cfg.LearningRate, treeContrib)
	}
	return contrib, bias
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
