// Package model owns the per-class anomaly model artifacts: a fitted scaler
// plus a gradient-boosted classifier, trained from the synthetic distribution
// and re-derivable deterministically from the configured seed.
package model

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avlogix/flightscope/internal/domain/aircraft"
	"github.com/avlogix/flightscope/internal/ml/gbdt"
	"github.com/avlogix/flightscope/internal/ml/synth"
	"github.com/avlogix/flightscope/internal/telemetry"
)

// ErrNotReady is returned by Predict before training has completed. Callers
// treat it as a retryable service-unavailable condition; models never
// lazy-train on the request path.
var ErrNotReady = errors.New("anomaly model not trained")

// predictBatch bounds work between cancellation checks.
const predictBatch = 1024

// Config parameterizes training. Seeds are plumbed through construction so
// tests can inject them without racing global random state.
type Config struct {
	Seed         int64       `yaml:"seed"`
	TrainingSize int         `yaml:"training_size"`
	Boosting     gbdt.Config `yaml:"boosting"`
}

// DefaultConfig matches the release-fixed training distribution.
func DefaultConfig() Config {
	return Config{
		Seed:         42,
		TrainingSize: 2000,
		Boosting:     gbdt.DefaultConfig(),
	}
}

// TrainStats summarizes one training run.
type TrainStats struct {
	Class           aircraft.Class `json:"-"`
	AircraftType    string         `json:"aircraft_type"`
	Samples         int            `json:"samples"`
	HoldoutAccuracy float64        `json:"holdout_accuracy"`
	Duration        time.Duration  `json:"duration"`
}

// artifact is an immutable trained model published by pointer swap. Readers
// never observe a half-trained state.
type artifact struct {
	scaler   gbdt.StandardScaler
	clf      *gbdt.Classifier
	features []string
}

// AnomalyModel scores frames of one aircraft class. Training is serialized
// by a mutex; concurrent Predict calls read the last published artifact.
type AnomalyModel struct {
	class   aircraft.Class
	cfg     Config
	gen     *synth.Generator
	trainMu sync.Mutex
	current atomic.Pointer[artifact]
}

// New builds an untrained model for a concrete class.
func New(class aircraft.Class, cfg Config) *AnomalyModel {
	return &AnomalyModel{
		class: class,
		cfg:   cfg,
		gen:   synth.NewGenerator(cfg.Seed),
	}
}

// Class returns the class this model was trained for.
func (m *AnomalyModel) Class() aircraft.Class { return m.class }

// FeatureNames returns the training schema in training order. It equals the
// class's feature schema exactly.
func (m *AnomalyModel) FeatureNames() []string {
	return aircraft.FeatureSchema(m.class)
}

// Ready reports whether a trained artifact has been published.
func (m *AnomalyModel) Ready() bool { return m.current.Load() != nil }

// Train (re)fits the scaler and classifier from synthetic data and publishes
// the result atomically. Deterministic under a fixed seed, so retraining is
// idempotent in effect.
func (m *AnomalyModel) Train(ctx context.Context) (TrainStats, error) {
	m.trainMu.Lock()
	defer m.trainMu.Unlock()

	start := time.Now()
	if err := ctx.Err(); err != nil {
		return TrainStats{}, err
	}

	frame, labels, err := m.gen.Generate(m.class, m.cfg.TrainingSize)
	if err != nil {
		return TrainStats{}, fmt.Errorf("generate training set: %w", err)
	}
	matrix := frame.Project(m.FeatureNames())

	// Deterministic holdout: every fourth row. The stripe crosses both the
	// normal and anomaly blocks, so both labels land in both splits.
	var trainX, testX [][]float64
	var trainY, testY []float64
	for i, row := range matrix {
		if i%4 == 3 {
			testX = append(testX, row)
			testY = append(testY, labels[i])
		} else {
			trainX = append(trainX, row)
			trainY = append(trainY, labels[i])
		}
	}

	art := &artifact{features: m.FeatureNames()}
	if err := art.scaler.Fit(trainX); err != nil {
		return TrainStats{}, fmt.Errorf("fit scaler: %w", err)
	}
	art.clf = gbdt.NewClassifier(m.cfg.Boosting)
	if err := art.clf.Fit(art.scaler.Transform(trainX), trainY); err != nil {
		return TrainStats{}, fmt.Errorf("fit classifier: %w", err)
	}

	correct := 0
	for i, p := range art.clf.PredictProba(art.scaler.Transform(testX)) {
		if (p > 0.5) == (testY[i] == 1) {
			correct++
		}
	}
	accuracy := 0.0
	if len(testY) > 0 {
		accuracy = float64(correct) / float64(len(testY))
	}

	m.current.Store(art)

	stats := TrainStats{
		Class:           m.class,
		AircraftType:    m.class.String(),
		Samples:         len(matrix),
		HoldoutAccuracy: accuracy,
		Duration:        time.Since(start),
	}
	log.Info().
		Str("class", m.class.String()).
		Int("samples", stats.Samples).
		Float64("holdout_accuracy", accuracy).
		Dur("duration", stats.Duration).
		Msg("Anomaly model trained")
	return stats, nil
}

// Predict scores each sample of the frame, returning anomaly probabilities in
// [0,1]. Missing schema columns read as zeros. Cancellation is checked at
// least once per 1024 samples.
func (m *AnomalyModel) Predict(ctx context.Context, frame *telemetry.Frame) ([]float64, error) {
	art := m.current.Load()
	if art == nil {
		return nil, ErrNotReady
	}

	matrix := frame.Project(art.features)
	out := make([]float64, 0, len(matrix))
	for start := 0; start < len(matrix); start += predictBatch {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := start + predictBatch
		if end > len(matrix) {
			end = len(matrix)
		}
		out = append(out, art.clf.PredictProba(art.scaler.Transform(matrix[start:end]))...)
	}
	return out, nil
}

// Contributions decomposes one already-projected sample's score into
// per-feature log-odds terms. Used by the attribution explainer, which shares
// the artifact by reference.
func (m *AnomalyModel) Contributions(row []float64) ([]float64, float64, error) {
	art := m.current.Load()
	if art == nil {
		return nil, 0, ErrNotReady
	}
	contrib, bias := art.clf.Contributions(art.scaler.TransformRow(row))
	return contrib, bias, nil
}
