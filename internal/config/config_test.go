package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 0.8, cfg.Thresholds.ClassConfidence)
	assert.Equal(t, 0.7, cfg.Thresholds.EventProbability)
	assert.Equal(t, 0.9, cfg.Thresholds.CriticalCutoff)
	assert.Equal(t, 10, cfg.Thresholds.DisplayEventCap)
	assert.Equal(t, 100, cfg.Thresholds.ExplainerSampleSize)
	assert.Equal(t, int64(42), cfg.Training.Seed)
	assert.Equal(t, 2000, cfg.Training.TrainingSize)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Equal(t, Default(), cfg)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	assert.Equal(t, Default(), Load(""))
}

func TestLoadOverridesOnTopOfDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
thresholds:
  event_probability: 0.6
training:
  training_size: 500
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg := Load(path)
	assert.Equal(t, 0.6, cfg.Thresholds.EventProbability)
	assert.Equal(t, 500, cfg.Training.TrainingSize)
	// untouched keys keep defaults
	assert.Equal(t, 0.9, cfg.Thresholds.CriticalCutoff)
	assert.Equal(t, int64(42), cfg.Training.Seed)
}

func TestLoadMalformedUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("thresholds: ["), 0o644))
	assert.Equal(t, Default(), Load(path))
}

func TestLoadInvalidThresholdUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
thresholds:
  event_probability: 1.7
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	assert.Equal(t, Default(), Load(path))
}
