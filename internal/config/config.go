// Package config loads the application configuration from YAML. A missing
// or unreadable file degrades to defaults so the CLI works out of the box.
package config

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/avlogix/flightscope/internal/ml/model"
	"github.com/avlogix/flightscope/internal/persistence/cache"
	"github.com/avlogix/flightscope/internal/persistence/postgres"
	"github.com/avlogix/flightscope/internal/pipeline"
)

// Config is the full application configuration.
type Config struct {
	Thresholds pipeline.Thresholds `yaml:"thresholds"`
	Training   model.Config        `yaml:"training"`
	Database   postgres.Config     `yaml:"database"`
	Redis      cache.Config        `yaml:"redis"`
}

// Default returns the production defaults.
func Default() Config {
	return Config{
		Thresholds: pipeline.DefaultThresholds(),
		Training:   model.DefaultConfig(),
		Database:   postgres.DefaultConfig(),
		Redis:      cache.DefaultConfig(),
	}
}

// Load reads the configuration at path on top of the defaults. An empty
// path or a missing file returns the defaults; a malformed file degrades
// to defaults with a warning rather than failing startup.
func Load(path string) Config {
	cfg := Default()
	if path == "" {
		return cfg
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("config unreadable, using defaults")
		}
		return cfg
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("config malformed, using defaults")
		return Default()
	}

	if err := cfg.validate(); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("config invalid, using defaults")
		return Default()
	}
	return cfg
}

func (c Config) validate() error {
	th := c.Thresholds
	for name, v := range map[string]float64{
		"class_confidence":  th.ClassConfidence,
		"event_probability": th.EventProbability,
		"critical_cutoff":   th.CriticalCutoff,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("threshold %s out of range: %v", name, v)
		}
	}
	if th.SampleRateHz <= 0 {
		return fmt.Errorf("sample_rate_hz must be positive: %v", th.SampleRateHz)
	}
	if th.MinFrameLength < 1 {
		return fmt.Errorf("min_frame_length must be at least 1: %d", th.MinFrameLength)
	}
	if c.Training.TrainingSize < 10 {
		return fmt.Errorf("training size too small: %d", c.Training.TrainingSize)
	}
	return nil
}
