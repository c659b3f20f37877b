package model

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/avlogix/flightscope/internal/domain/aircraft"
)

// Registry holds one anomaly model per concrete class. The Unknown fallback
// to the Multirotor model is the orchestrator's explicit decision via
// Class.ModelClass, not a lookup default here.
type Registry struct {
	models map[aircraft.Class]*AnomalyModel
}

// NewRegistry builds untrained models for every concrete class.
func NewRegistry(cfg Config) *Registry {
	models := make(map[aircraft.Class]*AnomalyModel, len(aircraft.Concrete()))
	for _, class := range aircraft.Concrete() {
		models[class] = New(class, cfg)
	}
	return &Registry{models: models}
}

// ForClass returns the model for a concrete class.
func (r *Registry) ForClass(class aircraft.Class) (*AnomalyModel, error) {
	m, ok := r.models[class]
	if !ok {
		return nil, fmt.Errorf("no model for class %s", class)
	}
	return m, nil
}

// Ready reports whether every class model has a published artifact.
func (r *Registry) Ready() bool {
	for _, m := range r.models {
		if !m.Ready() {
			return false
		}
	}
	return true
}

// TrainAll trains every class model sequentially. Training is CPU-bound and
// runs at startup or on an explicit retrain, never on the request path.
func (r *Registry) TrainAll(ctx context.Context) (map[aircraft.Class]TrainStats, error) {
	summary := make(map[aircraft.Class]TrainStats, len(r.models))
	for _, class := range aircraft.Concrete() {
		stats, err := r.models[class].Train(ctx)
		if err != nil {
			return summary, fmt.Errorf("train %s: %w", class, err)
		}
		summary[class] = stats
	}
	log.Info().Int("classes", len(summary)).Msg("All anomaly models trained")
	return summary, nil
}
