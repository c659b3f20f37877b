// Package persistence defines the analysis sink: the record the pipeline
// writes and the store interface implemented by Postgres, the in-memory
// store, and the Redis read-through cache. Tenant scoping is the sink
// implementation's concern; the pipeline never reads tenant identity.
package persistence

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Fetch when no record matches the receipt id.
var ErrNotFound = errors.New("analysis record not found")

// Record is the persisted shape of one analysis.
type Record struct {
	AnalysisID           string    `db:"analysis_id" json:"analysis_id"`
	DetectedAircraftType string    `db:"detected_aircraft_type" json:"detected_aircraft_type"`
	AircraftConfidence   float64   `db:"aircraft_confidence" json:"aircraft_confidence"`
	AnomalyDetected      bool      `db:"anomaly_detected" json:"anomaly_detected"`
	AnomalyScore         float64   `db:"anomaly_score" json:"anomaly_score"`
	RiskScore            float64   `db:"risk_score" json:"risk_score"`
	RiskLevel            string    `db:"risk_level" json:"risk_level"`
	Anomalies            string    `db:"anomalies" json:"anomalies"`     // serialized event list
	ShapValues           string    `db:"shap_values" json:"shap_values"` // serialized attribution bundle
	AIReportContent      string    `db:"ai_report_content" json:"ai_report_content"`
	InternalError        string    `db:"internal_error" json:"internal_error,omitempty"`
	ProcessingTimeMS     int64     `db:"processing_time_ms" json:"processing_time_ms"`
	AnalysisTimestamp    time.Time `db:"analysis_timestamp" json:"analysis_timestamp"`
}

// Store persists analysis records and retrieves them by receipt id.
// Persist returns the receipt; fire-and-forget is not allowed.
type Store interface {
	Persist(ctx context.Context, rec *Record) (string, error)
	Fetch(ctx context.Context, analysisID string) (*Record, error)
}

// MemoryStore is the in-process sink used by the CLI and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Persist(_ context.Context, rec *Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.AnalysisID == "" {
		rec.AnalysisID = uuid.NewString()
	}
	s.records[rec.AnalysisID] = *rec
	return rec.AnalysisID, nil
}

func (s *MemoryStore) Fetch(_ context.Context, analysisID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[analysisID]
	if !ok {
		return nil, ErrNotFound
	}
	out := rec
	return &out, nil
}

// Len reports the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
