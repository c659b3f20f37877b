// Package postgres is the durable analysis sink backed by the
// flight_analyses table.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/avlogix/flightscope/internal/persistence"
)

// Config holds database connection configuration.
type Config struct {
	DSN             string        `yaml:"dsn" env:"PG_DSN"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"PG_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"PG_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"PG_CONN_MAX_LIFETIME"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env:"PG_CONN_MAX_IDLE_TIME"`
	QueryTimeout    time.Duration `yaml:"query_timeout" env:"PG_QUERY_TIMEOUT"`
	Enabled         bool          `yaml:"enabled" env:"PG_ENABLED"`
}

// DefaultConfig returns reasonable defaults for database connections.
func DefaultConfig() Config {
	return Config{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		QueryTimeout:    30 * time.Second,
		Enabled:         false, // requires explicit configuration
	}
}

// Store persists analysis records in PostgreSQL.
type Store struct {
	db      *sqlx.DB
	timeout time.Duration
}

// Open connects to the database and verifies connectivity.
func Open(cfg Config) (*Store, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("postgres sink is disabled")
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required when enabled")
	}

	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db, timeout: cfg.QueryTimeout}, nil
}

// Persist inserts one analysis record and returns its receipt id.
func (s *Store) Persist(ctx context.Context, rec *persistence.Record) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if rec.AnalysisID == "" {
		rec.AnalysisID = uuid.NewString()
	}

	query := `
		INSERT INTO flight_analyses (
			analysis_id, detected_aircraft_type, aircraft_confidence,
			anomaly_detected, anomaly_score, risk_score, risk_level,
			anomalies, shap_values, ai_report_content, internal_error,
			processing_time_ms, analysis_timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := s.db.ExecContext(ctx, query,
		rec.AnalysisID, rec.DetectedAircraftType, rec.AircraftConfidence,
		rec.AnomalyDetected, rec.AnomalyScore, rec.RiskScore, rec.RiskLevel,
		rec.Anomalies, rec.ShapValues, rec.AIReportContent, rec.InternalError,
		rec.ProcessingTimeMS, rec.AnalysisTimestamp)
	if err != nil {
		return "", fmt.Errorf("failed to insert analysis: %w", err)
	}
	return rec.AnalysisID, nil
}

// Fetch retrieves one analysis record by receipt id.
func (s *Store) Fetch(ctx context.Context, analysisID string) (*persistence.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		SELECT analysis_id, detected_aircraft_type, aircraft_confidence,
			anomaly_detected, anomaly_score, risk_score, risk_level,
			anomalies, shap_values, ai_report_content, internal_error,
			processing_time_ms, analysis_timestamp
		FROM flight_analyses
		WHERE analysis_id = $1`

	var rec persistence.Record
	if err := s.db.GetContext(ctx, &rec, query, analysisID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch analysis: %w", err)
	}
	return &rec, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Schema is the DDL for the flight_analyses table, applied by deploy
// tooling rather than at runtime.
const Schema = `
CREATE TABLE IF NOT EXISTS flight_analyses (
	analysis_id            TEXT PRIMARY KEY,
	detected_aircraft_type TEXT NOT NULL,
	aircraft_confidence    DOUBLE PRECISION NOT NULL,
	anomaly_detected       BOOLEAN NOT NULL,
	anomaly_score          DOUBLE PRECISION NOT NULL,
	risk_score             DOUBLE PRECISION NOT NULL,
	risk_level             TEXT NOT NULL,
	anomalies              JSONB NOT NULL DEFAULT '[]',
	shap_values            JSONB NOT NULL DEFAULT '{}',
	ai_report_content      TEXT NOT NULL DEFAULT '',
	internal_error         TEXT NOT NULL DEFAULT '',
	processing_time_ms     BIGINT NOT NULL,
	analysis_timestamp     TIMESTAMPTZ NOT NULL,
	created_at             TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_flight_analyses_ts ON flight_analyses (analysis_timestamp DESC);
`
