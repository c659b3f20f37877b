// Package cache is a Redis read-through layer in front of the durable
// analysis sink. Writes go to the inner store first; a cache failure is
// never fatal.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/avlogix/flightscope/internal/persistence"
)

// Config holds Redis connection settings.
type Config struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB"`
	TTL      time.Duration `yaml:"ttl" env:"REDIS_TTL"`
	Enabled  bool          `yaml:"enabled" env:"REDIS_ENABLED"`
}

// DefaultConfig returns defaults with caching disabled.
func DefaultConfig() Config {
	return Config{
		Addr: "localhost:6379",
		TTL:  24 * time.Hour,
	}
}

// Store wraps an inner persistence store with a Redis cache.
type Store struct {
	inner  persistence.Store
	client *redis.Client
	ttl    time.Duration
}

// New wraps inner with a Redis cache using the given configuration.
func New(inner persistence.Store, cfg Config) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Store{inner: inner, client: client, ttl: cfg.TTL}
}

func cacheKey(analysisID string) string {
	return "flightscope:analysis:" + analysisID
}

// Persist writes through: durable store first, then the cache. A cache
// write failure is logged and dropped.
func (s *Store) Persist(ctx context.Context, rec *persistence.Record) (string, error) {
	id, err := s.inner.Persist(ctx, rec)
	if err != nil {
		return "", err
	}

	if payload, mErr := json.Marshal(rec); mErr == nil {
		if cErr := s.client.Set(ctx, cacheKey(id), payload, s.ttl).Err(); cErr != nil {
			log.Warn().Err(cErr).Str("analysis_id", id).Msg("cache write failed")
		}
	}
	return id, nil
}

// Fetch reads through: cache hit short-circuits, a miss falls back to the
// inner store and repopulates the cache.
func (s *Store) Fetch(ctx context.Context, analysisID string) (*persistence.Record, error) {
	payload, err := s.client.Get(ctx, cacheKey(analysisID)).Bytes()
	if err == nil {
		var rec persistence.Record
		if uErr := json.Unmarshal(payload, &rec); uErr == nil {
			return &rec, nil
		}
		// corrupt entry; fall through to the durable store
	} else if err != redis.Nil {
		log.Warn().Err(err).Str("analysis_id", analysisID).Msg("cache read failed")
	}

	rec, err := s.inner.Fetch(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	if payload, mErr := json.Marshal(rec); mErr == nil {
		if cErr := s.client.Set(ctx, cacheKey(analysisID), payload, s.ttl).Err(); cErr != nil {
			log.Warn().Err(cErr).Str("analysis_id", analysisID).Msg("cache repopulate failed")
		}
	}
	return rec, nil
}

// Close releases the Redis client. The inner store is owned by the caller.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("close redis client: %w", err)
	}
	return nil
}
