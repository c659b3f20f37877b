package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() *Record {
	return &Record{
		DetectedAircraftType: "fixed_wing",
		AircraftConfidence:   0.88,
		AnomalyDetected:      true,
		AnomalyScore:         0.73,
		RiskScore:            0.73,
		RiskLevel:            "WARNING",
		Anomalies:            `[{"index":10}]`,
		ShapValues:           `{}`,
		AIReportContent:      "report",
		ProcessingTimeMS:     42,
		AnalysisTimestamp:    time.Now().UTC(),
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	id, err := store.Persist(context.Background(), sampleRecord())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := store.Fetch(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.AnalysisID)
	assert.Equal(t, "fixed_wing", rec.DetectedAircraftType)
	assert.Equal(t, "WARNING", rec.RiskLevel)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStoreKeepsCallerID(t *testing.T) {
	store := NewMemoryStore()
	rec := sampleRecord()
	rec.AnalysisID = "fixed-id"

	id, err := store.Persist(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)
}

func TestMemoryStoreNotFound(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Fetch(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreFetchReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	id, err := store.Persist(context.Background(), sampleRecord())
	require.NoError(t, err)

	first, err := store.Fetch(context.Background(), id)
	require.NoError(t, err)
	first.RiskLevel = "MUTATED"

	second, err := store.Fetch(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "WARNING", second.RiskLevel)
}
