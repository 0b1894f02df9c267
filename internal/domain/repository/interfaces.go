package repository

import (
	"context"
	"time"

	"seawaywatch/internal/domain/models"
)

// Clock is the single source of truth for "now" (spec.md §4.1). Production
// code uses a real-time implementation; tests inject a fake so every
// time-dependent property in spec.md §8 is deterministic.
type Clock interface {
	Now() time.Time
}

// SnapshotStore persists and loads the canonical snapshot document.
type SnapshotStore interface {
	Load(ctx context.Context) (*models.Snapshot, error)
	Save(ctx context.Context, snap *models.Snapshot) error
}

// HistoryStore persists and loads per-bridge closure history.
type HistoryStore interface {
	Load(ctx context.Context, bridgeID string) ([]models.HistoryEntry, error)
	Prepend(ctx context.Context, bridgeID string, entry models.HistoryEntry) ([]models.HistoryEntry, error)
	Save(ctx context.Context, bridgeID string, entries []models.HistoryEntry) error
}

// VesselRegistry is the in-memory MMSI-keyed vessel store.
type VesselRegistry interface {
	Merge(update models.Update) error
	Snapshot() []models.Record
	Get(mmsi int) (*models.Record, bool)
	Cleanup(now time.Time) int
	Len() int
}

// Metrics records operational counters/gauges (Prometheus-backed in
// production, grounded in the teacher's pkg/metrics/prometheus.go).
type Metrics interface {
	RecordScrapeResult(region string, ok bool)
	RecordAISMessage(source string, dropped bool)
	RecordBroadcast(channel string)
	SetWebsocketClients(n int)
	SetVesselCount(n int)
}
