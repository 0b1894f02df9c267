package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"seawaywatch/internal/domain/models"
)

func TestSnapshotStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewSnapshotStore(filepath.Join(dir, "bridges.json"), nil)

	snap := &models.Snapshot{
		LastUpdated: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Bridges: map[string]models.Bridge{
			"lakeshore": {Static: models.Static{ID: "lakeshore", Name: "Lakeshore Rd"}},
		},
	}
	if err := store.Save(context.Background(), snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Bridges) != 1 || got.Bridges["lakeshore"].Static.Name != "Lakeshore Rd" {
		t.Fatalf("unexpected loaded snapshot: %+v", got)
	}
}

func TestSnapshotStoreMissingFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	store := NewSnapshotStore(filepath.Join(dir, "missing.json"), nil)
	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Bridges) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", got)
	}
}

func TestHistoryStorePrependCapsAt300(t *testing.T) {
	dir := t.TempDir()
	store := NewHistoryStore(dir, nil)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var entries []models.HistoryEntry
	for i := 0; i < 310; i++ {
		entries, _ = store.Prepend(ctx, "lakeshore", models.HistoryEntry{
			ID:        "h" + string(rune('a'+i%26)),
			StartTime: base.Add(time.Duration(i) * time.Minute),
			Status:    models.StatusClosed,
		})
	}
	if len(entries) != models.MaxHistoryEntries {
		t.Fatalf("expected %d entries, got %d", models.MaxHistoryEntries, len(entries))
	}

	loaded, err := store.Load(ctx, "lakeshore")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != models.MaxHistoryEntries {
		t.Fatalf("expected %d persisted entries, got %d", models.MaxHistoryEntries, len(loaded))
	}
	// Newest-first: the most recently prepended entry has the latest StartTime.
	if !loaded[0].StartTime.After(loaded[1].StartTime) {
		t.Fatalf("expected newest-first ordering, got %v then %v", loaded[0].StartTime, loaded[1].StartTime)
	}
}

func TestHistoryStoreMissingFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	store := NewHistoryStore(dir, nil)
	got, err := store.Load(context.Background(), "nope")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil/empty history, got %+v", got)
	}
}
