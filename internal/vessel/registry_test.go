package vessel

import (
	"testing"
	"time"

	"seawaywatch/internal/domain/models"
)

func mustFloat(f float64) *float64 { return &f }

func TestMergeRejectsInvalidMMSI(t *testing.T) {
	r := New()
	err := r.Merge(models.Update{
		MMSI:     1,
		Position: &models.Position{Lat: 43.0, Lon: -79.2},
		Source:   models.SourceUDP,
		Now:      time.Now(),
	})
	if err == nil {
		t.Fatalf("expected error for out-of-range mmsi")
	}
}

func TestMergeRejectsOutsideRegions(t *testing.T) {
	r := New()
	err := r.Merge(models.Update{
		MMSI:     300000000,
		Position: &models.Position{Lat: 0, Lon: 0},
		Source:   models.SourceUDP,
		Now:      time.Now(),
	})
	if err == nil {
		t.Fatalf("expected error for out-of-bounds position")
	}
}

func TestMergeInsertsNewVessel(t *testing.T) {
	r := New()
	now := time.Now()
	err := r.Merge(models.Update{
		MMSI:       300000000,
		Position:   &models.Position{Lat: 43.0, Lon: -79.2},
		SpeedKnots: mustFloat(5.0),
		Source:     models.SourceUDP,
		Now:        now,
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	rec, ok := r.Get(300000000)
	if !ok {
		t.Fatalf("expected vessel present")
	}
	if rec.Region != models.RegionWelland {
		t.Fatalf("expected welland region, got %s", rec.Region)
	}
}

func TestUDPWithin60sBeatsHTTP(t *testing.T) {
	r := New()
	now := time.Now()
	mustMerge(t, r, models.Update{
		MMSI: 300000000, Position: &models.Position{Lat: 43.0, Lon: -79.2},
		Source: models.SourceUDP, Now: now,
	})

	later := now.Add(10 * time.Second)
	mustMerge(t, r, models.Update{
		MMSI: 300000000, Position: &models.Position{Lat: 43.1, Lon: -79.1},
		Source: models.SourceHTTP, Now: later,
	})

	rec, _ := r.Get(300000000)
	if rec.Position.Lat != 43.0 {
		t.Fatalf("expected UDP position retained, got %v", rec.Position)
	}
}

func TestHTTPAcceptedAfterUDPSilence(t *testing.T) {
	r := New()
	now := time.Now()
	mustMerge(t, r, models.Update{
		MMSI: 300000000, Position: &models.Position{Lat: 43.0, Lon: -79.2},
		Source: models.SourceUDP, Now: now,
	})

	later := now.Add(70 * time.Second)
	mustMerge(t, r, models.Update{
		MMSI: 300000000, Position: &models.Position{Lat: 43.1, Lon: -79.1},
		Source: models.SourceHTTP, Now: later,
	})

	rec, _ := r.Get(300000000)
	if rec.Position.Lat != 43.1 {
		t.Fatalf("expected HTTP position accepted after UDP silence, got %v", rec.Position)
	}
	if !rec.LastSeen.Equal(later) {
		t.Fatalf("expected last_seen advanced")
	}
}

func TestCleanupRemovesStale(t *testing.T) {
	r := New()
	now := time.Now()
	mustMerge(t, r, models.Update{
		MMSI: 300000000, Position: &models.Position{Lat: 43.0, Lon: -79.2},
		Source: models.SourceUDP, Now: now,
	})
	mustMerge(t, r, models.Update{
		MMSI: 300000001, Position: &models.Position{Lat: 43.0, Lon: -79.2},
		Source: models.SourceUDP, Now: now,
	})

	removed := r.Cleanup(now.Add(10 * time.Minute))
	if removed != 0 {
		t.Fatalf("expected nothing removed yet, got %d", removed)
	}
	removed = r.Cleanup(now.Add(16 * time.Minute))
	if removed != 2 {
		t.Fatalf("expected both removed for stale last_seen, got %d", removed)
	}
}

func mustMerge(t *testing.T, r *Registry, u models.Update) {
	t.Helper()
	if err := r.Merge(u); err != nil {
		t.Fatalf("merge: %v", err)
	}
}
