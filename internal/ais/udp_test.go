package ais

import (
	"testing"
	"time"

	"seawaywatch/internal/domain/models"
)

type fakeRegistry struct {
	merges []models.Update
}

func (f *fakeRegistry) Merge(u models.Update) error {
	f.merges = append(f.merges, u)
	return nil
}
func (f *fakeRegistry) Snapshot() []models.Record       { return nil }
func (f *fakeRegistry) Get(int) (*models.Record, bool)  { return nil, false }
func (f *fakeRegistry) Cleanup(time.Time) int           { return 0 }
func (f *fakeRegistry) Len() int                        { return len(f.merges) }

func TestBufferUpdateCoalescesLastWriterWins(t *testing.T) {
	reg := &fakeRegistry{}
	l := &Listener{
		registry: reg,
		buffer:   make(map[string]models.Update),
	}

	first := models.Update{MMSI: 300000000, Position: &models.Position{Lat: 43.0, Lon: -79.2}}
	second := models.Update{MMSI: 300000000, Position: &models.Position{Lat: 43.1, Lon: -79.1}}

	l.bufferUpdate("station-a", first)
	l.bufferUpdate("station-a", second)

	if len(l.buffer) != 1 {
		t.Fatalf("expected one coalesced entry, got %d", len(l.buffer))
	}
	l.flush()
	if len(reg.merges) != 1 {
		t.Fatalf("expected one merge after flush, got %d", len(reg.merges))
	}
	if reg.merges[0].Position.Lat != 43.1 {
		t.Fatalf("expected last-writer-wins, got %v", reg.merges[0].Position)
	}
}

func TestStationForFallsBackToSyntheticID(t *testing.T) {
	l := &Listener{stationMap: map[string]string{"10.0.0.5": "station-north"}}

	mapped := l.stationFor(testAddr{"10.0.0.5:12345"})
	if mapped != "station-north" {
		t.Fatalf("expected mapped station id, got %q", mapped)
	}

	unmapped := l.stationFor(testAddr{"10.0.0.9:12345"})
	if unmapped != "10.0.0.9" {
		t.Fatalf("expected synthetic id from ip, got %q", unmapped)
	}
}

type testAddr struct{ s string }

func (a testAddr) Network() string { return "udp" }
func (a testAddr) String() string  { return a.s }
