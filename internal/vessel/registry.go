// Package vessel implements the in-memory MMSI-keyed vessel registry of
// spec.md §4.3: region bounds, MMSI validity, source precedence between
// the UDP and HTTP ingest paths, movement-based last_moved tracking, and
// staleness/idle cleanup.
package vessel

import (
	"fmt"
	"sync"
	"time"

	"seawaywatch/internal/domain/models"
	"seawaywatch/internal/geo"
)

const (
	movementThresholdMeters = 10.0
	udpFreshWindow          = 60 * time.Second
	staleLastSeen           = 15 * time.Minute
	staleLastMoved          = 120 * time.Minute
)

// Registry is the single-writer, many-reader vessel store (spec.md §5
// concurrency table).
type Registry struct {
	mu   sync.Mutex
	byID map[int]*models.Record
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{byID: make(map[int]*models.Record)}
}

// Merge applies one decoded/polled update through the ingestion contract
// of spec.md §4.3 steps 1-6. Base-station/channel-management filtering
// happens at the decode boundary (internal/ais), before an Update ever
// reaches here.
func (r *Registry) Merge(u models.Update) error {
	if !ValidMMSI(u.MMSI) {
		return fmt.Errorf("mmsi %d outside ship range", u.MMSI)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[u.MMSI]

	// Step 3: drop if no position known and no existing record to merge into.
	if u.Position == nil && !ok {
		return fmt.Errorf("mmsi %d: no position and no existing record", u.MMSI)
	}

	var region models.Region
	if u.Position != nil {
		region = RegionFor(u.Position.Lat, u.Position.Lon)
		if region == "" {
			return fmt.Errorf("mmsi %d: position outside all regions", u.MMSI)
		}
	} else {
		region = existing.Region
	}

	if !ok {
		r.byID[u.MMSI] = newRecord(u, region)
		return nil
	}

	// Source-precedence table (spec.md §4.3 step 5).
	if existing.Source == models.SourceUDP && u.Source == models.SourceHTTP {
		if u.Now.Sub(existing.LastSeen) < udpFreshWindow {
			return nil // ignore: UDP within 60s outranks HTTP
		}
	}

	mergeInto(existing, u, region)
	return nil
}

func newRecord(u models.Update, region models.Region) *models.Record {
	rec := &models.Record{
		MMSI:      u.MMSI,
		Name:      u.Name,
		TypeCode:  u.TypeCode,
		Heading:   u.Heading,
		Course:    u.Course,
		Destination: u.Destination,
		Dimensions:  u.Dimensions,
		LastSeen:  u.Now,
		LastMoved: u.Now,
		Source:    u.Source,
		Region:    region,
	}
	if u.Position != nil {
		rec.Position = *u.Position
	}
	if u.SpeedKnots != nil {
		rec.SpeedKnots = *u.SpeedKnots
	}
	name, category := TypeInfo(u.TypeCode)
	rec.TypeName, rec.TypeCategory = name, category
	return rec
}

func mergeInto(existing *models.Record, u models.Update, region models.Region) {
	if u.Position != nil {
		if positionChanged(existing.Position, *u.Position) {
			existing.LastMoved = u.Now
		}
		existing.Position = *u.Position
	}
	if u.Name != nil {
		existing.Name = u.Name
	}
	if u.TypeCode != nil {
		existing.TypeCode = u.TypeCode
		existing.TypeName, existing.TypeCategory = TypeInfo(u.TypeCode)
	}
	if u.Heading != nil {
		existing.Heading = u.Heading
	}
	if u.Course != nil {
		existing.Course = u.Course
	}
	if u.SpeedKnots != nil {
		existing.SpeedKnots = *u.SpeedKnots
	}
	if u.Destination != nil {
		existing.Destination = u.Destination
	}
	if u.Dimensions != nil {
		existing.Dimensions = u.Dimensions
	}
	existing.LastSeen = u.Now
	existing.Source = u.Source
	existing.Region = region
}

// positionChanged reports whether the Haversine displacement exceeds the
// 10m movement threshold (spec.md §3, §4.3).
func positionChanged(old, next models.Position) bool {
	return geo.HaversineMeters(old.Lat, old.Lon, next.Lat, next.Lon) > movementThresholdMeters
}

// Snapshot returns deep copies of every record, safe for a reader to hold
// without a lock (spec.md §3 ownership rules).
func (r *Registry) Snapshot() []models.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Record, 0, len(r.byID))
	for _, rec := range r.byID {
		out = append(out, *rec.Clone())
	}
	return out
}

// Get returns a deep copy of one vessel's record.
func (r *Registry) Get(mmsi int) (*models.Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[mmsi]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Len returns the current registry size.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// Cleanup removes vessels stale by last_seen (>15min), idle by last_moved
// (>120min), or that have left all region bounds, per spec.md §4.3.
// Returns the number removed.
func (r *Registry) Cleanup(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for mmsi, rec := range r.byID {
		stale := now.Sub(rec.LastSeen) > staleLastSeen
		idle := now.Sub(rec.LastMoved) > staleLastMoved
		outOfBounds := RegionFor(rec.Position.Lat, rec.Position.Lon) == ""
		if stale || idle || outOfBounds {
			delete(r.byID, mmsi)
			removed++
		}
	}
	return removed
}
