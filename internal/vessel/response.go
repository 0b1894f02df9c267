package vessel

import (
	"encoding/json"
	"sort"
	"time"

	"seawaywatch/internal/domain/models"
)

// BuildResponse assembles the /boats and "boats" broadcast payload from a
// registry snapshot, ordered by MMSI for stable, diffable serialization
// (the fanout gateway's change-detection compares canonical bytes).
func BuildResponse(records []models.Record, now time.Time) *models.VesselsResponse {
	sorted := append([]models.Record(nil), records...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MMSI < sorted[j].MMSI })
	return &models.VesselsResponse{
		LastUpdated: now,
		VesselCount: len(sorted),
		Vessels:     sorted,
	}
}

// CanonicalBytes serializes the comparable part of v — the vessel list,
// not last_updated — for the fanout gateway's "compare against last pushed
// payload" change check (spec.md §4.8). last_updated is excluded from the
// comparison on purpose: it is set to the probe's sample time on every
// tick, so including it would make every tick "changed" and defeat the
// whole point of the change-only broadcast.
func CanonicalBytes(v *models.VesselsResponse) ([]byte, error) {
	return json.Marshal(v.Vessels)
}
