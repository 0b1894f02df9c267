package scraper

import (
	"time"

	"seawaywatch/internal/domain/models"
)

// buildClosures converts parsed-but-normalized closures into the wire
// model, filling expected_duration_minutes from the vessel-lift table
// for Commercial Vessel / Pleasure Craft / Next Arrival entries
// (spec.md §4.4 step 4). Construction entries carry no duration table
// entry; their end is whatever end_time the upstream reported, if any.
func buildClosures(raw []rawClosure) []models.Closure {
	out := make([]models.Closure, 0, len(raw))
	for _, rc := range raw {
		c := models.Closure{Type: rc.Type, Time: rc.Time, EndTime: rc.EndTime}
		if rc.Type != models.ClosureConstruction {
			longer := rc.Longer
			c.Longer = &longer
			minutes := models.ExpectedDurationMinutes(rc.Type, rc.Longer)
			c.ExpectedDurationMinutes = &minutes
		}
		out = append(out, c)
	}
	return out
}

// buildLive assembles a bridge's normalized live record from its raw
// parsed state. predicted and responsible_vessel_mmsi are left zero;
// the scraper orchestrator fills them in after computing statistics and
// the vessel snapshot (spec.md §4.4 steps 7-8).
func buildLive(rb rawBridge, now time.Time) models.Live {
	return models.Live{
		Status:           normalizeStatus(rb.RawStatus),
		LastUpdated:      now,
		UpcomingClosures: buildClosures(rb.Closures),
	}
}
