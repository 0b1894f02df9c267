package models

import "time"

// Status is a normalized bridge operating state.
type Status string

const (
	StatusOpen         Status = "Open"
	StatusClosed       Status = "Closed"
	StatusClosingSoon  Status = "Closing soon"
	StatusClosing      Status = "Closing"
	StatusOpening      Status = "Opening"
	StatusConstruction Status = "Construction"
	StatusUnknown      Status = "Unknown"
)

// Coordinates is a geographic point, longitude using the "lng" wire name
// to match the upstream snapshot JSON shape.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Window bounds an expected transition time.
type Window struct {
	Lower time.Time `json:"lower"`
	Upper time.Time `json:"upper"`
}

// IntWindow bounds an integer confidence interval (minutes).
type IntWindow struct {
	Lower int `json:"lower"`
	Upper int `json:"upper"`
}

// ClosureType enumerates the kinds of upcoming closure a bridge can report.
type ClosureType string

const (
	ClosureConstruction     ClosureType = "Construction"
	ClosureCommercialVessel ClosureType = "Commercial Vessel"
	ClosurePleasureCraft    ClosureType = "Pleasure Craft"
	ClosureNextArrival      ClosureType = "Next Arrival"
)

// Closure is one upcoming or scheduled bridge closure entry.
type Closure struct {
	Type                    ClosureType `json:"type"`
	Time                    time.Time   `json:"time"`
	Longer                  *bool       `json:"longer,omitempty"`
	ExpectedDurationMinutes *int        `json:"expected_duration_minutes,omitempty"`
	EndTime                 *time.Time  `json:"end_time,omitempty"`
}

// DurationBuckets is the closure-duration histogram.
type DurationBuckets struct {
	Under9m int `json:"under_9m"`
	M10To15 int `json:"10_15m"`
	M16To30 int `json:"16_30m"`
	M31To60 int `json:"31_60m"`
	Over60m int `json:"over_60m"`
}

// Statistics is the derived-from-history block persisted on a bridge's
// static record and recomputed daily.
type Statistics struct {
	AverageClosureDuration *int            `json:"average_closure_duration"`
	ClosureCI              *IntWindow      `json:"closure_ci"`
	AverageRaisingSoon     *int            `json:"average_raising_soon"`
	RaisingSoonCI          *IntWindow      `json:"raising_soon_ci"`
	ClosureDurations       DurationBuckets `json:"closure_durations"`
	TotalEntries           int             `json:"total_entries"`
}

// Static is the immutable-for-process-lifetime bridge record.
type Static struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Region      string      `json:"region"`
	RegionShort string      `json:"region_short"`
	Coordinates Coordinates `json:"coordinates"`
	Statistics  Statistics  `json:"statistics"`
}

// Live is the Scraper-owned mutable bridge record.
type Live struct {
	Status                Status    `json:"status"`
	LastUpdated           time.Time `json:"last_updated"`
	Predicted             *Window   `json:"predicted"`
	UpcomingClosures      []Closure `json:"upcoming_closures"`
	ResponsibleVesselMMSI *int      `json:"responsible_vessel_mmsi"`
}

// Bridge is the denormalized static+live pair as held in the snapshot.
type Bridge struct {
	Static Static `json:"static"`
	Live   Live   `json:"live"`
}

// HistoryEntry is one newest-first, capped-at-300 per-bridge history record.
type HistoryEntry struct {
	ID        string     `json:"id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Status    Status     `json:"status"`
	Duration  *float64   `json:"duration,omitempty"` // seconds
}

const MaxHistoryEntries = 300

// ClosureLikeStatuses counts toward closure-duration statistics. Only
// closed history entries count (grounded in
// _examples/original_source/stats_calculator.py, which counts
// "Unavailable (Closed)" only — Construction and Closing entries are
// dropped from the statistics pass, not bucketed as closures).
var ClosureLikeStatuses = map[Status]bool{
	StatusClosed: true,
}

// ClosingSoonLikeStatuses counts toward raising-soon statistics.
var ClosingSoonLikeStatuses = map[Status]bool{
	StatusClosingSoon: true,
}

// AllStatuses is the closed set of normalized statuses (testable property §8).
var AllStatuses = map[Status]bool{
	StatusOpen: true, StatusClosed: true, StatusClosingSoon: true,
	StatusClosing: true, StatusOpening: true, StatusConstruction: true,
	StatusUnknown: true,
}

// ActiveBoatClosureTypes are closure types that attribute to a blending
// vessel in the prediction engine.
var ActiveBoatClosureTypes = map[ClosureType]bool{
	ClosureCommercialVessel: true,
	ClosurePleasureCraft:    true,
	ClosureNextArrival:      true,
}

// ExpectedDurationMinutes returns the table-driven vessel-lift duration
// (spec.md §4.4) for a closure type and the "longer" flag.
func ExpectedDurationMinutes(t ClosureType, longer bool) int {
	switch t {
	case ClosureCommercialVessel, ClosureNextArrival:
		if longer {
			return 30
		}
		return 15
	case ClosurePleasureCraft:
		if longer {
			return 20
		}
		return 10
	default:
		return 0
	}
}
