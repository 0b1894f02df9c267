package vessel

import "seawaywatch/internal/domain/models"

// AIS validation sentinels (standard AIS protocol "not available" values).
const (
	SpeedNotAvailable      = 102.3
	HeadingNotAvailable    = 511
	CourseNotAvailable     = 360
	DirectionMaxValid      = 360
)

// vesselType maps an AIS ship-type code to its display name and category.
type vesselType struct {
	Name     string
	Category string
}

// typeTable mirrors the AIS type-code table of the upstream classifier
// (grounded in _examples/original_source/boat_config.py's VESSEL_TYPES).
var typeTable = map[int]vesselType{
	20: {"WIG", "other"},

	30: {"Fishing", "fishing"},
	31: {"Towing", "tug"},
	32: {"Towing (large)", "tug"},
	33: {"Dredger", "other"},
	34: {"Diving Ops", "other"},
	35: {"Military", "other"},
	36: {"Sailing", "sailing"},
	37: {"Pleasure Craft", "pleasure"},

	40: {"High-Speed Craft", "passenger"},
	41: {"HSC - Hazard A", "passenger"},
	42: {"HSC - Hazard B", "passenger"},
	43: {"HSC - Hazard C", "passenger"},
	44: {"HSC - Hazard D", "passenger"},
	49: {"HSC - No info", "passenger"},

	50: {"Pilot Vessel", "other"},
	51: {"SAR", "other"},
	52: {"Tug", "tug"},
	53: {"Port Tender", "other"},
	54: {"Anti-Pollution", "other"},
	55: {"Law Enforcement", "other"},
	56: {"Local Vessel", "other"},
	57: {"Local Vessel", "other"},
	58: {"Medical", "other"},
	59: {"Special Craft", "other"},

	60: {"Passenger", "passenger"},
	61: {"Passenger - Hazard A", "passenger"},
	62: {"Passenger - Hazard B", "passenger"},
	63: {"Passenger - Hazard C", "passenger"},
	64: {"Passenger - Hazard D", "passenger"},
	69: {"Passenger - No info", "passenger"},

	70: {"Cargo", "cargo"},
	71: {"Cargo - Hazard A", "cargo"},
	72: {"Cargo - Hazard B", "cargo"},
	73: {"Cargo - Hazard C", "cargo"},
	74: {"Cargo - Hazard D", "cargo"},
	79: {"Cargo - No info", "cargo"},

	80: {"Tanker", "tanker"},
	81: {"Tanker - Hazard A", "tanker"},
	82: {"Tanker - Hazard B", "tanker"},
	83: {"Tanker - Hazard C", "tanker"},
	84: {"Tanker - Hazard D", "tanker"},
	89: {"Tanker - No info", "tanker"},

	90: {"Other", "other"},
	91: {"Other - Hazard A", "other"},
	92: {"Other - Hazard B", "other"},
	93: {"Other - Hazard C", "other"},
	94: {"Other - Hazard D", "other"},
}

// TypeInfo returns the display name and category for an AIS type code.
func TypeInfo(code *int) (name, category string) {
	if code == nil {
		return "Unknown", "other"
	}
	if t, ok := typeTable[*code]; ok {
		return t.Name, t.Category
	}
	if *code >= 0 && *code < 100 {
		return "Unknown", "other"
	}
	return "Invalid", "other"
}

// bounds is a lat/lon bounding box.
type bounds struct {
	LatMin, LatMax, LonMin, LonMax float64
}

// regionBounds is the fixed region table (grounded in
// _examples/original_source/boat_config.py's BOAT_REGIONS).
var regionBounds = map[models.Region]bounds{
	models.RegionWelland:  {LatMin: 42.70, LatMax: 43.40, LonMin: -79.40, LonMax: -79.05},
	models.RegionMontreal: {LatMin: 45.05, LatMax: 45.70, LonMin: -74.35, LonMax: -73.20},
}

// CombinedBounds is the union box used for the single AISHub poll query
// (spec.md §4.3 HTTP poller: "one bounding-box query covering the union
// of all boat regions").
func CombinedBounds() (latMin, latMax, lonMin, lonMax float64) {
	latMin, latMax = 90, -90
	lonMin, lonMax = 180, -180
	for _, b := range regionBounds {
		if b.LatMin < latMin {
			latMin = b.LatMin
		}
		if b.LatMax > latMax {
			latMax = b.LatMax
		}
		if b.LonMin < lonMin {
			lonMin = b.LonMin
		}
		if b.LonMax > lonMax {
			lonMax = b.LonMax
		}
	}
	return
}

// RegionFor returns the region containing (lat, lon), or "" if outside
// every region's bounds (spec.md §4.3 step 4).
func RegionFor(lat, lon float64) models.Region {
	for region, b := range regionBounds {
		if lat >= b.LatMin && lat <= b.LatMax && lon >= b.LonMin && lon <= b.LonMax {
			return region
		}
	}
	return ""
}

// ValidMMSI reports whether an mmsi is in the ship MMSI range.
func ValidMMSI(mmsi int) bool {
	return mmsi >= models.MinShipMMSI && mmsi <= models.MaxShipMMSI
}

// ValidCoordinate rejects out-of-range and exact-(0,0) coordinates, which
// AISHub uses as a sentinel for "no fix" (spec.md §4.3 HTTP poller).
func ValidCoordinate(lat, lon float64) bool {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return false
	}
	if lat == 0 && lon == 0 {
		return false
	}
	return true
}
