package models

import "time"

// Region is a fixed bounded geographic area vessels and bridges both
// belong to.
type Region string

const (
	RegionWelland  Region = "welland"
	RegionMontreal Region = "montreal"
)

// Source identifies which ingest path produced the most recent update
// to a vessel record.
type Source string

const (
	SourceUDP  Source = "udp"
	SourceHTTP Source = "http"
)

// MMSI range bounds for ship stations (spec.md §3, GLOSSARY).
const (
	MinShipMMSI = 200_000_000
	MaxShipMMSI = 799_999_999
)

// Position is a lat/lon pair.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Dimensions is vessel length/width in meters.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
}

// Record is the last-known state of one vessel, keyed by MMSI.
type Record struct {
	MMSI         int         `json:"mmsi"`
	Name         *string     `json:"name,omitempty"`
	TypeCode     *int        `json:"type_code,omitempty"`
	TypeName     string      `json:"type_name"`
	TypeCategory string      `json:"type_category"`
	Position     Position    `json:"position"`
	Heading      *float64    `json:"heading,omitempty"`
	Course       *float64    `json:"course,omitempty"`
	SpeedKnots   float64     `json:"speed_knots"`
	Destination  *string     `json:"destination,omitempty"`
	Dimensions   *Dimensions `json:"dimensions,omitempty"`
	LastSeen     time.Time   `json:"last_seen"`
	LastMoved    time.Time   `json:"last_moved"`
	Source       Source      `json:"source"`
	Region       Region      `json:"region"`
}

// Clone returns a deep copy safe for a reader to hold without a lock.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	if r.Name != nil {
		n := *r.Name
		c.Name = &n
	}
	if r.TypeCode != nil {
		t := *r.TypeCode
		c.TypeCode = &t
	}
	if r.Heading != nil {
		h := *r.Heading
		c.Heading = &h
	}
	if r.Course != nil {
		cc := *r.Course
		c.Course = &cc
	}
	if r.Destination != nil {
		d := *r.Destination
		c.Destination = &d
	}
	if r.Dimensions != nil {
		d := *r.Dimensions
		c.Dimensions = &d
	}
	return &c
}

// Update is a partial observation merged into an existing or new Record.
// Nil/zero-value pointer fields mean "unknown", not "clear existing value"
// (spec.md §4.3 step 6: only non-null fields overwrite).
type Update struct {
	MMSI        int
	Name        *string
	TypeCode    *int
	Position    *Position
	Heading     *float64
	Course      *float64
	SpeedKnots  *float64
	Destination *string
	Dimensions  *Dimensions
	Source      Source
	Now         time.Time
}
