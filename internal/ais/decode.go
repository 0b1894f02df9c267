// Package ais decodes AIS NMEA sentences and polls the AISHub HTTP API,
// producing models.Update values for the vessel registry (spec.md §4.3).
package ais

import (
	"strings"
	"time"

	ais "github.com/BertoldVdb/go-ais"
	"github.com/BertoldVdb/go-ais/aisnmea"

	"seawaywatch/internal/domain/models"
)

// messageTypeBaseStation and messageTypeChannelManagement are the AIS
// message IDs dropped at the decode boundary (spec.md §4.3 step 1):
// type 4 is a base station report, type 22 is channel management.
const (
	messageTypeBaseStation       = 4
	messageTypeChannelManagement = 22
)

// Decoder wraps the go-ais NMEA codec, grounded in
// _examples/madpsy-aisdecode/aisdecode.go's CodecNew/NMEACodecNew usage.
type Decoder struct {
	nmea *aisnmea.NMEACodec
}

// NewDecoder builds a Decoder with space-padding dropped, matching the
// teacher example's codec configuration.
func NewDecoder() *Decoder {
	codec := ais.CodecNew(false, false)
	codec.DropSpace = true
	return &Decoder{nmea: aisnmea.NMEACodecNew(codec)}
}

// Decode parses one raw NMEA sentence and, if it carries a message this
// service cares about, returns a partial Update. ok is false for
// undecodable sentences, base-station/channel-management messages, and
// message types this system does not track (returned without error, per
// spec.md §7: malformed AIS messages are dropped silently at the decode
// boundary).
func (d *Decoder) Decode(sentence string, now time.Time) (models.Update, bool) {
	decoded, err := d.nmea.ParseSentence(sentence)
	if err != nil || decoded == nil || decoded.Packet == nil {
		return models.Update{}, false
	}

	hdr := decoded.Packet.GetHeader()
	if hdr == nil {
		return models.Update{}, false
	}
	switch hdr.MessageID {
	case messageTypeBaseStation, messageTypeChannelManagement:
		return models.Update{}, false
	}

	switch pkt := decoded.Packet.(type) {
	case *ais.PositionReport:
		return positionUpdate(int(pkt.UserID), pkt, now), true
	case *ais.StandardClassBPositionReport:
		return classBPositionUpdate(int(pkt.UserID), pkt, now), true
	case *ais.ShipStaticData:
		return staticUpdate(int(pkt.UserID), pkt, now), true
	default:
		return models.Update{}, false
	}
}

func positionUpdate(mmsi int, p *ais.PositionReport, now time.Time) models.Update {
	u := models.Update{
		MMSI:     mmsi,
		Position: &models.Position{Lat: float64(p.Latitude), Lon: float64(p.Longitude)},
		Source:   models.SourceUDP,
		Now:      now,
	}
	if float64(p.Sog) < SpeedNotAvailableThreshold {
		speed := float64(p.Sog)
		u.SpeedKnots = &speed
	}
	if float64(p.Cog) < CourseNotAvailableThreshold {
		cog := float64(p.Cog)
		u.Course = &cog
	}
	if float64(p.TrueHeading) < HeadingNotAvailableThreshold {
		heading := float64(p.TrueHeading)
		u.Heading = &heading
	}
	return u
}

func classBPositionUpdate(mmsi int, p *ais.StandardClassBPositionReport, now time.Time) models.Update {
	u := models.Update{
		MMSI:     mmsi,
		Position: &models.Position{Lat: float64(p.Latitude), Lon: float64(p.Longitude)},
		Source:   models.SourceUDP,
		Now:      now,
	}
	if float64(p.Sog) < SpeedNotAvailableThreshold {
		speed := float64(p.Sog)
		u.SpeedKnots = &speed
	}
	if float64(p.Cog) < CourseNotAvailableThreshold {
		cog := float64(p.Cog)
		u.Course = &cog
	}
	if float64(p.TrueHeading) < HeadingNotAvailableThreshold {
		heading := float64(p.TrueHeading)
		u.Heading = &heading
	}
	return u
}

func staticUpdate(mmsi int, s *ais.ShipStaticData, now time.Time) models.Update {
	u := models.Update{MMSI: mmsi, Source: models.SourceUDP, Now: now}
	if name := sanitizeName(s.Name); name != "" {
		u.Name = &name
	}
	code := int(s.Type)
	u.TypeCode = &code
	if dest := sanitizeName(s.Destination); dest != "" {
		u.Destination = &dest
	}
	length := float64(s.Dimension.A) + float64(s.Dimension.B)
	width := float64(s.Dimension.C) + float64(s.Dimension.D)
	if length > 0 || width > 0 {
		u.Dimensions = &models.Dimensions{Length: length, Width: width}
	}
	return u
}

// AIS "not available" sentinel thresholds (spec.md GLOSSARY / vessel
// package constants), duplicated here as float thresholds for comparison
// against decoded float/uint fields.
const (
	SpeedNotAvailableThreshold   = 102.3
	CourseNotAvailableThreshold  = 360.0
	HeadingNotAvailableThreshold = 511.0
)

// sanitizeName trims the '@' padding go-ais leaves on fixed-width string
// fields and the surrounding whitespace, returning "" when nothing useful
// remains.
func sanitizeName(raw string) string {
	trimmed := strings.TrimRight(raw, "@")
	return strings.TrimSpace(trimmed)
}
