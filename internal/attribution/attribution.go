// Package attribution scores nearby vessels to identify which one is
// most likely responsible for a bridge's current closure (spec.md §4.6),
// grounded in _examples/original_source/responsible_boat.py's
// haversine/bearing/scoring structure, with the multiplier table taken
// verbatim from the specification.
package attribution

import (
	"seawaywatch/internal/domain/models"
	"seawaywatch/internal/geo"
)

const (
	maxDistanceClosingSoonKm = 7.0
	maxDistanceClosedKm      = 4.0
	stationaryWaitingZoneM   = 250.0
	baseScoreCap             = 3.0
	movingSpeedThresholdKn   = 0.1
	movingAwaySpeedKn        = 1.5
	closedMovingSpeedKn      = 0.5
	headingToleranceDeg      = 60.0
	minScoreClosingSoon      = 0.25
	minScoreClosed           = 0.3
)

// candidate tracks the running best match during a scoring pass.
type candidate struct {
	mmsi       int
	score      float64
	distanceKm float64
	found      bool
}

func (c *candidate) consider(mmsi int, score, distanceKm float64) {
	if score <= 0 {
		return
	}
	if !c.found || score > c.score || (score == c.score && distanceKm < c.distanceKm) {
		c.mmsi, c.score, c.distanceKm, c.found = mmsi, score, distanceKm, true
	}
}

// ResponsibleVessel returns the MMSI of the vessel judged most likely to
// have caused the bridge's current closure, or nil.
func ResponsibleVessel(bridgeCoords models.Coordinates, status models.Status, vessels []models.Record) *int {
	switch status {
	case models.StatusClosingSoon:
		return scoreClosingSoon(bridgeCoords, vessels)
	case models.StatusClosed, models.StatusClosing:
		return scoreClosed(bridgeCoords, vessels)
	default:
		return nil
	}
}

func scoreClosingSoon(bridgeCoords models.Coordinates, vessels []models.Record) *int {
	var best candidate
	for _, v := range vessels {
		distanceKm := geo.HaversineKm(bridgeCoords.Lat, bridgeCoords.Lng, v.Position.Lat, v.Position.Lon)
		if distanceKm > maxDistanceClosingSoonKm {
			continue
		}
		base := baseScore(distanceKm)
		m := closingSoonMultiplier(bridgeCoords, v, distanceKm)
		best.consider(v.MMSI, base*m, distanceKm)
	}
	if !best.found || best.score < minScoreClosingSoon {
		return nil
	}
	return &best.mmsi
}

func scoreClosed(bridgeCoords models.Coordinates, vessels []models.Record) *int {
	var best candidate
	for _, v := range vessels {
		if v.SpeedKnots < closedMovingSpeedKn {
			continue
		}
		distanceKm := geo.HaversineKm(bridgeCoords.Lat, bridgeCoords.Lng, v.Position.Lat, v.Position.Lon)
		if distanceKm > maxDistanceClosedKm {
			continue
		}
		best.consider(v.MMSI, baseScore(distanceKm), distanceKm)
	}
	if !best.found || best.score < minScoreClosed {
		return nil
	}
	return &best.mmsi
}

func baseScore(distanceKm float64) float64 {
	score := 1.0 / (distanceKm + 0.1)
	if score > baseScoreCap {
		return baseScoreCap
	}
	return score
}

// headingState is the tri-state result of comparing a vessel's direction
// of travel to the bearing toward the bridge.
type headingState int

const (
	headingUnknown headingState = iota
	headingToward
	headingAway
)

func closingSoonMultiplier(bridgeCoords models.Coordinates, v models.Record, distanceKm float64) float64 {
	moving := v.SpeedKnots >= movingSpeedThresholdKn
	heading := headingRelativeToBridge(bridgeCoords, v, moving)

	if moving {
		switch heading {
		case headingToward:
			return 2.0 + speedBonus(v.SpeedKnots)
		case headingUnknown:
			return 1.0
		default: // headingAway
			if v.SpeedKnots >= movingAwaySpeedKn {
				return 0.0
			}
			return 0.1
		}
	}

	// stationary
	if distanceKm*1000 <= stationaryWaitingZoneM {
		switch heading {
		case headingToward:
			return 2.5
		case headingUnknown:
			return 0.1
		default:
			return 0.05
		}
	}
	switch heading {
	case headingToward:
		return 0.2
	case headingUnknown:
		return 0.05
	default:
		return 0.02
	}
}

func speedBonus(speedKnots float64) float64 {
	bonus := 0.0
	if speedKnots > 1 {
		bonus += 0.2
	}
	if speedKnots > 4 {
		bonus += 0.2
	}
	return bonus
}

// headingRelativeToBridge classifies a vessel's course (if moving) or
// heading (if stationary) against the great-circle bearing to the
// bridge (spec.md §4.6: "toward iff angular difference ≤ 60°").
func headingRelativeToBridge(bridgeCoords models.Coordinates, v models.Record, moving bool) headingState {
	var direction *float64
	if moving {
		direction = v.Course
		if direction == nil {
			direction = v.Heading
		}
	} else {
		direction = v.Heading
	}
	if direction == nil {
		return headingUnknown
	}

	bearing := geo.BearingDegrees(v.Position.Lat, v.Position.Lon, bridgeCoords.Lat, bridgeCoords.Lng)
	if geo.IsToward(*direction, bearing, headingToleranceDeg) {
		return headingToward
	}
	return headingAway
}
