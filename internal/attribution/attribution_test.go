package attribution

import (
	"testing"

	"seawaywatch/internal/domain/models"
)

func TestResponsibleVesselClosedPicksNearestMovingVessel(t *testing.T) {
	bridge := models.Coordinates{Lat: 43.0, Lng: -79.2}
	near := course(0.0)
	far := course(0.0)
	vessels := []models.Record{
		{MMSI: 1, Position: models.Position{Lat: 43.001, Lon: -79.2}, SpeedKnots: 5.0, Course: near},
		{MMSI: 2, Position: models.Position{Lat: 43.02, Lon: -79.2}, SpeedKnots: 5.0, Course: far},
	}

	mmsi := ResponsibleVessel(bridge, models.StatusClosed, vessels)
	if mmsi == nil || *mmsi != 1 {
		t.Fatalf("expected nearest moving vessel (1), got %v", mmsi)
	}
}

func TestResponsibleVesselClosedIgnoresStationaryVessels(t *testing.T) {
	bridge := models.Coordinates{Lat: 43.0, Lng: -79.2}
	vessels := []models.Record{
		{MMSI: 1, Position: models.Position{Lat: 43.001, Lon: -79.2}, SpeedKnots: 0.0},
	}

	mmsi := ResponsibleVessel(bridge, models.StatusClosed, vessels)
	if mmsi != nil {
		t.Fatalf("expected nil for stationary vessel under Closed, got %v", *mmsi)
	}
}

func TestResponsibleVesselClosingSoonStationaryWaitingScoresHigh(t *testing.T) {
	bridge := models.Coordinates{Lat: 43.0, Lng: -79.2}
	towardBearing := 180.0 // roughly bearing from vessel (north of bridge) to bridge is south
	vessels := []models.Record{
		{MMSI: 7, Position: models.Position{Lat: 43.002, Lon: -79.2}, SpeedKnots: 0.0, Heading: course(towardBearing)},
	}

	mmsi := ResponsibleVessel(bridge, models.StatusClosingSoon, vessels)
	if mmsi == nil || *mmsi != 7 {
		t.Fatalf("expected stationary waiting vessel (7), got %v", mmsi)
	}
}

func TestResponsibleVesselReturnsNilForOpenStatus(t *testing.T) {
	bridge := models.Coordinates{Lat: 43.0, Lng: -79.2}
	vessels := []models.Record{{MMSI: 1, Position: models.Position{Lat: 43.001, Lon: -79.2}, SpeedKnots: 5.0}}

	if mmsi := ResponsibleVessel(bridge, models.StatusOpen, vessels); mmsi != nil {
		t.Fatalf("expected nil for Open status, got %v", *mmsi)
	}
}

func course(v float64) *float64 { return &v }
