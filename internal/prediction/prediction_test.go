package prediction

import (
	"testing"
	"time"

	"seawaywatch/internal/domain/models"
)

func TestPredictBlendsBoatClosureWithStatistics(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	lastUpdated := now.Add(-5 * time.Minute)
	stats := models.Statistics{ClosureCI: &models.IntWindow{Lower: 8, Upper: 16}}
	fifteen := 15
	upcoming := []models.Closure{{
		Type:                    models.ClosureCommercialVessel,
		Time:                    now.Add(-5 * time.Minute),
		ExpectedDurationMinutes: &fifteen,
	}}

	window := Predict(models.StatusClosed, lastUpdated, stats, upcoming, now)
	if window == nil {
		t.Fatalf("expected a prediction window")
	}

	wantLower := now.Add(6*time.Minute + 30*time.Second)
	wantUpper := now.Add(10*time.Minute + 30*time.Second)
	if !window.Lower.Equal(wantLower) {
		t.Fatalf("lower: got %v want %v", window.Lower, wantLower)
	}
	if !window.Upper.Equal(wantUpper) {
		t.Fatalf("upper: got %v want %v", window.Upper, wantUpper)
	}
}

func TestPredictExhaustsToNilWhenElapsedExceedsCI(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	lastUpdated := now.Add(-30 * time.Minute)
	stats := models.Statistics{ClosureCI: &models.IntWindow{Lower: 8, Upper: 16}}

	window := Predict(models.StatusClosed, lastUpdated, stats, nil, now)
	if window != nil {
		t.Fatalf("expected nil prediction (longer than usual), got %+v", window)
	}
}

func TestPredictClosingSoonWithinOneHourReturnsNil(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	upcoming := []models.Closure{{Type: models.ClosureNextArrival, Time: now.Add(30 * time.Minute)}}

	window := Predict(models.StatusClosingSoon, now.Add(-2*time.Minute), models.Statistics{}, upcoming, now)
	if window != nil {
		t.Fatalf("expected nil, client shows literal closure time")
	}
}

func TestPredictConstructionWithKnownEndTime(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	end := now.Add(45 * time.Minute)
	upcoming := []models.Closure{{
		Type:    models.ClosureConstruction,
		Time:    now.Add(-10 * time.Minute),
		EndTime: &end,
	}}

	window := Predict(models.StatusConstruction, now.Add(-10*time.Minute), models.Statistics{}, upcoming, now)
	if window == nil || !window.Lower.Equal(end) || !window.Upper.Equal(end) {
		t.Fatalf("expected window pinned to end_time, got %+v", window)
	}
}

func TestPredictConstructionWithoutEndTimeIsNil(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	window := Predict(models.StatusConstruction, now.Add(-10*time.Minute), models.Statistics{}, nil, now)
	if window != nil {
		t.Fatalf("expected nil, got %+v", window)
	}
}
