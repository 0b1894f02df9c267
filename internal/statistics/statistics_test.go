package statistics

import (
	"testing"
	"time"

	"seawaywatch/internal/domain/models"
)

func durationSeconds(minutes float64) *float64 {
	s := minutes * 60
	return &s
}

func TestComputeAveragesAndBucketsClosures(t *testing.T) {
	now := time.Now()
	history := []models.HistoryEntry{
		{ID: "1", StartTime: now.Add(-3 * time.Hour), Status: models.StatusClosed, Duration: durationSeconds(8)},
		{ID: "2", StartTime: now.Add(-2 * time.Hour), Status: models.StatusClosed, Duration: durationSeconds(20)},
		{ID: "3", StartTime: now.Add(-1 * time.Hour), Status: models.StatusOpen, Duration: durationSeconds(120)},
	}

	stats := Compute(history)

	if stats.AverageClosureDuration == nil || *stats.AverageClosureDuration != 14 {
		t.Fatalf("expected average 14, got %v", stats.AverageClosureDuration)
	}
	if stats.ClosureDurations.Under9m != 1 || stats.ClosureDurations.M16To30 != 1 {
		t.Fatalf("unexpected buckets: %+v", stats.ClosureDurations)
	}
	if stats.TotalEntries != 2 {
		t.Fatalf("expected total_entries=2 (Open entries excluded), got %d", stats.TotalEntries)
	}
	if stats.ClosureCI == nil {
		t.Fatalf("expected a CI with 2 samples")
	}
}

func TestComputeReturnsNilAverageWithNoClosures(t *testing.T) {
	stats := Compute(nil)
	if stats.AverageClosureDuration != nil || stats.ClosureCI != nil {
		t.Fatalf("expected nil average/CI for empty history")
	}
	if stats.TotalEntries != 0 {
		t.Fatalf("expected zero total_entries")
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	now := time.Now()
	history := []models.HistoryEntry{
		{ID: "1", StartTime: now.Add(-time.Hour), Status: models.StatusClosed, Duration: durationSeconds(12)},
		{ID: "2", StartTime: now.Add(-2 * time.Hour), Status: models.StatusClosed, Duration: durationSeconds(18)},
	}

	first := Compute(history)
	second := Compute(history)

	if *first.AverageClosureDuration != *second.AverageClosureDuration {
		t.Fatalf("expected idempotent averages")
	}
	if first.ClosureDurations != second.ClosureDurations {
		t.Fatalf("expected idempotent buckets")
	}
}

func TestComputeIgnoresOpenEntriesWithoutDuration(t *testing.T) {
	history := []models.HistoryEntry{
		{ID: "1", StartTime: time.Now(), Status: models.StatusClosed, Duration: nil},
	}
	stats := Compute(history)
	if stats.TotalEntries != 0 {
		t.Fatalf("expected open entry (nil duration) excluded, got total_entries=%d", stats.TotalEntries)
	}
}
