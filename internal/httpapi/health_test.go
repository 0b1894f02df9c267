package httpapi

import (
	"testing"
	"time"
)

func TestInNavigationSeasonBoundaries(t *testing.T) {
	cases := []struct {
		name string
		date time.Time
		want bool
	}{
		{"early march is off season", time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), false},
		{"mid march start is in season", time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC), true},
		{"july is in season", time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC), true},
		{"november end is in season", time.Date(2026, time.November, 30, 23, 59, 0, 0, time.UTC), true},
		{"december is off season", time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		if got := inNavigationSeason(tc.date); got != tc.want {
			t.Errorf("%s: inNavigationSeason(%v) = %v, want %v", tc.name, tc.date, got, tc.want)
		}
	}
}

func TestBridgeActivityThresholdIsSeasonal(t *testing.T) {
	summer := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	winter := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	if got := bridgeActivityThreshold(summer); got != 24*time.Hour {
		t.Fatalf("expected 24h threshold in season, got %v", got)
	}
	if got := bridgeActivityThreshold(winter); got != 168*time.Hour {
		t.Fatalf("expected 168h threshold off season, got %v", got)
	}
}

func TestSeawayHealthDegradesAfterGracePeriod(t *testing.T) {
	now := time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC)
	fresh := now.Add(-30 * time.Second)
	if status, _ := seawayHealth(now, &fresh); status != "ok" {
		t.Fatalf("expected ok for a fresh scrape, got %v", status)
	}
	stale := now.Add(-5 * time.Minute)
	if status, _ := seawayHealth(now, &stale); status != "degraded" {
		t.Fatalf("expected degraded past the warn threshold, got %v", status)
	}
	veryStale := now.Add(-20 * time.Minute)
	if status, _ := seawayHealth(now, &veryStale); status != "down" {
		t.Fatalf("expected down past the down threshold, got %v", status)
	}
	if status, _ := seawayHealth(now, nil); status != "down" {
		t.Fatalf("expected down with no scrape ever recorded, got %v", status)
	}
}

func TestBridgeActivityHealthUsesSeasonalThreshold(t *testing.T) {
	summer := time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC)
	recent := summer.Add(-23 * time.Hour)
	if status, _ := bridgeActivityHealth(summer, &recent); status != "ok" {
		t.Fatalf("expected ok within the 24h in-season window, got %v", status)
	}
	stale := summer.Add(-25 * time.Hour)
	if status, _ := bridgeActivityHealth(summer, &stale); status != "degraded" {
		t.Fatalf("expected degraded beyond the 24h in-season window, got %v", status)
	}

	winter := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)
	staleButWithinWinterWindow := winter.Add(-25 * time.Hour)
	if status, _ := bridgeActivityHealth(winter, &staleButWithinWinterWindow); status != "ok" {
		t.Fatalf("expected ok within the 168h off-season window, got %v", status)
	}
}
