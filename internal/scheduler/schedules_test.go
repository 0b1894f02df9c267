package scheduler

import (
	"testing"
	"time"
)

func TestDayNightScheduleDayCadence(t *testing.T) {
	sched := DayNightSchedule{DayInterval: 20 * time.Second, NightInterval: 30 * time.Second}
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	got := sched.Next(now)
	if want := now.Add(20 * time.Second); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDayNightScheduleNightCadence(t *testing.T) {
	sched := DayNightSchedule{DayInterval: 20 * time.Second, NightInterval: 30 * time.Second}
	now := time.Date(2026, 7, 1, 23, 0, 0, 0, time.UTC)
	got := sched.Next(now)
	if want := now.Add(30 * time.Second); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDayNightScheduleBoundary(t *testing.T) {
	sched := DayNightSchedule{DayInterval: 20 * time.Second, NightInterval: 30 * time.Second}
	atSix := time.Date(2026, 7, 1, 6, 0, 0, 0, time.UTC)
	if got := sched.Next(atSix); !got.Equal(atSix.Add(20 * time.Second)) {
		t.Fatalf("06:00 should use day cadence, got %v", got)
	}
	beforeTen := time.Date(2026, 7, 1, 5, 59, 0, 0, time.UTC)
	if got := sched.Next(beforeTen); !got.Equal(beforeTen.Add(30 * time.Second)) {
		t.Fatalf("05:59 should use night cadence, got %v", got)
	}
}

func TestDailyAtRollsToNextDay(t *testing.T) {
	d := DailyAt{Hour: 3, Minute: 0}
	now := time.Date(2026, 7, 1, 4, 0, 0, 0, time.UTC)
	got := d.Next(now)
	want := time.Date(2026, 7, 2, 3, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDailyAtSameDayWhenBefore(t *testing.T) {
	d := DailyAt{Hour: 3, Minute: 0}
	now := time.Date(2026, 7, 1, 1, 0, 0, 0, time.UTC)
	got := d.Next(now)
	want := time.Date(2026, 7, 1, 3, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
