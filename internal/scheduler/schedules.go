package scheduler

import "time"

// DayNightSchedule fires every dayInterval during [06:00,22:00) and every
// nightInterval otherwise, per spec.md §4.1's bridge-scrape cadence table.
// now must already carry the configured regional zone (RealClock.Now does
// this) so the 06:00/22:00 boundaries are evaluated in local wall-clock
// time, not UTC.
type DayNightSchedule struct {
	DayInterval   time.Duration
	NightInterval time.Duration
}

func (d DayNightSchedule) Next(now time.Time) time.Time {
	interval := d.NightInterval
	hour := now.Hour()
	if hour >= 6 && hour < 22 {
		interval = d.DayInterval
	}
	return now.Add(interval)
}

// DailyAt fires once per day at the given local hour:minute.
type DailyAt struct {
	Hour, Minute int
}

func (d DailyAt) Next(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), d.Hour, d.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
