// Package prediction computes a bridge's predicted next status-change
// window, a pure function of its current status, statistics, and
// upcoming closures (spec.md §4.5).
package prediction

import (
	"time"

	"seawaywatch/internal/domain/models"
)

// defaultClosureCI and defaultRaisingSoonCI are used when a bridge has
// too little history for the Statistics Engine to have computed a CI
// (spec.md §4.5).
var (
	defaultClosureCI     = models.IntWindow{Lower: 15, Upper: 20}
	defaultRaisingSoonCI = models.IntWindow{Lower: 3, Upper: 8}
)

// Predict returns the predicted next status-change window, or nil if no
// prediction applies or the window has already been exhausted ("longer
// than usual").
func Predict(status models.Status, lastUpdated time.Time, stats models.Statistics, upcoming []models.Closure, now time.Time) *models.Window {
	switch status {
	case models.StatusClosed, models.StatusConstruction:
		return predictClosedOrConstruction(status, lastUpdated, stats, upcoming, now)
	case models.StatusClosingSoon:
		return predictClosingSoon(lastUpdated, stats, upcoming, now)
	default:
		return nil
	}
}

func predictClosedOrConstruction(status models.Status, lastUpdated time.Time, stats models.Statistics, upcoming []models.Closure, now time.Time) *models.Window {
	elapsed := now.Sub(lastUpdated).Minutes()
	ci := defaultClosureCI
	if stats.ClosureCI != nil {
		ci = *stats.ClosureCI
	}

	for _, c := range upcoming {
		if c.Type != models.ClosureConstruction {
			continue
		}
		if c.EndTime != nil && c.EndTime.After(now) && !c.Time.After(now) {
			return &models.Window{Lower: *c.EndTime, Upper: *c.EndTime}
		}
	}

	if status == models.StatusConstruction {
		return nil
	}

	if len(upcoming) > 0 {
		first := upcoming[0]
		if models.ActiveBoatClosureTypes[first.Type] && !first.Time.After(now) {
			if first.ExpectedDurationMinutes != nil {
				e := float64(*first.ExpectedDurationMinutes)
				lower := (e+float64(ci.Lower))/2 - elapsed
				upper := (e+float64(ci.Upper))/2 - elapsed
				return windowOrNil(lower, upper, now)
			}
		}
	}

	lower := float64(ci.Lower) - elapsed
	upper := float64(ci.Upper) - elapsed
	return windowOrNil(lower, upper, now)
}

func predictClosingSoon(lastUpdated time.Time, stats models.Statistics, upcoming []models.Closure, now time.Time) *models.Window {
	if len(upcoming) > 0 {
		closureTime := upcoming[0].Time
		if !closureTime.After(now) {
			return nil // was expected at; client shows the literal past time
		}
		if closureTime.Sub(now) < time.Hour {
			return nil // client uses closure.time directly
		}
	}

	elapsed := now.Sub(lastUpdated).Minutes()
	ci := defaultRaisingSoonCI
	if stats.RaisingSoonCI != nil {
		ci = *stats.RaisingSoonCI
	}

	lower := float64(ci.Lower) - elapsed
	upper := float64(ci.Upper) - elapsed
	return windowOrNil(lower, upper, now)
}

func windowOrNil(lowerMinutes, upperMinutes float64, now time.Time) *models.Window {
	if lowerMinutes <= 0 && upperMinutes <= 0 {
		return nil
	}
	if lowerMinutes < 0 {
		lowerMinutes = 0
	}
	if upperMinutes < 0 {
		upperMinutes = 0
	}
	return &models.Window{
		Lower: now.Add(time.Duration(lowerMinutes * float64(time.Minute))),
		Upper: now.Add(time.Duration(upperMinutes * float64(time.Minute))),
	}
}
