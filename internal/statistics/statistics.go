// Package statistics computes a bridge's Statistics block from its
// closure history (spec.md §4.7), grounded in
// _examples/original_source/stats_calculator.py.
package statistics

import (
	"math"
	"sort"

	"seawaywatch/internal/domain/models"
)

// Compute derives averages, confidence intervals, and the duration
// histogram from a bridge's history. Only entries that have closed
// (non-nil EndTime/Duration) and whose status is closure-like or
// closing-soon-like are counted; other entries are ignored. The input
// need not be sorted or pre-capped — Compute re-sorts newest-first and
// applies the 300-entry cap itself, so it is idempotent regardless of
// caller ordering.
func Compute(history []models.HistoryEntry) models.Statistics {
	sorted := append([]models.HistoryEntry(nil), history...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartTime.After(sorted[j].StartTime) })
	if len(sorted) > models.MaxHistoryEntries {
		sorted = sorted[:models.MaxHistoryEntries]
	}

	var closureMinutes, raisingSoonMinutes []float64
	buckets := models.DurationBuckets{}
	totalEntries := 0

	for _, entry := range sorted {
		if entry.Duration == nil {
			continue
		}
		minutes := *entry.Duration / 60.0

		switch {
		case models.ClosureLikeStatuses[entry.Status]:
			closureMinutes = append(closureMinutes, minutes)
			bucketDuration(&buckets, minutes)
			totalEntries++
		case models.ClosingSoonLikeStatuses[entry.Status]:
			raisingSoonMinutes = append(raisingSoonMinutes, minutes)
			totalEntries++
		}
	}

	stats := models.Statistics{ClosureDurations: buckets, TotalEntries: totalEntries}
	stats.AverageClosureDuration, stats.ClosureCI = averageAndCI(closureMinutes)
	stats.AverageRaisingSoon, stats.RaisingSoonCI = averageAndCI(raisingSoonMinutes)
	return stats
}

// bucketDuration classifies a closure duration in minutes into the fixed
// histogram buckets with boundaries (0,9] / (9,15] / (15,30] / (30,60] /
// (60,∞) (spec.md §4.7 step 2, REDESIGN FLAGS bucket-edge note: exact
// boundary values fall into the lower bucket).
func bucketDuration(b *models.DurationBuckets, minutes float64) {
	switch {
	case minutes <= 9:
		b.Under9m++
	case minutes <= 15:
		b.M10To15++
	case minutes <= 30:
		b.M16To30++
	case minutes <= 60:
		b.M31To60++
	default:
		b.Over60m++
	}
}

func averageAndCI(values []float64) (*int, *models.IntWindow) {
	if len(values) == 0 {
		return nil, nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	avg := sum / float64(len(values))
	rounded := int(math.Round(avg))

	if len(values) < 2 {
		return &rounded, nil
	}

	variance := 0.0
	for _, v := range values {
		variance += (v - avg) * (v - avg)
	}
	variance /= float64(len(values) - 1) // Bessel's correction
	stdDev := math.Sqrt(variance)
	margin := 1.96 * (stdDev / math.Sqrt(float64(len(values))))

	lower := int(math.Floor(math.Max(0, avg-margin)))
	upper := int(math.Ceil(avg + margin))
	return &rounded, &models.IntWindow{Lower: lower, Upper: upper}
}
