package scraper

import (
	"strings"

	"seawaywatch/internal/domain/models"
)

// normalizeStatus maps a raw upstream status string to the closed set of
// normalized statuses (spec.md §4.4 status table), grounded in
// _examples/original_source/scraper.py's interpret_bridge_status.
func normalizeStatus(raw string) models.Status {
	lower := strings.ToLower(raw)

	if strings.Contains(lower, "data unavailable") {
		return models.StatusUnknown
	}

	available := strings.Contains(lower, "available") && !strings.Contains(lower, "unavailable")
	if available {
		if strings.Contains(lower, "raising soon") {
			return models.StatusClosingSoon
		}
		return models.StatusOpen
	}
	if strings.Contains(lower, "unavailable") {
		switch {
		case strings.Contains(lower, "lowering"):
			return models.StatusOpening
		case strings.Contains(lower, "raising"):
			return models.StatusClosing
		case strings.Contains(lower, "work in progress"):
			return models.StatusConstruction
		default:
			return models.StatusClosed
		}
	}
	return models.StatusUnknown
}
