package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"seawaywatch/internal/domain/models"
)

// seawayWarnAfter/seawayDownAfter bound staleness of the scrape loop
// itself. The fastest configured cadence is tens of seconds (SPEC_FULL.md
// scheduler table), so a multi-minute grace period absorbs transient
// upstream failures without flapping (spec.md §7: "the /health 'seaway'
// indicator degrades after a grace period").
const (
	seawayWarnAfter = 2 * time.Minute
	seawayDownAfter = 10 * time.Minute
)

// navigationSeasonStartMonth/Day and navigationSeasonEndMonth bound the
// seasonal bridge-activity threshold (spec.md §6: "mid-March-November").
const (
	navigationSeasonStartMonth = time.March
	navigationSeasonStartDay   = 15
	navigationSeasonEndMonth   = time.November
)

// Health serves the liveness and freshness indicators (spec.md §6 Health
// JSON).
func (h *Handler) Health(c echo.Context) error {
	now := h.clock.Now()
	if h.loc != nil {
		now = now.In(h.loc)
	}

	lastScrape := h.bridges.LastScrape()
	seawayStatus, seawayMessage := seawayHealth(now, lastScrape)

	lastChange := h.bridges.LastChangeAt()
	bridgeActivity, bridgeMessage := bridgeActivityHealth(now, lastChange)

	overall := models.HealthOK
	if seawayStatus == models.HealthDown || bridgeActivity == models.HealthDown {
		overall = models.HealthDown
	} else if seawayStatus == models.HealthDegraded || bridgeActivity == models.HealthDegraded {
		overall = models.HealthDegraded
	}

	resp := models.Health{
		Status:                overall,
		StatusMessage:         statusMessage(overall),
		SeawayStatus:          seawayStatus,
		SeawayMessage:         seawayMessage,
		BridgeActivity:        bridgeActivity,
		BridgeActivityMessage: bridgeMessage,
		LastUpdated:           now,
		LastScrape:            lastScrape,
		LastScrapeHadChanges:  h.bridges.LastScrapeHadChanges(),
		StatisticsLastUpdated: h.bridges.StatisticsLastUpdated(),
		BridgesCount:          h.bridges.BridgesCount(),
		WebsocketClients:      h.clients.ClientCount(),
	}

	setDataCacheControl(c)
	status := http.StatusOK
	if overall == models.HealthDown {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, resp)
}

func seawayHealth(now time.Time, lastScrape *time.Time) (models.HealthStatus, string) {
	if lastScrape == nil {
		return models.HealthDown, "no scrape has completed yet"
	}
	age := now.Sub(*lastScrape)
	switch {
	case age > seawayDownAfter:
		return models.HealthDown, "scraper has not reported in over " + seawayDownAfter.String()
	case age > seawayWarnAfter:
		return models.HealthDegraded, "scraper is running behind schedule"
	default:
		return models.HealthOK, "scraper is current"
	}
}

func bridgeActivityHealth(now time.Time, lastChange *time.Time) (models.HealthStatus, string) {
	threshold := bridgeActivityThreshold(now)
	if lastChange == nil {
		return models.HealthOK, "no bridge changes observed yet"
	}
	age := now.Sub(*lastChange)
	if age > threshold {
		return models.HealthDegraded, "no bridge has changed status in over " + threshold.String()
	}
	return models.HealthOK, "bridge activity is within the expected window"
}

// bridgeActivityThreshold returns the seasonal staleness threshold: 24h
// during the navigation season (mid-March through November), 168h
// otherwise (spec.md §6).
func bridgeActivityThreshold(now time.Time) time.Duration {
	if inNavigationSeason(now) {
		return 24 * time.Hour
	}
	return 168 * time.Hour
}

func inNavigationSeason(now time.Time) bool {
	seasonStart := time.Date(now.Year(), navigationSeasonStartMonth, navigationSeasonStartDay, 0, 0, 0, 0, now.Location())
	seasonEnd := time.Date(now.Year(), navigationSeasonEndMonth+1, 1, 0, 0, 0, 0, now.Location())
	return !now.Before(seasonStart) && now.Before(seasonEnd)
}

func statusMessage(status models.HealthStatus) string {
	switch status {
	case models.HealthOK:
		return "ok"
	case models.HealthDegraded:
		return "degraded"
	default:
		return "down"
	}
}
