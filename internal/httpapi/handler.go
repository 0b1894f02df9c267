// Package httpapi is the thin read-only HTTP surface over the scraper's
// snapshot and the vessel registry (spec.md §4.9), grounded on the
// teacher's Echo-handler style in internal/handler/api/signals_echo.go.
package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"seawaywatch/internal/domain/models"
	"seawaywatch/internal/domain/repository"
	"seawaywatch/internal/vessel"
	"seawaywatch/pkg/cache"
	xhttp "seawaywatch/pkg/http"
	"seawaywatch/pkg/logger"
)

// BridgeSource is the subset of the scraper's surface the HTTP API reads.
type BridgeSource interface {
	Snapshot() *models.Snapshot
	LastScrape() *time.Time
	LastScrapeHadChanges() bool
	LastChangeAt() *time.Time
	StatisticsLastUpdated() *time.Time
	BridgesCount() int
}

// VesselSource supplies the current vessel registry contents.
type VesselSource interface {
	Snapshot() []models.Record
}

// ClientCounter reports how many WebSocket clients are connected.
type ClientCounter interface {
	ClientCount() int
}

// WSUpgrader upgrades a request to the fanout WebSocket protocol.
type WSUpgrader interface {
	ServeWS(c echo.Context) error
}

// Handler implements pkg/http.Handler, registering every route named in
// spec.md §4.9: /bridges, /bridges/{id}, /boats, /health, /ws, plus the
// /metrics endpoint already registered by pkg/http.Server itself.
type Handler struct {
	bridges BridgeSource
	vessels VesselSource
	clients ClientCounter
	ws      WSUpgrader
	clock   repository.Clock
	loc     *time.Location
	limiter *RateLimiter
	cache   *ResponseCache
	log     *logger.Logger
}

// New builds an httpapi.Handler. cache may be nil to disable response
// memoization entirely.
func New(bridges BridgeSource, vessels VesselSource, clients ClientCounter, ws WSUpgrader, clock repository.Clock, loc *time.Location, limiter *RateLimiter, cache *ResponseCache, log *logger.Logger) *Handler {
	return &Handler{
		bridges: bridges,
		vessels: vessels,
		clients: clients,
		ws:      ws,
		clock:   clock,
		loc:     loc,
		limiter: limiter,
		cache:   cache,
		log:     log,
	}
}

// RegisterRoutes wires every route onto e, matching pkg/http.Handler.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/bridges", h.Bridges, h.limiter.Data())
	e.GET("/bridges/:id", h.BridgeByID, h.limiter.Data())
	e.GET("/boats", h.Boats, h.limiter.Data())
	e.GET("/health", h.Health, h.limiter.Static())
	e.GET("/ws", h.ws.ServeWS)
}

// Bridges serves the full snapshot (spec.md §6 Snapshot JSON).
func (h *Handler) Bridges(c echo.Context) error {
	body, err := h.cache.marshalCached(c.Request().Context(), cache.GenerateKey("response", "bridges"), h.bridges.Snapshot())
	if err != nil {
		return err
	}
	setDataCacheControl(c)
	return c.JSONBlob(http.StatusOK, body)
}

// BridgeByID serves one bridge's static+live record, or 404 if the id is
// not in the snapshot (spec.md §4.9: "/bridges/{id} returns one bridge or
// 404").
func (h *Handler) BridgeByID(c echo.Context) error {
	id := c.Param("id")
	snap := h.bridges.Snapshot()
	bridge, ok := snap.Bridges[id]
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("bridge %q not found", id))
	}
	setDataCacheControl(c)
	return c.JSON(http.StatusOK, bridge)
}

// Boats serves the current vessels payload (spec.md §6 Vessels JSON).
func (h *Handler) Boats(c echo.Context) error {
	body, err := h.cache.marshalCached(c.Request().Context(), cache.GenerateKey("response", "boats"), vessel.BuildResponse(h.vessels.Snapshot(), h.clock.Now()))
	if err != nil {
		return err
	}
	setDataCacheControl(c)
	return c.JSONBlob(http.StatusOK, body)
}

// setDataCacheControl caps cache lifetime at 10s for data endpoints
// (spec.md §4.9: "Responses carry short Cache-Control max-ages (<=10s for
// data)").
func setDataCacheControl(c echo.Context) {
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=10")
}
