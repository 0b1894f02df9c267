package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"seawaywatch/internal/domain/models"
)

type fakeClock struct{ now time.Time }

func (f fakeClock) Now() time.Time { return f.now }

type fakeBridges struct {
	snap                  *models.Snapshot
	lastScrape            *time.Time
	lastScrapeHadChanges  bool
	lastChangeAt          *time.Time
	statisticsLastUpdated *time.Time
}

func (f *fakeBridges) Snapshot() *models.Snapshot         { return f.snap }
func (f *fakeBridges) LastScrape() *time.Time             { return f.lastScrape }
func (f *fakeBridges) LastScrapeHadChanges() bool         { return f.lastScrapeHadChanges }
func (f *fakeBridges) LastChangeAt() *time.Time           { return f.lastChangeAt }
func (f *fakeBridges) StatisticsLastUpdated() *time.Time  { return f.statisticsLastUpdated }
func (f *fakeBridges) BridgesCount() int                  { return len(f.snap.Bridges) }

type fakeVessels struct{ records []models.Record }

func (f *fakeVessels) Snapshot() []models.Record { return f.records }

type fakeClients struct{ n int }

func (f *fakeClients) ClientCount() int { return f.n }

type fakeWS struct{}

func (fakeWS) ServeWS(c echo.Context) error { return nil }

func newTestHandler() (*Handler, *fakeBridges) {
	now := time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC)
	snap := &models.Snapshot{
		LastUpdated: now,
		AvailableBridges: []models.AvailableBridge{
			{ID: "bridge-1", Name: "Test Bridge", RegionShort: "sct", Region: "St. Catharines"},
		},
		Bridges: map[string]models.Bridge{
			"bridge-1": {
				Static: models.Static{ID: "bridge-1", Name: "Test Bridge", Region: "St. Catharines", RegionShort: "sct"},
				Live:   models.Live{Status: models.StatusOpen, LastUpdated: now},
			},
		},
	}
	fb := &fakeBridges{snap: snap, lastScrape: &now}
	limiter := NewRateLimiter(0, 0)
	h := New(fb, &fakeVessels{}, &fakeClients{}, fakeWS{}, fakeClock{now: now}, time.UTC, limiter, nil, nil)
	return h, fb
}

func TestBridgesServesSnapshot(t *testing.T) {
	h, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/bridges", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	if err := h.Bridges(c); err != nil {
		t.Fatalf("Bridges returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, ok := snap.Bridges["bridge-1"]; !ok {
		t.Fatal("expected bridge-1 in the served snapshot")
	}
}

func TestBridgeByIDReturns404ForUnknownID(t *testing.T) {
	h, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/bridges/nonexistent", nil)
	rec := httptest.NewRecorder()
	e := echo.New()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("nonexistent")

	if err := h.BridgeByID(c); err != nil {
		t.Fatalf("BridgeByID returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestBridgeByIDReturnsKnownBridge(t *testing.T) {
	h, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/bridges/bridge-1", nil)
	rec := httptest.NewRecorder()
	e := echo.New()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("bridge-1")

	if err := h.BridgeByID(c); err != nil {
		t.Fatalf("BridgeByID returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthReportsDownWithNoScrapeRecorded(t *testing.T) {
	h, fb := newTestHandler()
	fb.lastScrape = nil
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	if err := h.Health(c); err != nil {
		t.Fatalf("Health returned error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var resp models.Health
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != models.HealthDown {
		t.Fatalf("expected overall status down, got %v", resp.Status)
	}
}

func TestHealthReportsOKWithFreshScrape(t *testing.T) {
	h, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	if err := h.Health(c); err != nil {
		t.Fatalf("Health returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
