package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestSourceIPPrefersRightmostForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/bridges", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.1, 10.0.0.2, 10.0.0.3")
	req.RemoteAddr = "10.0.0.3:54321"
	if got := sourceIP(req); got != "10.0.0.3" {
		t.Fatalf("expected the right-most entry, got %q", got)
	}
}

func TestSourceIPFallsBackToRemoteAddr(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/bridges", nil)
	req.RemoteAddr = "192.0.2.5:1234"
	if got := sourceIP(req); got != "192.0.2.5" {
		t.Fatalf("expected remote addr host, got %q", got)
	}
}

func TestRateLimiterTripsAfterCapExceeded(t *testing.T) {
	rl := NewRateLimiter(2, 0)
	e := echo.New()
	mw := rl.Data()
	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/bridges", nil)
		req.RemoteAddr = "198.51.100.9:1111"
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := handler(c); err != nil {
			t.Fatalf("request %d returned error: %v", i, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d expected 200, got %d", i, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/bridges", nil)
	req.RemoteAddr = "198.51.100.9:1111"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := handler(c); err != nil {
		t.Fatalf("third request returned error: %v", err)
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after exceeding the cap, got %d", rec.Code)
	}
	if rec.Header().Get(echo.HeaderRetryAfter) == "" {
		t.Fatal("expected a Retry-After header on the 429 response")
	}
}

func TestRateLimiterDisabledWithZeroCap(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	e := echo.New()
	handler := rl.Data()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/bridges", nil)
		req.RemoteAddr = "198.51.100.9:1111"
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := handler(c); err != nil {
			t.Fatalf("request %d returned error: %v", i, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d expected 200 with limiting disabled, got %d", i, rec.Code)
		}
	}
}
