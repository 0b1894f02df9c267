package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"seawaywatch/internal/service/ratelimit"
	xhttp "seawaywatch/pkg/http"
)

// Default per-source-IP caps (spec.md §4.9: "documented default 60/min for
// data, 30/min for static").
const (
	DefaultDataPerMinute   = 60
	DefaultStaticPerMinute = 30
)

// rateLimitBackend is satisfied by both the in-memory token bucket and
// the Redis-backed fixed-window limiter, so RateLimiter's middleware
// doesn't care which one a deployment picked.
type rateLimitBackend interface {
	allow(ctx context.Context, key string, perMinute int) bool
}

// memoryBackend adapts the in-memory token bucket to rateLimitBackend.
type memoryBackend struct{ limiter *ratelimit.Limiter }

func (m memoryBackend) allow(_ context.Context, key string, perMinute int) bool {
	return m.limiter.Allow(key, float64(perMinute), float64(perMinute)/60)
}

// redisBackend adapts the Redis fixed-window limiter to rateLimitBackend,
// used when deployments run more than one HTTP process sharing a cap.
type redisBackend struct{ limiter *ratelimit.RedisLimiter }

func (r redisBackend) allow(ctx context.Context, key string, perMinute int) bool {
	ok, err := r.limiter.Allow(ctx, key, perMinute)
	if err != nil {
		// Fail open: a Redis outage should not take the API down with it.
		return true
	}
	return ok
}

// RateLimiter enforces per-source-IP request caps, with separate classes
// for "data" routes (/bridges, /boats) and "static" routes (/health).
type RateLimiter struct {
	backend         rateLimitBackend
	dataPerMinute   int
	staticPerMinute int
}

// NewRateLimiter builds an in-memory RateLimiter. A zero cap disables
// limiting for that class of route.
func NewRateLimiter(dataPerMinute, staticPerMinute int) *RateLimiter {
	return &RateLimiter{
		backend:         memoryBackend{limiter: ratelimit.New()},
		dataPerMinute:   dataPerMinute,
		staticPerMinute: staticPerMinute,
	}
}

// NewRedisRateLimiter builds a RateLimiter backed by a shared Redis
// instance (spec.md §6 "rate-limit caps", extended by SPEC_FULL.md to a
// distributed backend for multi-process deployments).
func NewRedisRateLimiter(redisAddr string, dataPerMinute, staticPerMinute int) *RateLimiter {
	return &RateLimiter{
		backend:         redisBackend{limiter: ratelimit.NewRedisLimiter(redisAddr)},
		dataPerMinute:   dataPerMinute,
		staticPerMinute: staticPerMinute,
	}
}

// Data returns the middleware guarding data routes.
func (r *RateLimiter) Data() echo.MiddlewareFunc {
	return r.middleware("data", r.dataPerMinute)
}

// Static returns the middleware guarding static/liveness routes.
func (r *RateLimiter) Static() echo.MiddlewareFunc {
	return r.middleware("static", r.staticPerMinute)
}

func (r *RateLimiter) middleware(class string, perMinute int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if perMinute <= 0 {
				return next(c)
			}
			key := class + ":" + sourceIP(c.Request())
			if !r.backend.allow(c.Request().Context(), key, perMinute) {
				c.Response().Header().Set(echo.HeaderRetryAfter, "1")
				return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "rate limit exceeded", http.StatusTooManyRequests))
			}
			return next(c)
		}
	}
}

// sourceIP takes the right-most entry of X-Forwarded-For when present
// (spec.md §4.9: "Rate limiting takes the right-most entry of any
// X-Forwarded-For header when a reverse proxy is present"), falling back
// to the direct remote address.
func sourceIP(req *http.Request) string {
	if xff := req.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		last := strings.TrimSpace(parts[len(parts)-1])
		if last != "" {
			return last
		}
	}
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}
