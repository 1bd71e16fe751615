package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"cardealer/internal/errors"
)

// clientWindow tracks request counts for one client IP in the current window.
type clientWindow struct {
	count       int
	windowStart time.Time
}

// RateLimiter bounds request volume per client IP with a fixed window:
// at most max requests per window, counter reset at window boundaries.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	window  time.Duration
	max     int

	now func() time.Time // overridable in tests
}

// NewRateLimiter creates a fixed-window limiter.
func NewRateLimiter(window time.Duration, max int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientWindow),
		window:  window,
		max:     max,
		now:     time.Now,
	}
	go rl.cleanupLoop()
	return rl
}

// allow records one request for ip and reports whether it fits the window,
// along with the time remaining until the window resets.
func (rl *RateLimiter) allow(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients[ip]
	if !ok || now.Sub(w.windowStart) >= rl.window {
		w = &clientWindow{windowStart: now}
		rl.clients[ip] = w
	}

	w.count++
	remaining := rl.window - now.Sub(w.windowStart)
	return w.count <= rl.max, remaining
}

// cleanupLoop drops windows that have fully elapsed.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := rl.now()
		for ip, w := range rl.clients {
			if now.Sub(w.windowStart) >= rl.window {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// Middleware returns an Echo middleware enforcing the limit.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, remaining := rl.allow(c.RealIP())
			if !ok {
				retryAfter := int(remaining.Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return c.JSON(http.StatusTooManyRequests, errors.MessageResponse{
					Message: "Too many requests, please try again later",
				})
			}
			return next(c)
		}
	}
}
