package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newLimiterForTest(window time.Duration, max int) (*RateLimiter, *time.Time) {
	now := time.Now()
	rl := &RateLimiter{
		clients: make(map[string]*clientWindow),
		window:  window,
		max:     max,
	}
	rl.now = func() time.Time { return now }
	return rl, &now
}

func doRequest(rl *RateLimiter, ip string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := rl.Middleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	_ = handler(c)
	return rec
}

func TestRateLimiter_AllowsUpToMax(t *testing.T) {
	rl, _ := newLimiterForTest(time.Minute, 3)

	for i := 0; i < 3; i++ {
		rec := doRequest(rl, "10.0.0.1")
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(rl, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"message":"Too many requests, please try again later"}`, rec.Body.String())
}

func TestRateLimiter_PerClientWindows(t *testing.T) {
	rl, _ := newLimiterForTest(time.Minute, 1)

	assert.Equal(t, http.StatusOK, doRequest(rl, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(rl, "10.0.0.1").Code)

	// A different client has its own counter.
	assert.Equal(t, http.StatusOK, doRequest(rl, "10.0.0.2").Code)
}

func TestRateLimiter_WindowReset(t *testing.T) {
	rl, now := newLimiterForTest(time.Minute, 1)

	assert.Equal(t, http.StatusOK, doRequest(rl, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(rl, "10.0.0.1").Code)

	*now = now.Add(time.Minute)

	assert.Equal(t, http.StatusOK, doRequest(rl, "10.0.0.1").Code, "counter resets at the window boundary")
}
