package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var daily = Rule{Prefix: "forgot", Limit: 1, Window: 24 * time.Hour}

func TestMemoryCounter(t *testing.T) {
	c := NewMemoryCounter(daily)
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	ok, _, err := c.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(time.Hour)
	ok, retry, err := c.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 23*time.Hour, retry)

	ok, _, _ = c.Allow(ctx, "5.6.7.8")
	assert.True(t, ok, "limits are per key")

	now = now.Add(23 * time.Hour)
	ok, _, _ = c.Allow(ctx, "1.2.3.4")
	assert.True(t, ok, "a new window starts")
}

func TestRedisCounter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	c := NewRedisCounter(client, daily)
	ctx := context.Background()

	ok, _, err := c.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 24*time.Hour, mr.TTL("ratelimit:forgot:1.2.3.4"))

	ok, retry, err := c.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 24*time.Hour, retry)

	mr.FastForward(24 * time.Hour)
	ok, _, err = c.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMiddleware(t *testing.T) {
	e := echo.New()
	limited := Middleware(NewMemoryCounter(daily), func(c echo.Context) string { return c.RealIP() },
		"You can only reset your password once every 24 hours.")
	e.POST("/forgot", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, limited)

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/forgot", nil)
		req.RemoteAddr = "10.1.1.1:5000"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}
	assert.Equal(t, http.StatusOK, do().Code)
	rec := do()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"message":"You can only reset your password once every 24 hours."}`, rec.Body.String())
	assert.Equal(t, "86400", rec.Header().Get("Retry-After"))
}
