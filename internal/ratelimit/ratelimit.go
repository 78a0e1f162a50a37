// Package ratelimit counts requests per key in fixed windows, in Redis when
// several instances share the limit and in memory otherwise.
package ratelimit

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

type Counter interface {
	// Allow records a hit for key and reports whether it is within the
	// limit. When it is not, retryAfter says when the window resets.
	Allow(ctx context.Context, key string) (ok bool, retryAfter time.Duration, err error)
}

type Rule struct {
	Prefix string
	Limit  int
	Window time.Duration
}

// RedisCounter keeps one INCR counter per key that expires with the window.
type RedisCounter struct {
	client *redis.Client
	rule   Rule
}

func NewRedisCounter(client *redis.Client, rule Rule) *RedisCounter {
	return &RedisCounter{client: client, rule: rule}
}

// NewRedisClient connects to a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func (c *RedisCounter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	k := "ratelimit:" + c.rule.Prefix + ":" + key
	n, err := c.client.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, err
	}
	if n == 1 {
		if err := c.client.Expire(ctx, k, c.rule.Window).Err(); err != nil {
			return false, 0, err
		}
	}
	if n <= int64(c.rule.Limit) {
		return true, 0, nil
	}
	ttl, err := c.client.TTL(ctx, k).Result()
	if err != nil {
		return false, 0, err
	}
	if ttl < 0 {
		// the expiry was lost; start a fresh window
		if err := c.client.Expire(ctx, k, c.rule.Window).Err(); err != nil {
			return false, 0, err
		}
		ttl = c.rule.Window
	}
	return false, ttl, nil
}

type window struct {
	start time.Time
	hits  int
}

// MemoryCounter is the single-process Counter.
type MemoryCounter struct {
	mu      sync.Mutex
	rule    Rule
	windows map[string]*window
	now     func() time.Time
}

func NewMemoryCounter(rule Rule) *MemoryCounter {
	return &MemoryCounter{rule: rule, windows: map[string]*window{}, now: time.Now}
}

func (c *MemoryCounter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, w := range c.windows {
		if now.Sub(w.start) >= c.rule.Window {
			delete(c.windows, k)
		}
	}
	w, ok := c.windows[key]
	if !ok {
		w = &window{start: now}
		c.windows[key] = w
	}
	w.hits++
	if w.hits <= c.rule.Limit {
		return true, 0, nil
	}
	return false, w.start.Add(c.rule.Window).Sub(now), nil
}

// New returns a Redis-backed counter when client is set.
func New(client *redis.Client, rule Rule) Counter {
	if client != nil {
		return NewRedisCounter(client, rule)
	}
	return NewMemoryCounter(rule)
}

// Middleware rejects requests over the limit with 429 and message. Keys come
// from keyFunc, typically the client IP. Counter failures let the request
// through.
func Middleware(c Counter, keyFunc func(echo.Context) string, message string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ok, retry, err := c.Allow(ctx.Request().Context(), keyFunc(ctx))
			if err != nil {
				log.Printf("rate limit store error: %v", err)
				return next(ctx)
			}
			if !ok {
				if secs := int(retry.Round(time.Second).Seconds()); secs > 0 {
					ctx.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				}
				return ctx.JSON(http.StatusTooManyRequests, map[string]string{"message": message})
			}
			return next(ctx)
		}
	}
}
