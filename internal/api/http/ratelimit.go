package http

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	apperrors "github.com/spec-kit/staff-directory/pkg/util"
)

const (
	rateLimitMessage = "Rate limit exceeded. Please try again later."
	limiterIdleTTL   = 5 * time.Minute
)

// RateLimiter hands out a token bucket per client IP.
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	limit     rate.Limit
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewRateLimiter allows perMinute requests per IP, refilled continuously.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1000
	}
	if burst <= 0 {
		burst = perMinute
	}
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   burst,
		now:     time.Now,
	}
}

// Allow reports whether ip may make another request now.
func (l *RateLimiter) Allow(ip string) bool {
	if ip == "" {
		ip = "unknown"
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

func (l *RateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < time.Minute {
		return
	}
	l.lastSweep = now
	for ip, b := range l.buckets {
		if now.Sub(b.seen) > limiterIdleTTL {
			delete(l.buckets, ip)
		}
	}
}

// Handler rejects over-limit requests with a GraphQL-shaped 429 body.
func (l *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if l.Allow(c.IP()) {
			return c.Next()
		}
		derr := apperrors.ToDomainError(apperrors.NewRateLimited(rateLimitMessage))
		return c.Status(derr.HTTPStatus).JSON(fiber.Map{
			"errors": []fiber.Map{{
				"message":    derr.Message,
				"extensions": derr.Extensions(),
			}},
		})
	}
}
