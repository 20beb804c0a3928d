package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig defines the configuration for rate limiting
type RateLimitConfig struct {
	// Requests is the maximum number of requests allowed within the window
	Requests int
	// Window is the time window for rate limiting
	Window time.Duration
	// KeyFunc is a function that returns a unique key for rate limiting (defaults to IP)
	KeyFunc func(c echo.Context) string
	// MessageKey is the i18n key of the error returned when the limit is exceeded
	MessageKey string
}

// rateLimitEntry tracks request count and window expiration
type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

// RateLimiter is a fixed window limiter keyed per client
type RateLimiter struct {
	config RateLimitConfig
	store  map[string]*rateLimitEntry
	mu     sync.Mutex
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter with the given configuration
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c echo.Context) string {
			return c.RealIP()
		}
	}
	if config.MessageKey == "" {
		config.MessageKey = "errors.error_rate_limited"
	}

	rl := &RateLimiter{
		config: config,
		store:  make(map[string]*rateLimitEntry),
		now:    time.Now,
	}

	go rl.cleanup()

	return rl
}

// Allow counts one request for key. When the window is full it returns the
// time left until the window resets.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	entry, exists := rl.store[key]
	if !exists || now.After(entry.expiresAt) {
		rl.store[key] = &rateLimitEntry{count: 1, expiresAt: now.Add(rl.config.Window)}
		return true, 0
	}

	if entry.count >= rl.config.Requests {
		return false, entry.expiresAt.Sub(now)
	}

	entry.count++
	return true, 0
}

// Middleware returns the rate limiting middleware
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, retryAfter := rl.Allow(rl.config.KeyFunc(c))
			if !ok {
				seconds := int((retryAfter + time.Second - 1) / time.Second)
				c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
				return echo.NewHTTPError(http.StatusTooManyRequests, rl.config.MessageKey)
			}
			return next(c)
		}
	}
}

// cleanup removes expired entries every minute
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	for range ticker.C {
		rl.sweep()
	}
}

func (rl *RateLimiter) sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for key, entry := range rl.store {
		if now.After(entry.expiresAt) {
			delete(rl.store, key)
			removed++
		}
	}
	return removed
}

// Pre-configured rate limiters for the public API

// OTPSendRateLimiter limits OTP sends to 5 per 10 minutes per IP
var OTPSendRateLimiter = NewRateLimiter(RateLimitConfig{
	Requests:   5,
	Window:     10 * time.Minute,
	MessageKey: "errors.error_rate_limited_otp",
})

// PublicFormRateLimiter limits public form submissions to 10 per minute per IP
var PublicFormRateLimiter = NewRateLimiter(RateLimitConfig{
	Requests: 10,
	Window:   1 * time.Minute,
})

// APIRateLimiter limits general API requests to 60 per minute per IP
var APIRateLimiter = NewRateLimiter(RateLimitConfig{
	Requests: 60,
	Window:   1 * time.Minute,
})

// AdminRateLimiter limits admin authentication attempts to 5 per minute per IP
var AdminRateLimiter = NewRateLimiter(RateLimitConfig{
	Requests: 5,
	Window:   1 * time.Minute,
})
