package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"intake/internal/logger"
	apperrors "intake/pkg/errors"
	"intake/pkg/logging"
	"intake/pkg/metrics"
)

// FixedWindowMiddleware guards a route with limiter. A limiter error admits
// the request.
func FixedWindowMiddleware(limiter Limiter, keyFunc KeyFunc, log logger.Logger, clock Clock) gin.HandlerFunc {
	if clock == nil {
		clock = time.Now
	}

	return func(c *gin.Context) {
		key := keyFunc(c.Request)
		c.Request = c.Request.WithContext(logging.WithClientID(c.Request.Context(), key))

		decision, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			metrics.IncRateLimit("contact", "error")
			log.WarnwCtx(c.Request.Context(), "Rate limiter unavailable, admitting request",
				"error", err,
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining()))

		if !decision.Allowed {
			metrics.IncRateLimit("contact", "limited")
			c.Header("Retry-After", strconv.Itoa(decision.RetryAfter(clock())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apperrors.ToErrorResponse(apperrors.ErrRateLimited))
			return
		}

		metrics.IncRateLimit("contact", "allowed")
		c.Next()
	}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	mu       sync.Mutex
}

type TokenBucketConfig struct {
	RPS             float64
	Burst           int
	CleanupInterval time.Duration
	MaxAge          time.Duration
}

func DefaultTokenBucketConfig() TokenBucketConfig {
	return TokenBucketConfig{
		RPS:             5.0,
		Burst:           10,
		CleanupInterval: 5 * time.Minute,
		MaxAge:          10 * time.Minute,
	}
}

// TokenBucketMiddleware limits each client IP with its own x/time/rate bucket.
// Idle buckets are swept every CleanupInterval until done is closed.
func TokenBucketMiddleware(config TokenBucketConfig, done <-chan struct{}) gin.HandlerFunc {
	defaults := DefaultTokenBucketConfig()
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = defaults.CleanupInterval
	}
	if config.MaxAge <= 0 {
		config.MaxAge = defaults.MaxAge
	}

	buckets := make(map[string]*bucket)
	var mu sync.RWMutex

	go func() {
		ticker := time.NewTicker(config.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
			}

			mu.Lock()
			now := time.Now()
			for ip, b := range buckets {
				b.mu.Lock()
				lastSeen := b.lastSeen
				b.mu.Unlock()
				if now.Sub(lastSeen) > config.MaxAge {
					delete(buckets, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if clientIP == "" {
			clientIP = c.RemoteIP()
		}

		mu.RLock()
		b, exists := buckets[clientIP]
		mu.RUnlock()

		if !exists {
			mu.Lock()
			b, exists = buckets[clientIP]
			if !exists {
				b = &bucket{
					limiter:  rate.NewLimiter(rate.Limit(config.RPS), config.Burst),
					lastSeen: time.Now(),
				}
				buckets[clientIP] = b
			}
			mu.Unlock()
		}

		b.mu.Lock()
		b.lastSeen = time.Now()
		b.mu.Unlock()

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Burst))

		if !b.limiter.Allow() {
			metrics.IncRateLimit("admin", "limited")
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apperrors.ToErrorResponse(apperrors.ErrRateLimited))
			return
		}

		metrics.IncRateLimit("admin", "allowed")
		remaining := int(b.limiter.Tokens())
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		c.Next()
	}
}
