package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/velo-register/internal/presentation/http/dto/response"
	"golang.org/x/time/rate"
)

// OperatorRateLimiter limits requests per operator so one stuck scanner
// cannot flood the back office
type OperatorRateLimiter struct {
	limiters map[int64]*rateLimiterEntry
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	entryTTL time.Duration
	now      func() time.Time
}

type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterConfig holds configuration for the rate limiter
type RateLimiterConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	EntryTTL          time.Duration
}

// RateLimiterConfigFrom spreads requests over window seconds, allowing the
// whole budget as a burst
func RateLimiterConfigFrom(requests, windowSeconds int) RateLimiterConfig {
	if requests < 1 {
		requests = 100
	}
	if windowSeconds < 1 {
		windowSeconds = 60
	}
	return RateLimiterConfig{
		RequestsPerSecond: float64(requests) / float64(windowSeconds),
		BurstSize:         requests,
		EntryTTL:          10 * time.Minute,
	}
}

// NewOperatorRateLimiter creates a new per-operator rate limiter
func NewOperatorRateLimiter(cfg RateLimiterConfig) *OperatorRateLimiter {
	return &OperatorRateLimiter{
		limiters: make(map[int64]*rateLimiterEntry),
		rate:     rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.BurstSize,
		entryTTL: cfg.EntryTTL,
		now:      time.Now,
	}
}

func (rl *OperatorRateLimiter) getLimiter(operatorID int64) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if entry, ok := rl.limiters[operatorID]; ok {
		entry.lastSeen = now
		return entry.limiter
	}
	limiter := rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters[operatorID] = &rateLimiterEntry{limiter: limiter, lastSeen: now}
	return limiter
}

// Run drops limiters of operators not seen for a while, until stop is closed
func (rl *OperatorRateLimiter) Run(stop <-chan struct{}, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *OperatorRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.entryTTL)
	for id, entry := range rl.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.limiters, id)
		}
	}
}

// Middleware applies the limit. It must run after AuthMiddleware.
func (rl *OperatorRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		operatorID, ok := operatorFrom(c)
		if !ok {
			c.Next()
			return
		}

		limiter := rl.getLimiter(operatorID)
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.burst))
		if !limiter.Allow() {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", "1")
			response.TooManyRequests(c, "Rate limit exceeded. Please try again later.")
			c.Abort()
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))

		c.Next()
	}
}

// Active returns how many operators currently hold a limiter
func (rl *OperatorRateLimiter) Active() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}
