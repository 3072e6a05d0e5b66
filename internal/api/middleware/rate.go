package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig bounds how fast a single client IP may hit the API.
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
	// IdleTTL drops per-client buckets not seen for this long
	IdleTTL time.Duration
}

// DefaultRateLimitConfig matches the INGRESS_* defaults.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{RequestsPerSecond: 100, Burst: 200, IdleTTL: 10 * time.Minute}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// buckets holds one token bucket per client, swept lazily.
type buckets struct {
	cfg       RateLimitConfig
	mu        sync.Mutex
	byClient  map[string]*bucket
	lastSweep time.Time
}

func (b *buckets) allow(client string, now time.Time) bool {
	b.mu.Lock()
	if now.Sub(b.lastSweep) > b.cfg.IdleTTL {
		for key, bk := range b.byClient {
			if now.Sub(bk.lastSeen) > b.cfg.IdleTTL {
				delete(b.byClient, key)
			}
		}
		b.lastSweep = now
	}
	bk, ok := b.byClient[client]
	if !ok {
		bk = &bucket{limiter: rate.NewLimiter(rate.Limit(b.cfg.RequestsPerSecond), b.cfg.Burst)}
		b.byClient[client] = bk
	}
	bk.lastSeen = now
	b.mu.Unlock()

	return bk.limiter.AllowN(now, 1)
}

// RateLimit rejects clients that exceed their bucket with 429.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultRateLimitConfig().IdleTTL
	}
	b := &buckets{cfg: cfg, byClient: make(map[string]*bucket), lastSweep: time.Now()}

	return func(c *gin.Context) {
		if !b.allow(c.ClientIP(), time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
