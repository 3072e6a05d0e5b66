package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

var ErrRateLimited = errors.New("rate limit exceeded")

// Mode selects what happens when no token is available
type Mode string

const (
	ModeQueue  Mode = "queue"
	ModeReject Mode = "reject"
)

// RetryStrategy shapes the delay between retries of a throttled call
type RetryStrategy string

const (
	RetryExponential RetryStrategy = "exponential"
	RetryLinear      RetryStrategy = "linear"
	RetryFixed       RetryStrategy = "fixed"
)

// Config defines the bucket and retry behaviour
type Config struct {
	RequestsPerMinute int
	Burst             int
	Mode              Mode
	RetryStrategy     RetryStrategy
	MaxRetries        int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
}

// DefaultConfig returns conservative limits for a shared control plane
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		Burst:             10,
		Mode:              ModeQueue,
		RetryStrategy:     RetryExponential,
		MaxRetries:        3,
		BaseDelay:         time.Second,
		MaxDelay:          30 * time.Second,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.RequestsPerMinute <= 0 {
		c.RequestsPerMinute = d.RequestsPerMinute
	}
	if c.Burst <= 0 {
		c.Burst = d.Burst
	}
	if c.Mode != ModeQueue && c.Mode != ModeReject {
		c.Mode = d.Mode
	}
	switch c.RetryStrategy {
	case RetryExponential, RetryLinear, RetryFixed:
	default:
		c.RetryStrategy = d.RetryStrategy
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = d.BaseDelay
	}
	if c.MaxDelay < c.BaseDelay {
		c.MaxDelay = c.BaseDelay
	}
	return c
}

// Stats is a snapshot of the bucket
type Stats struct {
	Tokens              float64 `json:"tokens"`
	Capacity            int     `json:"capacity"`
	RefillRatePerSecond float64 `json:"refillRatePerSecond"`
	QueuedRequests      int64   `json:"queuedRequests"`
	Mode                Mode    `json:"mode"`
	Allowed             uint64  `json:"allowed"`
	Rejected            uint64  `json:"rejected"`
	Throttled           uint64  `json:"throttled"`
	Retries             uint64  `json:"retries"`
}

// Limiter is safe for concurrent use
type Limiter struct {
	cfg Config

	mu      sync.Mutex
	limiter *rate.Limiter

	queued    atomic.Int64
	allowed   atomic.Uint64
	rejected  atomic.Uint64
	throttled atomic.Uint64
	retries   atomic.Uint64

	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a limiter; invalid config values fall back to defaults
func New(cfg Config) *Limiter {
	cfg = cfg.normalized()
	return &Limiter{
		cfg:     cfg,
		limiter: newBucket(cfg),
		sleep:   sleepCtx,
	}
}

func newBucket(cfg Config) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.Burst)
}

// Config returns the effective configuration
func (l *Limiter) Config() Config {
	return l.cfg
}

// Wait takes one token, queueing or rejecting per Mode when none is free.
// Reservations are taken under a lock, so queued callers are released in the
// order they arrived.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	r := l.limiter.Reserve()
	if !r.OK() {
		l.mu.Unlock()
		l.rejected.Add(1)
		return ErrRateLimited
	}
	delay := r.Delay()
	if delay > 0 && l.cfg.Mode == ModeReject {
		r.Cancel()
		l.mu.Unlock()
		l.rejected.Add(1)
		return ErrRateLimited
	}
	if delay > 0 {
		l.queued.Add(1)
	}
	l.mu.Unlock()

	if delay == 0 {
		l.allowed.Add(1)
		return nil
	}

	defer l.queued.Add(-1)
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		l.allowed.Add(1)
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

// Do runs call under the limiter. When call reports HTTP 429 it is retried
// after a backoff, up to MaxRetries times; the last outcome is returned.
func (l *Limiter) Do(ctx context.Context, call func(ctx context.Context) (int, error)) (int, error) {
	for attempt := 0; ; attempt++ {
		if err := l.Wait(ctx); err != nil {
			return 0, err
		}

		status, err := call(ctx)
		if err != nil || status != http.StatusTooManyRequests {
			return status, err
		}

		l.throttled.Add(1)
		if attempt >= l.cfg.MaxRetries {
			return status, nil
		}

		l.retries.Add(1)
		if err := l.sleep(ctx, l.Backoff(attempt)); err != nil {
			return status, err
		}
	}
}

// Backoff returns the delay before retry number attempt (zero based)
func (l *Limiter) Backoff(attempt int) time.Duration {
	var d time.Duration
	switch l.cfg.RetryStrategy {
	case RetryLinear:
		d = l.cfg.BaseDelay * time.Duration(attempt+1)
	case RetryFixed:
		d = l.cfg.BaseDelay
	default:
		d = l.cfg.BaseDelay
		for i := 0; i < attempt && d < l.cfg.MaxDelay; i++ {
			d *= 2
		}
	}
	if d > l.cfg.MaxDelay {
		d = l.cfg.MaxDelay
	}
	return d
}

// Queued returns the number of callers currently waiting for a token
func (l *Limiter) Queued() int64 {
	return l.queued.Load()
}

// Stats returns a snapshot of the bucket and counters
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	tokens := l.limiter.Tokens()
	l.mu.Unlock()
	if tokens < 0 {
		tokens = 0
	}
	return Stats{
		Tokens:              tokens,
		Capacity:            l.cfg.Burst,
		RefillRatePerSecond: float64(l.cfg.RequestsPerMinute) / 60.0,
		QueuedRequests:      l.queued.Load(),
		Mode:                l.cfg.Mode,
		Allowed:             l.allowed.Load(),
		Rejected:            l.rejected.Load(),
		Throttled:           l.throttled.Load(),
		Retries:             l.retries.Load(),
	}
}

// Reset refills the bucket to capacity and clears counters. Callers already
// queued keep their reservations on the previous bucket.
func (l *Limiter) Reset() {
	l.mu.Lock()
	l.limiter = newBucket(l.cfg)
	l.mu.Unlock()
	l.allowed.Store(0)
	l.rejected.Store(0)
	l.throttled.Store(0)
	l.retries.Store(0)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
