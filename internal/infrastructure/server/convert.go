package server

import (
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/catalogd/internal/domain/search"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/cache"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/config"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/logging"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/ratelimit"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/transport"
)

// SearchConfig maps environment settings onto the search index
func SearchConfig(c config.SearchConfig) search.Config {
	cfg := search.DefaultConfig()
	cfg.MinTermLength = c.MinTermLength.Value
	cfg.MaxEditDistance = c.MaxEditDistance.Value
	cfg.Fuzzy = c.Fuzzy.Value
	return cfg
}

// CacheConfig maps environment settings onto the response cache
func CacheConfig(c config.CacheConfig) cache.Config {
	return cache.Config{
		MaxSize: c.MaxSize.Value,
		TTL:     time.Duration(c.TTLSeconds.Value) * time.Second,
	}
}

// RateLimitConfig maps environment settings onto the dispatch limiter
func RateLimitConfig(c config.RateLimitConfig) ratelimit.Config {
	cfg := ratelimit.DefaultConfig()
	cfg.RequestsPerMinute = c.RequestsPerMinute.Value
	cfg.Burst = c.Burst.Value
	cfg.Mode = ratelimit.Mode(c.Mode)
	cfg.RetryStrategy = ratelimit.RetryStrategy(c.RetryStrategy)
	cfg.MaxRetries = c.MaxRetries.Value
	return cfg
}

// TransportConfig maps environment settings onto the API client and
// reports breaker transitions
func TransportConfig(c config.APIConfig, metrics *monitoring.Metrics, logger *logging.Logger) transport.Config {
	logger = logger.Component("transport")
	cfg := transport.DefaultConfig()
	cfg.Timeout = time.Duration(c.TimeoutSeconds.Value) * time.Second
	cfg.OnBreakerChange = func(name string, from, to resilience.State) {
		metrics.SetBreakerState(name, float64(to))
		logger.Warn("Circuit breaker state changed",
			zap.String("breaker", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()))
	}
	return cfg
}
