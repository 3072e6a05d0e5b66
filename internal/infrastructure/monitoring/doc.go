/*
Package monitoring provides Prometheus metrics for the engine.

# Overview

Metrics are registered against an explicit registry so tests and multiple
engines in one process never collide on the default registerer. Every
recording method is safe on a nil *Metrics, which lets domain packages take
an optional collector.

# Features

- HTTP request metrics (latency, throughput, size)
- Meta-operation metrics (search, describe, validate, resolve, execute, estimate)
- Dispatch outcomes and remote call latency
- Response cache hits, misses and size
- Rate limiter queue depth and rejections
- Quota threshold counts and circuit breaker state

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(monitoring.Handler(reg)))

	timer := monitoring.NewTimer(metrics, "search")
	// ... perform operation ...
	timer.Stop("success")
*/
package monitoring
