package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RebuildIndex rebuilds the search index and drops the dependency graph so
// the next resolve reloads it
func (h *Handlers) RebuildIndex(c *gin.Context) {
	h.engine.DependencyService().Clear()
	stats := h.engine.RebuildIndex()

	h.logger.Info("Search index rebuilt",
		zap.Int("entries", stats.Entries),
		zap.Int("terms", stats.Terms),
		zap.Uint64("generation", stats.Generation))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"index":   stats,
	})
}

// ClearCache empties the response cache
func (h *Handlers) ClearCache(c *gin.Context) {
	dropped := h.cache.Len()
	h.cache.Clear()
	h.metrics.SetCacheSize(0)

	h.logger.Info("Response cache cleared", zap.Int("entries", dropped))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"cleared": dropped,
	})
}

// ResetRateLimit refills the dispatch token bucket and zeroes its counters
func (h *Handlers) ResetRateLimit(c *gin.Context) {
	h.limiter.Reset()
	h.metrics.SetQueued(0)

	h.logger.Info("Dispatch rate limiter reset")
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"ratelimit": h.limiter.Stats(),
	})
}

// Stats reports cache, limiter, index, breaker and metric counters
func (h *Handlers) Stats(c *gin.Context) {
	stats := gin.H{
		"catalogue": gin.H{
			"entries": h.engine.Catalogue().Len(),
			"domains": h.engine.Catalogue().Domains(),
		},
		"index":     h.engine.SearchService().Stats(),
		"graph":     gin.H{"loaded": h.engine.DependencyService().Loaded()},
		"cache":     h.cache.Stats(),
		"ratelimit": h.limiter.Stats(),
		"metrics":   h.metrics.Snapshot(),
		"mode":      h.mode(),
	}
	if h.breaker != nil {
		stats["breaker"] = h.breaker.Snapshot()
	}
	c.JSON(http.StatusOK, stats)
}
