// Package config provides 12-factor configuration management for catalogd.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
// Numeric and boolean settings are lenient: a malformed, zero or negative
// value never fails Load. Sanitize swaps it for the default and reports a
// Correction so the caller can log it.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - Catalogue: Where catalogue documents are read from
//   - API: Remote tenant URL, token and timeout
//   - RateLimit: Outbound token bucket and 429 retry policy
//   - Cache: Response cache size and TTL
//   - Quota: Quota admission control
//   - Search: Index tokenization and fuzzy matching
//   - Dispatch: Request body limits
//   - Ingress: Per-IP rate limiting of the HTTP surface
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	for _, c := range cfg.Sanitize() {
//	    logger.Warn("config corrected", zap.String("field", c.Field))
//	}
//
// Environment Variables:
//   - PORT, HOST, LOG_LEVEL, LOG_DEV
//   - CATALOGUE_PATH, CATALOGUE_PATTERN
//   - API_URL, API_TOKEN, API_TIMEOUT_SECONDS
//   - RATE_LIMIT_RPM, RATE_LIMIT_BURST, RATE_LIMIT_MODE, RATE_LIMIT_RETRY_STRATEGY, RATE_LIMIT_MAX_RETRIES
//   - CACHE_MAX_SIZE, CACHE_TTL_SECONDS, QUOTA_CHECK_ENABLED
//   - SEARCH_MIN_TERM_LENGTH, SEARCH_MAX_EDIT_DISTANCE, SEARCH_FUZZY
//   - MAX_BODY_BYTES, MAX_BODY_DEPTH
//   - INGRESS_RPS, INGRESS_BURST, INGRESS_LIMIT_ENABLED
package config
