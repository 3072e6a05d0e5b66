package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig controls which browser origins may call the catalogue API.
type CORSConfig struct {
	Origins     []string
	Methods     []string
	Headers     []string
	Credentials bool
	MaxAge      time.Duration
}

// DefaultCORSConfig allows any origin.
func DefaultCORSConfig() CORSConfig {
	return CORSFor(nil)
}

// CORSFor builds a config for the given origins. Empty means any origin.
// Credentials are only allowed when origins are listed explicitly.
func CORSFor(origins []string) CORSConfig {
	cfg := CORSConfig{
		Origins: []string{"*"},
		Methods: []string{"GET", "POST", "OPTIONS"},
		Headers: []string{"Content-Type", "Accept", "Authorization", "Origin", RequestIDHeader},
		MaxAge:  12 * time.Hour,
	}
	if len(origins) > 0 && !(len(origins) == 1 && origins[0] == "*") {
		cfg.Origins = origins
		cfg.Credentials = true
	}
	return cfg
}

// CORS answers preflights and exposes the request ID header to scripts.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     cfg.Origins,
		AllowMethods:     cfg.Methods,
		AllowHeaders:     cfg.Headers,
		ExposeHeaders:    []string{RequestIDHeader},
		AllowCredentials: cfg.Credentials,
		MaxAge:           cfg.MaxAge,
	})
}
