// Package main is the entry point for catalogd.
//
// catalogd loads a generated catalogue of remote API operations and serves
// six meta-operations over it: search, describe, validate,
// resolveDependencies, execute and estimateCost.
//
// Architecture:
//
//	HTTP (gin) ─┐
//	            ├→ Engine → search index, dependency graph, validator
//	MCP (stdio) ┘         → dispatcher → rate limiter → cache → tenant API
//
// Without API_URL and API_TOKEN every execute returns documentation (the
// request that would be sent and an equivalent curl command).
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Invalid values fall back to defaults and are logged
//
// Usage:
//
//	# HTTP surface
//	./server -port 8000 -catalogue ./catalogue
//
//	# MCP host over stdio
//	./server -mcp -catalogue ./catalogue
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
