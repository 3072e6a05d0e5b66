/*
Package http serves the catalogue meta-operations over REST.

Meta-operation routes bind a JSON object and hand it to the engine's untyped
router, so HTTP and MCP callers share one argument contract. Admin routes
expose the lifecycle of the search index, the response cache and the
dispatch rate limiter.
*/
package http
