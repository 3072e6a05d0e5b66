// Package transport is the authenticated HTTP client for the remote
// control-plane API.
//
// It is built on resty over a pooled retryablehttp transport, with a
// circuit breaker in front of the network. The client itself never retries;
// throttling retries belong to the rate limiter.
//
// Authentication uses the header "Authorization: APIToken <token>".
package transport
