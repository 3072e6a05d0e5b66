// Package ratelimit is the token bucket every remote call passes through.
//
// Tokens are consumed before the network call and are never refunded, since
// they record that an attempt was made. When the bucket is empty a caller is
// either queued (served in submission order) or rejected with
// ErrRateLimited, depending on Mode. A remote 429 is retried with the
// configured backoff strategy, each retry taking a fresh token.
package ratelimit
