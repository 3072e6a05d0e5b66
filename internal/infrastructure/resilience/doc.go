/*
Package resilience guards the remote control-plane API with a circuit breaker.

# Overview

When the remote API keeps failing (network errors or 5xx responses), the
breaker opens and calls fail fast with ErrCircuitOpen instead of consuming
rate-limiter tokens and caller time. After the cool-down a limited number of
probe calls decide whether to close again.

Client errors (4xx) are the caller's problem, not the remote's, so the
default classifier does not count them as failures.

# Usage

	breaker := resilience.New("control-plane", resilience.Settings{
		FailureThreshold: 5,
		Cooldown:         30 * time.Second,
	})

	err := breaker.Do(func() error {
		resp, err := client.Do(ctx, req)
		...
	})

# States

	Closed --[threshold failures]-> Open --[cooldown]-> Half-Open --[probes ok]-> Closed
	                                                        |
	                                                   [failure]
	                                                        v
	                                                       Open
*/
package resilience
