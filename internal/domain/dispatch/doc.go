/*
Package dispatch executes catalogue operations against the remote API.

Each call runs the same fixed sequence: look the tool up, fall back to a
documentation preview when no credentials are usable, gate create
operations on namespace quota, bound the body, build the path and query,
serve GETs from the response cache, send through the rate limiter, update
the cache, and normalize the reply. Every failure is returned as a result
value; nothing past Execute panics or returns an error.

# Usage

	d := dispatch.New(catalogue, limiter, responses, dispatch.Config{QuotaCheck: true},
		dispatch.WithRemote(client),
		dispatch.WithQuota(quota.NewRemoteChecker(client)),
		dispatch.WithLogger(logger),
	)

	outcome := d.Execute(ctx, types.ExecuteRequest{
		ToolName:   "origin-pool-list",
		PathParams: map[string]string{"namespace": "default"},
	}, nil)
*/
package dispatch
