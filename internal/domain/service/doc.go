/*
Package service is the meta-operation facade over the catalogue.

The Engine ties search, dependency resolution, validation, dispatch and
cost estimation to one catalogue and exposes them two ways: typed methods
for Go callers, and Execute(ctx, toolID, params) for surfaces that carry
untyped JSON arguments (HTTP and MCP).

# Meta-tools

	catalogue.search               rank catalogue operations for a query
	catalogue.describe             full description of one operation
	catalogue.validate             check parameters without calling anything
	catalogue.resolveDependencies  ordered creation plan for a resource
	catalogue.execute              dispatch an operation (or document it)
	catalogue.estimateCost         token and latency estimates
*/
package service
