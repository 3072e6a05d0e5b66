// Package types provides shared data structures for the catalogue engine.
//
// This package defines the records passed between the search index, the
// dependency resolver, the dispatcher and the ingress surfaces, so that
// every component agrees on identifiers and result shapes.
//
// Catalogue Types:
//   - Entry: One immutable remote-API operation, keyed by Name
//   - Parameter: Path or query parameter of an entry (also used for meta-tools)
//   - OneOfGroup: Mutually exclusive request-body fields
//   - DependencyRecord: Prerequisites declared for a (domain, resource) pair
//
// Planning Types:
//   - ResourceDependencies: Resolved adjacency for one resource
//   - CreationPlan, WorkflowStep: Ordered creation steps
//
// Result Types:
//   - Outcome: Tagged variant of ExecutionResult | DocumentationResponse
//   - QuotaCheckResult: Quota admission decision
//
// Request Types:
//   - SearchRequest, ResolveRequest, ExecuteRequest, ValidateRequest, EstimateRequest
//
// Example Usage:
//
//	outcome := dispatcher.Execute(ctx, types.ExecuteRequest{
//	    ToolName:   "virtual-http-loadbalancer-list",
//	    PathParams: map[string]string{"namespace": "default"},
//	}, nil)
//	if outcome.Kind == types.OutcomeDocumentation {
//	    fmt.Println(outcome.Documentation.ExampleCommand)
//	}
package types
