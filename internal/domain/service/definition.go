package service

import "github.com/GriffinCanCode/catalogd/internal/shared/types"

// ServiceID prefixes every meta-tool ID
const ServiceID = "catalogue"

// Meta-tool IDs
const (
	ToolSearch       = ServiceID + ".search"
	ToolDescribe     = ServiceID + ".describe"
	ToolValidate     = ServiceID + ".validate"
	ToolResolve      = ServiceID + ".resolveDependencies"
	ToolExecute      = ServiceID + ".execute"
	ToolEstimateCost = ServiceID + ".estimateCost"
)

var callParameters = []types.Parameter{
	{Name: "toolName", Type: "string", Description: "Catalogue operation name", Required: true},
	{Name: "pathParams", Type: "object", Description: "Values for {placeholders} in the path"},
	{Name: "queryParams", Type: "object", Description: "Query string values; arrays repeat the key"},
	{Name: "body", Type: "object", Description: "JSON request body"},
}

// Definition returns service metadata
func (e *Engine) Definition() types.Service {
	return types.Service{
		ID:          ServiceID,
		Name:        "API Catalogue",
		Description: "Discover, plan and execute operations from the remote API catalogue",
		Capabilities: []string{
			"search",
			"describe",
			"validate",
			"resolve_dependencies",
			"execute",
			"estimate_cost",
		},
		Tools: []types.Tool{
			{
				ID:          ToolSearch,
				Name:        "Search Operations",
				Description: "Rank catalogue operations against a natural-language query",
				Category:    types.CategoryDiscovery,
				Parameters: []types.Parameter{
					{Name: "query", Type: "string", Description: "What you want to do", Required: true},
					{Name: "limit", Type: "number", Description: "Maximum results (default 10, max 100)"},
					{Name: "domains", Type: "array", Description: "Only these domains"},
					{Name: "operations", Type: "array", Description: "Only these operations: create, get, list, update, delete"},
					{Name: "excludeDangerous", Type: "boolean", Description: "Drop high-danger operations"},
					{Name: "includeDependencies", Type: "boolean", Description: "Attach each hit's prerequisites"},
				},
				Returns: "array",
			},
			{
				ID:          ToolDescribe,
				Name:        "Describe Operation",
				Description: "Parameters, schema and dependencies of one operation; null when unknown",
				Category:    types.CategoryDiscovery,
				Parameters: []types.Parameter{
					{Name: "toolName", Type: "string", Description: "Catalogue operation name", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          ToolValidate,
				Name:        "Validate Call",
				Description: "Check parameters and body against an operation without calling it",
				Category:    types.CategoryPlanning,
				Parameters:  callParameters,
				Returns:     "object",
			},
			{
				ID:          ToolResolve,
				Name:        "Resolve Dependencies",
				Description: "Ordered creation plan for a resource and its prerequisites",
				Category:    types.CategoryPlanning,
				Parameters: []types.Parameter{
					{Name: "resource", Type: "string", Description: "Resource to create", Required: true},
					{Name: "domain", Type: "string", Description: "Domain of the resource"},
					{Name: "existingResources", Type: "array", Description: "Resources that already exist (resource or domain/resource)"},
					{Name: "includeOptional", Type: "boolean", Description: "Follow optional dependencies too"},
					{Name: "maxDepth", Type: "number", Description: "Traversal depth bound (default 10)"},
					{Name: "expandAlternatives", Type: "boolean", Description: "List what each unchosen oneOf option implies"},
				},
				Returns: "object",
			},
			{
				ID:          ToolExecute,
				Name:        "Execute Operation",
				Description: "Call an operation; without credentials returns the request that would be sent",
				Category:    types.CategoryExecution,
				Parameters: append(append([]types.Parameter{}, callParameters...), types.Parameter{
					Name: "credentials", Type: "object", Description: "Optional {apiUrl, apiToken} overriding the configured tenant",
				}),
				Returns: "object",
			},
			{
				ID:          ToolEstimateCost,
				Name:        "Estimate Cost",
				Description: "Token and latency estimates for operations or a creation plan",
				Category:    types.CategoryPlanning,
				Parameters: []types.Parameter{
					{Name: "toolName", Type: "string", Description: "One operation"},
					{Name: "toolNames", Type: "array", Description: "Several operations"},
					{Name: "plan", Type: "object", Description: "A plan returned by resolveDependencies"},
				},
				Returns: "object",
			},
		},
	}
}
