package types

// SearchRequest is the input of the search meta-operation
type SearchRequest struct {
	Query               string      `json:"query" binding:"required"`
	Limit               int         `json:"limit,omitempty"`
	Domains             []string    `json:"domains,omitempty"`
	Operations          []Operation `json:"operations,omitempty"`
	ExcludeDangerous    bool        `json:"excludeDangerous,omitempty"`
	IncludeDependencies bool        `json:"includeDependencies,omitempty"`
}

// SearchHit is one ranked search result
type SearchHit struct {
	Entry        Entry         `json:"entry"`
	Score        float64       `json:"score"`
	MatchedTerms []string      `json:"matchedTerms"`
	Requires     []ResourceRef `json:"requires,omitempty"`
}

// ResolveRequest is the input of the resolveDependencies meta-operation
type ResolveRequest struct {
	Resource           string   `json:"resource" binding:"required"`
	Domain             string   `json:"domain"`
	ExistingResources  []string `json:"existingResources,omitempty"`
	IncludeOptional    bool     `json:"includeOptional,omitempty"`
	MaxDepth           int      `json:"maxDepth,omitempty"`
	ExpandAlternatives bool     `json:"expandAlternatives,omitempty"`
}

// ExecuteRequest is the input of the execute meta-operation
type ExecuteRequest struct {
	ToolName    string                 `json:"toolName" binding:"required"`
	PathParams  map[string]string      `json:"pathParams,omitempty"`
	QueryParams map[string]interface{} `json:"queryParams,omitempty"`
	Body        interface{}            `json:"body,omitempty"`
}

// ValidateRequest is the input of the validate meta-operation
type ValidateRequest = ExecuteRequest

// EstimateRequest is the input of the estimateCost meta-operation; exactly
// one of ToolName, ToolNames or Plan is expected
type EstimateRequest struct {
	ToolName  string        `json:"toolName,omitempty"`
	ToolNames []string      `json:"toolNames,omitempty"`
	Plan      *CreationPlan `json:"plan,omitempty"`
}
