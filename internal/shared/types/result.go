package types

// ErrorKind classifies a failed dispatch
type ErrorKind string

const (
	ErrorKindNotFound      ErrorKind = "not_found"
	ErrorKindValidation    ErrorKind = "validation"
	ErrorKindQuotaExceeded ErrorKind = "quota_exceeded"
	ErrorKindRemote        ErrorKind = "remote"
)

// ErrorHint carries enough context for a caller to self-correct
type ErrorHint struct {
	Path     string `json:"path,omitempty"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

// QuotaThreshold is a traffic-light classification of quota usage
type QuotaThreshold string

const (
	QuotaGreen  QuotaThreshold = "green"
	QuotaYellow QuotaThreshold = "yellow"
	QuotaRed    QuotaThreshold = "red"
)

// QuotaInfo holds usage numbers for one namespace and resource
type QuotaInfo struct {
	Namespace string         `json:"namespace,omitempty"`
	Resource  string         `json:"resource,omitempty"`
	Used      int64          `json:"used"`
	Limit     int64          `json:"limit"`
	Threshold QuotaThreshold `json:"threshold"`
}

// QuotaCheckResult is the quota collaborator's admission decision
type QuotaCheckResult struct {
	Allowed   bool      `json:"allowed"`
	QuotaInfo QuotaInfo `json:"quotaInfo"`
}

// ToolInfo is the compact entry descriptor attached to results
type ToolInfo struct {
	Name        string      `json:"name"`
	Domain      string      `json:"domain"`
	Resource    string      `json:"resource"`
	Operation   Operation   `json:"operation"`
	Method      string      `json:"method"`
	Path        string      `json:"path"`
	DangerLevel DangerLevel `json:"dangerLevel,omitempty"`
}

// ExecutionResult is the normalized outcome of a live dispatch
type ExecutionResult struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	ErrorKind  ErrorKind   `json:"errorKind,omitempty"`
	Hint       *ErrorHint  `json:"hint,omitempty"`
	StatusCode int         `json:"statusCode,omitempty"`
	QuotaInfo  *QuotaInfo  `json:"quotaInfo,omitempty"`
	ToolInfo   *ToolInfo   `json:"toolInfo,omitempty"`
	Cached     bool        `json:"cached,omitempty"`
	RequestID  string      `json:"requestId,omitempty"`
}

// DocumentationResponse previews a call when no credentials are configured
type DocumentationResponse struct {
	ToolInfo          ToolInfo    `json:"toolInfo"`
	Method            string      `json:"method"`
	Path              string      `json:"path"`
	ExampleCommand    string      `json:"exampleCommand"`
	Message           string      `json:"message"`
	MissingPathParams []string    `json:"missingPathParams,omitempty"`
	Body              interface{} `json:"body,omitempty"`
}

// OutcomeKind discriminates the Outcome variant
type OutcomeKind string

const (
	OutcomeExecution     OutcomeKind = "execution"
	OutcomeDocumentation OutcomeKind = "documentation"
)

// Outcome is ExecutionResult | DocumentationResponse with an explicit tag
type Outcome struct {
	Kind          OutcomeKind            `json:"kind"`
	Execution     *ExecutionResult       `json:"execution,omitempty"`
	Documentation *DocumentationResponse `json:"documentation,omitempty"`
}

// ExecutionOutcome wraps an execution result
func ExecutionOutcome(r *ExecutionResult) Outcome {
	return Outcome{Kind: OutcomeExecution, Execution: r}
}

// DocumentationOutcome wraps a documentation preview
func DocumentationOutcome(d *DocumentationResponse) Outcome {
	return Outcome{Kind: OutcomeDocumentation, Documentation: d}
}
