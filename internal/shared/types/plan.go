package types

// Complexity summarizes how involved a creation plan is
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// WorkflowStep is one resource creation in a plan
type WorkflowStep struct {
	StepNumber     int          `json:"stepNumber"`
	Domain         string       `json:"domain"`
	Resource       string       `json:"resource"`
	ToolName       string       `json:"toolName,omitempty"`
	Method         string       `json:"method,omitempty"`
	Path           string       `json:"path,omitempty"`
	DependsOn      []string     `json:"dependsOn,omitempty"`
	RequiredFields []string     `json:"requiredFields,omitempty"`
	OneOfGroups    []OneOfGroup `json:"oneOfGroups,omitempty"`
	Note           string       `json:"note,omitempty"`
}

// PlanAlternative shows what choosing a different oneOf option implies
type PlanAlternative struct {
	StepNumber  int    `json:"stepNumber"`
	Resource    string `json:"resource"`
	ChoiceField string `json:"choiceField"`
	Chosen      string `json:"chosen"`
	Option      string `json:"option"`
	Description string `json:"description"`
}

// CreationPlan is an ordered sequence of steps that brings a target resource
// and its prerequisites into existence
type CreationPlan struct {
	TargetResource string                    `json:"targetResource"`
	TargetDomain   string                    `json:"targetDomain"`
	Steps          []WorkflowStep            `json:"steps"`
	Warnings       []string                  `json:"warnings,omitempty"`
	Alternatives   []PlanAlternative         `json:"alternatives,omitempty"`
	Subscriptions  []SubscriptionRequirement `json:"subscriptions,omitempty"`
	Complexity     Complexity                `json:"complexity"`
}

// ResolveResult is {success, plan} | {success:false, error}
type ResolveResult struct {
	Success bool          `json:"success"`
	Plan    *CreationPlan `json:"plan,omitempty"`
	Error   string        `json:"error,omitempty"`
}
