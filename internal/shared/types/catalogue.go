package types

import "strings"

// Operation is the CRUD verb a catalogue entry performs
type Operation string

const (
	OperationCreate Operation = "create"
	OperationGet    Operation = "get"
	OperationList   Operation = "list"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Valid reports whether the operation is one of the five known verbs
func (o Operation) Valid() bool {
	switch o {
	case OperationCreate, OperationGet, OperationList, OperationUpdate, OperationDelete:
		return true
	}
	return false
}

// DangerLevel classifies how destructive an operation is
type DangerLevel string

const (
	DangerLow    DangerLevel = "low"
	DangerMedium DangerLevel = "medium"
	DangerHigh   DangerLevel = "high"
)

// OneOfGroup describes mutually exclusive body fields under one logical choice
type OneOfGroup struct {
	ChoiceField       string   `json:"choiceField"`
	Options           []string `json:"options"`
	RecommendedOption string   `json:"recommendedOption,omitempty"`
	Description       string   `json:"description,omitempty"`
}

// SubscriptionRequirement names an add-on or tier a resource needs
type SubscriptionRequirement struct {
	Name        string `json:"name"`
	Tier        string `json:"tier,omitempty"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// Entry is one immutable remote-API operation in the catalogue
type Entry struct {
	Name            string                    `json:"name"`
	Domain          string                    `json:"domain"`
	Resource        string                    `json:"resource"`
	Operation       Operation                 `json:"operation"`
	Method          string                    `json:"method"`
	Path            string                    `json:"path"`
	Summary         string                    `json:"summary,omitempty"`
	Description     string                    `json:"description,omitempty"`
	PathParameters  []Parameter               `json:"pathParameters,omitempty"`
	QueryParameters []Parameter               `json:"queryParameters,omitempty"`
	RequestBodyRef  string                    `json:"requestBodyRef,omitempty"`
	DangerLevel     DangerLevel               `json:"dangerLevel,omitempty"`
	RequiredFields  []string                  `json:"requiredFields,omitempty"`
	OneOfGroups     []OneOfGroup              `json:"oneOfGroups,omitempty"`
	Subscriptions   []SubscriptionRequirement `json:"subscriptions,omitempty"`
}

// UpperMethod returns the HTTP method in canonical upper case
func (e Entry) UpperMethod() string {
	return strings.ToUpper(strings.TrimSpace(e.Method))
}

// IsDangerous reports whether the entry is classified as high danger
func (e Entry) IsDangerous() bool {
	return e.DangerLevel == DangerHigh
}

// Info returns the compact descriptor attached to results
func (e Entry) Info() ToolInfo {
	return ToolInfo{
		Name:        e.Name,
		Domain:      e.Domain,
		Resource:    e.Resource,
		Operation:   e.Operation,
		Method:      e.UpperMethod(),
		Path:        e.Path,
		DangerLevel: e.DangerLevel,
	}
}

// ResourceRef points at a resource another resource depends on
type ResourceRef struct {
	Domain       string `json:"domain"`
	ResourceType string `json:"resourceType"`
	Required     bool   `json:"required"`
}

// DependencyRecord is the dependency metadata the catalogue loader supplies
// for one (domain, resource) pair
type DependencyRecord struct {
	Domain        string                    `json:"domain"`
	Resource      string                    `json:"resource"`
	Requires      []ResourceRef             `json:"requires,omitempty"`
	OneOfGroups   []OneOfGroup              `json:"oneOfGroups,omitempty"`
	Subscriptions []SubscriptionRequirement `json:"subscriptions,omitempty"`
	Tier          string                    `json:"tier,omitempty"`
	Category      string                    `json:"category,omitempty"`
}

// ResourceDependencies is the resolved adjacency of one resource
type ResourceDependencies struct {
	Domain        string                    `json:"domain"`
	Resource      string                    `json:"resource"`
	Requires      []ResourceRef             `json:"requires"`
	RequiredBy    []ResourceRef             `json:"requiredBy"`
	OneOfGroups   []OneOfGroup              `json:"oneOfGroups,omitempty"`
	Subscriptions []SubscriptionRequirement `json:"subscriptions,omitempty"`
}
