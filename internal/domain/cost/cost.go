// Package cost produces advisory token and latency estimates for catalogue
// operations and creation plans.
//
// Describe cost is the tokenized size of the entry as the describe
// meta-operation would return it. Request and response costs come from
// per-operation baselines. Nothing here touches the network.
package cost

import (
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/GriffinCanCode/catalogd/internal/shared/token"
	"github.com/GriffinCanCode/catalogd/internal/shared/types"
)

// ErrEmptyRequest is returned when an estimate request names nothing
var ErrEmptyRequest = errors.New("estimate request needs toolName, toolNames or plan")

const memoSize = 256

// Response token baselines per operation
const (
	responseTokensSingle = 400
	responseTokensList   = 1500
	responseTokensDelete = 50

	// per required field or oneOf option placed in a request body
	fieldTokens = 6
)

var latencyBaselines = map[types.Operation]time.Duration{
	types.OperationCreate: 800 * time.Millisecond,
	types.OperationGet:    200 * time.Millisecond,
	types.OperationList:   400 * time.Millisecond,
	types.OperationUpdate: 600 * time.Millisecond,
	types.OperationDelete: 500 * time.Millisecond,
}

const defaultLatency = 500 * time.Millisecond

// ToolEstimate is the cost of describing and calling one operation
type ToolEstimate struct {
	ToolName       string          `json:"toolName"`
	Operation      types.Operation `json:"operation"`
	DescribeTokens int             `json:"describeTokens"`
	RequestTokens  int             `json:"requestTokens"`
	ResponseTokens int             `json:"responseTokens"`
	TotalTokens    int             `json:"totalTokens"`
	LatencyMs      int64           `json:"latencyMs"`
}

// Estimate aggregates tool estimates
type Estimate struct {
	Tools          []ToolEstimate `json:"tools"`
	TotalTokens    int            `json:"totalTokens"`
	TotalLatencyMs int64          `json:"totalLatencyMs"`
	Steps          int            `json:"steps,omitempty"`
	Notes          []string       `json:"notes,omitempty"`
}

func (e *Estimate) add(t ToolEstimate) {
	e.Tools = append(e.Tools, t)
	e.TotalTokens += t.TotalTokens
	e.TotalLatencyMs += t.LatencyMs
}

// Lookup resolves catalogue entries by name
type Lookup interface {
	Get(name string) (types.Entry, bool)
}

// Estimator computes estimates against a catalogue
type Estimator struct {
	lookup Lookup
	count  func(string) int
	memo   *lru.Cache[string, ToolEstimate]
}

// New creates an estimator using cl100k_base token counts
func New(lookup Lookup) *Estimator {
	memo, _ := lru.New[string, ToolEstimate](memoSize)
	return &Estimator{lookup: lookup, count: token.Count, memo: memo}
}

// Estimate dispatches on whichever of the request fields is set; a plan
// takes precedence over names
func (e *Estimator) Estimate(req types.EstimateRequest) (Estimate, error) {
	switch {
	case req.Plan != nil:
		return e.EstimatePlan(*req.Plan), nil
	case len(req.ToolNames) > 0:
		names := req.ToolNames
		if req.ToolName != "" {
			names = append([]string{req.ToolName}, names...)
		}
		return e.EstimateTools(names), nil
	case req.ToolName != "":
		return e.EstimateTool(req.ToolName), nil
	}
	return Estimate{}, ErrEmptyRequest
}

// EstimateTool estimates a single operation
func (e *Estimator) EstimateTool(name string) Estimate {
	return e.EstimateTools([]string{name})
}

// EstimateTools sums estimates across names; unknown names become notes
func (e *Estimator) EstimateTools(names []string) Estimate {
	est := Estimate{Tools: []ToolEstimate{}}
	for _, name := range names {
		t, ok := e.tool(name)
		if !ok {
			est.Notes = append(est.Notes, fmt.Sprintf("unknown tool: %s", name))
			continue
		}
		est.add(t)
	}
	return est
}

// EstimatePlan sums the create operations of every plan step
func (e *Estimator) EstimatePlan(plan types.CreationPlan) Estimate {
	est := Estimate{Tools: []ToolEstimate{}, Steps: len(plan.Steps)}
	for _, step := range plan.Steps {
		if step.ToolName == "" {
			est.Notes = append(est.Notes, fmt.Sprintf("step %d (%s/%s): no create operation in catalogue",
				step.StepNumber, step.Domain, step.Resource))
			continue
		}
		t, ok := e.tool(step.ToolName)
		if !ok {
			est.Notes = append(est.Notes, fmt.Sprintf("step %d: unknown tool: %s", step.StepNumber, step.ToolName))
			continue
		}
		est.add(t)
	}
	return est
}

func (e *Estimator) tool(name string) (ToolEstimate, bool) {
	if t, ok := e.memo.Get(name); ok {
		return t, true
	}
	entry, ok := e.lookup.Get(name)
	if !ok {
		return ToolEstimate{}, false
	}
	t := e.measure(entry)
	e.memo.Add(name, t)
	return t, true
}

func (e *Estimator) measure(entry types.Entry) ToolEstimate {
	t := ToolEstimate{
		ToolName:       entry.Name,
		Operation:      entry.Operation,
		DescribeTokens: e.describeTokens(entry),
		RequestTokens:  e.requestTokens(entry),
		ResponseTokens: responseTokens(entry.Operation),
		LatencyMs:      latency(entry.Operation).Milliseconds(),
	}
	t.TotalTokens = t.DescribeTokens + t.RequestTokens + t.ResponseTokens
	return t
}

func (e *Estimator) describeTokens(entry types.Entry) int {
	encoded, err := sonic.MarshalString(entry)
	if err != nil {
		return token.Estimate(entry.Name + " " + entry.Description)
	}
	return e.count(encoded)
}

func (e *Estimator) requestTokens(entry types.Entry) int {
	n := e.count(entry.UpperMethod() + " " + entry.Path)
	n += len(entry.RequiredFields) * fieldTokens
	for _, g := range entry.OneOfGroups {
		// one option ends up in the body
		if len(g.Options) > 0 {
			n += fieldTokens
		}
	}
	return n
}

func responseTokens(op types.Operation) int {
	switch op {
	case types.OperationList:
		return responseTokensList
	case types.OperationDelete:
		return responseTokensDelete
	}
	return responseTokensSingle
}

func latency(op types.Operation) time.Duration {
	if d, ok := latencyBaselines[op]; ok {
		return d
	}
	return defaultLatency
}
