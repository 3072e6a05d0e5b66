package cost

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/catalogd/internal/domain/dependency"
	"github.com/GriffinCanCode/catalogd/internal/shared/types"
	"github.com/GriffinCanCode/catalogd/internal/testutil"
)

func newEstimator(t *testing.T) *Estimator {
	e := New(testutil.Catalogue(t))
	// whitespace word count keeps expectations independent of the encoding
	e.count = func(s string) int { return len(strings.Fields(s)) }
	return e
}

func TestEstimateTool(t *testing.T) {
	e := newEstimator(t)

	est := e.EstimateTool("http-loadbalancer-create")
	require.Len(t, est.Tools, 1)
	tool := est.Tools[0]
	assert.Equal(t, types.OperationCreate, tool.Operation)
	assert.Greater(t, tool.DescribeTokens, 0)
	// "POST /api/..." is two words, two required fields, one oneOf group
	assert.Equal(t, 2+2*fieldTokens+fieldTokens, tool.RequestTokens)
	assert.Equal(t, responseTokensSingle, tool.ResponseTokens)
	assert.Equal(t, tool.DescribeTokens+tool.RequestTokens+tool.ResponseTokens, tool.TotalTokens)
	assert.Equal(t, int64(800), tool.LatencyMs)
	assert.Equal(t, tool.TotalTokens, est.TotalTokens)
	assert.Empty(t, est.Notes)
}

func TestEstimateToolsSumsAndNotesUnknown(t *testing.T) {
	e := newEstimator(t)

	list := e.EstimateTool("origin-pool-list")
	del := e.EstimateTool("origin-pool-delete")
	est := e.EstimateTools([]string{"origin-pool-list", "missing-tool", "origin-pool-delete"})

	assert.Len(t, est.Tools, 2)
	assert.Equal(t, list.TotalTokens+del.TotalTokens, est.TotalTokens)
	assert.Equal(t, int64(400+500), est.TotalLatencyMs)
	assert.Equal(t, []string{"unknown tool: missing-tool"}, est.Notes)
	assert.Equal(t, responseTokensList, est.Tools[0].ResponseTokens)
	assert.Equal(t, responseTokensDelete, est.Tools[1].ResponseTokens)
}

func TestEstimatePlan(t *testing.T) {
	cat := testutil.Catalogue(t)
	deps := dependency.NewService(cat, nil)
	res := deps.Resolve(types.ResolveRequest{Domain: "virtual", Resource: "http-loadbalancer"})
	require.True(t, res.Success, res.Error)

	e := newEstimator(t)
	est := e.EstimatePlan(*res.Plan)

	assert.Equal(t, len(res.Plan.Steps), est.Steps)
	assert.Len(t, est.Tools, len(res.Plan.Steps))
	assert.Equal(t, int64(len(res.Plan.Steps))*800, est.TotalLatencyMs)
}

func TestEstimatePlanStepWithoutTool(t *testing.T) {
	e := newEstimator(t)
	plan := types.CreationPlan{Steps: []types.WorkflowStep{
		{StepNumber: 1, Domain: "virtual", Resource: "ghost"},
		{StepNumber: 2, Domain: "virtual", Resource: "origin-pool", ToolName: "origin-pool-create"},
	}}

	est := e.EstimatePlan(plan)
	assert.Equal(t, 2, est.Steps)
	assert.Len(t, est.Tools, 1)
	require.Len(t, est.Notes, 1)
	assert.Contains(t, est.Notes[0], "virtual/ghost")
}

func TestEstimateDispatch(t *testing.T) {
	e := newEstimator(t)

	_, err := e.Estimate(types.EstimateRequest{})
	assert.ErrorIs(t, err, ErrEmptyRequest)

	one, err := e.Estimate(types.EstimateRequest{ToolName: "certificate-list"})
	require.NoError(t, err)
	assert.Len(t, one.Tools, 1)

	many, err := e.Estimate(types.EstimateRequest{ToolName: "certificate-list", ToolNames: []string{"certificate-create"}})
	require.NoError(t, err)
	assert.Len(t, many.Tools, 2)

	plan, err := e.Estimate(types.EstimateRequest{
		ToolName: "certificate-list",
		Plan:     &types.CreationPlan{Steps: []types.WorkflowStep{{StepNumber: 1, ToolName: "certificate-create"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, plan.Steps)
}

func TestEstimatesAreMemoized(t *testing.T) {
	e := newEstimator(t)
	first := e.EstimateTool("healthcheck-create")
	e.count = func(string) int { return 1000 }
	second := e.EstimateTool("healthcheck-create")
	assert.Equal(t, first, second)
}
