package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/catalogd/internal/infrastructure/transport"
	"github.com/GriffinCanCode/catalogd/internal/shared/types"
)

// ErrUnknownTool is returned for meta-tool IDs the engine does not serve
var ErrUnknownTool = errors.New("unknown meta-tool")

// credentialParams is the optional per-call tenant override on execute
type credentialParams struct {
	APIURL   string `json:"apiUrl"`
	APIToken string `json:"apiToken"`
}

type executeParams struct {
	types.ExecuteRequest
	Credentials *credentialParams `json:"credentials,omitempty"`
}

// Execute runs a meta-tool from untyped arguments. toolID may omit the
// "catalogue." prefix.
func (e *Engine) Execute(ctx context.Context, toolID string, params map[string]interface{}) (*types.Result, error) {
	if !strings.Contains(toolID, ".") {
		toolID = ServiceID + "." + toolID
	}

	switch toolID {
	case ToolSearch:
		var req types.SearchRequest
		if err := decode(params, &req); err != nil {
			return failure(err.Error())
		}
		if strings.TrimSpace(req.Query) == "" {
			return failure("query parameter required")
		}
		hits := e.Search(req)
		return success(map[string]interface{}{"hits": hits, "count": len(hits)})

	case ToolDescribe:
		name, _ := params["toolName"].(string)
		if name == "" {
			return failure("toolName parameter required")
		}
		desc := e.Describe(name)
		if desc == nil {
			return success(map[string]interface{}{"tool": nil})
		}
		return success(map[string]interface{}{"tool": desc})

	case ToolValidate:
		var req types.ValidateRequest
		if err := decode(params, &req); err != nil {
			return failure(err.Error())
		}
		if req.ToolName == "" {
			return failure("toolName parameter required")
		}
		report := e.Validate(req)
		return success(map[string]interface{}{"report": report, "valid": report.Valid})

	case ToolResolve:
		var req types.ResolveRequest
		if err := decode(params, &req); err != nil {
			return failure(err.Error())
		}
		if req.Resource == "" {
			return failure("resource parameter required")
		}
		result := e.ResolveDependencies(req)
		if !result.Success {
			return &types.Result{Success: false, Error: &result.Error}, nil
		}
		return success(map[string]interface{}{"plan": result.Plan})

	case ToolExecute:
		var req executeParams
		if err := decode(params, &req); err != nil {
			return failure(err.Error())
		}
		if req.ToolName == "" {
			return failure("toolName parameter required")
		}
		var creds *transport.Credentials
		if req.Credentials != nil {
			creds = &transport.Credentials{APIURL: req.Credentials.APIURL, APIToken: req.Credentials.APIToken}
		}
		return outcomeResult(e.Dispatch(ctx, req.ExecuteRequest, creds)), nil

	case ToolEstimateCost:
		var req types.EstimateRequest
		if err := decode(params, &req); err != nil {
			return failure(err.Error())
		}
		est, err := e.EstimateCost(req)
		if err != nil {
			return failure(err.Error())
		}
		return success(map[string]interface{}{"estimate": est})
	}

	msg := fmt.Sprintf("unknown tool: %s", toolID)
	return &types.Result{Success: false, Error: &msg}, fmt.Errorf("%w: %s", ErrUnknownTool, toolID)
}

func outcomeResult(o types.Outcome) *types.Result {
	if o.Kind == types.OutcomeDocumentation {
		return &types.Result{
			Success: true,
			Data:    map[string]interface{}{"kind": o.Kind, "documentation": o.Documentation},
		}
	}
	r := &types.Result{
		Success: o.Execution.Success,
		Data:    map[string]interface{}{"kind": o.Kind, "execution": o.Execution},
	}
	if !o.Execution.Success {
		msg := o.Execution.Error
		r.Error = &msg
	}
	return r
}

// decode maps untyped arguments onto a request struct by JSON field name
func decode(params map[string]interface{}, out interface{}) error {
	if len(params) == 0 {
		return nil
	}
	data, err := sonic.Marshal(params)
	if err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

func success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{
		Success: true,
		Data:    data,
	}, nil
}

func failure(message string) (*types.Result, error) {
	errMsg := message
	return &types.Result{
		Success: false,
		Error:   &errMsg,
	}, fmt.Errorf("%s", message)
}
