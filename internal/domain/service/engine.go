package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/catalogd/internal/domain/catalogue"
	"github.com/GriffinCanCode/catalogd/internal/domain/cost"
	"github.com/GriffinCanCode/catalogd/internal/domain/dependency"
	"github.com/GriffinCanCode/catalogd/internal/domain/dispatch"
	"github.com/GriffinCanCode/catalogd/internal/domain/search"
	"github.com/GriffinCanCode/catalogd/internal/domain/validate"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/logging"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/transport"
	"github.com/GriffinCanCode/catalogd/internal/shared/pathtemplate"
	"github.com/GriffinCanCode/catalogd/internal/shared/types"
)

// Engine is the meta-operation facade
type Engine struct {
	catalogue  *catalogue.Catalogue
	search     *search.Service
	deps       *dependency.Service
	validator  *validate.Validator
	dispatcher *dispatch.Dispatcher
	estimator  *cost.Estimator
	metrics    *monitoring.Metrics
	logger     *logging.Logger
}

// Components are the collaborators an Engine is assembled from. Search,
// Dependencies, Validator and Estimator default to catalogue-backed
// instances when nil; Dispatcher is required for execute.
type Components struct {
	Catalogue    *catalogue.Catalogue
	Search       *search.Service
	Dependencies *dependency.Service
	Validator    *validate.Validator
	Dispatcher   *dispatch.Dispatcher
	Estimator    *cost.Estimator
	Metrics      *monitoring.Metrics
	Logger       *logging.Logger
}

// NewEngine assembles an engine
func NewEngine(c Components) *Engine {
	e := &Engine{
		catalogue:  c.Catalogue,
		search:     c.Search,
		deps:       c.Dependencies,
		validator:  c.Validator,
		dispatcher: c.Dispatcher,
		estimator:  c.Estimator,
		metrics:    c.Metrics,
		logger:     c.Logger.Component("engine"),
	}
	if e.search == nil {
		e.search = search.NewService(c.Catalogue, search.DefaultConfig(), c.Logger)
	}
	if e.deps == nil {
		e.deps = dependency.NewService(c.Catalogue, c.Logger)
	}
	if e.validator == nil {
		e.validator = validate.New(c.Catalogue, validate.DefaultLimits())
	}
	if e.estimator == nil {
		e.estimator = cost.New(c.Catalogue)
	}
	return e
}

// Catalogue returns the underlying catalogue
func (e *Engine) Catalogue() *catalogue.Catalogue { return e.catalogue }

// SearchService exposes the index lifecycle for admin endpoints
func (e *Engine) SearchService() *search.Service { return e.search }

// DependencyService exposes the graph lifecycle for admin endpoints
func (e *Engine) DependencyService() *dependency.Service { return e.deps }

// Search ranks catalogue operations
func (e *Engine) Search(req types.SearchRequest) []types.SearchHit {
	timer := monitoring.NewTimer(e.metrics, "search")
	hits := e.search.Search(req)
	if req.IncludeDependencies {
		for i := range hits {
			hits[i].Requires = e.deps.Requires(hits[i].Entry.Domain, hits[i].Entry.Resource)
		}
	}
	timer.Stop("success")
	return hits
}

// RebuildIndex rebuilds and publishes a fresh search index
func (e *Engine) RebuildIndex() search.Stats {
	idx := e.search.Rebuild()
	e.metrics.RecordIndexBuild(idx.Len())
	return e.search.Stats()
}

// Description is the describe meta-operation's result
type Description struct {
	Entry          types.Entry                 `json:"entry"`
	Dependencies   *types.ResourceDependencies `json:"dependencies,omitempty"`
	OneOfGroups    []types.OneOfGroup          `json:"oneOfGroups,omitempty"`
	Schema         interface{}                 `json:"schema,omitempty"`
	PathParameters []string                    `json:"pathParameterNames"`
	ExamplePath    string                      `json:"examplePath"`
}

// Describe returns the full description of name, or nil when unknown
func (e *Engine) Describe(name string) *Description {
	timer := monitoring.NewTimer(e.metrics, "describe")
	entry, ok := e.catalogue.Get(name)
	if !ok {
		timer.Stop("not_found")
		return nil
	}

	d := &Description{
		Entry:          entry,
		OneOfGroups:    entry.OneOfGroups,
		PathParameters: pathtemplate.Placeholders(entry.Path),
		ExamplePath:    examplePath(entry.Path),
	}
	if deps, ok := e.deps.Dependencies(entry.Domain, entry.Resource); ok {
		d.Dependencies = &deps
		if len(d.OneOfGroups) == 0 {
			d.OneOfGroups = deps.OneOfGroups
		}
	}
	if entry.RequestBodyRef != "" {
		if schema, ok := e.catalogue.Schema(entry.RequestBodyRef); ok {
			d.Schema = schema
		}
	}
	timer.Stop("success")
	return d
}

func examplePath(tpl string) string {
	params := make(map[string]string)
	for _, name := range pathtemplate.Placeholders(tpl) {
		if name == "namespace" {
			params[name] = "default"
			continue
		}
		params[name] = "example-" + strings.ReplaceAll(name, "_", "-")
	}
	path, _ := pathtemplate.Expand(tpl, params)
	return path
}

// Validate checks a call without contacting anything remote
func (e *Engine) Validate(req types.ValidateRequest) validate.Report {
	timer := monitoring.NewTimer(e.metrics, "validate")
	entry, ok := e.catalogue.Get(req.ToolName)
	if !ok {
		timer.Stop("not_found")
		return validate.Report{
			Valid:    false,
			ToolName: req.ToolName,
			Errors: []validate.Issue{{
				Path:     "toolName",
				Message:  fmt.Sprintf("tool not found: %q", req.ToolName),
				Expected: "catalogue tool name",
				Actual:   req.ToolName,
			}},
			Warnings: []validate.Issue{},
		}
	}
	report := e.validator.Validate(entry, req)
	timer.Stop(statusOf(report.Valid))
	return report
}

// ResolveDependencies builds a creation plan
func (e *Engine) ResolveDependencies(req types.ResolveRequest) types.ResolveResult {
	timer := monitoring.NewTimer(e.metrics, "resolve")
	result := e.deps.Resolve(req)
	timer.Stop(statusOf(result.Success))
	return result
}

// Dispatch runs the execute meta-operation; creds may be nil
func (e *Engine) Dispatch(ctx context.Context, req types.ExecuteRequest, creds *transport.Credentials) types.Outcome {
	timer := monitoring.NewTimer(e.metrics, "execute")
	if e.dispatcher == nil {
		e.logger.Error("Dispatch called without a dispatcher", zap.String("tool", req.ToolName))
		timer.Stop("error")
		return types.ExecutionOutcome(&types.ExecutionResult{
			Success:   false,
			Error:     "execution is not configured",
			ErrorKind: types.ErrorKindRemote,
		})
	}

	outcome := e.dispatcher.Execute(ctx, req, creds)
	switch {
	case outcome.Kind == types.OutcomeDocumentation:
		timer.Stop("documentation")
	case outcome.Execution != nil && outcome.Execution.Success:
		timer.Stop("success")
	default:
		timer.Stop("failure")
	}
	return outcome
}

// EstimateCost returns advisory token and latency estimates
func (e *Engine) EstimateCost(req types.EstimateRequest) (cost.Estimate, error) {
	timer := monitoring.NewTimer(e.metrics, "estimate")
	est, err := e.estimator.Estimate(req)
	timer.Stop(statusOf(err == nil))
	return est, err
}

func statusOf(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
