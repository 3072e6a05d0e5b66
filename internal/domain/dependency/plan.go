package dependency

import (
	"fmt"
	"strings"

	"github.com/GriffinCanCode/catalogd/internal/shared/types"
)

// CreateLookup finds the create operation for a resource
type CreateLookup interface {
	CreateEntry(domain, resource string) (types.Entry, bool)
}

// Complexity thresholds over steps plus oneOf groups
const (
	lowComplexityMax    = 3
	mediumComplexityMax = 7
)

// ClassifyComplexity is monotonic in both step and oneOf-group counts
func ClassifyComplexity(steps, oneOfGroups int) types.Complexity {
	switch score := steps + oneOfGroups; {
	case score <= lowComplexityMax:
		return types.ComplexityLow
	case score <= mediumComplexityMax:
		return types.ComplexityMedium
	default:
		return types.ComplexityHigh
	}
}

// BuildPlan resolves a creation plan for req. Graph anomalies become
// warnings; only an unknown target fails.
func BuildPlan(g *Graph, creates CreateLookup, req types.ResolveRequest) types.ResolveResult {
	if strings.TrimSpace(req.Resource) == "" {
		return types.ResolveResult{Error: "resource is required"}
	}

	target := Key{Domain: req.Domain, Resource: req.Resource}
	if resolved, ok := g.Resolve(target); ok {
		target = resolved
	} else if _, ok := creates.CreateEntry(target.Domain, target.Resource); !ok {
		return types.ResolveResult{
			Error: fmt.Sprintf("unknown resource %q in domain %q", req.Resource, req.Domain),
		}
	}

	order := g.CreationOrder(target, OrderOptions{
		IncludeOptional: req.IncludeOptional,
		MaxDepth:        req.MaxDepth,
	})

	existing := existingSet(req.ExistingResources)
	inPlan := make(map[Key]bool, len(order.Resources))
	for _, k := range order.Resources {
		if !existing.has(k) {
			inPlan[k] = true
		}
	}

	plan := &types.CreationPlan{
		TargetResource: target.Resource,
		TargetDomain:   target.Domain,
		Steps:          []types.WorkflowStep{},
		Warnings:       append([]string{}, order.Warnings...),
	}

	seenSubs := make(map[string]bool)
	oneOfCount := 0

	for _, k := range order.Resources {
		if !inPlan[k] {
			continue
		}

		step := types.WorkflowStep{
			StepNumber: len(plan.Steps) + 1,
			Domain:     k.Domain,
			Resource:   k.Resource,
			DependsOn:  []string{},
		}

		for _, dep := range g.edges(k, req.IncludeOptional) {
			if inPlan[dep] {
				step.DependsOn = append(step.DependsOn, dep.Resource)
			}
		}

		entry, ok := creates.CreateEntry(k.Domain, k.Resource)
		if ok {
			step.ToolName = entry.Name
			step.Method = entry.UpperMethod()
			step.Path = entry.Path
			step.RequiredFields = entry.RequiredFields
		} else {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("no create operation found for %s", k))
		}

		step.OneOfGroups = oneOfGroupsFor(g, k, entry)
		oneOfCount += len(step.OneOfGroups)
		if len(step.OneOfGroups) > 0 {
			fields := make([]string, len(step.OneOfGroups))
			for i, grp := range step.OneOfGroups {
				fields[i] = grp.ChoiceField
			}
			step.Note = "set exactly one option for: " + strings.Join(fields, ", ")
		}

		if req.ExpandAlternatives {
			plan.Alternatives = append(plan.Alternatives, alternativesFor(step)...)
		}

		if n, ok := g.nodes[k]; ok {
			for _, sub := range g.subscriptionsFor(n) {
				if !seenSubs[sub.Name] {
					seenSubs[sub.Name] = true
					plan.Subscriptions = append(plan.Subscriptions, sub)
				}
			}
		}

		plan.Steps = append(plan.Steps, step)
	}

	plan.Complexity = ClassifyComplexity(len(plan.Steps), oneOfCount)
	return types.ResolveResult{Success: true, Plan: plan}
}

// oneOfGroupsFor prefers graph metadata and falls back to the entry's own
func oneOfGroupsFor(g *Graph, k Key, entry types.Entry) []types.OneOfGroup {
	if n, ok := g.nodes[k]; ok && len(n.oneOfGroups) > 0 {
		return n.oneOfGroups
	}
	return entry.OneOfGroups
}

func alternativesFor(step types.WorkflowStep) []types.PlanAlternative {
	var out []types.PlanAlternative
	for _, grp := range step.OneOfGroups {
		if len(grp.Options) == 0 {
			continue
		}
		chosen := grp.RecommendedOption
		if chosen == "" {
			chosen = grp.Options[0]
		}
		for _, opt := range grp.Options {
			if opt == chosen {
				continue
			}
			out = append(out, types.PlanAlternative{
				StepNumber:  step.StepNumber,
				Resource:    step.Resource,
				ChoiceField: grp.ChoiceField,
				Chosen:      chosen,
				Option:      opt,
				Description: fmt.Sprintf("use %s instead of %s for %s", opt, chosen, grp.ChoiceField),
			})
		}
	}
	return out
}

// existing holds caller-supplied resources, either bare or domain-qualified
type existing struct {
	qualified map[Key]bool
	bare      map[string]bool
}

func existingSet(names []string) existing {
	e := existing{qualified: make(map[Key]bool), bare: make(map[string]bool)}
	for _, name := range names {
		k := ParseKey(strings.TrimSpace(name))
		if k.Domain == "" {
			e.bare[k.Resource] = true
		} else {
			e.qualified[k] = true
		}
	}
	return e
}

func (e existing) has(k Key) bool {
	return e.bare[k.Resource] || e.qualified[k]
}
