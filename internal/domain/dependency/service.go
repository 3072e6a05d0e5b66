package dependency

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/catalogd/internal/infrastructure/logging"
	"github.com/GriffinCanCode/catalogd/internal/shared/types"
)

// Source supplies dependency records and create-operation lookups
type Source interface {
	CreateLookup
	Dependencies() []types.DependencyRecord
}

// Service owns the dependency graph: built on first use, dropped by Clear.
type Service struct {
	source Source
	logger *logging.Logger

	graph   atomic.Pointer[Graph]
	buildMu sync.Mutex
}

// NewService creates a dependency service
func NewService(src Source, logger *logging.Logger) *Service {
	return &Service{
		source: src,
		logger: logger.Component("dependency"),
	}
}

// Graph returns the published graph, building it if necessary
func (s *Service) Graph() *Graph {
	if g := s.graph.Load(); g != nil {
		return g
	}

	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	if g := s.graph.Load(); g != nil {
		return g
	}

	g := NewGraph(s.source.Dependencies())
	s.graph.Store(g)
	s.logger.Info("Dependency graph built", zap.Int("resources", g.Len()))
	return g
}

// Clear drops the graph; the next call rebuilds it
func (s *Service) Clear() {
	s.graph.Store(nil)
}

// Loaded reports whether a graph is currently published
func (s *Service) Loaded() bool {
	return s.graph.Load() != nil
}

// Dependencies returns the adjacency of one resource
func (s *Service) Dependencies(domain, resource string) (types.ResourceDependencies, bool) {
	return s.Graph().Dependencies(domain, resource)
}

// Requires returns the prerequisites of a resource, or nil when unknown
func (s *Service) Requires(domain, resource string) []types.ResourceRef {
	deps, ok := s.Dependencies(domain, resource)
	if !ok {
		return nil
	}
	return deps.Requires
}

// CreationOrder returns "domain/resource" identifiers, prerequisites first
func (s *Service) CreationOrder(domain, resource string, opts OrderOptions) Order {
	return s.Graph().CreationOrder(Key{Domain: domain, Resource: resource}, opts)
}

// Resolve builds a creation plan
func (s *Service) Resolve(req types.ResolveRequest) types.ResolveResult {
	result := BuildPlan(s.Graph(), s.source, req)
	if !result.Success {
		s.logger.Debug("Dependency resolution failed",
			zap.String("resource", req.Resource),
			zap.String("domain", req.Domain),
			zap.String("error", result.Error))
		return result
	}
	if len(result.Plan.Warnings) > 0 {
		s.logger.Warn("Creation plan has warnings",
			zap.String("resource", req.Resource),
			zap.Strings("warnings", result.Plan.Warnings))
	}
	return result
}
