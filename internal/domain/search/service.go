package search

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/catalogd/internal/infrastructure/logging"
	"github.com/GriffinCanCode/catalogd/internal/shared/types"
)

// Stats describes the currently published index
type Stats struct {
	Built      bool      `json:"built"`
	Generation uint64    `json:"generation"`
	Entries    int       `json:"entries"`
	Terms      int       `json:"terms"`
	BuiltAt    time.Time `json:"builtAt,omitempty"`
}

// Service owns the lifecycle of the search index: lazy first build,
// explicit invalidation and rebuild.
type Service struct {
	source Source
	config Config
	logger *logging.Logger

	current    atomic.Pointer[Index]
	buildMu    sync.Mutex
	generation atomic.Uint64
}

// NewService creates a search service. The index is built on first use.
func NewService(src Source, cfg Config, logger *logging.Logger) *Service {
	return &Service{
		source: src,
		config: cfg.normalized(),
		logger: logger.Component("search"),
	}
}

// Index returns the published index, building it if none exists
func (s *Service) Index() *Index {
	if idx := s.current.Load(); idx != nil {
		return idx
	}

	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	if idx := s.current.Load(); idx != nil {
		return idx
	}
	return s.buildLocked()
}

// Rebuild builds a new index and publishes it. Readers holding the old index
// keep using it undisturbed.
func (s *Service) Rebuild() *Index {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	return s.buildLocked()
}

// Invalidate drops the published index; the next read rebuilds it
func (s *Service) Invalidate() {
	s.current.Store(nil)
	s.logger.Debug("Search index invalidated")
}

func (s *Service) buildLocked() *Index {
	start := time.Now()
	idx := Build(s.source, s.config)
	idx.generation = s.generation.Add(1)
	s.current.Store(idx)

	s.logger.Info("Search index built",
		zap.Uint64("generation", idx.generation),
		zap.Int("entries", idx.Len()),
		zap.Int("terms", idx.TermCount()),
		zap.Duration("duration", time.Since(start)))
	return idx
}

// Search runs a request against the current index
func (s *Service) Search(req types.SearchRequest) []types.SearchHit {
	return s.Index().Search(Query{
		Text:             req.Query,
		Limit:            req.Limit,
		Domains:          req.Domains,
		Operations:       req.Operations,
		ExcludeDangerous: req.ExcludeDangerous,
	})
}

// Stats reports on the published index without triggering a build
func (s *Service) Stats() Stats {
	idx := s.current.Load()
	if idx == nil {
		return Stats{Generation: s.generation.Load()}
	}
	return Stats{
		Built:      true,
		Generation: idx.generation,
		Entries:    idx.Len(),
		Terms:      idx.TermCount(),
		BuiltAt:    idx.builtAt,
	}
}
