package search

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/catalogd/internal/infrastructure/logging"
	"github.com/GriffinCanCode/catalogd/internal/shared/types"
	"github.com/GriffinCanCode/catalogd/internal/testutil"
)

func TestServiceLifecycle(t *testing.T) {
	svc := NewService(testutil.Catalogue(t), DefaultConfig(), logging.NewNop())

	stats := svc.Stats()
	assert.False(t, stats.Built)

	first := svc.Index()
	assert.Equal(t, uint64(1), first.Generation())
	assert.Same(t, first, svc.Index())
	assert.True(t, svc.Stats().Built)

	second := svc.Rebuild()
	assert.Equal(t, uint64(2), second.Generation())
	assert.NotSame(t, first, second)
	assert.Equal(t, first.Len(), second.Len())

	svc.Invalidate()
	assert.False(t, svc.Stats().Built)
	assert.Equal(t, uint64(2), svc.Stats().Generation)

	third := svc.Index()
	assert.Equal(t, uint64(3), third.Generation())

	// Old snapshots stay usable after a swap.
	assert.NotEmpty(t, first.Search(Query{Text: "pool"}))
}

func TestServiceSearch(t *testing.T) {
	svc := NewService(testutil.Catalogue(t), DefaultConfig(), nil)

	hits := svc.Search(types.SearchRequest{
		Query:      "origin pool",
		Operations: []types.Operation{types.OperationGet},
	})
	require.Len(t, hits, 1)
	assert.Equal(t, "origin-pool-get", hits[0].Entry.Name)
}

func TestServiceConcurrentFirstBuild(t *testing.T) {
	svc := NewService(testutil.Catalogue(t), DefaultConfig(), logging.NewNop())

	var wg sync.WaitGroup
	results := make([]*Index, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.Index()
		}(i)
	}
	wg.Wait()

	for _, idx := range results {
		assert.Same(t, results[0], idx)
	}
	assert.Equal(t, uint64(1), svc.Stats().Generation)
}
