package search

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/catalogd/internal/shared/types"
	"github.com/GriffinCanCode/catalogd/internal/testutil"
)

func plain(name, summary string) types.Entry {
	return types.Entry{
		Name:      name,
		Domain:    "dd",
		Resource:  "rr",
		Operation: types.OperationGet,
		Summary:   summary,
	}
}

func TestScoreWeights(t *testing.T) {
	idx := Build(sliceSource{
		plain("entry-exact", "balancer"),
		plain("entry-fuzzy", "balancar"),
		plain("entry-prefix", "balancers"),
		plain("entry-none", "firewall"),
	}, DefaultConfig())

	scores := idx.Score("balancer", nil, nil)

	assert.InDelta(t, 1.0, scores["entry-exact"], 1e-9)
	assert.InDelta(t, 0.35, scores["entry-fuzzy"], 1e-9)
	assert.InDelta(t, 0.85, scores["entry-prefix"], 1e-9)
	assert.NotContains(t, scores, "entry-none")

	hits := idx.Search(Query{Text: "balancer"})
	require.Len(t, hits, 3)
	assert.Equal(t, "entry-exact", hits[0].Entry.Name)
	assert.Equal(t, "entry-prefix", hits[1].Entry.Name)
	assert.Equal(t, "entry-fuzzy", hits[2].Entry.Name)
	assert.Equal(t, []string{"balancer"}, hits[0].MatchedTerms)
	assert.Equal(t, []string{"balancer"}, hits[1].MatchedTerms)
	assert.Equal(t, []string{"balancer"}, hits[2].MatchedTerms)
}

func TestMatchedTermsAreQueryTerms(t *testing.T) {
	idx := Build(sliceSource{
		plain("entry-pool", "origin pools"),
	}, DefaultConfig())

	hits := idx.Search(Query{Text: "pool origin healthcheck"})
	require.Len(t, hits, 1)
	assert.Equal(t, []string{"origin", "pool"}, hits[0].MatchedTerms)
}

func TestPunctuatedNamesMatchJoinedAndSplit(t *testing.T) {
	idx := Build(sliceSource{{
		Name:      "origin-pool-get",
		Domain:    "virtual",
		Resource:  "origin-pool",
		Operation: types.OperationGet,
	}}, DefaultConfig())

	for _, q := range []string{"originpool", "origin-pool", "origin pool"} {
		scores := idx.Score(q, nil, nil)
		assert.GreaterOrEqual(t, scores["origin-pool-get"], ExactWeight, q)
	}
}

func TestFuzzyDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fuzzy = false
	idx := Build(sliceSource{
		plain("entry-fuzzy", "balancar"),
		plain("entry-prefix", "balancers"),
	}, cfg)

	scores := idx.Score("balancer", nil, nil)
	assert.NotContains(t, scores, "entry-fuzzy")
	assert.InDelta(t, 0.5, scores["entry-prefix"], 1e-9)
}

func TestScoresAccumulateAcrossTerms(t *testing.T) {
	idx := Build(sliceSource{
		plain("entry-both", "origin pool"),
		plain("entry-one", "origin server"),
	}, DefaultConfig())

	scores := idx.Score("origin pool", nil, nil)
	assert.Greater(t, scores["entry-both"], scores["entry-one"])
	assert.InDelta(t, 2.0, scores["entry-both"], 1e-9)
}

func TestSearchTiesBreakByNameRegardlessOfSourceOrder(t *testing.T) {
	idx := Build(sliceSource{
		plain("zz-pool", "pool"),
		plain("aa-pool", "pool"),
	}, DefaultConfig())

	hits := idx.Search(Query{Text: "pool"})
	require.Len(t, hits, 2)
	assert.Equal(t, hits[0].Score, hits[1].Score)
	assert.Equal(t, "aa-pool", hits[0].Entry.Name)
	assert.Equal(t, []string{"aa-pool", "zz-pool"}, idx.FilterByDomain("dd"))
}

func TestSearchTiesBreakByName(t *testing.T) {
	idx := Build(sliceSource{
		plain("b-entry", "pool"),
		plain("a-entry", "pool"),
		plain("c-entry", "pool"),
	}, DefaultConfig())

	hits := idx.Search(Query{Text: "pool"})
	require.Len(t, hits, 3)
	assert.Equal(t, "a-entry", hits[0].Entry.Name)
	assert.Equal(t, "b-entry", hits[1].Entry.Name)
	assert.Equal(t, "c-entry", hits[2].Entry.Name)
}

func TestSearchCreateLoadBalancer(t *testing.T) {
	idx := Build(testutil.Catalogue(t), DefaultConfig())

	hits := idx.Search(Query{
		Text:       "create load balancer",
		Operations: []types.Operation{types.OperationCreate},
	})

	require.NotEmpty(t, hits)
	for _, h := range hits {
		assert.Equal(t, types.OperationCreate, h.Entry.Operation, h.Entry.Name)
		assert.Greater(t, h.Score, 0.0)
	}
	assert.Equal(t, "http-loadbalancer-create", hits[0].Entry.Name)
}

func TestSearchFilters(t *testing.T) {
	idx := Build(testutil.Catalogue(t), DefaultConfig())

	tests := []struct {
		name  string
		query Query
		check func(t *testing.T, hits []types.SearchHit)
	}{
		{
			name:  "domain filter",
			query: Query{Text: "create", Domains: []string{"waf"}},
			check: func(t *testing.T, hits []types.SearchHit) {
				require.Len(t, hits, 1)
				assert.Equal(t, "app-firewall-create", hits[0].Entry.Name)
			},
		},
		{
			name:  "domain and operation intersect",
			query: Query{Text: "pool", Domains: []string{"virtual"}, Operations: []types.Operation{types.OperationDelete}},
			check: func(t *testing.T, hits []types.SearchHit) {
				require.NotEmpty(t, hits)
				for _, h := range hits {
					assert.Equal(t, types.OperationDelete, h.Entry.Operation)
					assert.Equal(t, "virtual", h.Entry.Domain)
				}
			},
		},
		{
			name:  "exclude dangerous",
			query: Query{Text: "delete", ExcludeDangerous: true},
			check: func(t *testing.T, hits []types.SearchHit) {
				for _, h := range hits {
					assert.NotEqual(t, types.DangerHigh, h.Entry.DangerLevel, h.Entry.Name)
				}
			},
		},
		{
			name:  "limit",
			query: Query{Text: "list", Limit: 2},
			check: func(t *testing.T, hits []types.SearchHit) {
				assert.Len(t, hits, 2)
			},
		},
		{
			name:  "short terms only",
			query: Query{Text: "a b"},
			check: func(t *testing.T, hits []types.SearchHit) {
				assert.Empty(t, hits)
			},
		},
		{
			name:  "unknown domain",
			query: Query{Text: "create", Domains: []string{"nope"}},
			check: func(t *testing.T, hits []types.SearchHit) {
				assert.Empty(t, hits)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, idx.Search(tt.query))
		})
	}
}

func TestExactOutranksNearMatches(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	word := gen.SliceOfN(6, gen.AlphaLowerChar()).Map(func(r []rune) string {
		return string(r)
	})

	properties.Property("exact match beats prefix and fuzzy match", prop.ForAll(
		func(term string) bool {
			idx := Build(sliceSource{
				plain("entry-exact", term),
				plain("entry-near", term+"q"),
			}, DefaultConfig())
			scores := idx.Score(term, nil, nil)
			return scores["entry-exact"] > scores["entry-near"]
		},
		word,
	))

	properties.TestingRun(t)
}
