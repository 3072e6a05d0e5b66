package search

import (
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring"

	"github.com/GriffinCanCode/catalogd/internal/shared/types"
)

// Query is one search request against an index
type Query struct {
	Text             string
	Limit            int
	Domains          []string
	Operations       []types.Operation
	ExcludeDangerous bool
}

// termMatch is what one query term contributed to one entry
type termMatch struct {
	exact  bool
	fuzzy  float64
	prefix bool
}

func (m termMatch) score() float64 {
	s := m.fuzzy
	if m.exact {
		s += ExactWeight
	}
	if m.prefix {
		s += PrefixWeight
	}
	return s
}

type accumulator struct {
	score   float64
	matched map[string]struct{}
}

// Score ranks every candidate entry for the query terms and returns entry
// name to score. Entries scoring zero are omitted.
func (idx *Index) Score(text string, domains []string, ops []types.Operation) map[string]float64 {
	acc := idx.accumulate(Tokenize(text, idx.config.MinTermLength), idx.candidates(domains, ops))
	out := make(map[string]float64, len(acc))
	for id, a := range acc {
		out[idx.entries[id].Name] = a.score
	}
	return out
}

// Search returns ranked hits, best first, ties broken by entry name
func (idx *Index) Search(q Query) []types.SearchHit {
	terms := Tokenize(q.Text, idx.config.MinTermLength)
	if len(terms) == 0 {
		return []types.SearchHit{}
	}

	acc := idx.accumulate(terms, idx.candidates(q.Domains, q.Operations))

	ids := make([]uint32, 0, len(acc))
	for id := range acc {
		if q.ExcludeDangerous && idx.entries[id].IsDangerous() {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		si, sj := acc[ids[i]].score, acc[ids[j]].score
		if si != sj {
			return si > sj
		}
		return idx.entries[ids[i]].Name < idx.entries[ids[j]].Name
	})

	limit := q.Limit
	if limit <= 0 {
		limit = idx.config.DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}

	hits := make([]types.SearchHit, 0, len(ids))
	for _, id := range ids {
		a := acc[id]
		matched := make([]string, 0, len(a.matched))
		for term := range a.matched {
			matched = append(matched, term)
		}
		sort.Strings(matched)
		hits = append(hits, types.SearchHit{
			Entry:        idx.entries[id],
			Score:        a.score,
			MatchedTerms: matched,
		})
	}
	return hits
}

func (idx *Index) accumulate(terms []string, candidates *roaring.Bitmap) map[uint32]*accumulator {
	acc := make(map[uint32]*accumulator)

	for _, qt := range terms {
		matches := make(map[uint32]*termMatch)
		// matched records the query term, not the indexed term it hit
		touch := func(term string, fn func(*termMatch)) {
			idx.each(term, candidates, func(id uint32) {
				m, ok := matches[id]
				if !ok {
					m = &termMatch{}
					matches[id] = m
				}
				fn(m)
				a, ok := acc[id]
				if !ok {
					a = &accumulator{matched: make(map[string]struct{})}
					acc[id] = a
				}
				a.matched[qt] = struct{}{}
			})
		}

		if _, ok := idx.terms[qt]; ok {
			touch(qt, func(m *termMatch) { m.exact = true })
		}

		if idx.config.Fuzzy {
			for _, fm := range idx.fuzzyTerms(qt) {
				w := fm.weight
				touch(fm.term, func(m *termMatch) {
					if w > m.fuzzy {
						m.fuzzy = w
					}
				})
			}
		}

		for _, term := range idx.prefixTerms(qt) {
			touch(term, func(m *termMatch) { m.prefix = true })
		}

		for id, m := range matches {
			acc[id].score += m.score()
		}
	}

	for id, a := range acc {
		if a.score <= 0 {
			delete(acc, id)
		}
	}
	return acc
}

// each visits the IDs under term, restricted to candidates when non-nil
func (idx *Index) each(term string, candidates *roaring.Bitmap, fn func(uint32)) {
	bm, ok := idx.terms[term]
	if !ok {
		return
	}
	if candidates != nil {
		bm = roaring.And(bm, candidates)
	}
	it := bm.Iterator()
	for it.HasNext() {
		fn(it.Next())
	}
}

type fuzzyMatch struct {
	term   string
	weight float64
}

// fuzzyTerms returns the indexed terms within the edit distance budget of
// qt, excluding qt itself and terms that would score zero
func (idx *Index) fuzzyTerms(qt string) []fuzzyMatch {
	maxDist := idx.config.MaxEditDistance
	n := len([]rune(qt))

	var out []fuzzyMatch
	for l := n - maxDist; l <= n+maxDist; l++ {
		for _, term := range idx.byLength[l] {
			if term == qt {
				continue
			}
			d := Distance(qt, term)
			if d == 0 || d >= maxDist {
				continue
			}
			out = append(out, fuzzyMatch{
				term:   term,
				weight: (1 - float64(d)/float64(maxDist)) * FuzzyWeight,
			})
		}
	}
	return out
}

// prefixTerms returns indexed terms that strictly extend qt
func (idx *Index) prefixTerms(qt string) []string {
	var out []string
	i := sort.SearchStrings(idx.vocabulary, qt)
	for ; i < len(idx.vocabulary) && strings.HasPrefix(idx.vocabulary[i], qt); i++ {
		if idx.vocabulary[i] != qt {
			out = append(out, idx.vocabulary[i])
		}
	}
	return out
}
