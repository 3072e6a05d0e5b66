package search

import (
	"sort"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring"

	"github.com/GriffinCanCode/catalogd/internal/shared/types"
)

// Index is an immutable inverted index over a catalogue snapshot
type Index struct {
	config     Config
	entries    []types.Entry
	toolsByID  map[string]uint32
	terms      map[string]*roaring.Bitmap
	domains    map[string]*roaring.Bitmap
	operations map[types.Operation]*roaring.Bitmap
	vocabulary []string
	byLength   map[int][]string
	generation uint64
	builtAt    time.Time
}

// Source is the read side of a catalogue the index is built from
type Source interface {
	Each(fn func(types.Entry))
}

// Build indexes every entry of src. IDs follow src order; ranking does not
// depend on it.
func Build(src Source, cfg Config) *Index {
	cfg = cfg.normalized()
	idx := &Index{
		config:     cfg,
		toolsByID:  make(map[string]uint32),
		terms:      make(map[string]*roaring.Bitmap),
		domains:    make(map[string]*roaring.Bitmap),
		operations: make(map[types.Operation]*roaring.Bitmap),
		byLength:   make(map[int][]string),
		builtAt:    time.Now(),
	}

	src.Each(func(e types.Entry) {
		id := uint32(len(idx.entries))
		idx.entries = append(idx.entries, e)
		idx.toolsByID[e.Name] = id

		for _, term := range IndexTerms(documentText(e), cfg.MinTermLength) {
			bitmapFor(idx.terms, term).Add(id)
		}
		bitmapFor(idx.domains, e.Domain).Add(id)
		opBitmap, ok := idx.operations[e.Operation]
		if !ok {
			opBitmap = roaring.New()
			idx.operations[e.Operation] = opBitmap
		}
		opBitmap.Add(id)
	})

	idx.vocabulary = make([]string, 0, len(idx.terms))
	for term := range idx.terms {
		idx.vocabulary = append(idx.vocabulary, term)
	}
	sort.Strings(idx.vocabulary)
	for _, term := range idx.vocabulary {
		n := len([]rune(term))
		idx.byLength[n] = append(idx.byLength[n], term)
	}

	for _, bm := range idx.terms {
		bm.RunOptimize()
	}

	return idx
}

func documentText(e types.Entry) string {
	return strings.Join([]string{
		e.Name,
		e.Domain,
		e.Resource,
		string(e.Operation),
		e.Summary,
	}, " ")
}

func bitmapFor(m map[string]*roaring.Bitmap, key string) *roaring.Bitmap {
	bm, ok := m[key]
	if !ok {
		bm = roaring.New()
		m[key] = bm
	}
	return bm
}

// Len returns the number of indexed entries
func (idx *Index) Len() int {
	return len(idx.entries)
}

// TermCount returns the vocabulary size
func (idx *Index) TermCount() int {
	return len(idx.vocabulary)
}

// Generation is the monotonically increasing build number assigned by
// Service. Indexes built directly with Build report zero.
func (idx *Index) Generation() uint64 {
	return idx.generation
}

// BuiltAt returns the build timestamp
func (idx *Index) BuiltAt() time.Time {
	return idx.builtAt
}

// Lookup returns the entry indexed under name
func (idx *Index) Lookup(name string) (types.Entry, bool) {
	id, ok := idx.toolsByID[name]
	if !ok {
		return types.Entry{}, false
	}
	return idx.entries[id], true
}

// FilterByDomain returns the entry names in a domain, in name order
func (idx *Index) FilterByDomain(domain string) []string {
	return idx.names(idx.domains[domain])
}

// FilterByOperation returns the entry names for an operation, in name order
func (idx *Index) FilterByOperation(op types.Operation) []string {
	return idx.names(idx.operations[op])
}

func (idx *Index) names(bm *roaring.Bitmap) []string {
	if bm == nil {
		return nil
	}
	out := make([]string, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, idx.entries[it.Next()].Name)
	}
	sort.Strings(out)
	return out
}

// candidates intersects the domain and operation filters. A nil result
// means no filter applies.
func (idx *Index) candidates(domains []string, ops []types.Operation) *roaring.Bitmap {
	var result *roaring.Bitmap

	if len(domains) > 0 {
		union := roaring.New()
		for _, d := range domains {
			if bm, ok := idx.domains[d]; ok {
				union.Or(bm)
			}
		}
		result = union
	}

	if len(ops) > 0 {
		union := roaring.New()
		for _, op := range ops {
			if bm, ok := idx.operations[op]; ok {
				union.Or(bm)
			}
		}
		if result == nil {
			result = union
		} else {
			result.And(union)
		}
	}

	return result
}
