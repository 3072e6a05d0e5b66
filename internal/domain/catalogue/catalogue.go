package catalogue

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/GriffinCanCode/catalogd/internal/shared/types"
)

var (
	ErrDuplicateEntry = errors.New("duplicate catalogue entry")
	ErrInvalidEntry   = errors.New("invalid catalogue entry")
	ErrNoDocuments    = errors.New("no catalogue documents found")
)

// Document is the on-disk shape of a catalogue
type Document struct {
	Entries      []types.Entry            `json:"entries"`
	Dependencies []types.DependencyRecord `json:"dependencies,omitempty"`
	Schemas      map[string]interface{}   `json:"schemas,omitempty"`
}

type resourceKey struct {
	domain   string
	resource string
}

// Catalogue is an immutable list of entries keyed by name
type Catalogue struct {
	entries []types.Entry
	byName  map[string]int
	creates map[resourceKey]int
	deps    []types.DependencyRecord
	schemas map[string]interface{}
}

// New validates entries and builds a catalogue. Entries are sorted by name.
func New(entries []types.Entry, deps []types.DependencyRecord, schemas map[string]interface{}) (*Catalogue, error) {
	sorted := make([]types.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	c := &Catalogue{
		entries: sorted,
		byName:  make(map[string]int, len(sorted)),
		creates: make(map[resourceKey]int),
		deps:    append([]types.DependencyRecord(nil), deps...),
		schemas: make(map[string]interface{}, len(schemas)),
	}

	for i := range c.entries {
		e := &c.entries[i]
		e.Method = e.UpperMethod()
		if err := validateEntry(*e); err != nil {
			return nil, err
		}
		if _, exists := c.byName[e.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEntry, e.Name)
		}
		c.byName[e.Name] = i

		if e.Operation == types.OperationCreate {
			key := resourceKey{domain: e.Domain, resource: e.Resource}
			if _, exists := c.creates[key]; !exists {
				c.creates[key] = i
			}
		}
	}

	for i, d := range c.deps {
		if d.Domain == "" || d.Resource == "" {
			return nil, fmt.Errorf("%w: dependency record %d needs domain and resource", ErrInvalidEntry, i)
		}
	}

	for ref, schema := range schemas {
		c.schemas[ref] = schema
	}

	return c, nil
}

// FromDocument builds a catalogue from a decoded document
func FromDocument(doc Document) (*Catalogue, error) {
	return New(doc.Entries, doc.Dependencies, doc.Schemas)
}

func validateEntry(e types.Entry) error {
	switch {
	case strings.TrimSpace(e.Name) == "":
		return fmt.Errorf("%w: empty name", ErrInvalidEntry)
	case e.Domain == "" || e.Resource == "":
		return fmt.Errorf("%w: %s needs domain and resource", ErrInvalidEntry, e.Name)
	case !e.Operation.Valid():
		return fmt.Errorf("%w: %s has unknown operation %q", ErrInvalidEntry, e.Name, e.Operation)
	case e.Method == "":
		return fmt.Errorf("%w: %s has no HTTP method", ErrInvalidEntry, e.Name)
	case !strings.HasPrefix(e.Path, "/"):
		return fmt.Errorf("%w: %s path must start with /", ErrInvalidEntry, e.Name)
	}
	return nil
}

// Len returns the number of entries
func (c *Catalogue) Len() int {
	return len(c.entries)
}

// Get looks up an entry by name
func (c *Catalogue) Get(name string) (types.Entry, bool) {
	i, ok := c.byName[name]
	if !ok {
		return types.Entry{}, false
	}
	return c.entries[i], true
}

// Entries returns a copy of all entries, sorted by name
func (c *Catalogue) Entries() []types.Entry {
	out := make([]types.Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Each calls fn for every entry in name order without copying the list
func (c *Catalogue) Each(fn func(types.Entry)) {
	for _, e := range c.entries {
		fn(e)
	}
}

// CreateEntry returns the create operation for a resource, if any
func (c *Catalogue) CreateEntry(domain, resource string) (types.Entry, bool) {
	i, ok := c.creates[resourceKey{domain: domain, resource: resource}]
	if !ok {
		return types.Entry{}, false
	}
	return c.entries[i], true
}

// Dependencies returns a copy of the dependency records
func (c *Catalogue) Dependencies() []types.DependencyRecord {
	return append([]types.DependencyRecord(nil), c.deps...)
}

// Schema returns the request-body schema registered under ref
func (c *Catalogue) Schema(ref string) (interface{}, bool) {
	s, ok := c.schemas[ref]
	return s, ok
}

// Domains returns the sorted set of domains present in the catalogue
func (c *Catalogue) Domains() []string {
	seen := make(map[string]struct{})
	for _, e := range c.entries {
		seen[e.Domain] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
