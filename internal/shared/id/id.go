// Package id generates the ULID identifiers attached to requests and
// remote calls.
//
// IDs are prefixed by kind (req_, call_) so they read well in logs, and
// ULIDs keep them sortable by creation time.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// RequestID identifies one inbound API or stdio request
type RequestID string

// CallID identifies one dispatched remote call
type CallID string

const (
	RequestPrefix = "req"
	CallPrefix    = "call"
)

func (id RequestID) String() string { return string(id) }
func (id CallID) String() string    { return string(id) }

// Generator produces monotonic ULIDs; safe for concurrent use
type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator(rand.Reader)
	})
	return defaultGenerator
}

// NewGenerator creates a generator over the given entropy source
func NewGenerator(entropy io.Reader) *Generator {
	return &Generator{
		entropy: ulid.Monotonic(entropy, 0),
		now:     time.Now,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// WithPrefix creates a "prefix_ULID" string
func (g *Generator) WithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewRequestID generates a request ID
func NewRequestID() RequestID {
	return RequestID(Default().WithPrefix(RequestPrefix))
}

// NewCallID generates a call ID
func NewCallID() CallID {
	return CallID(Default().WithPrefix(CallPrefix))
}

// Parse extracts the ULID from a bare or prefixed ID
func Parse(s string) (ulid.ULID, error) {
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		s = s[i+1:]
	}
	return ulid.Parse(s)
}

// IsValid reports whether s is a bare or prefixed ULID
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Timestamp returns when the ID was generated
func Timestamp(s string) (time.Time, error) {
	parsed, err := Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
