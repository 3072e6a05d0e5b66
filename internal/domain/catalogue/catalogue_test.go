package catalogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/catalogd/internal/shared/types"
)

func entry(name, domain, resource string, op types.Operation, method, path string) types.Entry {
	return types.Entry{
		Name:      name,
		Domain:    domain,
		Resource:  resource,
		Operation: op,
		Method:    method,
		Path:      path,
	}
}

func TestNew(t *testing.T) {
	entries := []types.Entry{
		entry("origin-pool-create", "virtual", "origin-pool", types.OperationCreate, "post", "/api/config/namespaces/{namespace}/origin_pools"),
		entry("http-loadbalancer-list", "virtual", "http-loadbalancer", types.OperationList, "GET", "/api/config/namespaces/{namespace}/http_loadbalancers"),
		entry("http-loadbalancer-create", "virtual", "http-loadbalancer", types.OperationCreate, "POST", "/api/config/namespaces/{namespace}/http_loadbalancers"),
	}

	c, err := New(entries, nil, map[string]interface{}{"lb": map[string]interface{}{"type": "object"}})
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
	names := []string{}
	c.Each(func(e types.Entry) { names = append(names, e.Name) })
	assert.Equal(t, []string{"http-loadbalancer-create", "http-loadbalancer-list", "origin-pool-create"}, names)

	got, ok := c.Get("origin-pool-create")
	require.True(t, ok)
	assert.Equal(t, "POST", got.Method)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	create, ok := c.CreateEntry("virtual", "http-loadbalancer")
	require.True(t, ok)
	assert.Equal(t, "http-loadbalancer-create", create.Name)

	_, ok = c.CreateEntry("virtual", "healthcheck")
	assert.False(t, ok)

	_, ok = c.Schema("lb")
	assert.True(t, ok)
	assert.Equal(t, []string{"virtual"}, c.Domains())
}

func TestNewRejectsBadEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []types.Entry
		want    error
	}{
		{
			name: "duplicate name",
			entries: []types.Entry{
				entry("a", "d", "r", types.OperationGet, "GET", "/x"),
				entry("a", "d", "r", types.OperationList, "GET", "/y"),
			},
			want: ErrDuplicateEntry,
		},
		{
			name:    "empty name",
			entries: []types.Entry{entry(" ", "d", "r", types.OperationGet, "GET", "/x")},
			want:    ErrInvalidEntry,
		},
		{
			name:    "unknown operation",
			entries: []types.Entry{entry("a", "d", "r", "patch", "PATCH", "/x")},
			want:    ErrInvalidEntry,
		},
		{
			name:    "relative path",
			entries: []types.Entry{entry("a", "d", "r", types.OperationGet, "GET", "x")},
			want:    ErrInvalidEntry,
		},
		{
			name:    "missing method",
			entries: []types.Entry{entry("a", "d", "r", types.OperationGet, "", "/x")},
			want:    ErrInvalidEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.entries, nil, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	c, err := New([]types.Entry{entry("a", "d", "r", types.OperationGet, "GET", "/x")}, nil, nil)
	require.NoError(t, err)

	list := c.Entries()
	list[0].Name = "changed"

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", got.Name)
}
