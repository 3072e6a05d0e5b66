package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/catalogd/internal/shared/types"
	"github.com/GriffinCanCode/catalogd/internal/testutil"
)

func lbBody(spec map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"metadata": map[string]interface{}{"name": "web", "namespace": "default"},
		"spec":     spec,
	}
}

func paths(issues []Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Path)
	}
	return out
}

func TestValidate(t *testing.T) {
	cat := testutil.Catalogue(t)
	v := New(cat, DefaultLimits())
	create, _ := cat.Get("http-loadbalancer-create")
	list, _ := cat.Get("http-loadbalancer-list")
	get, _ := cat.Get("http-loadbalancer-get")

	tests := []struct {
		name         string
		entry        types.Entry
		req          types.ExecuteRequest
		valid        bool
		errorPaths   []string
		warningPaths []string
	}{
		{
			name:  "valid create",
			entry: create,
			req: types.ExecuteRequest{
				PathParams: map[string]string{"namespace": "default"},
				Body:       lbBody(map[string]interface{}{"https_auto_cert": map[string]interface{}{}}),
			},
			valid:        true,
			errorPaths:   []string{},
			warningPaths: []string{},
		},
		{
			name:         "missing path parameter",
			entry:        get,
			req:          types.ExecuteRequest{PathParams: map[string]string{"namespace": "default", "extra": "x"}},
			errorPaths:   []string{"pathParams.name"},
			warningPaths: []string{"pathParams.extra"},
		},
		{
			name:  "unknown query parameter",
			entry: list,
			req: types.ExecuteRequest{
				PathParams:  map[string]string{"namespace": "default"},
				QueryParams: map[string]interface{}{"label_filter": "a", "page": 2.0},
			},
			errorPaths:   []string{"queryParams.page"},
			warningPaths: []string{},
		},
		{
			name:         "create without body",
			entry:        create,
			req:          types.ExecuteRequest{PathParams: map[string]string{"namespace": "default"}},
			errorPaths:   []string{"body"},
			warningPaths: []string{},
		},
		{
			name:  "conflicting oneOf options",
			entry: create,
			req: types.ExecuteRequest{
				PathParams: map[string]string{"namespace": "default"},
				Body: lbBody(map[string]interface{}{
					"http":  map[string]interface{}{},
					"https": map[string]interface{}{},
				}),
			},
			errorPaths:   []string{"body.loadbalancer_type"},
			warningPaths: []string{},
		},
		{
			name:  "no oneOf option warns",
			entry: create,
			req: types.ExecuteRequest{
				PathParams: map[string]string{"namespace": "default"},
				Body:       lbBody(map[string]interface{}{}),
			},
			valid:        true,
			errorPaths:   []string{},
			warningPaths: []string{"body.loadbalancer_type"},
		},
		{
			name:  "body on GET warns",
			entry: list,
			req: types.ExecuteRequest{
				PathParams: map[string]string{"namespace": "default"},
				Body:       map[string]interface{}{"x": 1.0},
			},
			valid:        true,
			errorPaths:   []string{},
			warningPaths: []string{"body"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := v.Validate(tt.entry, tt.req)
			assert.Equal(t, tt.valid, report.Valid)
			assert.Equal(t, tt.errorPaths, paths(report.Errors))
			assert.Equal(t, tt.warningPaths, paths(report.Warnings))
			assert.Equal(t, tt.entry.Name, report.ToolName)
			require.NotNil(t, report.ToolInfo)
		})
	}
}

func TestValidateSchemaAndRequiredFields(t *testing.T) {
	cat := testutil.Catalogue(t)
	v := New(cat, DefaultLimits())
	create, _ := cat.Get("http-loadbalancer-create")

	report := v.Validate(create, types.ExecuteRequest{
		PathParams: map[string]string{"namespace": "default"},
		Body: map[string]interface{}{
			"metadata": map[string]interface{}{"namespace": "default"},
			"spec": map[string]interface{}{
				"domains":         []interface{}{"a.example.com", 42.0},
				"https_auto_cert": map[string]interface{}{},
			},
		},
	})

	assert.False(t, report.Valid)
	got := paths(report.Errors)
	assert.Contains(t, got, "body.metadata")
	assert.Contains(t, got, "body.spec.domains.1")
	assert.Contains(t, got, "body.metadata.name")
	for _, issue := range report.Errors {
		assert.NotEmpty(t, issue.Message)
	}

	// Compiled schemas are reused.
	_, err := v.schema("http-loadbalancer")
	require.NoError(t, err)
	assert.Len(t, v.compiled, 1)
}

func TestValidateBrokenSchemaWarns(t *testing.T) {
	v := New(staticSchemas{"bad": map[string]interface{}{"type": 12.0}}, DefaultLimits())
	entry := types.Entry{
		Name:           "thing-create",
		Method:         "POST",
		Path:           "/things",
		Operation:      types.OperationCreate,
		RequestBodyRef: "bad",
	}

	report := v.Validate(entry, types.ExecuteRequest{Body: map[string]interface{}{}})
	assert.True(t, report.Valid)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0].Message, "unavailable")
}

type staticSchemas map[string]interface{}

func (s staticSchemas) Schema(ref string) (interface{}, bool) {
	v, ok := s[ref]
	return v, ok
}

func TestLookup(t *testing.T) {
	body := map[string]interface{}{
		"metadata": map[string]interface{}{"name": "web", "labels": nil},
	}
	v, ok := Lookup(body, "metadata.name")
	assert.True(t, ok)
	assert.Equal(t, "web", v)

	_, ok = Lookup(body, "metadata.labels")
	assert.False(t, ok)
	_, ok = Lookup(body, "metadata.name.first")
	assert.False(t, ok)
	_, ok = Lookup("scalar", "a")
	assert.False(t, ok)
}
