package catalogue

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/catalogd/internal/shared/types"
)

const jsonDoc = `{
  "entries": [
    {"name": "origin-pool-create", "domain": "virtual", "resource": "origin-pool",
     "operation": "create", "method": "POST",
     "path": "/api/config/namespaces/{namespace}/origin_pools",
     "requiredFields": ["metadata.name"]}
  ],
  "dependencies": [
    {"domain": "virtual", "resource": "origin-pool",
     "requires": [{"domain": "virtual", "resourceType": "healthcheck", "required": false}]}
  ]
}`

const yamlDoc = `entries:
  - name: http-loadbalancer-create
    domain: virtual
    resource: http-loadbalancer
    operation: create
    method: post
    path: /api/config/namespaces/{namespace}/http_loadbalancers
    dangerLevel: medium
    oneOfGroups:
      - choiceField: loadbalancer_type
        options: [http, https, https_auto_cert]
        recommendedOption: https_auto_cert
dependencies:
  - domain: virtual
    resource: http-loadbalancer
    requires:
      - domain: virtual
        resourceType: origin-pool
        required: true
`

const tomlDoc = `[[entries]]
name = "healthcheck-create"
domain = "virtual"
resource = "healthcheck"
operation = "create"
method = "POST"
path = "/api/config/namespaces/{namespace}/healthchecks"

[schemas.healthcheck]
type = "object"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDecodeFormats(t *testing.T) {
	tests := []struct {
		name    string
		ext     string
		data    string
		entry   string
		wantErr bool
	}{
		{name: "json", ext: ".json", data: jsonDoc, entry: "origin-pool-create"},
		{name: "yaml", ext: ".yaml", data: yamlDoc, entry: "http-loadbalancer-create"},
		{name: "yml", ext: ".YML", data: yamlDoc, entry: "http-loadbalancer-create"},
		{name: "toml", ext: ".toml", data: tomlDoc, entry: "healthcheck-create"},
		{name: "unsupported", ext: ".xml", data: "<x/>", wantErr: true},
		{name: "broken json", ext: ".json", data: "{", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Decode([]byte(tt.data), tt.ext)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, doc.Entries)
			assert.Equal(t, tt.entry, doc.Entries[0].Name)
		})
	}
}

func TestDecodeYAMLNestedFields(t *testing.T) {
	doc, err := Decode([]byte(yamlDoc), ".yaml")
	require.NoError(t, err)

	e := doc.Entries[0]
	assert.Equal(t, types.OperationCreate, e.Operation)
	assert.Equal(t, types.DangerMedium, e.DangerLevel)
	require.Len(t, e.OneOfGroups, 1)
	assert.Equal(t, "https_auto_cert", e.OneOfGroups[0].RecommendedOption)
	assert.Equal(t, []string{"http", "https", "https_auto_cert"}, e.OneOfGroups[0].Options)

	require.Len(t, doc.Dependencies, 1)
	assert.True(t, doc.Dependencies[0].Requires[0].Required)
	assert.Equal(t, "origin-pool", doc.Dependencies[0].Requires[0].ResourceType)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "catalogue.json", jsonDoc)

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	assert.Len(t, c.Dependencies(), 1)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "virtual/pools.json", jsonDoc)
	writeFile(t, dir, "virtual/lb.yaml", yamlDoc)
	writeFile(t, dir, "health/checks.toml", tomlDoc)
	writeFile(t, dir, "README.md", "ignored")

	c, err := LoadDir(context.Background(), dir, "")
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
	assert.Len(t, c.Dependencies(), 2)
	_, ok := c.Schema("healthcheck")
	assert.True(t, ok)
	_, ok = c.CreateEntry("virtual", "http-loadbalancer")
	assert.True(t, ok)
}

func TestLoadDirErrors(t *testing.T) {
	t.Run("empty directory", func(t *testing.T) {
		_, err := LoadDir(context.Background(), t.TempDir(), "")
		assert.ErrorIs(t, err, ErrNoDocuments)
	})

	t.Run("duplicate across documents", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.json", jsonDoc)
		writeFile(t, dir, "b.json", jsonDoc)
		_, err := LoadDir(context.Background(), dir, "*.json")
		assert.ErrorIs(t, err, ErrDuplicateEntry)
	})
}

func TestMergeKeepsFirstSchema(t *testing.T) {
	merged := Merge(
		Document{Schemas: map[string]interface{}{"s": "first"}},
		Document{Schemas: map[string]interface{}{"s": "second"}},
	)
	assert.Equal(t, "first", merged.Schemas["s"])
}
