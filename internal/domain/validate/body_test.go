package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nested(levels int) interface{} {
	var v interface{} = "leaf"
	for i := 0; i < levels; i++ {
		v = map[string]interface{}{"n": v}
	}
	return v
}

func TestCheckBody(t *testing.T) {
	tests := []struct {
		name    string
		body    interface{}
		limits  Limits
		wantErr string
	}{
		{name: "nil body", body: nil},
		{name: "small object", body: map[string]interface{}{"a": 1.0}},
		{name: "at depth limit", body: nested(4), limits: Limits{MaxDepth: 4}},
		{name: "too deep", body: nested(5), limits: Limits{MaxDepth: 4}, wantErr: "nesting exceeds 4"},
		{name: "too deep in array", body: []interface{}{nested(4)}, limits: Limits{MaxDepth: 4}, wantErr: "nesting"},
		{
			name:    "too large",
			body:    map[string]interface{}{"blob": strings.Repeat("x", 200)},
			limits:  Limits{MaxBytes: 100},
			wantErr: "limit is 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckBody(tt.body, tt.limits)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var verr *Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "body", verr.Hint.Path)
			assert.NotEmpty(t, verr.Hint.Expected)
			assert.NotEmpty(t, verr.Hint.Actual)
		})
	}
}

func TestDefaultLimits(t *testing.T) {
	assert.Equal(t, Limits{MaxBytes: 1 << 20, MaxDepth: 32}, DefaultLimits())
	assert.NoError(t, CheckBody(nested(32), Limits{}))
	assert.Error(t, CheckBody(nested(33), Limits{}))
}
