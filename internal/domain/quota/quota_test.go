package quota

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/catalogd/internal/infrastructure/transport"
	"github.com/GriffinCanCode/catalogd/internal/shared/types"
	"github.com/GriffinCanCode/catalogd/internal/testutil"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		used, limit int64
		want        types.QuotaThreshold
	}{
		{"unlimited", 100, 0, types.QuotaGreen},
		{"negative limit", 5, -1, types.QuotaGreen},
		{"plenty left", 3, 10, types.QuotaGreen},
		{"just under warning", 79, 100, types.QuotaGreen},
		{"at warning", 8, 10, types.QuotaYellow},
		{"one left", 9, 10, types.QuotaYellow},
		{"at limit", 10, 10, types.QuotaRed},
		{"over limit", 12, 10, types.QuotaRed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.used, tt.limit))
		})
	}
}

func TestResultAndFormat(t *testing.T) {
	r := Result("default", "origin-pool", 10, 10)
	assert.False(t, r.Allowed)
	assert.Equal(t, types.QuotaRed, r.QuotaInfo.Threshold)

	msg := FormatExceeded(r.QuotaInfo)
	assert.Contains(t, msg, "origin-pool")
	assert.Contains(t, msg, `"default"`)
	assert.Contains(t, msg, "10 of 10")

	assert.True(t, Result("default", "origin-pool", 9, 10).Allowed)
}

const usage = `{"quota_usage": {
  "origin_pool": {"limit": {"maximum": 10}, "usage": {"current": 8}},
  "http-loadbalancer": {"limit": {"maximum": 5}, "usage": {"current": 5}}
}}`

func TestRemoteChecker(t *testing.T) {
	remote := &testutil.MockRemote{Base: "https://tenant.example.com/api"}
	remote.On("Do", mock.Anything, transport.Request{
		Method: "GET",
		Path:   "/web/namespaces/team%20a/quota/usage",
	}).Return(testutil.JSONResponse(200, usage), nil)

	checker := NewRemoteChecker(remote)

	tests := []struct {
		resource string
		want     types.QuotaThreshold
		allowed  bool
		limit    int64
	}{
		{"origin-pool", types.QuotaYellow, true, 10},
		{"http-loadbalancer", types.QuotaRed, false, 5},
		{"healthcheck", types.QuotaGreen, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.resource, func(t *testing.T) {
			res, err := checker.Check(context.Background(), "team a", tt.resource)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.QuotaInfo.Threshold)
			assert.Equal(t, tt.allowed, res.Allowed)
			assert.Equal(t, tt.limit, res.QuotaInfo.Limit)
			assert.Equal(t, "team a", res.QuotaInfo.Namespace)
		})
	}
	remote.AssertExpectations(t)
}

func TestRemoteCheckerErrors(t *testing.T) {
	tests := []struct {
		name string
		resp *transport.Response
		err  error
	}{
		{"transport error", nil, errors.New("dial tcp: refused")},
		{"non-200", testutil.JSONResponse(403, `{}`), nil},
		{"bad body", testutil.JSONResponse(200, `not json`), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &testutil.MockRemote{Base: "https://tenant.example.com"}
			remote.On("Do", mock.Anything, mock.Anything).Return(tt.resp, tt.err)

			_, err := NewRemoteChecker(remote).Check(context.Background(), "default", "origin-pool")
			assert.Error(t, err)
		})
	}
}

func TestCheckerFunc(t *testing.T) {
	var c Checker = CheckerFunc(func(_ context.Context, ns, res string) (types.QuotaCheckResult, error) {
		return Result(ns, res, 1, 2), nil
	})
	r, err := c.Check(context.Background(), "default", "origin-pool")
	require.NoError(t, err)
	assert.True(t, r.Allowed)
}
