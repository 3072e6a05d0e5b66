package dispatch

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/catalogd/internal/domain/quota"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/cache"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/ratelimit"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/transport"
	"github.com/GriffinCanCode/catalogd/internal/shared/id"
	"github.com/GriffinCanCode/catalogd/internal/shared/types"
	"github.com/GriffinCanCode/catalogd/internal/testutil"
)

const (
	baseURL  = "https://tenant.example.com/api"
	poolsURL = "/config/namespaces/default/origin_pools"
)

type fixture struct {
	d      *Dispatcher
	remote *testutil.MockRemote
	quota  *testutil.MockQuotaChecker
	cache  *cache.Cache
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	remote := &testutil.MockRemote{Base: baseURL}
	checker := &testutil.MockQuotaChecker{}
	responses := cache.New(cache.DefaultConfig())
	limiter := ratelimit.New(ratelimit.Config{RequestsPerMinute: 6000, Burst: 100})

	d := New(testutil.Catalogue(t), limiter, responses, cfg,
		WithRemote(remote),
		WithQuota(checker),
	)
	return &fixture{d: d, remote: remote, quota: checker, cache: responses}
}

func execution(t *testing.T, o types.Outcome) *types.ExecutionResult {
	t.Helper()
	require.Equal(t, types.OutcomeExecution, o.Kind)
	require.NotNil(t, o.Execution)
	return o.Execution
}

func getPools() transport.Request {
	return transport.Request{Method: http.MethodGet, Path: poolsURL}
}

func TestDocumentationModeWithoutCredentials(t *testing.T) {
	d := New(testutil.Catalogue(t), nil, nil, Config{})

	o := d.Execute(context.Background(), types.ExecuteRequest{
		ToolName:   "http-loadbalancer-list",
		PathParams: map[string]string{"namespace": "default"},
	}, nil)

	require.Equal(t, types.OutcomeDocumentation, o.Kind)
	doc := o.Documentation
	assert.Contains(t, doc.ExampleCommand, "-X GET")
	assert.Contains(t, doc.ExampleCommand, "/namespaces/default/http_loadbalancers")
	assert.Equal(t, "GET", doc.Method)
	assert.Empty(t, doc.MissingPathParams)
}

func TestDocumentationModeListsMissingParams(t *testing.T) {
	d := New(testutil.Catalogue(t), nil, nil, Config{})
	body := map[string]interface{}{"metadata": map[string]interface{}{"name": "it's"}}

	o := d.Execute(context.Background(), types.ExecuteRequest{
		ToolName:    "origin-pool-get",
		PathParams:  map[string]string{"namespace": "team a"},
		QueryParams: map[string]interface{}{"report_fields": []string{"a", "b"}},
		Body:        body,
	}, nil)

	require.Equal(t, types.OutcomeDocumentation, o.Kind)
	doc := o.Documentation
	assert.Equal(t, []string{"name"}, doc.MissingPathParams)
	assert.Equal(t, "/api/config/namespaces/team%20a/origin_pools/{name}?report_fields=a&report_fields=b", doc.Path)
	assert.Contains(t, doc.Message, "Missing path parameters: name")
	assert.Contains(t, doc.ExampleCommand, `-d '{"metadata":{"name":"it'\''s"}}'`)
}

func TestUnusableCredentialsDocument(t *testing.T) {
	f := newFixture(t, Config{})
	o := f.d.Execute(context.Background(), types.ExecuteRequest{
		ToolName:   "origin-pool-list",
		PathParams: map[string]string{"namespace": "default"},
	}, &transport.Credentials{APIURL: "https://tenant.example.com/api"})

	assert.Equal(t, types.OutcomeDocumentation, o.Kind)
	f.remote.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
}

func TestUnknownTool(t *testing.T) {
	f := newFixture(t, Config{})
	r := execution(t, f.d.Execute(context.Background(), types.ExecuteRequest{ToolName: "nope"}, nil))

	assert.False(t, r.Success)
	assert.Equal(t, types.ErrorKindNotFound, r.ErrorKind)
	assert.Equal(t, "toolName", r.Hint.Path)
	assert.True(t, id.IsValid(r.RequestID))
	f.remote.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
}

func TestRepeatedGetIsServedFromCache(t *testing.T) {
	f := newFixture(t, Config{})
	f.remote.On("Do", mock.Anything, getPools()).
		Return(testutil.JSONResponse(200, `{"items":[{"name":"pool-a"}]}`), nil).Once()

	req := types.ExecuteRequest{ToolName: "origin-pool-list", PathParams: map[string]string{"namespace": "default"}}
	first := execution(t, f.d.Execute(context.Background(), req, nil))
	hitsBefore := f.cache.Stats().Hits
	second := execution(t, f.d.Execute(context.Background(), req, nil))

	assert.True(t, first.Success)
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.StatusCode, second.StatusCode)
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, hitsBefore+1, f.cache.Stats().Hits)
	f.remote.AssertExpectations(t)
}

func TestMutationInvalidatesCachedRead(t *testing.T) {
	f := newFixture(t, Config{})
	f.remote.On("Do", mock.Anything, getPools()).
		Return(testutil.JSONResponse(200, `{"items":[]}`), nil).Twice()
	f.remote.On("Do", mock.Anything, mock.MatchedBy(func(r transport.Request) bool {
		return r.Method == http.MethodPost && r.Path == poolsURL
	})).Return(testutil.JSONResponse(200, `{"metadata":{"name":"pool-a"}}`), nil).Once()

	list := types.ExecuteRequest{ToolName: "origin-pool-list", PathParams: map[string]string{"namespace": "default"}}
	create := types.ExecuteRequest{
		ToolName:   "origin-pool-create",
		PathParams: map[string]string{"namespace": "default"},
		Body:       map[string]interface{}{"metadata": map[string]interface{}{"name": "pool-a"}},
	}

	execution(t, f.d.Execute(context.Background(), list, nil))
	require.Equal(t, 1, f.cache.Len())

	created := execution(t, f.d.Execute(context.Background(), create, nil))
	assert.True(t, created.Success)
	assert.Equal(t, 0, f.cache.Len())

	again := execution(t, f.d.Execute(context.Background(), list, nil))
	assert.False(t, again.Cached)
	f.remote.AssertExpectations(t)
}

func TestQueryStringIsPartOfCacheKey(t *testing.T) {
	f := newFixture(t, Config{})
	f.remote.On("Do", mock.Anything, transport.Request{Method: http.MethodGet, Path: poolsURL + "?label_filter=env%3Dprod"}).
		Return(testutil.JSONResponse(200, `{"items":[]}`), nil).Once()

	req := types.ExecuteRequest{
		ToolName:    "origin-pool-list",
		PathParams:  map[string]string{"namespace": "default"},
		QueryParams: map[string]interface{}{"label_filter": "env=prod"},
	}
	execution(t, f.d.Execute(context.Background(), req, nil))
	r := execution(t, f.d.Execute(context.Background(), req, nil))

	assert.True(t, r.Cached)
	assert.Equal(t, 1, f.cache.InvalidatePath(poolsURL))
}

func TestMissingPathParameter(t *testing.T) {
	f := newFixture(t, Config{})
	r := execution(t, f.d.Execute(context.Background(), types.ExecuteRequest{
		ToolName:   "origin-pool-get",
		PathParams: map[string]string{"namespace": "default"},
	}, nil))

	assert.False(t, r.Success)
	assert.Equal(t, types.ErrorKindValidation, r.ErrorKind)
	assert.Equal(t, "pathParams.name", r.Hint.Path)
	f.remote.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
}

func TestOversizedBodyIsRejected(t *testing.T) {
	f := newFixture(t, Config{})
	f.d.cfg.BodyLimits.MaxBytes = 16

	r := execution(t, f.d.Execute(context.Background(), types.ExecuteRequest{
		ToolName:   "origin-pool-update",
		PathParams: map[string]string{"namespace": "default", "name": "pool-a"},
		Body:       map[string]interface{}{"spec": strings.Repeat("x", 64)},
	}, nil))

	assert.Equal(t, types.ErrorKindValidation, r.ErrorKind)
	require.NotNil(t, r.Hint)
	assert.Equal(t, "body", r.Hint.Path)
	f.remote.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
}

func TestQuotaRedBlocksCreate(t *testing.T) {
	f := newFixture(t, Config{QuotaCheck: true})
	f.quota.On("Check", mock.Anything, "prod", "origin-pool").
		Return(quota.Result("prod", "origin-pool", 10, 10), nil)

	r := execution(t, f.d.Execute(context.Background(), types.ExecuteRequest{
		ToolName:   "origin-pool-create",
		PathParams: map[string]string{"namespace": "prod"},
	}, nil))

	assert.False(t, r.Success)
	assert.Equal(t, types.ErrorKindQuotaExceeded, r.ErrorKind)
	require.NotNil(t, r.QuotaInfo)
	assert.Equal(t, types.QuotaRed, r.QuotaInfo.Threshold)
	assert.Contains(t, r.Error, "10 of 10")
	f.remote.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
}

func TestQuotaYellowProceedsWithInfo(t *testing.T) {
	f := newFixture(t, Config{QuotaCheck: true})
	f.quota.On("Check", mock.Anything, "prod", "origin-pool").
		Return(quota.Result("prod", "origin-pool", 9, 10), nil)
	f.remote.On("Do", mock.Anything, mock.Anything).
		Return(testutil.JSONResponse(200, `{}`), nil).Once()

	// namespace comes from body metadata when the path has none
	r := execution(t, f.d.Execute(context.Background(), types.ExecuteRequest{
		ToolName:   "origin-pool-create",
		PathParams: map[string]string{"namespace": "prod"},
		Body:       map[string]interface{}{"metadata": map[string]interface{}{"namespace": "prod"}},
	}, nil))

	assert.True(t, r.Success)
	require.NotNil(t, r.QuotaInfo)
	assert.Equal(t, types.QuotaYellow, r.QuotaInfo.Threshold)
}

func TestQuotaCheckerErrorProceeds(t *testing.T) {
	f := newFixture(t, Config{QuotaCheck: true})
	f.quota.On("Check", mock.Anything, "prod", "origin-pool").
		Return(types.QuotaCheckResult{}, errors.New("quota service down"))
	f.remote.On("Do", mock.Anything, mock.Anything).
		Return(testutil.JSONResponse(201, `{}`), nil).Once()

	r := execution(t, f.d.Execute(context.Background(), types.ExecuteRequest{
		ToolName:   "origin-pool-create",
		PathParams: map[string]string{"namespace": "prod"},
	}, nil))
	assert.True(t, r.Success)
	assert.Nil(t, r.QuotaInfo)
}

func TestQuotaSkippedWhenDisabledOrNotCreate(t *testing.T) {
	f := newFixture(t, Config{QuotaCheck: false})
	f.remote.On("Do", mock.Anything, mock.Anything).
		Return(testutil.JSONResponse(200, `{}`), nil)

	execution(t, f.d.Execute(context.Background(), types.ExecuteRequest{
		ToolName:   "origin-pool-create",
		PathParams: map[string]string{"namespace": "prod"},
	}, nil))
	f.quota.AssertNotCalled(t, "Check", mock.Anything, mock.Anything, mock.Anything)
}

func TestRemoteErrorsBecomeResults(t *testing.T) {
	f := newFixture(t, Config{})
	f.remote.On("Do", mock.Anything, mock.MatchedBy(func(r transport.Request) bool {
		return strings.HasSuffix(r.Path, "/pool-a")
	})).Return(testutil.JSONResponse(404, `{"code":5,"message":"object not found"}`), nil)
	f.remote.On("Do", mock.Anything, mock.MatchedBy(func(r transport.Request) bool {
		return strings.HasSuffix(r.Path, "/pool-b")
	})).Return(nil, errors.New("connection refused"))

	missing := execution(t, f.d.Execute(context.Background(), types.ExecuteRequest{
		ToolName:   "origin-pool-get",
		PathParams: map[string]string{"namespace": "default", "name": "pool-a"},
	}, nil))
	assert.False(t, missing.Success)
	assert.Equal(t, 404, missing.StatusCode)
	assert.Equal(t, types.ErrorKindRemote, missing.ErrorKind)
	assert.Equal(t, "remote returned 404 Not Found: object not found", missing.Error)
	assert.Equal(t, 0, f.cache.Len())

	down := execution(t, f.d.Execute(context.Background(), types.ExecuteRequest{
		ToolName:   "origin-pool-get",
		PathParams: map[string]string{"namespace": "default", "name": "pool-b"},
	}, nil))
	assert.False(t, down.Success)
	assert.Contains(t, down.Error, "connection refused")
	assert.Zero(t, down.StatusCode)
}

func TestRequestIDFromContext(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := id.WithRequestID(context.Background(), id.RequestID("req_fixed"))

	r := execution(t, f.d.Execute(ctx, types.ExecuteRequest{ToolName: "nope"}, nil))
	assert.Equal(t, "req_fixed", r.RequestID)
}

func TestPerCallCredentialsUseFactory(t *testing.T) {
	remote := &testutil.MockRemote{Base: baseURL}
	remote.On("Do", mock.Anything, getPools()).Return(testutil.JSONResponse(200, `[]`), nil).Twice()

	built := 0
	d := New(testutil.Catalogue(t), nil, nil, Config{},
		WithRemoteFactory(func(creds transport.Credentials) (Remote, error) {
			built++
			return remote, nil
		}))
	creds := &transport.Credentials{APIURL: baseURL, APIToken: "secret"}
	req := types.ExecuteRequest{ToolName: "origin-pool-list", PathParams: map[string]string{"namespace": "default"}}

	execution(t, d.Execute(context.Background(), req, creds))
	r := execution(t, d.Execute(context.Background(), req, creds))

	assert.True(t, r.Success)
	assert.Equal(t, []interface{}{}, r.Data)
	assert.Equal(t, 1, built)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		resp *transport.Response
		want interface{}
	}{
		{"empty", &transport.Response{StatusCode: 204}, nil},
		{"json", testutil.JSONResponse(200, `{"a":1}`), map[string]interface{}{"a": float64(1)}},
		{"sniffed json", &transport.Response{Body: []byte(`{"a":true}`)}, map[string]interface{}{"a": true}},
		{"text", &transport.Response{Body: []byte("upstream exploded"), ContentType: "text/plain"}, "upstream exploded"},
		{"bad json", &transport.Response{Body: []byte("{oops"), ContentType: "application/json"}, "{oops"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.resp))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "remote returned 500 Internal Server Error", ErrorMessage(500, nil))
	assert.Equal(t, "remote returned 403 Forbidden: denied", ErrorMessage(403, map[string]interface{}{"error": "denied"}))
	assert.Equal(t, "remote returned 502 Bad Gateway: gateway down", ErrorMessage(502, " gateway down\n"))

	long := ErrorMessage(400, "x"+strings.Repeat("é", 300))
	assert.True(t, utf8.ValidString(long))
	assert.True(t, strings.HasSuffix(long, "é..."))
	assert.LessOrEqual(t, len(long), len("remote returned 400 Bad Request: ")+maxErrorText+len("..."))
}

func TestNamespace(t *testing.T) {
	assert.Equal(t, "a", Namespace(types.ExecuteRequest{PathParams: map[string]string{"namespace": "a"}}))
	assert.Equal(t, "b", Namespace(types.ExecuteRequest{
		Body: map[string]interface{}{"metadata": map[string]interface{}{"namespace": "b"}},
	}))
	assert.Equal(t, "", Namespace(types.ExecuteRequest{}))
}
