package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/catalogd/internal/domain/quota"
	"github.com/GriffinCanCode/catalogd/internal/domain/validate"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/cache"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/logging"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/ratelimit"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/transport"
	"github.com/GriffinCanCode/catalogd/internal/shared/id"
	"github.com/GriffinCanCode/catalogd/internal/shared/pathtemplate"
	"github.com/GriffinCanCode/catalogd/internal/shared/types"
	"github.com/GriffinCanCode/catalogd/internal/shared/utils"
)

const clientCacheSize = 16

// Lookup resolves catalogue entries by name
type Lookup interface {
	Get(name string) (types.Entry, bool)
}

// Remote is an authenticated transport to one tenant
type Remote interface {
	transport.Doer
	BaseURL() string
}

// RemoteFactory builds a transport for per-call credentials
type RemoteFactory func(creds transport.Credentials) (Remote, error)

// Config controls optional dispatch stages
type Config struct {
	QuotaCheck bool
	BodyLimits validate.Limits
}

// Dispatcher runs execute requests
type Dispatcher struct {
	lookup  Lookup
	limiter *ratelimit.Limiter
	cache   *cache.Cache
	cfg     Config

	remote  Remote
	factory RemoteFactory
	clients *lru.Cache[string, Remote]
	quota   quota.Checker
	metrics *monitoring.Metrics
	logger  *logging.Logger
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithRemote sets the default transport; without one, calls that carry
// no credentials are documented instead of executed
func WithRemote(r Remote) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.remote = r
		}
	}
}

// WithRemoteFactory replaces how per-call credentials become a transport
func WithRemoteFactory(f RemoteFactory) Option {
	return func(d *Dispatcher) { d.factory = f }
}

// WithQuota sets the quota collaborator
func WithQuota(c quota.Checker) Option {
	return func(d *Dispatcher) { d.quota = c }
}

// WithMetrics sets the metrics collector
func WithMetrics(m *monitoring.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// New creates a dispatcher
func New(lookup Lookup, limiter *ratelimit.Limiter, responses *cache.Cache, cfg Config, opts ...Option) *Dispatcher {
	clients, _ := lru.New[string, Remote](clientCacheSize)
	d := &Dispatcher{
		lookup:  lookup,
		limiter: limiter,
		cache:   responses,
		cfg:     cfg,
		clients: clients,
		factory: defaultFactory,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.Component("dispatch")
	return d
}

func defaultFactory(creds transport.Credentials) (Remote, error) {
	return transport.New(creds, transport.DefaultConfig())
}

// Execute runs req. creds, when non-nil, override the default transport
// for this call only.
func (d *Dispatcher) Execute(ctx context.Context, req types.ExecuteRequest, creds *transport.Credentials) types.Outcome {
	ctx, requestID := id.EnsureRequestID(ctx)

	entry, ok := d.lookup.Get(req.ToolName)
	if !ok {
		d.metrics.RecordDispatch("", monitoring.OutcomeNotFound)
		return d.finish(requestID, notFound(req.ToolName))
	}
	method := entry.UpperMethod()
	info := entry.Info()

	remote := d.resolveRemote(creds)
	if remote == nil {
		d.metrics.RecordDispatch(method, monitoring.OutcomeDocumentation)
		return types.DocumentationOutcome(Document(entry, req))
	}

	var quotaInfo *types.QuotaInfo
	if entry.Operation == types.OperationCreate {
		var blocked *types.ExecutionResult
		quotaInfo, blocked = d.admit(ctx, entry, req)
		if blocked != nil {
			blocked.ToolInfo = &info
			d.metrics.RecordDispatch(method, monitoring.OutcomeQuotaExceeded)
			return d.finish(requestID, blocked)
		}
	}

	if err := validate.CheckBody(req.Body, d.cfg.BodyLimits); err != nil {
		d.metrics.RecordDispatch(method, monitoring.OutcomeValidation)
		return d.finish(requestID, validationFailure(err, &info))
	}

	expanded, missing := pathtemplate.Expand(entry.Path, req.PathParams)
	if len(missing) > 0 {
		d.metrics.RecordDispatch(method, monitoring.OutcomeValidation)
		return d.finish(requestID, missingPathParams(missing, &info))
	}
	base := transport.NormalizePath(remote.BaseURL(), expanded)
	path := pathtemplate.Join(base, pathtemplate.Query(req.QueryParams))

	if !transport.SupportedMethods[method] {
		d.metrics.RecordDispatch(method, monitoring.OutcomeValidation)
		return d.finish(requestID, unsupportedMethod(entry.Method, &info))
	}

	if method == http.MethodGet && d.cache != nil {
		hit, ok := d.cache.Get(path)
		d.metrics.RecordCacheLookup(ok)
		if ok {
			d.metrics.RecordDispatch(method, monitoring.OutcomeCached)
			return d.finish(requestID, &types.ExecutionResult{
				Success:    true,
				Data:       hit.Data,
				StatusCode: hit.StatusCode,
				ToolInfo:   &info,
				Cached:     true,
			})
		}
	}

	resp, err := d.send(ctx, remote, transport.Request{Method: method, Path: path, Body: req.Body})
	if err != nil {
		d.logger.ForRequest(ctx).Warn("Remote call failed",
			zap.String("tool", entry.Name),
			zap.String("path", path),
			zap.Error(err))
		d.metrics.RecordDispatch(method, monitoring.OutcomeRemoteError)
		result := remoteFailure(err, &info)
		result.QuotaInfo = quotaInfo
		return d.finish(requestID, result)
	}

	data := Normalize(resp)
	d.updateCache(method, base, path, resp.StatusCode, data)

	result := &types.ExecutionResult{
		Success:    isSuccess(resp.StatusCode),
		Data:       data,
		StatusCode: resp.StatusCode,
		QuotaInfo:  quotaInfo,
		ToolInfo:   &info,
	}
	if !result.Success {
		result.Error = ErrorMessage(resp.StatusCode, data)
		result.ErrorKind = types.ErrorKindRemote
		d.metrics.RecordDispatch(method, monitoring.OutcomeRemoteError)
	} else {
		d.metrics.RecordDispatch(method, monitoring.OutcomeSuccess)
	}

	d.logger.ForRequest(ctx).Debug("Dispatched",
		zap.String("tool", entry.Name),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", resp.Duration))
	return d.finish(requestID, result)
}

func (d *Dispatcher) finish(requestID id.RequestID, r *types.ExecutionResult) types.Outcome {
	r.RequestID = requestID.String()
	return types.ExecutionOutcome(r)
}

// resolveRemote returns nil when the call can only be documented
func (d *Dispatcher) resolveRemote(creds *transport.Credentials) Remote {
	if creds == nil {
		return d.remote
	}
	if !creds.Usable() {
		return nil
	}

	key := utils.Fingerprint(creds.BaseURL(), creds.APIToken)
	if r, ok := d.clients.Get(key); ok {
		return r
	}
	r, err := d.factory(*creds)
	if err != nil {
		d.logger.Warn("Cannot build client for supplied credentials",
			zap.String("api", creds.Redacted()), zap.Error(err))
		return nil
	}
	d.clients.Add(key, r)
	return r
}

// admit runs the quota gate. A non-nil result means the call is blocked.
func (d *Dispatcher) admit(ctx context.Context, entry types.Entry, req types.ExecuteRequest) (*types.QuotaInfo, *types.ExecutionResult) {
	if !d.cfg.QuotaCheck || d.quota == nil {
		return nil, nil
	}
	namespace := Namespace(req)
	if namespace == "" {
		return nil, nil
	}

	res, err := d.quota.Check(ctx, namespace, entry.Resource)
	if err != nil {
		d.logger.ForRequest(ctx).Warn("Quota check failed; proceeding",
			zap.String("namespace", namespace),
			zap.String("resource", entry.Resource),
			zap.Error(err))
		return nil, nil
	}

	info := res.QuotaInfo
	d.metrics.RecordQuotaCheck(string(info.Threshold))
	switch {
	case !res.Allowed || info.Threshold == types.QuotaRed:
		return &info, &types.ExecutionResult{
			Success:   false,
			Error:     quota.FormatExceeded(info),
			ErrorKind: types.ErrorKindQuotaExceeded,
			QuotaInfo: &info,
		}
	case info.Threshold == types.QuotaYellow:
		d.logger.ForRequest(ctx).Warn("Quota nearly exhausted",
			zap.String("namespace", namespace),
			zap.String("resource", entry.Resource),
			zap.Int64("used", info.Used),
			zap.Int64("limit", info.Limit))
	}
	return &info, nil
}

// send passes the call through the rate limiter. Token consumption is
// committed before the network call.
func (d *Dispatcher) send(ctx context.Context, remote Remote, req transport.Request) (*transport.Response, error) {
	var resp *transport.Response
	call := func(ctx context.Context) (int, error) {
		start := time.Now()
		r, err := remote.Do(ctx, req)
		if err != nil {
			d.metrics.RecordRemoteCall(req.Method, 0, time.Since(start))
			return 0, err
		}
		d.metrics.RecordRemoteCall(req.Method, r.StatusCode, time.Since(start))
		resp = r
		return r.StatusCode, nil
	}

	var err error
	if d.limiter != nil {
		d.metrics.SetQueued(d.limiter.Queued())
		_, err = d.limiter.Do(ctx, call)
		d.metrics.SetQueued(d.limiter.Queued())
		if errors.Is(err, ratelimit.ErrRateLimited) {
			d.metrics.IncRateLimited()
		}
	} else {
		_, err = call(ctx)
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// updateCache stores 2xx GETs and drops cached reads of any path a
// completed mutation touched
func (d *Dispatcher) updateCache(method, base, path string, status int, data interface{}) {
	if d.cache == nil {
		return
	}
	switch method {
	case http.MethodGet:
		if isSuccess(status) {
			d.cache.Set(path, data, status)
		}
	default:
		removed := d.cache.InvalidatePath(base)
		if removed > 0 {
			d.logger.Debug("Invalidated cached reads", zap.String("path", base), zap.Int("entries", removed))
		}
	}
	d.metrics.SetCacheSize(d.cache.Len())
}

// Namespace finds the target namespace in path params or body metadata
func Namespace(req types.ExecuteRequest) string {
	if ns := strings.TrimSpace(req.PathParams["namespace"]); ns != "" {
		return ns
	}
	if v, ok := validate.Lookup(req.Body, "metadata.namespace"); ok {
		if ns, ok := v.(string); ok {
			return strings.TrimSpace(ns)
		}
	}
	return ""
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func notFound(name string) *types.ExecutionResult {
	return &types.ExecutionResult{
		Success:   false,
		Error:     fmt.Sprintf("tool not found: %q; use search to discover tool names", name),
		ErrorKind: types.ErrorKindNotFound,
		Hint:      &types.ErrorHint{Path: "toolName", Expected: "catalogue tool name", Actual: name},
	}
}

func validationFailure(err error, info *types.ToolInfo) *types.ExecutionResult {
	result := &types.ExecutionResult{
		Success:   false,
		Error:     err.Error(),
		ErrorKind: types.ErrorKindValidation,
		ToolInfo:  info,
	}
	var verr *validate.Error
	if errors.As(err, &verr) {
		hint := verr.Hint
		result.Hint = &hint
	}
	return result
}

func missingPathParams(missing []string, info *types.ToolInfo) *types.ExecutionResult {
	return &types.ExecutionResult{
		Success:   false,
		Error:     "missing required path parameter(s): " + strings.Join(missing, ", "),
		ErrorKind: types.ErrorKindValidation,
		Hint: &types.ErrorHint{
			Path:     "pathParams." + missing[0],
			Expected: "non-empty string",
			Actual:   "missing",
		},
		ToolInfo: info,
	}
}

func unsupportedMethod(method string, info *types.ToolInfo) *types.ExecutionResult {
	return &types.ExecutionResult{
		Success:   false,
		Error:     fmt.Sprintf("%v: %s", transport.ErrUnsupportedMethod, method),
		ErrorKind: types.ErrorKindValidation,
		Hint:      &types.ErrorHint{Path: "method", Expected: "GET, POST, PUT, PATCH or DELETE", Actual: method},
		ToolInfo:  info,
	}
}

func remoteFailure(err error, info *types.ToolInfo) *types.ExecutionResult {
	msg := err.Error()
	switch {
	case errors.Is(err, ratelimit.ErrRateLimited):
		msg = "rate limit exceeded; retry later"
	case errors.Is(err, context.DeadlineExceeded):
		msg = "request timed out: " + msg
	}
	return &types.ExecutionResult{
		Success:   false,
		Error:     msg,
		ErrorKind: types.ErrorKindRemote,
		ToolInfo:  info,
	}
}
