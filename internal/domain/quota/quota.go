// Package quota classifies namespace usage against limits and asks the
// remote API for current usage.
package quota

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/catalogd/internal/infrastructure/transport"
	"github.com/GriffinCanCode/catalogd/internal/shared/types"
)

// WarningRatio is the share of a limit at which usage turns yellow
const WarningRatio = 0.8

// Checker answers whether a namespace may create one more resource
type Checker interface {
	Check(ctx context.Context, namespace, resource string) (types.QuotaCheckResult, error)
}

// CheckerFunc adapts a function to Checker
type CheckerFunc func(ctx context.Context, namespace, resource string) (types.QuotaCheckResult, error)

func (f CheckerFunc) Check(ctx context.Context, namespace, resource string) (types.QuotaCheckResult, error) {
	return f(ctx, namespace, resource)
}

// Classify maps usage to a threshold. A non-positive limit means unlimited.
func Classify(used, limit int64) types.QuotaThreshold {
	switch {
	case limit <= 0:
		return types.QuotaGreen
	case used >= limit:
		return types.QuotaRed
	case float64(used) >= float64(limit)*WarningRatio:
		return types.QuotaYellow
	default:
		return types.QuotaGreen
	}
}

// Result builds a check result from raw numbers
func Result(namespace, resource string, used, limit int64) types.QuotaCheckResult {
	threshold := Classify(used, limit)
	return types.QuotaCheckResult{
		Allowed: threshold != types.QuotaRed,
		QuotaInfo: types.QuotaInfo{
			Namespace: namespace,
			Resource:  resource,
			Used:      used,
			Limit:     limit,
			Threshold: threshold,
		},
	}
}

// FormatExceeded renders the caller-facing message for a red result
func FormatExceeded(info types.QuotaInfo) string {
	return fmt.Sprintf("quota exceeded for %s in namespace %q: %d of %d used; delete unused objects or request a higher limit",
		info.Resource, info.Namespace, info.Used, info.Limit)
}

// Remote is the transport the remote checker needs
type Remote interface {
	transport.Doer
	BaseURL() string
}

// RemoteChecker reads usage from the tenant's quota endpoint
type RemoteChecker struct {
	remote Remote
}

// NewRemoteChecker creates a checker backed by the remote API
func NewRemoteChecker(remote Remote) *RemoteChecker {
	return &RemoteChecker{remote: remote}
}

type usageDocument struct {
	QuotaUsage map[string]struct {
		Limit struct {
			Maximum int64 `json:"maximum"`
		} `json:"limit"`
		Usage struct {
			Current int64 `json:"current"`
		} `json:"usage"`
	} `json:"quota_usage"`
}

// Check fetches usage for the namespace. Resources without a quota entry
// are reported as unlimited.
func (c *RemoteChecker) Check(ctx context.Context, namespace, resource string) (types.QuotaCheckResult, error) {
	path := transport.NormalizePath(c.remote.BaseURL(),
		"/api/web/namespaces/"+url.PathEscape(namespace)+"/quota/usage")

	resp, err := c.remote.Do(ctx, transport.Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return types.QuotaCheckResult{}, fmt.Errorf("quota lookup: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return types.QuotaCheckResult{}, fmt.Errorf("quota lookup: remote returned %d", resp.StatusCode)
	}

	var doc usageDocument
	if err := sonic.Unmarshal(resp.Body, &doc); err != nil {
		return types.QuotaCheckResult{}, fmt.Errorf("quota lookup: %w", err)
	}

	for _, key := range quotaKeys(resource) {
		if u, ok := doc.QuotaUsage[key]; ok {
			return Result(namespace, resource, u.Usage.Current, u.Limit.Maximum), nil
		}
	}
	return Result(namespace, resource, 0, 0), nil
}

// quotaKeys lists the spellings the quota document may use for a resource
func quotaKeys(resource string) []string {
	snake := strings.ReplaceAll(resource, "-", "_")
	return []string{resource, snake, strings.ReplaceAll(snake, "_", "")}
}
