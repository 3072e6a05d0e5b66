package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/GriffinCanCode/catalogd/internal/infrastructure/resilience"
)

var (
	ErrUnsupportedMethod = errors.New("unsupported HTTP method")
	ErrNoCredentials     = errors.New("no usable API credentials configured")
)

// SupportedMethods lists the verbs the client will send
var SupportedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// Request is one remote call. Path already carries its query string.
type Request struct {
	Method string
	Path   string
	Body   interface{}
}

// Response is the raw remote reply
type Response struct {
	StatusCode  int
	Body        []byte
	ContentType string
	Duration    time.Duration
}

// Doer sends requests to the remote API
type Doer interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// Config defines client behaviour
type Config struct {
	Timeout          time.Duration
	UserAgent        string
	BreakerThreshold uint32
	BreakerCooldown  time.Duration
	OnBreakerChange  func(name string, from, to resilience.State)
}

// DefaultConfig returns production client settings
func DefaultConfig() Config {
	return Config{
		Timeout:          30 * time.Second,
		UserAgent:        "catalogd/1.0",
		BreakerThreshold: 10,
		BreakerCooldown:  30 * time.Second,
	}
}

// Client wraps resty with auth and a circuit breaker
type Client struct {
	resty   *resty.Client
	creds   Credentials
	breaker *resilience.Breaker
}

// New creates a client for creds. It fails when creds are not usable.
func New(creds Credentials, cfg Config) (*Client, error) {
	if !creds.Usable() {
		return nil, ErrNoCredentials
	}
	d := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = d.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = d.UserAgent
	}

	// Only the pooled transport is used; retry policy stays with the limiter.
	pooled := retryablehttp.NewClient()
	pooled.Logger = nil

	restyClient := resty.New().
		SetBaseURL(creds.BaseURL()).
		SetTimeout(cfg.Timeout).
		SetTransport(pooled.HTTPClient.Transport).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", "APIToken "+strings.TrimSpace(creds.APIToken))

	breaker := resilience.New("control-plane", resilience.Settings{
		FailureThreshold: cfg.BreakerThreshold,
		Cooldown:         cfg.BreakerCooldown,
		IsFailure:        isRemoteFailure,
		OnStateChange:    cfg.OnBreakerChange,
	})

	return &Client{resty: restyClient, creds: creds, breaker: breaker}, nil
}

// BaseURL returns the configured API root
func (c *Client) BaseURL() string {
	return c.creds.BaseURL()
}

// Breaker exposes the circuit breaker for stats and resets
func (c *Client) Breaker() *resilience.Breaker {
	return c.breaker
}

// Do sends req. Non-2xx statuses are returned as responses, not errors.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	method := strings.ToUpper(req.Method)
	if !SupportedMethods[method] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, req.Method)
	}

	r := c.resty.R().SetContext(ctx)
	if req.Body != nil {
		payload, err := sonic.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		r.SetHeader("Content-Type", "application/json").SetBody(payload)
	}

	var out *Response
	err := c.breaker.Do(func() error {
		resp, err := r.Execute(method, req.Path)
		if err != nil {
			return err
		}
		out = &Response{
			StatusCode:  resp.StatusCode(),
			Body:        resp.Body(),
			ContentType: resp.Header().Get("Content-Type"),
			Duration:    resp.Time(),
		}
		if out.StatusCode >= http.StatusInternalServerError {
			return &resilience.FailureError{Err: fmt.Errorf("remote returned %d", out.StatusCode)}
		}
		return nil
	})

	var failure *resilience.FailureError
	if errors.As(err, &failure) && out != nil {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func isRemoteFailure(err error) bool {
	if err == nil {
		return false
	}
	var failure *resilience.FailureError
	if errors.As(err, &failure) {
		return true
	}
	// Caller cancellation says nothing about remote health.
	return !errors.Is(err, context.Canceled)
}
