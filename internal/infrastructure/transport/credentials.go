package transport

import (
	"net/url"
	"strings"
)

// Credentials identify the remote tenant
type Credentials struct {
	APIURL   string
	APIToken string
}

// Usable reports whether both the URL and token are present and the URL is
// absolute http(s). Without usable credentials the engine only documents
// calls.
func (c Credentials) Usable() bool {
	if strings.TrimSpace(c.APIToken) == "" {
		return false
	}
	u, err := url.Parse(strings.TrimSpace(c.APIURL))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// BaseURL returns the API URL without a trailing slash
func (c Credentials) BaseURL() string {
	return strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
}

// Redacted is safe to log
func (c Credentials) Redacted() string {
	if c.APIToken == "" {
		return c.BaseURL() + " (no token)"
	}
	return c.BaseURL() + " (token set)"
}
