package dispatch

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/bytedance/sonic"
	"github.com/gabriel-vasile/mimetype"

	"github.com/GriffinCanCode/catalogd/internal/infrastructure/transport"
)

const maxErrorText = 512

// Normalize decodes a response body: JSON becomes a generic value, text a
// string, anything else a short description. An empty body is nil.
func Normalize(resp *transport.Response) interface{} {
	if resp == nil || len(resp.Body) == 0 {
		return nil
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = mimetype.Detect(resp.Body).String()
	}

	switch {
	case strings.Contains(contentType, "json"):
		var v interface{}
		if err := sonic.Unmarshal(resp.Body, &v); err == nil {
			return v
		}
		return string(resp.Body)
	case strings.HasPrefix(contentType, "text/"), isText(resp.Body):
		return string(resp.Body)
	default:
		return fmt.Sprintf("<%d bytes of %s>", len(resp.Body), contentType)
	}
}

func isText(body []byte) bool {
	for m := mimetype.Detect(body); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// ErrorMessage extracts a readable error from a non-2xx reply
func ErrorMessage(status int, data interface{}) string {
	prefix := fmt.Sprintf("remote returned %d %s", status, http.StatusText(status))

	var detail string
	switch v := data.(type) {
	case map[string]interface{}:
		for _, key := range []string{"message", "error", "detail", "msg"} {
			if s, ok := v[key].(string); ok && s != "" {
				detail = s
				break
			}
		}
	case string:
		detail = strings.TrimSpace(v)
	}

	if detail == "" {
		return prefix
	}
	if len(detail) > maxErrorText {
		cut := maxErrorText
		for cut > 0 && !utf8.RuneStart(detail[cut]) {
			cut--
		}
		detail = detail[:cut] + "..."
	}
	return prefix + ": " + detail
}
