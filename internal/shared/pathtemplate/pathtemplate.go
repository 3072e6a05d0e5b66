// Package pathtemplate expands "{name}" placeholders in REST path templates
// and builds query strings.
package pathtemplate

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

var placeholder = regexp.MustCompile(`\{([^{}/]+)\}`)

// Placeholders returns placeholder names in template order
func Placeholders(template string) []string {
	matches := placeholder.FindAllStringSubmatch(template, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// Expand substitutes every placeholder that has a non-empty value,
// percent-encoding the value. Placeholders left unfilled are returned in
// template order.
func Expand(template string, params map[string]string) (string, []string) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(template, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := params[name]
		if !ok || v == "" {
			missing = append(missing, name)
			return m
		}
		return url.PathEscape(v)
	})
	return out, missing
}

// Extract reverses Expand: it matches path against template and returns the
// percent-decoded placeholder values
func Extract(template, path string) (map[string]string, bool) {
	names := Placeholders(template)

	var pattern strings.Builder
	pattern.WriteByte('^')
	last := 0
	for _, loc := range placeholder.FindAllStringIndex(template, -1) {
		pattern.WriteString(regexp.QuoteMeta(template[last:loc[0]]))
		pattern.WriteString("([^/]+)")
		last = loc[1]
	}
	pattern.WriteString(regexp.QuoteMeta(template[last:]))
	pattern.WriteByte('$')

	re, err := regexp.Compile(pattern.String())
	if err != nil {
		return nil, false
	}
	m := re.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}

	out := make(map[string]string, len(names))
	for i, name := range names {
		v, err := url.PathUnescape(m[i+1])
		if err != nil {
			return nil, false
		}
		out[name] = v
	}
	return out, true
}

// Query encodes params with keys sorted. Slice values repeat the key; nil
// values are skipped.
func Query(params map[string]interface{}) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	add := func(k string, v interface{}) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(scalar(v)))
	}

	for _, k := range keys {
		switch v := params[k].(type) {
		case nil:
		case []interface{}:
			for _, item := range v {
				add(k, item)
			}
		case []string:
			for _, item := range v {
				add(k, item)
			}
		default:
			add(k, v)
		}
	}
	return b.String()
}

// Join appends an encoded query to path
func Join(path, query string) string {
	if query == "" {
		return path
	}
	return path + "?" + query
}

func scalar(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprint(t)
	}
}
