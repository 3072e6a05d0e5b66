package validate

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/GriffinCanCode/catalogd/internal/shared/pathtemplate"
	"github.com/GriffinCanCode/catalogd/internal/shared/types"
)

// Issue is one finding, an error or a warning
type Issue struct {
	Path     string `json:"path"`
	Message  string `json:"message"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

// Hint converts the issue for execution results
func (i Issue) Hint() *types.ErrorHint {
	return &types.ErrorHint{Path: i.Path, Expected: i.Expected, Actual: i.Actual}
}

// Report is the outcome of validating one call
type Report struct {
	Valid    bool            `json:"valid"`
	ToolName string          `json:"toolName"`
	Errors   []Issue         `json:"errors"`
	Warnings []Issue         `json:"warnings"`
	ToolInfo *types.ToolInfo `json:"toolInfo,omitempty"`
}

func (r *Report) fail(i Issue) {
	r.Errors = append(r.Errors, i)
}

func (r *Report) warn(i Issue) {
	r.Warnings = append(r.Warnings, i)
}

// SchemaSource resolves request-body schema references
type SchemaSource interface {
	Schema(ref string) (interface{}, bool)
}

// Validator compiles body schemas lazily and caches them by reference
type Validator struct {
	schemas SchemaSource
	limits  Limits
	printer *message.Printer

	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
	broken   map[string]error
}

// New creates a validator
func New(schemas SchemaSource, limits Limits) *Validator {
	return &Validator{
		schemas:  schemas,
		limits:   limits.normalized(),
		printer:  message.NewPrinter(language.English),
		compiled: make(map[string]*jsonschema.Schema),
		broken:   make(map[string]error),
	}
}

// Limits returns the body limits in force
func (v *Validator) Limits() Limits {
	return v.limits
}

// Validate checks req against entry without contacting anything remote
func (v *Validator) Validate(entry types.Entry, req types.ExecuteRequest) Report {
	info := entry.Info()
	report := Report{
		ToolName: entry.Name,
		Errors:   []Issue{},
		Warnings: []Issue{},
		ToolInfo: &info,
	}

	v.checkPathParams(&report, entry, req.PathParams)
	v.checkQueryParams(&report, entry, req.QueryParams)
	v.checkBody(&report, entry, req.Body)

	report.Valid = len(report.Errors) == 0
	return report
}

func (v *Validator) checkPathParams(r *Report, entry types.Entry, params map[string]string) {
	declared := make(map[string]bool)
	for _, name := range pathtemplate.Placeholders(entry.Path) {
		declared[name] = true
		if strings.TrimSpace(params[name]) == "" {
			r.fail(Issue{
				Path:     "pathParams." + name,
				Message:  fmt.Sprintf("missing required path parameter %q", name),
				Expected: "non-empty string",
				Actual:   "missing",
			})
		}
	}
	for _, name := range sortedKeys(params) {
		if !declared[name] {
			r.warn(Issue{
				Path:     "pathParams." + name,
				Message:  fmt.Sprintf("path parameter %q is not used by %s", name, entry.Path),
				Expected: strings.Join(pathtemplate.Placeholders(entry.Path), ", "),
				Actual:   name,
			})
		}
	}
}

func (v *Validator) checkQueryParams(r *Report, entry types.Entry, params map[string]interface{}) {
	declared := make(map[string]types.Parameter, len(entry.QueryParameters))
	names := make([]string, 0, len(entry.QueryParameters))
	for _, p := range entry.QueryParameters {
		declared[p.Name] = p
		names = append(names, p.Name)
		if _, ok := params[p.Name]; p.Required && !ok {
			r.fail(Issue{
				Path:     "queryParams." + p.Name,
				Message:  fmt.Sprintf("missing required query parameter %q", p.Name),
				Expected: orDefault(p.Type, "value"),
				Actual:   "missing",
			})
		}
	}
	for _, key := range sortedKeys(params) {
		if _, ok := declared[key]; !ok {
			r.fail(Issue{
				Path:     "queryParams." + key,
				Message:  fmt.Sprintf("unknown query parameter %q", key),
				Expected: "one of: " + strings.Join(names, ", "),
				Actual:   key,
			})
		}
	}
}

func (v *Validator) checkBody(r *Report, entry types.Entry, body interface{}) {
	method := entry.UpperMethod()
	takesBody := method == "POST" || method == "PUT" || method == "PATCH"

	if body == nil {
		if takesBody && entry.RequestBodyRef != "" {
			r.fail(Issue{
				Path:     "body",
				Message:  fmt.Sprintf("%s requires a request body", entry.Name),
				Expected: "object",
				Actual:   "missing",
			})
		}
		return
	}
	if !takesBody {
		r.warn(Issue{Path: "body", Message: fmt.Sprintf("%s requests do not send a body; it will be ignored", method)})
	}

	if err := CheckBody(body, v.limits); err != nil {
		var verr *Error
		if errors.As(err, &verr) {
			r.fail(Issue{Path: verr.Hint.Path, Message: verr.Message, Expected: verr.Hint.Expected, Actual: verr.Hint.Actual})
		}
		return
	}

	v.checkSchema(r, entry, body)

	for _, field := range entry.RequiredFields {
		if _, ok := Lookup(body, field); !ok {
			r.fail(Issue{
				Path:     "body." + field,
				Message:  fmt.Sprintf("missing required field %q", field),
				Expected: "present",
				Actual:   "missing",
			})
		}
	}

	for _, group := range entry.OneOfGroups {
		var set []string
		for _, opt := range group.Options {
			if _, ok := Lookup(body, opt); ok {
				set = append(set, opt)
			}
		}
		switch {
		case len(set) > 1:
			r.fail(Issue{
				Path:     "body." + group.ChoiceField,
				Message:  fmt.Sprintf("only one of %s may be set for %s", strings.Join(group.Options, ", "), group.ChoiceField),
				Expected: "exactly one option",
				Actual:   strings.Join(set, ", "),
			})
		case len(set) == 0:
			msg := fmt.Sprintf("no option set for %s; the server default applies", group.ChoiceField)
			if group.RecommendedOption != "" {
				msg = fmt.Sprintf("no option set for %s; recommended: %s", group.ChoiceField, group.RecommendedOption)
			}
			r.warn(Issue{
				Path:     "body." + group.ChoiceField,
				Message:  msg,
				Expected: "one of: " + strings.Join(group.Options, ", "),
				Actual:   "none",
			})
		}
	}
}

func (v *Validator) checkSchema(r *Report, entry types.Entry, body interface{}) {
	if entry.RequestBodyRef == "" || v.schemas == nil {
		return
	}
	schema, err := v.schema(entry.RequestBodyRef)
	if err != nil {
		r.warn(Issue{Path: "body", Message: fmt.Sprintf("schema %q unavailable: %v", entry.RequestBodyRef, err)})
		return
	}
	if schema == nil {
		return
	}

	err = schema.Validate(body)
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return
	}
	for _, leaf := range leaves(verr) {
		loc := "body"
		if len(leaf.InstanceLocation) > 0 {
			loc += "." + strings.Join(leaf.InstanceLocation, ".")
		}
		r.fail(Issue{
			Path:     loc,
			Message:  leaf.ErrorKind.LocalizedString(v.printer),
			Expected: "schema " + entry.RequestBodyRef,
			Actual:   describe(valueAt(body, leaf.InstanceLocation)),
		})
	}
}

// schema returns the compiled schema for ref, nil when none is registered
func (v *Validator) schema(ref string) (*jsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if s, ok := v.compiled[ref]; ok {
		return s, nil
	}
	if err, ok := v.broken[ref]; ok {
		return nil, err
	}

	doc, ok := v.schemas.Schema(ref)
	if !ok {
		v.compiled[ref] = nil
		return nil, nil
	}

	loc := "catalogue://schemas/" + url.PathEscape(ref) + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(loc, doc); err != nil {
		v.broken[ref] = err
		return nil, err
	}
	s, err := c.Compile(loc)
	if err != nil {
		v.broken[ref] = err
		return nil, err
	}
	v.compiled[ref] = s
	return s, nil
}

func leaves(e *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(e.Causes) == 0 {
		return []*jsonschema.ValidationError{e}
	}
	var out []*jsonschema.ValidationError
	for _, c := range e.Causes {
		out = append(out, leaves(c)...)
	}
	return out
}

// Lookup resolves a dotted field path inside a decoded JSON body
func Lookup(body interface{}, path string) (interface{}, bool) {
	cur := body
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

func valueAt(body interface{}, location []string) interface{} {
	if len(location) == 0 {
		return body
	}
	v, _ := Lookup(body, strings.Join(location, "."))
	return v
}

func describe(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "missing"
	case string:
		return fmt.Sprintf("string %q", t)
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return fmt.Sprintf("array of %d", len(t))
	default:
		return fmt.Sprintf("%T %v", t, t)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orDefault(s, d string) string {
	if s == "" {
		return d
	}
	return s
}
