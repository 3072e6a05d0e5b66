package validate

import (
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/catalogd/internal/shared/types"
)

const (
	DefaultMaxBodyBytes = 1 << 20
	DefaultMaxBodyDepth = 32
)

// Limits bounds request bodies
type Limits struct {
	MaxBytes int
	MaxDepth int
}

// DefaultLimits returns the standard body limits
func DefaultLimits() Limits {
	return Limits{MaxBytes: DefaultMaxBodyBytes, MaxDepth: DefaultMaxBodyDepth}
}

func (l Limits) normalized() Limits {
	if l.MaxBytes <= 0 {
		l.MaxBytes = DefaultMaxBodyBytes
	}
	if l.MaxDepth <= 0 {
		l.MaxDepth = DefaultMaxBodyDepth
	}
	return l
}

// Error is a single validation failure with a self-correction hint
type Error struct {
	Hint    types.ErrorHint
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// CheckBody bounds body size and nesting depth. A nil body passes.
func CheckBody(body interface{}, limits Limits) error {
	if body == nil {
		return nil
	}
	limits = limits.normalized()

	if d := depth(body, 0, limits.MaxDepth); d > limits.MaxDepth {
		return &Error{
			Message: fmt.Sprintf("request body nesting exceeds %d levels", limits.MaxDepth),
			Hint: types.ErrorHint{
				Path:     "body",
				Expected: fmt.Sprintf("depth <= %d", limits.MaxDepth),
				Actual:   fmt.Sprintf("depth > %d", limits.MaxDepth),
			},
		}
	}

	encoded, err := sonic.Marshal(body)
	if err != nil {
		return &Error{
			Message: fmt.Sprintf("request body is not JSON-encodable: %v", err),
			Hint:    types.ErrorHint{Path: "body", Expected: "JSON value", Actual: fmt.Sprintf("%T", body)},
		}
	}
	if len(encoded) > limits.MaxBytes {
		return &Error{
			Message: fmt.Sprintf("request body is %d bytes; limit is %d", len(encoded), limits.MaxBytes),
			Hint: types.ErrorHint{
				Path:     "body",
				Expected: fmt.Sprintf("<= %d bytes", limits.MaxBytes),
				Actual:   fmt.Sprintf("%d bytes", len(encoded)),
			},
		}
	}
	return nil
}

// depth returns the nesting depth of v, stopping once it passes limit
func depth(v interface{}, current, limit int) int {
	if current > limit {
		return current
	}
	deepest := current
	switch t := v.(type) {
	case map[string]interface{}:
		for _, child := range t {
			if d := depth(child, current+1, limit); d > deepest {
				deepest = d
			}
			if deepest > limit {
				break
			}
		}
	case []interface{}:
		for _, child := range t {
			if d := depth(child, current+1, limit); d > deepest {
				deepest = d
			}
			if deepest > limit {
				break
			}
		}
	}
	return deepest
}
