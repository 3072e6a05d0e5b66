package config

import (
	"strconv"
	"strings"
)

// PositiveInt decodes a strictly positive integer. Anything else is kept
// as Raw and flagged Invalid instead of failing the load.
type PositiveInt struct {
	Value   int
	Raw     string
	Invalid bool
}

// Decode implements envconfig.Decoder
func (p *PositiveInt) Decode(value string) error {
	*p = PositiveInt{Raw: value}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		p.Invalid = true
		return nil
	}
	p.Value = n
	return nil
}

// Int returns a valid PositiveInt
func Int(v int) PositiveInt {
	return PositiveInt{Value: v, Raw: strconv.Itoa(v)}
}

// NonNegativeInt decodes an integer that may be zero
type NonNegativeInt struct {
	Value   int
	Raw     string
	Invalid bool
}

// Decode implements envconfig.Decoder
func (p *NonNegativeInt) Decode(value string) error {
	*p = NonNegativeInt{Raw: value}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		p.Invalid = true
		return nil
	}
	p.Value = n
	return nil
}

// Count returns a valid NonNegativeInt
func Count(v int) NonNegativeInt {
	return NonNegativeInt{Value: v, Raw: strconv.Itoa(v)}
}

// Flag decodes a boolean leniently
type Flag struct {
	Value   bool
	Raw     string
	Invalid bool
}

// Decode implements envconfig.Decoder
func (f *Flag) Decode(value string) error {
	*f = Flag{Raw: value}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		f.Invalid = true
		return nil
	}
	f.Value = b
	return nil
}

// Bool returns a valid Flag
func Bool(v bool) Flag {
	return Flag{Value: v, Raw: strconv.FormatBool(v)}
}
