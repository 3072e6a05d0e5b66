package search

const (
	ExactWeight  = 1.0
	FuzzyWeight  = 0.7
	PrefixWeight = 0.5

	DefaultMinTermLength   = 2
	DefaultMaxEditDistance = 2
	DefaultLimit           = 10
	MaxLimit               = 100

	// Above 3, a one-edit fuzzy match plus a prefix bonus can outweigh an
	// exact hit.
	maxEditDistanceCeiling = 3
)

// Config controls tokenization and matching
type Config struct {
	MinTermLength   int
	MaxEditDistance int
	Fuzzy           bool
	DefaultLimit    int
}

// DefaultConfig returns the standard search configuration
func DefaultConfig() Config {
	return Config{
		MinTermLength:   DefaultMinTermLength,
		MaxEditDistance: DefaultMaxEditDistance,
		Fuzzy:           true,
		DefaultLimit:    DefaultLimit,
	}
}

// normalized replaces out-of-range values with defaults
func (c Config) normalized() Config {
	if c.MinTermLength <= 0 {
		c.MinTermLength = DefaultMinTermLength
	}
	if c.MaxEditDistance <= 0 {
		c.MaxEditDistance = DefaultMaxEditDistance
	}
	if c.MaxEditDistance > maxEditDistanceCeiling {
		c.MaxEditDistance = maxEditDistanceCeiling
	}
	if c.DefaultLimit <= 0 || c.DefaultLimit > MaxLimit {
		c.DefaultLimit = DefaultLimit
	}
	return c
}
