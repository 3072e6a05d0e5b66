package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	Catalogue CatalogueConfig
	API       APIConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Quota     QuotaConfig
	Search    SearchConfig
	Dispatch  DispatchConfig
	Ingress   IngressConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development Flag   `envconfig:"LOG_DEV" default:"false"`
}

// CatalogueConfig locates catalogue documents.
type CatalogueConfig struct {
	Path    string `envconfig:"CATALOGUE_PATH" default:"./catalogue"`
	Pattern string `envconfig:"CATALOGUE_PATTERN" default:"**/*.{json,yaml,yml,toml}"`
}

// APIConfig holds remote tenant configuration. Without a URL and token the
// engine runs in documentation mode.
type APIConfig struct {
	URL            string      `envconfig:"API_URL"`
	Token          string      `envconfig:"API_TOKEN"`
	TimeoutSeconds PositiveInt `envconfig:"API_TIMEOUT_SECONDS" default:"30"`
}

// RateLimitConfig holds the outbound token bucket configuration.
type RateLimitConfig struct {
	RequestsPerMinute PositiveInt    `envconfig:"RATE_LIMIT_RPM" default:"60"`
	Burst             PositiveInt    `envconfig:"RATE_LIMIT_BURST" default:"10"`
	Mode              string         `envconfig:"RATE_LIMIT_MODE" default:"queue"`
	RetryStrategy     string         `envconfig:"RATE_LIMIT_RETRY_STRATEGY" default:"exponential"`
	MaxRetries        NonNegativeInt `envconfig:"RATE_LIMIT_MAX_RETRIES" default:"3"`
}

// CacheConfig holds response cache sizing.
type CacheConfig struct {
	MaxSize    PositiveInt `envconfig:"CACHE_MAX_SIZE" default:"500"`
	TTLSeconds PositiveInt `envconfig:"CACHE_TTL_SECONDS" default:"300"`
}

// QuotaConfig toggles quota admission control.
type QuotaConfig struct {
	CheckEnabled Flag `envconfig:"QUOTA_CHECK_ENABLED" default:"true"`
}

// SearchConfig holds index tuning.
type SearchConfig struct {
	MinTermLength   PositiveInt `envconfig:"SEARCH_MIN_TERM_LENGTH" default:"2"`
	MaxEditDistance PositiveInt `envconfig:"SEARCH_MAX_EDIT_DISTANCE" default:"2"`
	Fuzzy           Flag        `envconfig:"SEARCH_FUZZY" default:"true"`
}

// DispatchConfig bounds request bodies.
type DispatchConfig struct {
	MaxBodyBytes PositiveInt `envconfig:"MAX_BODY_BYTES" default:"1048576"`
	MaxBodyDepth PositiveInt `envconfig:"MAX_BODY_DEPTH" default:"32"`
}

// IngressConfig holds per-IP rate limiting of the HTTP surface.
type IngressConfig struct {
	RequestsPerSecond PositiveInt `envconfig:"INGRESS_RPS" default:"100"`
	Burst             PositiveInt `envconfig:"INGRESS_BURST" default:"200"`
	Enabled           Flag        `envconfig:"INGRESS_LIMIT_ENABLED" default:"true"`
	Origins           []string    `envconfig:"CORS_ORIGINS" default:"*"`
}

// Correction records a setting replaced by its default.
type Correction struct {
	Field   string
	Value   string
	Default string
}

func (c Correction) String() string {
	return fmt.Sprintf("%s=%q is invalid; using %s", c.Field, c.Value, c.Default)
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: Bool(false),
		},
		Catalogue: CatalogueConfig{
			Path:    "./catalogue",
			Pattern: "**/*.{json,yaml,yml,toml}",
		},
		API: APIConfig{
			TimeoutSeconds: Int(30),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: Int(60),
			Burst:             Int(10),
			Mode:              "queue",
			RetryStrategy:     "exponential",
			MaxRetries:        Count(3),
		},
		Cache: CacheConfig{
			MaxSize:    Int(500),
			TTLSeconds: Int(300),
		},
		Quota: QuotaConfig{
			CheckEnabled: Bool(true),
		},
		Search: SearchConfig{
			MinTermLength:   Int(2),
			MaxEditDistance: Int(2),
			Fuzzy:           Bool(true),
		},
		Dispatch: DispatchConfig{
			MaxBodyBytes: Int(1 << 20),
			MaxBodyDepth: Int(32),
		},
		Ingress: IngressConfig{
			RequestsPerSecond: Int(100),
			Burst:             Int(200),
			Enabled:           Bool(true),
			Origins:           []string{"*"},
		},
	}
}

var (
	logLevels       = []string{"debug", "info", "warn", "error"}
	rateLimitModes  = []string{"queue", "reject"}
	retryStrategies = []string{"exponential", "linear", "fixed"}
)

// Sanitize replaces every invalid setting with its default and returns
// what was changed.
func (c *Config) Sanitize() []Correction {
	d := Default()
	var out []Correction

	positive := func(field string, v *PositiveInt, def PositiveInt) {
		if v.Invalid || v.Value <= 0 {
			out = append(out, Correction{Field: field, Value: v.Raw, Default: def.Raw})
			*v = def
		}
	}
	positive("API_TIMEOUT_SECONDS", &c.API.TimeoutSeconds, d.API.TimeoutSeconds)
	positive("RATE_LIMIT_RPM", &c.RateLimit.RequestsPerMinute, d.RateLimit.RequestsPerMinute)
	positive("RATE_LIMIT_BURST", &c.RateLimit.Burst, d.RateLimit.Burst)
	positive("CACHE_MAX_SIZE", &c.Cache.MaxSize, d.Cache.MaxSize)
	positive("CACHE_TTL_SECONDS", &c.Cache.TTLSeconds, d.Cache.TTLSeconds)
	positive("SEARCH_MIN_TERM_LENGTH", &c.Search.MinTermLength, d.Search.MinTermLength)
	positive("SEARCH_MAX_EDIT_DISTANCE", &c.Search.MaxEditDistance, d.Search.MaxEditDistance)
	positive("MAX_BODY_BYTES", &c.Dispatch.MaxBodyBytes, d.Dispatch.MaxBodyBytes)
	positive("MAX_BODY_DEPTH", &c.Dispatch.MaxBodyDepth, d.Dispatch.MaxBodyDepth)
	positive("INGRESS_RPS", &c.Ingress.RequestsPerSecond, d.Ingress.RequestsPerSecond)
	positive("INGRESS_BURST", &c.Ingress.Burst, d.Ingress.Burst)

	if c.RateLimit.MaxRetries.Invalid {
		out = append(out, Correction{Field: "RATE_LIMIT_MAX_RETRIES", Value: c.RateLimit.MaxRetries.Raw, Default: d.RateLimit.MaxRetries.Raw})
		c.RateLimit.MaxRetries = d.RateLimit.MaxRetries
	}

	flag := func(field string, v *Flag, def Flag) {
		if v.Invalid {
			out = append(out, Correction{Field: field, Value: v.Raw, Default: def.Raw})
			*v = def
		}
	}
	flag("LOG_DEV", &c.Logging.Development, d.Logging.Development)
	flag("QUOTA_CHECK_ENABLED", &c.Quota.CheckEnabled, d.Quota.CheckEnabled)
	flag("SEARCH_FUZZY", &c.Search.Fuzzy, d.Search.Fuzzy)
	flag("INGRESS_LIMIT_ENABLED", &c.Ingress.Enabled, d.Ingress.Enabled)

	oneOf := func(field string, v *string, allowed []string, def string) {
		normalized := strings.ToLower(strings.TrimSpace(*v))
		for _, a := range allowed {
			if normalized == a {
				*v = normalized
				return
			}
		}
		out = append(out, Correction{Field: field, Value: *v, Default: def})
		*v = def
	}
	oneOf("LOG_LEVEL", &c.Logging.Level, logLevels, d.Logging.Level)
	oneOf("RATE_LIMIT_MODE", &c.RateLimit.Mode, rateLimitModes, d.RateLimit.Mode)
	oneOf("RATE_LIMIT_RETRY_STRATEGY", &c.RateLimit.RetryStrategy, retryStrategies, d.RateLimit.RetryStrategy)

	if strings.TrimSpace(c.Server.Port) == "" {
		out = append(out, Correction{Field: "PORT", Value: c.Server.Port, Default: d.Server.Port})
		c.Server.Port = d.Server.Port
	}
	return out
}

// HasCredentials reports whether both API_URL and API_TOKEN are set
func (c *Config) HasCredentials() bool {
	return strings.TrimSpace(c.API.URL) != "" && strings.TrimSpace(c.API.Token) != ""
}
