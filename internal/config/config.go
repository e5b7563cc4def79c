package config

import (
	"time"

	"github.com/aveekpatra/Domain-AI/internal/ratelimit"
)

// Config represents the complete application configuration. It is assembled
// once at startup from defaults, an optional YAML file and the environment,
// and passed by reference into component constructors.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Health    HealthConfig    `mapstructure:"health"`
	AI        AIConfig        `mapstructure:"ai"`
	Registrar RegistrarConfig `mapstructure:"registrar"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Store     StoreConfig     `mapstructure:"store"`
	Generate  GenerateConfig  `mapstructure:"generate"`
}

// AppConfig holds process-wide settings.
type AppConfig struct {
	// Environment is "development" or "production". Anything other than
	// production enables diagnostic logging and error details; it never
	// changes whether a request is allowed.
	Environment string `mapstructure:"environment"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// AllowedOrigin restricts browser callers to one origin host. Empty allows all.
	AllowedOrigin string `mapstructure:"allowed_origin"`

	// ExposeUsage mounts GET /api/ai/usage.
	ExposeUsage bool `mapstructure:"expose_usage"`

	// AdminToken enables POST /admin/signal when set.
	AdminToken string `mapstructure:"admin_token"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HealthConfig contains health check configuration
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// AIConfig configures the OpenRouter chat gateway.
type AIConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"`
	Model    string        `mapstructure:"model"`
	SiteURL  string        `mapstructure:"site_url"`
	AppTitle string        `mapstructure:"app_title"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// RegistrarConfig configures the name.com availability client.
type RegistrarConfig struct {
	// Variant selects the upstream protocol: "v4" (legacy) or "core".
	Variant string `mapstructure:"variant"`
	// UseCore mirrors NAMECOM_USE_CORE and forces the core variant.
	UseCore  bool   `mapstructure:"use_core"`
	Username string `mapstructure:"username"`
	Token    string `mapstructure:"token"`
	// BaseURL is the legacy API base; "/v4" is appended when missing.
	BaseURL string `mapstructure:"base_url"`
	// CoreURL is the current API base.
	CoreURL string        `mapstructure:"core_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	// MaxBatch caps domains per core request. Zero sends one request.
	MaxBatch          int     `mapstructure:"max_batch"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	// Fallback names a credential-free availability source used when
	// username or token is missing. Supported: "" (none), "rdap".
	Fallback string `mapstructure:"fallback"`
}

// HasCredentials reports whether both halves of the credential pair are set.
func (r RegistrarConfig) HasCredentials() bool {
	return r.Username != "" && r.Token != ""
}

// RateLimitConfig configures both limiter tiers.
type RateLimitConfig struct {
	Basic BasicLimitConfig `mapstructure:"basic"`
	// Store selects the AI-tier bucket store: memory, redis or libsql.
	Store      string                               `mapstructure:"store"`
	Redis      RedisConfig                          `mapstructure:"redis"`
	Operations map[string]ratelimit.OperationConfig `mapstructure:"operations"`
	// MeterValidate also charges domain validation against the AI tier.
	MeterValidate bool `mapstructure:"meter_validate"`
}

// BasicLimitConfig is the fixed-window tier.
type BasicLimitConfig struct {
	Window time.Duration `mapstructure:"window"`
	Max    int           `mapstructure:"max"`
}

// RedisConfig points at a shared Redis for rate-limit buckets.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// StoreConfig contains database configuration for libsql/Turso
type StoreConfig struct {
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// GenerateConfig tunes the suggestion endpoint.
type GenerateConfig struct {
	// FillMissingScores computes a brandability score for suggestions the
	// model returned without one.
	FillMissingScores bool `mapstructure:"fill_missing_scores"`
}

// IsProduction reports whether diagnostics are disabled.
func (c *Config) IsProduction() bool {
	return c != nil && c.App.Environment == EnvProduction
}

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Registrar variants.
const (
	VariantLegacy = "v4"
	VariantCore   = "core"
)

// Rate-limit store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreLibsql = "libsql"
)
