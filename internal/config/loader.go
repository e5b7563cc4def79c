// Package config provides centralized configuration management for the
// domainai service. Values come from built-in defaults, an optional YAML file,
// DOMAINAI_* environment variables and a small set of legacy variable names.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// AppName is used for XDG paths and the environment prefix.
const AppName = "domainai"

// EnvPrefix is the prefix for environment overrides (DOMAINAI_SERVER_PORT).
const EnvPrefix = "DOMAINAI"

// envAliases maps config keys to additional variable names accepted for
// compatibility with existing deployments.
var envAliases = map[string][]string{
	"app.environment":       {"NODE_ENV", "APP_ENV"},
	"server.allowed_origin": {"ALLOWED_ORIGIN"},
	"ai.api_key":            {"OPENROUTER_API_KEY"},
	"ai.model":              {"OPENROUTER_MODEL"},
	"ai.site_url":           {"OPENROUTER_SITE_URL"},
	"ai.app_title":          {"OPENROUTER_APP_TITLE"},
	"registrar.username":    {"NAMECOM_USERNAME"},
	"registrar.token":       {"NAMECOM_API_TOKEN"},
	"registrar.use_core":    {"NAMECOM_USE_CORE"},
	"registrar.base_url":    {"NAMECOM_API_BASE"},
	"registrar.core_url":    {"NAMECOM_CORE_API"},
	"ratelimit.redis.addr":  {"REDIS_ADDR"},
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.environment", EnvDevelopment)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.allowed_origin", "")
	v.SetDefault("server.expose_usage", false)
	v.SetDefault("server.admin_token", "")

	v.SetDefault("logging.level", "info")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("health.enabled", true)

	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("ai.model", "openai/gpt-4o-mini")
	v.SetDefault("ai.site_url", "")
	v.SetDefault("ai.app_title", "DomainAI")
	v.SetDefault("ai.timeout", "30s")

	v.SetDefault("registrar.variant", VariantLegacy)
	v.SetDefault("registrar.use_core", false)
	v.SetDefault("registrar.username", "")
	v.SetDefault("registrar.token", "")
	v.SetDefault("registrar.base_url", "https://api.name.com")
	v.SetDefault("registrar.core_url", "https://api.name.com")
	v.SetDefault("registrar.timeout", "15s")
	v.SetDefault("registrar.max_batch", 50)
	v.SetDefault("registrar.requests_per_second", 5.0)
	v.SetDefault("registrar.burst", 5)
	v.SetDefault("registrar.fallback", "")

	v.SetDefault("ratelimit.basic.window", "1m")
	v.SetDefault("ratelimit.basic.max", 30)
	v.SetDefault("ratelimit.store", StoreMemory)
	v.SetDefault("ratelimit.meter_validate", false)
	v.SetDefault("ratelimit.redis.addr", "localhost:6379")
	v.SetDefault("ratelimit.redis.password", "")
	v.SetDefault("ratelimit.redis.db", 0)
	v.SetDefault("ratelimit.redis.prefix", "domainai:ratelimit")

	v.SetDefault("store.path", DefaultStorePath())
	v.SetDefault("store.url", "")
	v.SetDefault("store.auth_token", "")

	v.SetDefault("generate.fill_missing_scores", false)
}

// BindEnv enables DOMAINAI_* overrides and the legacy aliases.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, aliases := range envAliases {
		names := append([]string{EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, aliases...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// Load decodes v into a Config, normalizes it and validates it.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
	}

	cfg := &Config{}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) normalize() {
	c.App.Environment = strings.ToLower(strings.TrimSpace(c.App.Environment))
	if c.App.Environment == "" {
		c.App.Environment = EnvDevelopment
	}

	c.Registrar.Variant = strings.ToLower(strings.TrimSpace(c.Registrar.Variant))
	if c.Registrar.UseCore {
		c.Registrar.Variant = VariantCore
	}
	if c.Registrar.Variant == "" {
		c.Registrar.Variant = VariantLegacy
	}
	c.Registrar.Username = strings.TrimSpace(c.Registrar.Username)
	c.Registrar.Token = strings.TrimSpace(c.Registrar.Token)
	c.Registrar.Fallback = strings.ToLower(strings.TrimSpace(c.Registrar.Fallback))

	c.RateLimit.Store = strings.ToLower(strings.TrimSpace(c.RateLimit.Store))
	if c.RateLimit.Store == "" {
		c.RateLimit.Store = StoreMemory
	}

	c.Server.AllowedOrigin = strings.TrimSpace(c.Server.AllowedOrigin)
	c.AI.APIKey = strings.TrimSpace(c.AI.APIKey)
	if c.AI.Timeout <= 0 {
		c.AI.Timeout = 30 * time.Second
	}
	if c.Registrar.Timeout <= 0 {
		c.Registrar.Timeout = 15 * time.Second
	}
}

// Validate reports every invalid setting, joined.
func (c *Config) Validate() error {
	var errs []error

	switch c.App.Environment {
	case EnvDevelopment, EnvProduction, "test":
	default:
		errs = append(errs, fmt.Errorf("app.environment: unsupported value %q", c.App.Environment))
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port: %d out of range", c.Server.Port))
	}

	switch c.Registrar.Variant {
	case VariantLegacy, VariantCore:
	default:
		errs = append(errs, fmt.Errorf("registrar.variant: unsupported value %q", c.Registrar.Variant))
	}

	switch c.Registrar.Fallback {
	case "", "rdap":
	default:
		errs = append(errs, fmt.Errorf("registrar.fallback: unsupported value %q", c.Registrar.Fallback))
	}

	if c.Registrar.MaxBatch < 0 {
		errs = append(errs, errors.New("registrar.max_batch: must not be negative"))
	}

	switch c.RateLimit.Store {
	case StoreMemory, StoreRedis, StoreLibsql:
	default:
		errs = append(errs, fmt.Errorf("ratelimit.store: unsupported value %q", c.RateLimit.Store))
	}

	for name, op := range c.RateLimit.Operations {
		if op.PerMinute < 0 || op.PerHour < 0 || op.PerDay < 0 || op.CostWeight < 0 {
			errs = append(errs, fmt.Errorf("ratelimit.operations.%s: limits must not be negative", name))
		}
	}

	for _, raw := range []struct{ key, value string }{
		{"ai.base_url", c.AI.BaseURL},
		{"registrar.base_url", c.Registrar.BaseURL},
		{"registrar.core_url", c.Registrar.CoreURL},
	} {
		if raw.value == "" {
			continue
		}
		if u, err := url.Parse(raw.value); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s: invalid url %q", raw.key, raw.value))
		}
	}

	return errors.Join(errs...)
}

// DefaultConfigDir returns the XDG config directory for the app.
func DefaultConfigDir() string {
	return gfconfig.GetAppConfigDir(AppName)
}

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath() string {
	dir := DefaultConfigDir()
	if strings.TrimSpace(dir) == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// DefaultStorePath returns the XDG-compliant path to the database file.
func DefaultStorePath() string {
	dataDir := gfconfig.GetAppDataDir(AppName)
	if strings.TrimSpace(dataDir) == "" {
		return "./" + AppName + ".db"
	}
	return filepath.Join(dataDir, AppName+".db")
}
