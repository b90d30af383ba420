// Package config provides configuration management for the application.
// It follows the 12-Factor App methodology by loading configuration
// from environment variables and supporting external configuration files.
//
// 12-Factor App Compliance:
//   - III. Config: Store config in the environment
//   - Configuration is loaded from environment variables
//   - The rate table may be overridden from a YAML file shipped with the deploy
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // shipping.timezone must resolve in minimal images

	"github.com/spf13/viper"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all application configuration.
// All fields are populated from environment variables or config files.
type Config struct {
	// App contains application-level configuration
	App AppConfig `mapstructure:"app"`

	// Server contains HTTP server configuration
	Server ServerConfig `mapstructure:"server"`

	// Log contains logger configuration
	Log LogConfig `mapstructure:"log"`

	// RateLimit contains per-client request rate limiting
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Shipping contains the rate table and estimation settings
	Shipping ShippingConfig `mapstructure:"shipping"`
}

// AppConfig contains application-level configuration.
type AppConfig struct {
	// Name of the application
	Name string `mapstructure:"name"`

	// Environment the application is running in (e.g., development, staging, production)
	Environment string `mapstructure:"environment"`

	// Version of the application
	Version string `mapstructure:"version"`

	// Debug mode flag
	Debug bool `mapstructure:"debug"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Host is the server bind address
	Host string `mapstructure:"host"`

	// Port is the server port
	Port int `mapstructure:"port"`

	// ReadTimeout is the maximum duration for reading the entire request, including the body
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the response
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`

	// RequestTimeout bounds the handling time of a single request
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// ShutdownTimeout is the maximum duration for graceful server shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// MaxRequestSize is the maximum allowed request body size
	MaxRequestSize int64 `mapstructure:"max_request_size"`

	// CORSAllowedOrigins is a list of allowed origins for CORS
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`

	// TrustProxyHeaders takes the client IP from X-Forwarded-For/X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool `mapstructure:"trust_proxy_headers"`
}

// LogConfig contains logger configuration.
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string `mapstructure:"level"`

	// Format is the output format (json, console)
	Format string `mapstructure:"format"`
}

// RateLimitConfig contains rate limiter configuration.
type RateLimitConfig struct {
	// RequestsPerSecond allowed per client
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`

	// Burst is the maximum burst size per client
	Burst int `mapstructure:"burst"`

	// IdleTTL drops the bucket of a client silent for this long
	IdleTTL time.Duration `mapstructure:"idle_ttl"`
}

// ShippingConfig contains the shipping rate policy and optional table overrides.
type ShippingConfig struct {
	// Currency is the ISO 4217 code every rate is expressed in
	Currency string `mapstructure:"currency"`

	// FreeShippingThreshold is the cart subtotal at or above which shipping is free
	FreeShippingThreshold float64 `mapstructure:"free_shipping_threshold"`

	// FreeWeightAllowanceKg is the weight included in each zone's base cost
	FreeWeightAllowanceKg float64 `mapstructure:"free_weight_allowance_kg"`

	// DefaultUnitWeightGrams applies to cart lines without a weight
	DefaultUnitWeightGrams float64 `mapstructure:"default_unit_weight_grams"`

	// Timezone delivery dates are computed in (IANA name)
	Timezone string `mapstructure:"timezone"`

	// DefaultLocale formats delivery dates when the client sends none
	DefaultLocale string `mapstructure:"default_locale"`

	// NaturalDescriptions rewords delivery option descriptions
	NaturalDescriptions bool `mapstructure:"natural_descriptions"`

	// Zones replaces the compiled-in zone table when non-empty
	Zones []ZoneConfig `mapstructure:"zones"`

	// Speeds replaces the compiled-in speed table when non-empty
	Speeds []SpeedConfig `mapstructure:"speeds"`
}

// ZoneConfig is one zone of a configured rate table.
type ZoneConfig struct {
	Name         string   `mapstructure:"name"`
	Cities       []string `mapstructure:"cities"`
	BaseCost     float64  `mapstructure:"base_cost"`
	CostPerKg    float64  `mapstructure:"cost_per_kg"`
	StandardDays string   `mapstructure:"standard_days"`
	ExpressDays  string   `mapstructure:"express_days"`
}

// SpeedConfig is one delivery speed of a configured rate table.
type SpeedConfig struct {
	Key        string  `mapstructure:"key"`
	Name       string  `mapstructure:"name"`
	Multiplier float64 `mapstructure:"multiplier"`
	Icon       string  `mapstructure:"icon"`
}

// Load loads the configuration from environment variables and config files.
// It follows this precedence (highest to lowest):
//  1. Environment variables
//  2. Config file (SHIP_CONFIG_FILE, or config.yaml in the search paths)
//  3. Default values
//
// Returns:
//   - *Config: The loaded configuration
//   - error: Any error encountered during loading or validation
func Load() (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Read environment variables
	v.SetEnvPrefix("SHIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind specific environment variables
	bindEnvVars(v)

	// Set config file settings
	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/shipping-go")
	}

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		// If the error is not "file not found", return the error
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use env vars and defaults
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "shipping-go")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.debug", false)

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.request_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.max_request_size", 1<<20)             // 1MB
	v.SetDefault("server.cors_allowed_origins", []string{"*"}) // Allow all origins by default
	v.SetDefault("server.trust_proxy_headers", false)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Rate limit defaults
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("rate_limit.idle_ttl", 10*time.Minute)

	// Shipping defaults mirror the compiled-in rate table policy
	v.SetDefault("shipping.currency", "INR")
	v.SetDefault("shipping.free_shipping_threshold", 1000)
	v.SetDefault("shipping.free_weight_allowance_kg", 0.5)
	v.SetDefault("shipping.default_unit_weight_grams", 250)
	v.SetDefault("shipping.timezone", "Asia/Kolkata")
	v.SetDefault("shipping.default_locale", "en-IN")
	v.SetDefault("shipping.natural_descriptions", false)

	v.SetDefault("config_file", "")
}

// bindEnvVars binds specific environment variables to configuration keys.
func bindEnvVars(v *viper.Viper) {
	// These are explicitly bound for clarity
	_ = v.BindEnv("app.environment", "SHIP_ENVIRONMENT")
	_ = v.BindEnv("server.port", "SHIP_SERVER_PORT", "PORT") // Common convention
	_ = v.BindEnv("config_file", "SHIP_CONFIG_FILE")
}

// Validate rejects values the service cannot start with.
//
// Returns:
//   - error: wrapping ErrInvalidConfig on the first invalid value
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.Server.MaxRequestSize <= 0 {
		return fmt.Errorf("%w: server.max_request_size must be positive", ErrInvalidConfig)
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 || c.RateLimit.IdleTTL < 0 {
		return fmt.Errorf("%w: rate_limit values must be positive", ErrInvalidConfig)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log.format %q (want json or console)", ErrInvalidConfig, c.Log.Format)
	}
	if c.Shipping.FreeShippingThreshold < 0 {
		return fmt.Errorf("%w: shipping.free_shipping_threshold cannot be negative", ErrInvalidConfig)
	}
	if c.Shipping.DefaultUnitWeightGrams <= 0 {
		return fmt.Errorf("%w: shipping.default_unit_weight_grams must be positive", ErrInvalidConfig)
	}
	if _, err := c.Shipping.Location(); err != nil {
		return fmt.Errorf("%w: shipping.timezone: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Location resolves the configured time zone.
func (s ShippingConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(s.Timezone)
}

// MustLoad loads the configuration and panics on error.
// Use this in application entry points where configuration is required.
//
// Returns:
//   - *Config: The loaded configuration
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}
