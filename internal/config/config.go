package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Eshhar121/ecommerce-frontend/internal/auth"
)

// EnvPrefix is prepended to every environment variable, e.g.
// STOREFRONT_BACKEND_URL.
const EnvPrefix = "STOREFRONT"

// Credential store backends.
const (
	CredentialStoreMemory = "memory"
	CredentialStoreRedis  = "redis"
)

// Config holds the application configuration
type Config struct {
	// Server bind address (host:port)
	ServerAddr string

	// Base URL of the REST backend, including any /api prefix
	BackendURL string

	// Timeout for a single backend request
	BackendTimeout time.Duration

	// HMAC key for the signed visitor cookie, at least 32 bytes
	VisitorSecret string

	// Lifetime of the visitor cookie and of stored backend credentials
	VisitorTTL time.Duration

	// Upper bound on visitors held in memory
	MaxVisitors int

	// Idle time after which a visitor is dropped from memory
	VisitorIdleTTL time.Duration

	// How long a request waits for a new visitor's session to resolve
	ResolveWait time.Duration

	// Mark cookies Secure and enforce CSRF over TLS only
	SecureCookies bool

	// 32-byte key enabling CSRF protection on form posts; empty disables it
	CSRFKey string

	// Origins allowed by CORS
	AllowedOrigins []string

	// Where backend credentials are kept: memory or redis
	CredentialStore string
	Redis           RedisConfig

	// Enable debug logging
	Debug bool

	// Log encoding: json or console
	LogFormat string

	Telemetry TelemetryConfig
}

// RedisConfig configures the redis credential store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// TelemetryConfig configures OpenTelemetry export. Export is disabled when
// Endpoint is empty.
type TelemetryConfig struct {
	Endpoint    string
	Insecure    bool
	ServiceName string
	Environment string
}

// SetDefaults registers default values on the global viper instance.
func SetDefaults() {
	viper.SetDefault("server_addr", "localhost:3000")
	viper.SetDefault("backend_url", "http://localhost:5000/api")
	viper.SetDefault("backend_timeout", 10*time.Second)
	viper.SetDefault("visitor_ttl", 7*24*time.Hour)
	viper.SetDefault("max_visitors", 10000)
	viper.SetDefault("visitor_idle_ttl", 30*time.Minute)
	viper.SetDefault("resolve_wait", 2*time.Second)
	viper.SetDefault("secure_cookies", false)
	viper.SetDefault("allowed_origins", []string{})
	viper.SetDefault("credential_store", CredentialStoreMemory)
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.prefix", "storefront:cred")
	viper.SetDefault("debug", false)
	viper.SetDefault("log_format", "json")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", false)
	viper.SetDefault("otel.service_name", "storefront")
	viper.SetDefault("otel.environment", "development")
}

// Load reads configuration from the global viper instance: defaults, then
// any config file already read by the caller, then STOREFRONT_* environment
// variables and bound flags.
func Load() (*Config, error) {
	SetDefaults()
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	cfg := &Config{
		ServerAddr:      viper.GetString("server_addr"),
		BackendURL:      viper.GetString("backend_url"),
		BackendTimeout:  viper.GetDuration("backend_timeout"),
		VisitorSecret:   viper.GetString("visitor_secret"),
		VisitorTTL:      viper.GetDuration("visitor_ttl"),
		MaxVisitors:     viper.GetInt("max_visitors"),
		VisitorIdleTTL:  viper.GetDuration("visitor_idle_ttl"),
		ResolveWait:     viper.GetDuration("resolve_wait"),
		SecureCookies:   viper.GetBool("secure_cookies"),
		CSRFKey:         viper.GetString("csrf_key"),
		AllowedOrigins:  splitList(viper.GetStringSlice("allowed_origins")),
		CredentialStore: strings.ToLower(viper.GetString("credential_store")),
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
			Prefix:   viper.GetString("redis.prefix"),
		},
		Debug:     viper.GetBool("debug"),
		LogFormat: viper.GetString("log_format"),
		Telemetry: TelemetryConfig{
			Endpoint:    viper.GetString("otel.endpoint"),
			Insecure:    viper.GetBool("otel.insecure"),
			ServiceName: viper.GetString("otel.service_name"),
			Environment: viper.GetString("otel.environment"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields Load cannot default.
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("STOREFRONT_BACKEND_URL is required")
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("STOREFRONT_BACKEND_URL must be an absolute URL, got %q", c.BackendURL)
	}

	if len(c.VisitorSecret) < auth.MinVisitorSecretLen {
		return fmt.Errorf("STOREFRONT_VISITOR_SECRET must be at least %d bytes", auth.MinVisitorSecretLen)
	}

	if c.CSRFKey != "" && len(c.CSRFKey) != 32 {
		return fmt.Errorf("STOREFRONT_CSRF_KEY must be exactly 32 bytes")
	}

	switch c.CredentialStore {
	case CredentialStoreMemory:
	case CredentialStoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("STOREFRONT_REDIS_ADDR is required when credential_store is redis")
		}
	default:
		return fmt.Errorf("unknown credential_store %q (want memory or redis)", c.CredentialStore)
	}

	if c.MaxVisitors <= 0 {
		return fmt.Errorf("STOREFRONT_MAX_VISITORS must be positive")
	}
	return nil
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
