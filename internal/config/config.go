package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/rolegate/rolegate/internal/rbac"
)

// Config holds all application configuration, read once from environment
// variables at startup.
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Observability ObservabilityConfig
	RateLimit     RateLimitConfig

	// RBACPath points at the YAML file the permission catalog and tenant
	// field are built from.
	RBACPath string `envconfig:"RBAC_CONFIG_PATH" default:"rbac.yaml"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr         string        `envconfig:"SERVER_ADDR" default:":8080"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout  time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string `envconfig:"DB_HOST" default:"localhost"`
	Port         string `envconfig:"DB_PORT" default:"5432"`
	User         string `envconfig:"DB_USER" default:"rolegate"`
	Password     string `envconfig:"DB_PASSWORD" required:"true"`
	Database     string `envconfig:"DB_NAME" default:"rolegate"`
	SSLMode      string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
}

// AuthConfig holds token verification configuration. Token issuance is an
// upstream identity provider's concern; this service only verifies.
type AuthConfig struct {
	TokenSecret string `envconfig:"AUTH_TOKEN_SECRET" required:"true"`
	TokenIssuer string `envconfig:"AUTH_TOKEN_ISSUER" default:""`
}

// ObservabilityConfig holds logging and tracing configuration
type ObservabilityConfig struct {
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat      string `envconfig:"LOG_FORMAT" default:"json"`
	OTELEnabled    bool   `envconfig:"OTEL_ENABLED" default:"false"`
	ServiceName    string `envconfig:"OTEL_SERVICE_NAME" default:"rolegate"`
	ServiceVersion string `envconfig:"OTEL_SERVICE_VERSION" default:"0.1.0"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64 `envconfig:"RATELIMIT_RPS" default:"10"`
	Burst             int     `envconfig:"RATELIMIT_BURST" default:"20"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// LoadRBAC parses the RBAC configuration file: ordered permission module
// groups plus the tenant field declaration. The result is immutable for
// the process lifetime; callers pass it explicitly to the catalog and
// engine constructors.
func LoadRBAC(path string) (rbac.Config, error) {
	var cfg rbac.Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read rbac config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse rbac config %s: %w", path, err)
	}
	if err := validateRBAC(cfg); err != nil {
		return cfg, fmt.Errorf("invalid rbac config %s: %w", path, err)
	}
	return cfg, nil
}

func validateRBAC(cfg rbac.Config) error {
	if len(cfg.Modules) == 0 {
		return errors.New("no permission modules declared")
	}
	if cfg.Tenant.Field == "" {
		return errors.New("tenant.field is required")
	}
	return nil
}
