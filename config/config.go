// Package config loads the widget API configuration from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration.
// Sources, highest priority first:
//  1. explicit path from the --config flag;
//  2. path in CONFIG_PATH;
//  3. config.yaml in the working directory;
//  4. environment only.
//
// Environment variables always overlay values read from a file.
type Config struct {
	Env        string           `yaml:"env" env:"ENV" env-default:"local"`
	HTTP       HTTPConfig       `yaml:"http"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Auth       AuthConfig       `yaml:"auth"`
	DB         DBConfig         `yaml:"db"`
	Revocation RevocationConfig `yaml:"revocation"`
	Log        LogConfig        `yaml:"log"`
}

type HTTPConfig struct {
	Host         string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port         string        `yaml:"port" env:"HTTP_PORT" env-default:"5000"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"5s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	// BaseURL prefixes Location headers and pagination links
	BaseURL string `yaml:"base_url" env:"HTTP_BASE_URL"`
}

// Addr returns host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
	Addr    string `yaml:"addr" env:"METRICS_ADDR" env-default:"0.0.0.0:9090"`
}

// AuthConfig holds token issuance and verification settings.
type AuthConfig struct {
	SecretKey     string        `yaml:"secret_key" env:"SECRET_KEY" env-required:"true"`
	TokenLifetime time.Duration `yaml:"token_lifetime" env:"TOKEN_LIFETIME" env-default:"1h"`
	Issuer        string        `yaml:"issuer" env:"TOKEN_ISSUER" env-default:"widget-api"`
	AuthScheme    string        `yaml:"auth_scheme" env:"AUTH_SCHEME" env-default:"Bearer"`
	ContextKey    string        `yaml:"context_key" env:"AUTH_CONTEXT_KEY" env-default:"user"`
	UseHashid     bool          `yaml:"use_hashid" env:"AUTH_USE_HASHID" env-default:"false"`
	// AdminEmail and AdminPassword bootstrap an administrator at start up
	AdminEmail    string `yaml:"admin_email" env:"ADMIN_EMAIL"`
	AdminPassword string `yaml:"admin_password" env:"ADMIN_PASSWORD"`
}

type DBConfig struct {
	// Driver is sqlite or postgres
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite"`
	DSN    string `yaml:"dsn" env:"DATABASE_URL" env-default:"file:widget_api.db?cache=shared"`
	Debug  bool   `yaml:"debug" env:"DB_DEBUG" env-default:"false"`
}

type RevocationConfig struct {
	// Backend is memory, database or redis
	Backend       string        `yaml:"backend" env:"REVOCATION_BACKEND" env-default:"database"`
	RedisURL      string        `yaml:"redis_url" env:"REDIS_URL"`
	KeyPrefix     string        `yaml:"key_prefix" env:"REVOCATION_KEY_PREFIX" env-default:"auth:bl:"`
	PruneInterval time.Duration `yaml:"prune_interval" env:"REVOCATION_PRUNE_INTERVAL" env-default:"10m"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Pretty bool   `yaml:"pretty" env:"LOG_PRETTY" env-default:"false"`
}

// DefaultFile is read when no explicit path is given.
const DefaultFile = "config.yaml"

// MustLoad wraps Load and panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load reads the configuration in priority order, see Config.
func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, cfg.Validate()
	}

	if path != "" {
		return tryRead(path)
	}

	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	if _, err := os.Stat(DefaultFile); err == nil {
		return tryRead(DefaultFile)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, %s or env vars: %w", DefaultFile, err)
	}

	return &cfg, cfg.Validate()
}

// Validate checks values cleanenv cannot express as tags.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported db driver %q", c.DB.Driver)
	}

	switch c.Revocation.Backend {
	case "memory", "database":
	case "redis":
		if c.Revocation.RedisURL == "" {
			return fmt.Errorf("revocation backend redis requires redis_url")
		}
	default:
		return fmt.Errorf("unsupported revocation backend %q", c.Revocation.Backend)
	}

	if c.Auth.TokenLifetime <= 0 {
		return fmt.Errorf("token lifetime must be positive, got %s", c.Auth.TokenLifetime)
	}

	return nil
}
