package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	pkgconfig "github.com/ssbags/storefront/pkg/config"
)

// Storage backends.
const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// DefaultEnvFile is read before the environment when present.
const DefaultEnvFile = ".env"

// Config holds all configuration for the storefront client.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"warn"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`

	// Backend
	APIBase     string        `env:"STOREFRONT_API_BASE" envDefault:"http://localhost:8000/api"`
	HTTPTimeout time.Duration `env:"STOREFRONT_HTTP_TIMEOUT" envDefault:"30s"`

	// Circuit breaker around backend calls
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// Local state
	Storage  string `env:"STOREFRONT_STORAGE" envDefault:"file"`
	StateDir string `env:"STOREFRONT_STATE_DIR"`

	// Redis
	RedisAddr   string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass   string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB     int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix string `env:"STOREFRONT_REDIS_PREFIX" envDefault:"storefront:"`

	// State TTL in hours for the Redis backend (default: 7 days, 0 keeps forever)
	StateTTL int `env:"STOREFRONT_STATE_TTL_HOURS" envDefault:"168"`

	// Catalog and checkout
	SampleCatalog  bool   `env:"STOREFRONT_SAMPLE_CATALOG" envDefault:"false"`
	WhatsAppNumber string `env:"STOREFRONT_WHATSAPP_NUMBER" envDefault:"923150024508"`
	Opener         string `env:"STOREFRONT_OPENER"`
	Platform       string `env:"STOREFRONT_PLATFORM" envDefault:"desktop"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from envFiles and then the environment.
// Variables already set in the environment win.
func Load(envFiles ...string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, envFiles...); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if cfg.StateDir == "" {
		dir, err := defaultStateDir()
		if err != nil {
			return nil, err
		}
		cfg.StateDir = dir
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultStateDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("STOREFRONT_STATE_DIR is not set and no user config dir: %w", err)
	}
	return filepath.Join(base, "ssbags"), nil
}

// StateTTLDuration is StateTTL as a duration.
func (c *Config) StateTTLDuration() time.Duration {
	return time.Duration(c.StateTTL) * time.Hour
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	u, err := url.ParseRequestURI(c.APIBase)
	if err != nil {
		return fmt.Errorf("invalid STOREFRONT_API_BASE %q: %w", c.APIBase, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("STOREFRONT_API_BASE must be http or https, got %q", c.APIBase)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("STOREFRONT_HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	switch c.Storage {
	case StorageFile, StorageMemory:
	case StorageRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for redis storage")
		}
	default:
		return fmt.Errorf("unknown STOREFRONT_STORAGE %q (use file, redis or memory)", c.Storage)
	}
	if c.StateTTL < 0 {
		return fmt.Errorf("STOREFRONT_STATE_TTL_HOURS must not be negative, got %d", c.StateTTL)
	}
	if c.WhatsAppNumber == "" {
		return fmt.Errorf("STOREFRONT_WHATSAPP_NUMBER is required")
	}
	if c.CBFailureRatio <= 0 || c.CBFailureRatio > 1.0 {
		return fmt.Errorf("CB_FAILURE_RATIO must be in (0.0, 1.0], got %f", c.CBFailureRatio)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}
