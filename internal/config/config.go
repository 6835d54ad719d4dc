// Package config loads the neosctl configuration: a YAML file, overlaid
// with NEOS_* environment variables, optionally read from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultUserAgent = "neosctl/0.1 (github.com/neos-go/neos-go)"

type Config struct {
	UserAgent             string        `yaml:"user_agent"`
	BaseUrl               string        `yaml:"base_url"`
	Timeout               time.Duration `yaml:"timeout"`
	MinRequestInterval    time.Duration `yaml:"min_request_interval"`
	DefaultRateLimitDelay time.Duration `yaml:"default_rate_limit_delay"`
	SessionFile           string        `yaml:"session_file"`

	Login    LoginConfig    `yaml:"login"`
	Retry    RetryConfig    `yaml:"retry"`
	Log      LogConfig      `yaml:"log"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Exporter ExporterConfig `yaml:"exporter"`
}

// LoginConfig holds the account used by "neosctl login". The password
// and TOTP code are only read from the environment.
type LoginConfig struct {
	Username   string `yaml:"username"`
	Password   string `yaml:"-"`
	Totp       string `yaml:"-"`
	RememberMe bool   `yaml:"remember_me"`
}

type RetryConfig struct {
	Attempts       int           `yaml:"attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"`
}

// ExporterConfig configures "neosctl export", which serves Neos
// statistics as Prometheus metrics.
type ExporterConfig struct {
	Address      string        `yaml:"address"`
	MetricsPath  string        `yaml:"metrics_path"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

func NewDefaultConfig() *Config {
	return &Config{
		UserAgent:             DefaultUserAgent,
		BaseUrl:               "https://www.neosvr-api.com/api/",
		Timeout:               120 * time.Second,
		MinRequestInterval:    100 * time.Millisecond,
		DefaultRateLimitDelay: 2 * time.Second,
		SessionFile:           DefaultSessionFile(),
		Retry: RetryConfig{
			Attempts:       3,
			InitialBackoff: 500 * time.Millisecond,
			MaxBackoff:     30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Tracing: TracingConfig{
			Exporter:     "stdout",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Exporter: ExporterConfig{
			Address:      ":9464",
			MetricsPath:  "/metrics",
			PollInterval: time.Minute,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// not empty) and the environment. With dotEnv set, a .env file in the
// working directory is loaded first; a missing one is not an error.
func Load(path string, dotEnv bool) (*Config, error) {
	if dotEnv {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	config := NewDefaultConfig()

	if path != "" {
		if err := loadFromFile(config, path); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	loadFromEnvironment(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func loadFromFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return nil
}

func loadFromEnvironment(config *Config) {
	setString(&config.UserAgent, "NEOS_USER_AGENT")
	setString(&config.BaseUrl, "NEOS_BASE_URL")
	setDuration(&config.Timeout, "NEOS_TIMEOUT")
	setDuration(&config.MinRequestInterval, "NEOS_MIN_REQUEST_INTERVAL")
	setDuration(&config.DefaultRateLimitDelay, "NEOS_RATE_LIMIT_DELAY")
	setString(&config.SessionFile, "NEOS_SESSION_FILE")

	setString(&config.Login.Username, "NEOS_USERNAME")
	setString(&config.Login.Password, "NEOS_PASSWORD")
	setString(&config.Login.Totp, "NEOS_TOTP")

	if attempts := os.Getenv("NEOS_RETRY_ATTEMPTS"); attempts != "" {
		if n, err := strconv.Atoi(attempts); err == nil {
			config.Retry.Attempts = n
		}
	}

	setString(&config.Log.Level, "NEOS_LOG_LEVEL")
	setString(&config.Log.Format, "NEOS_LOG_FORMAT")

	if enabled := os.Getenv("NEOS_TRACING_ENABLED"); enabled != "" {
		config.Tracing.Enabled = strings.ToLower(enabled) == "true"
	}
	setString(&config.Tracing.Exporter, "NEOS_TRACING_EXPORTER")
	setString(&config.Tracing.OTLPEndpoint, "NEOS_OTLP_ENDPOINT")

	setString(&config.Exporter.Address, "NEOS_EXPORTER_ADDRESS")
	setDuration(&config.Exporter.PollInterval, "NEOS_EXPORTER_POLL_INTERVAL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.UserAgent) == "" {
		return fmt.Errorf("user_agent cannot be empty")
	}
	if !strings.HasPrefix(c.BaseUrl, "https://") && !strings.HasPrefix(c.BaseUrl, "http://") {
		return fmt.Errorf("base_url must be an http(s) URL, got %q", c.BaseUrl)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.DefaultRateLimitDelay <= 0 {
		return fmt.Errorf("default_rate_limit_delay must be positive")
	}
	if c.Retry.Attempts < 1 {
		return fmt.Errorf("retry.attempts must be at least 1")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	if c.Tracing.Enabled {
		switch c.Tracing.Exporter {
		case "stdout":
		case "otlp":
			if c.Tracing.OTLPEndpoint == "" {
				return fmt.Errorf("tracing.otlp_endpoint is required for the otlp exporter")
			}
		default:
			return fmt.Errorf("unsupported trace exporter: %s", c.Tracing.Exporter)
		}
	}

	if c.Exporter.PollInterval < time.Second {
		return fmt.Errorf("exporter.poll_interval must be at least 1s")
	}
	if !strings.HasPrefix(c.Exporter.MetricsPath, "/") {
		return fmt.Errorf("exporter.metrics_path must start with /")
	}
	return nil
}
