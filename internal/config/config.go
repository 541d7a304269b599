// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	domain "github.com/donaldgifford/winning-products/pkg/types"
)

// APIKeyEnv is consulted when rainforest.api_key is left empty.
const APIKeyEnv = "RAINFOREST_API_KEY"

// Config is the top-level application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Rainforest RainforestConfig `yaml:"rainforest"`
	Ranking    RankingConfig    `yaml:"ranking"`
	Logging    LoggingConfig    `yaml:"logging"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Addr returns the listen address.
func (s *ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// RainforestConfig defines product search API settings.
type RainforestConfig struct {
	APIKey    string          `yaml:"api_key"`
	BaseURL   string          `yaml:"base_url"`
	Domain    string          `yaml:"domain"` // amazon.in, amazon.com, ...
	Timeout   time.Duration   `yaml:"timeout"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines API rate limiting settings. A negative daily
// limit disables the daily budget.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"`
}

// RankingConfig defines the default pipeline parameters.
type RankingConfig struct {
	Mode  string `yaml:"mode"` // score, reviews
	Limit int    `yaml:"limit"`
	Top   int    `yaml:"top"`
}

// RankMode returns the parsed ranking mode. Load has already validated it.
func (r *RankingConfig) RankMode() domain.RankMode {
	m, err := domain.ParseRankMode(r.Mode)
	if err != nil {
		return domain.RankByScore
	}
	return m
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// TelemetryConfig defines OpenTelemetry export settings. Export is off unless
// enabled is set.
type TelemetryConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Endpoint       string        `yaml:"endpoint"` // OTLP gRPC collector, host:port
	Insecure       bool          `yaml:"insecure"`
	ServiceName    string        `yaml:"service_name"`
	SampleRate     *float64      `yaml:"sample_rate"`
	ExportInterval time.Duration `yaml:"export_interval"`
}

// Rate returns the configured sample rate.
func (t *TelemetryConfig) Rate() float64 {
	if t.SampleRate == nil {
		return 1.0
	}
	return *t.SampleRate
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		if err := validate(cfg); err != nil {
			return nil, fmt.Errorf("validating config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyRainforestDefaults(&cfg.Rainforest)
	applyRankingDefaults(&cfg.Ranking)
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 60 * time.Second
	}
}

func applyRainforestDefaults(r *RainforestConfig) {
	if r.APIKey == "" {
		r.APIKey = os.Getenv(APIKeyEnv)
	}
	if r.BaseURL == "" {
		r.BaseURL = "https://api.rainforestapi.com"
	}
	if r.Domain == "" {
		r.Domain = "amazon.in"
	}
	if r.Timeout == 0 {
		r.Timeout = 30 * time.Second
	}
	applyRateLimitDefaults(&r.RateLimit)
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 1.0
	}
	if r.Burst == 0 {
		r.Burst = 2
	}
	if r.DailyLimit == 0 {
		r.DailyLimit = 100
	}
}

func applyRankingDefaults(r *RankingConfig) {
	if r.Mode == "" {
		r.Mode = string(domain.RankByScore)
	}
	if r.Limit == 0 {
		r.Limit = 12
	}
	if r.Top == 0 {
		r.Top = 8
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Endpoint == "" {
		t.Endpoint = "localhost:4317"
	}
	if t.ServiceName == "" {
		t.ServiceName = "winning-products"
	}
	if t.ExportInterval == 0 {
		t.ExportInterval = 30 * time.Second
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535 (got %d)", cfg.Server.Port))
	}

	if u, err := url.Parse(cfg.Rainforest.BaseURL); err != nil ||
		(u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("rainforest.base_url must be an http(s) URL (got %q)", cfg.Rainforest.BaseURL))
	}
	if cfg.Rainforest.Timeout < 0 {
		errs = append(errs, fmt.Errorf("rainforest.timeout must not be negative"))
	}
	if cfg.Rainforest.RateLimit.PerSecond < 0 {
		errs = append(errs, fmt.Errorf("rainforest.rate_limit.per_second must be positive"))
	}
	if cfg.Rainforest.RateLimit.Burst < 0 {
		errs = append(errs, fmt.Errorf("rainforest.rate_limit.burst must be positive"))
	}

	if _, err := domain.ParseRankMode(cfg.Ranking.Mode); err != nil {
		errs = append(errs, fmt.Errorf("ranking.mode: %w", err))
	}
	if cfg.Ranking.Limit < 1 || cfg.Ranking.Limit > 100 {
		errs = append(errs, fmt.Errorf("ranking.limit must be between 1 and 100 (got %d)", cfg.Ranking.Limit))
	}
	if cfg.Ranking.Top < 1 {
		errs = append(errs, fmt.Errorf("ranking.top must be at least 1 (got %d)", cfg.Ranking.Top))
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be one of: text, json (got %q)", cfg.Logging.Format))
	}

	if r := cfg.Telemetry.Rate(); r < 0 || r > 1 {
		errs = append(errs, fmt.Errorf("telemetry.sample_rate must be between 0 and 1 (got %g)", r))
	}
	if cfg.Telemetry.ExportInterval < 0 {
		errs = append(errs, fmt.Errorf("telemetry.export_interval must not be negative"))
	}

	return errors.Join(errs...)
}
