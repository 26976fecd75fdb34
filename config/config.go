// Package config loads service configuration from an optional YAML file and
// TORNADO_* environment variables. Environment values win over the file.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cjrt007/Tornado.Ai/observe"
	"github.com/cjrt007/Tornado.Ai/secret"
)

var (
	ErrInvalidPort   = errors.New("config: server port out of range")
	ErrInvalidCache  = errors.New("config: invalid cache settings")
	ErrInvalidTools  = errors.New("config: invalid tool settings")
	ErrMissingSecret = errors.New("config: auth enabled without jwt secret")
	ErrInvalidEnv    = errors.New("config: invalid environment value")
)

// Config is the complete service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Cache   CacheConfig   `yaml:"cache"`
	Tools   ToolsConfig   `yaml:"tools"`
	Auth    AuthConfig    `yaml:"auth"`
	Observe ObserveConfig `yaml:"observe"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	CORS            bool          `yaml:"cors"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type CacheConfig struct {
	DefaultTTL    time.Duration `yaml:"defaultTTL"`
	MaxTTL        time.Duration `yaml:"maxTTL"`
	MaxEntries    int           `yaml:"maxEntries"`
	SweepInterval time.Duration `yaml:"sweepInterval"`
	SingleFlight  bool          `yaml:"singleFlight"`

	// EvictionRatio is the health checker's degraded threshold.
	EvictionRatio float64 `yaml:"evictionRatio"`
}

type ToolsConfig struct {
	MaxConcurrent int           `yaml:"maxConcurrent"`
	MaxWait       time.Duration `yaml:"maxWait"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxFailures   int           `yaml:"maxFailures"`
	ResetTimeout  time.Duration `yaml:"resetTimeout"`
}

type AuthConfig struct {
	Enabled   bool          `yaml:"enabled"`
	JWTSecret string        `yaml:"jwtSecret"`
	Issuer    string        `yaml:"issuer"`
	Audience  string        `yaml:"audience"`
	Leeway    time.Duration `yaml:"leeway"`
}

type ObserveConfig struct {
	ServiceName     string  `yaml:"serviceName"`
	LogLevel        string  `yaml:"logLevel"`
	TracingExporter string  `yaml:"tracingExporter"`
	SamplePct       float64 `yaml:"samplePct"`
	MetricsExporter string  `yaml:"metricsExporter"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8000,
			CORS:            true,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			DefaultTTL:    5 * time.Minute,
			MaxTTL:        time.Hour,
			MaxEntries:    256,
			SweepInterval: time.Minute,
			EvictionRatio: 0.5,
		},
		Tools: ToolsConfig{
			MaxConcurrent: 16,
			MaxWait:       5 * time.Second,
			Timeout:       30 * time.Second,
			MaxFailures:   5,
			ResetTimeout:  30 * time.Second,
		},
		Observe: ObserveConfig{
			ServiceName:     "tornado-scm",
			LogLevel:        "info",
			TracingExporter: "none",
			SamplePct:       1.0,
			MetricsExporter: "prometheus",
		},
	}
}

// Load reads path (when non-empty) over the defaults, applies the process
// environment and validates the result.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment lookup. The JWT secret may
// be a secretref or contain ${VAR} references; both resolve through lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	cfg.Observe.LogLevel = strings.ToLower(cfg.Observe.LogLevel)

	if cfg.Auth.JWTSecret != "" {
		resolved, err := secret.NewResolverWithEnv(true, lookup).ResolveValue(context.Background(), cfg.Auth.JWTSecret)
		if err != nil {
			return Config{}, fmt.Errorf("config: resolve auth.jwtSecret: %w", err)
		}
		cfg.Auth.JWTSecret = resolved
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Server.Port)
	}
	if c.Cache.DefaultTTL <= 0 {
		return fmt.Errorf("%w: defaultTTL must be positive", ErrInvalidCache)
	}
	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("%w: maxEntries must be at least 1", ErrInvalidCache)
	}
	if c.Cache.MaxTTL < 0 || (c.Cache.MaxTTL > 0 && c.Cache.MaxTTL < c.Cache.DefaultTTL) {
		return fmt.Errorf("%w: maxTTL must be zero or at least defaultTTL", ErrInvalidCache)
	}
	if c.Cache.SweepInterval < 0 {
		return fmt.Errorf("%w: sweepInterval must not be negative", ErrInvalidCache)
	}
	if c.Tools.MaxConcurrent < 1 {
		return fmt.Errorf("%w: maxConcurrent must be at least 1", ErrInvalidTools)
	}
	if c.Tools.Timeout < 0 || c.Tools.MaxWait < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidTools)
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return ErrMissingSecret
	}
	oc := c.ObserveConfig()
	return oc.Validate()
}

// ObserveConfig maps the observe section onto observe.Config.
func (c Config) ObserveConfig() observe.Config {
	tracing := c.Observe.TracingExporter != "" && c.Observe.TracingExporter != "none"
	metrics := c.Observe.MetricsExporter != "" && c.Observe.MetricsExporter != "none"
	return observe.Config{
		ServiceName: c.Observe.ServiceName,
		Tracing: observe.TracingConfig{
			Enabled:   tracing,
			Exporter:  c.Observe.TracingExporter,
			SamplePct: c.Observe.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  metrics,
			Exporter: c.Observe.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   c.Observe.LogLevel,
		},
	}
}
