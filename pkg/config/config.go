// Package config loads service configuration from a YAML file and the
// environment. Environment variables win over the file; the file wins over
// the built-in defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-netplan/pkg/cost"
	"github.com/dd0wney/cluso-netplan/pkg/logging"
	"github.com/dd0wney/cluso-netplan/pkg/source"
	"github.com/dd0wney/cluso-netplan/pkg/validation"
)

// Config is the complete service configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Source SourceConfig `yaml:"source"`
	Cost   CostConfig   `yaml:"cost"`
	// Workers bounds the goroutines computing routing tables, GOMAXPROCS when zero
	Workers int `yaml:"workers"`
}

// ServerConfig controls the HTTP listener
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	CORSOrigins     []string      `yaml:"cors_allowed_origins"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// SourceConfig selects where topologies come from
type SourceConfig struct {
	Kind        string     `yaml:"kind"`
	DataDir     string     `yaml:"data_dir"`
	DatabaseURL string     `yaml:"database_url"`
	Activate    string     `yaml:"activate"`
	Pool        PoolConfig `yaml:"pool"`
}

type PoolConfig struct {
	MaxConns        int           `yaml:"max_conns"`
	MinConns        int           `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
}

// CostConfig overrides the per-medium cost table. Keys are medium names.
type CostConfig struct {
	MediumMultipliers map[string]float64 `yaml:"medium_multipliers"`
	MediumAdders      map[string]float64 `yaml:"medium_adders"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	pool := source.DefaultPoolConfig()
	return &Config{
		Server: ServerConfig{
			Host:            "",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Log: LogConfig{Level: "info"},
		Source: SourceConfig{
			Kind:     source.KindSeeds,
			Activate: source.DefaultSeed,
			Pool: PoolConfig{
				MaxConns:        int(pool.MaxConns),
				MinConns:        int(pool.MinConns),
				MaxConnLifetime: pool.MaxConnLifetime,
				MaxConnIdleTime: pool.MaxConnIdleTime,
			},
		},
	}
}

// Load reads path (skipped when empty), applies environment overrides and
// validates the result
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := cfg.Parse(data); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse overlays a YAML document onto cfg. Unknown keys are rejected.
func (c *Config) Parse(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// an empty document keeps the defaults
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// ApplyEnv applies PORT, HOST, LOG_LEVEL, DATABASE_URL, NETPLAN_SOURCE,
// NETPLAN_DATA_DIR, NETPLAN_TOPOLOGY and CORS_ALLOWED_ORIGINS
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = p
	}
	c.Server.Host = envOr(getenv, "HOST", c.Server.Host)
	c.Log.Level = envOr(getenv, "LOG_LEVEL", c.Log.Level)
	c.Source.DatabaseURL = envOr(getenv, "DATABASE_URL", c.Source.DatabaseURL)
	c.Source.Kind = envOr(getenv, "NETPLAN_SOURCE", c.Source.Kind)
	c.Source.DataDir = envOr(getenv, "NETPLAN_DATA_DIR", c.Source.DataDir)
	c.Source.Activate = envOr(getenv, "NETPLAN_TOPOLOGY", c.Source.Activate)

	if v := getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		c.Server.CORSOrigins = c.Server.CORSOrigins[:0]
		for _, o := range origins {
			if o = strings.TrimSpace(o); o != "" {
				c.Server.CORSOrigins = append(c.Server.CORSOrigins, o)
			}
		}
	}
	return nil
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Validate reports every problem in the configuration at once
func (c *Config) Validate() error {
	cv := validation.NewConfigValidator("config")

	cv.RangeInt("server.port", c.Server.Port, 1, 65535).
		PositiveDuration("server.read_timeout", c.Server.ReadTimeout).
		PositiveDuration("server.write_timeout", c.Server.WriteTimeout).
		PositiveDuration("server.idle_timeout", c.Server.IdleTimeout).
		PositiveDuration("server.request_timeout", c.Server.RequestTimeout).
		PositiveDuration("server.shutdown_timeout", c.Server.ShutdownTimeout).
		Custom("server.max_body_bytes", func() error {
			if c.Server.MaxBodyBytes <= 0 {
				return errors.New("must be positive")
			}
			return nil
		}).
		OneOf("log.level", strings.ToLower(c.Log.Level), []string{"debug", "info", "warn", "warning", "error"}).
		OneOf("source.kind", c.Source.Kind, []string{source.KindSeeds, source.KindDir, source.KindPostgres})

	cv.When(c.Source.Kind == source.KindDir, func(cv *validation.ConfigValidator) {
		cv.Required("source.data_dir", c.Source.DataDir)
	})
	cv.When(c.Source.Kind == source.KindPostgres, func(cv *validation.ConfigValidator) {
		cv.Required("source.database_url", c.Source.DatabaseURL)
		cv.When(c.Source.DatabaseURL != "", func(cv *validation.ConfigValidator) {
			cv.URL("source.database_url", c.Source.DatabaseURL, "postgres", "postgresql")
		})
		cv.Positive("source.pool.max_conns", c.Source.Pool.MaxConns).
			Custom("source.pool.min_conns", func() error {
				if c.Source.Pool.MinConns < 0 || c.Source.Pool.MinConns > c.Source.Pool.MaxConns {
					return fmt.Errorf("must be between 0 and max_conns (%d)", c.Source.Pool.MaxConns)
				}
				return nil
			})
	})

	cv.Custom("workers", func() error {
		if c.Workers < 0 {
			return errors.New("must not be negative")
		}
		return nil
	})

	for medium, v := range c.Cost.MediumMultipliers {
		cv.PositiveFloat("cost.medium_multipliers."+medium, v)
	}
	for medium, v := range c.Cost.MediumAdders {
		cv.NonNegativeFloat("cost.medium_adders."+medium, v)
	}

	return cv.Validate()
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// LogLevel returns the parsed log level
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Log.Level)
}

// CostModel returns the cost model with the configured medium overrides
func (c *Config) CostModel() *cost.Model {
	if len(c.Cost.MediumMultipliers) == 0 && len(c.Cost.MediumAdders) == 0 {
		return cost.Default()
	}
	return cost.NewModel(c.Cost.MediumMultipliers, c.Cost.MediumAdders)
}

// PostgresPool converts the pool settings for source.NewPostgres
func (c *Config) PostgresPool() source.PoolConfig {
	return source.PoolConfig{
		MaxConns:        int32(c.Source.Pool.MaxConns),
		MinConns:        int32(c.Source.Pool.MinConns),
		MaxConnLifetime: c.Source.Pool.MaxConnLifetime,
		MaxConnIdleTime: c.Source.Pool.MaxConnIdleTime,
	}
}

// SourceOptions returns the options for source.Open
func (c *Config) SourceOptions() source.Options {
	return source.Options{
		Kind:        c.Source.Kind,
		DataDir:     c.Source.DataDir,
		DatabaseURL: c.Source.DatabaseURL,
		Pool:        c.PostgresPool(),
	}
}
