// Package config loads the service configuration from an optional YAML file
// and the process environment. Environment variables win over the file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Auth     AuthConfig     `yaml:"auth"`
	Scaffold ScaffoldConfig `yaml:"scaffold"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            string `yaml:"port"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// DatabaseConfig selects and addresses the relational store.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // postgres, sqlite
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	Path     string `yaml:"path"` // sqlite only
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// AuthConfig names the header carrying the already-verified caller id.
type AuthConfig struct {
	UserHeader string `yaml:"user_header"`
}

// ScaffoldConfig tunes scaffold materialization.
type ScaffoldConfig struct {
	// SerializeMaterialization makes concurrent first requests for the same
	// build within this process share one materialization.
	SerializeMaterialization bool `yaml:"serialize_materialization"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ShutdownTimeout: "10s",
		},
		Database: DatabaseConfig{
			Driver:  DriverPostgres,
			Port:    "5432",
			SSLMode: "disable",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Auth: AuthConfig{
			UserHeader: "X-User-ID",
		},
		Scaffold: ScaffoldConfig{
			SerializeMaterialization: true,
		},
	}
}

// Load reads path (if non-empty) over the defaults, then applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Server.Port, "PORT")
	set(&c.Database.Driver, "DB_DRIVER")
	set(&c.Database.Host, "DB_HOST")
	set(&c.Database.Port, "DB_PORT")
	set(&c.Database.User, "DB_USER")
	set(&c.Database.Password, "DB_PASSWORD")
	set(&c.Database.Name, "DB_NAME")
	set(&c.Database.SSLMode, "DB_SSLMODE")
	set(&c.Database.Path, "DB_PATH")
	set(&c.Logging.Level, "LOG_LEVEL")
}

// Validate checks that the configuration can be used to start the service.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.User == "" || c.Database.Name == "" {
			return fmt.Errorf("database host, user and name are required for the postgres driver")
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid server.shutdown_timeout: %w", err)
	}
	if c.Auth.UserHeader == "" {
		return fmt.Errorf("auth.user_header must not be empty")
	}
	return nil
}

// ShutdownTimeoutDuration returns the parsed graceful shutdown window.
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(s.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// DSN returns the driver-specific connection string.
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return "file:" + d.Path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, sslMode)
}
