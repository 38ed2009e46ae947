// Package config loads the mk-oracle YAML configuration and exposes the
// validated endpoint that connection tasks are built from.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nmslite/mkoracle/internal/types"
)

const (
	DefaultHostname = "localhost"
	DefaultPort     = 1521
	DefaultTimeout  = 5
)

// ErrNoOracleSection is returned when a document has no oracle.main section.
var ErrNoOracleSection = errors.New("oracle section is absent")

type Config struct {
	Oracle  OracleConfig  `yaml:"oracle"`
	Logging LoggingConfig `yaml:"logging"`
}

type OracleConfig struct {
	Main *MainConfig `yaml:"main"`
}

type MainConfig struct {
	Authentication AuthenticationConfig `yaml:"authentication"`
	Connection     ConnectionConfig     `yaml:"connection"`
}

type AuthenticationConfig struct {
	Username string   `yaml:"username" validate:"required_unless=Type os"`
	Password *string  `yaml:"password"`
	Type     AuthType `yaml:"type"`
}

type ConnectionConfig struct {
	Hostname string  `yaml:"hostname" validate:"required,hostname_rfc1123|ip"`
	Port     int     `yaml:"port" validate:"gte=1,lte=65535"`
	Instance string  `yaml:"instance" validate:"required"`
	Timeout  int     `yaml:"timeout" validate:"gte=0"`
	Backend  string  `yaml:"backend" validate:"omitempty,oneof=std sqlplus jdbc"`
	Database *string `yaml:"database"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// Load reads configuration from file and applies environment variable overrides
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return FromString(string(data))
}

// FromString parses a YAML document, fills in defaults, applies
// environment overrides and validates the result.
func FromString(source string) (*Config, error) {
	cfg := &Config{}

	if err := yaml.Unmarshal([]byte(source), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Oracle.Main == nil {
		return nil, ErrNoOracleSection
	}

	cfg.applyDefaults()
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// applyDefaults fills unset connection values and normalizes tags.
func (c *Config) applyDefaults() {
	conn := &c.Oracle.Main.Connection
	if conn.Hostname == "" {
		conn.Hostname = DefaultHostname
	}
	if conn.Port == 0 {
		conn.Port = DefaultPort
	}
	if conn.Timeout == 0 {
		conn.Timeout = DefaultTimeout
	}
	conn.Backend = strings.ToLower(strings.TrimSpace(conn.Backend))

	auth := &c.Oracle.Main.Authentication
	normalized := auth.Type.normalize()
	if auth.Type != "" && !strings.EqualFold(string(auth.Type), string(normalized)) {
		slog.Default().With("component", "config").Warn("Unknown authentication type, using default",
			"type", string(auth.Type),
			"default", string(normalized),
		)
	}
	auth.Type = normalized

	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
}

// applyEnvOverrides checks for environment variables with MK_ORACLE_ prefix
func applyEnvOverrides(cfg *Config) {
	conn := &cfg.Oracle.Main.Connection
	auth := &cfg.Oracle.Main.Authentication

	if v := os.Getenv("MK_ORACLE_HOSTNAME"); v != "" {
		conn.Hostname = v
	}
	if v := os.Getenv("MK_ORACLE_PORT"); v != "" {
		fmt.Sscanf(v, "%d", &conn.Port)
	}
	if v := os.Getenv("MK_ORACLE_USERNAME"); v != "" {
		auth.Username = v
	}
	if v := os.Getenv("MK_ORACLE_PASSWORD"); v != "" {
		auth.Password = &v
	}
	if v := os.Getenv("MK_ORACLE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}

// Validate checks the loaded values against the struct rules.
func (c *Config) Validate() error {
	if c.Oracle.Main == nil {
		return ErrNoOracleSection
	}
	return validateStruct(c)
}

// Endpoint returns the configured monitoring target.
func (c *Config) Endpoint() Endpoint {
	m := c.Oracle.Main
	conn := NewConnection(types.PointName(m.Connection.Instance), m.Connection.TimeoutDuration()).
		WithBackend(m.Connection.Backend)
	if m.Connection.Database != nil {
		conn = conn.WithDatabase(*m.Connection.Database)
	}
	return NewEndpoint(
		types.HostName(m.Connection.Hostname),
		types.Port(m.Connection.Port),
		conn,
		c.Auth(),
	)
}

// Auth returns the configured authentication.
func (c *Config) Auth() Authentication {
	a := c.Oracle.Main.Authentication
	return NewAuthentication(a.Type, a.Username, a.Password)
}

// TimeoutDuration returns the connection timeout as a duration
func (c *ConnectionConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// IsLogLevelValid checks if the log level is valid
func (l *LoggingConfig) IsLogLevelValid() bool {
	validLevels := []string{"debug", "info", "warn", "error"}
	return slices.Contains(validLevels, strings.ToLower(l.Level))
}
