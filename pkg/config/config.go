package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the distributor API server configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Logging      LoggingConfig      `yaml:"logging"`
	Distribution DistributionConfig `yaml:"distribution"`
	Monitoring   MonitoringConfig   `yaml:"monitoring"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" default:"60s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"30s"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host         string `yaml:"host" default:"localhost" validate:"required"`
	Port         int    `yaml:"port" default:"5432" validate:"min=1,max=65535"`
	User         string `yaml:"user" validate:"required"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database" default:"distributor" validate:"required"`
	SSLMode      string `yaml:"ssl_mode" default:"disable" validate:"oneof=disable require verify-ca verify-full"`
	MaxOpenConns int    `yaml:"max_open_conns" default:"20" validate:"min=1"`
	MaxIdleConns int    `yaml:"max_idle_conns" default:"5" validate:"min=0"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" default:"json" validate:"oneof=json console"`
	OutputPath string `yaml:"output_path" default:"stdout"`
}

// DistributionConfig holds the reconciliation tolerances and the canonical contribution network.
// Tolerances are decimal strings so they never pass through float parsing.
type DistributionConfig struct {
	Network      string `yaml:"network" default:"solana" validate:"required"`
	USDEpsilon   string `yaml:"usd_epsilon" default:"0.01" validate:"numeric"`
	MEGYEpsilon  string `yaml:"megy_epsilon" default:"0.0001" validate:"numeric"`
	ShareEpsilon string `yaml:"share_epsilon" default:"0.0001" validate:"numeric"`
}

// MonitoringConfig contains metrics settings
type MonitoringConfig struct {
	Enabled     bool   `yaml:"enabled" default:"true"`
	MetricsPath string `yaml:"metrics_path" default:"/metrics"`
}

// Tolerances is the parsed form of the reconciliation epsilons.
type Tolerances struct {
	USD   decimal.Decimal
	MEGY  decimal.Decimal
	Share decimal.Decimal
}

// Tolerances parses the configured epsilons.
func (c *DistributionConfig) Tolerances() (Tolerances, error) {
	usd, err := decimal.NewFromString(c.USDEpsilon)
	if err != nil {
		return Tolerances{}, fmt.Errorf("invalid distribution.usd_epsilon: %w", err)
	}
	megy, err := decimal.NewFromString(c.MEGYEpsilon)
	if err != nil {
		return Tolerances{}, fmt.Errorf("invalid distribution.megy_epsilon: %w", err)
	}
	share, err := decimal.NewFromString(c.ShareEpsilon)
	if err != nil {
		return Tolerances{}, fmt.Errorf("invalid distribution.share_epsilon: %w", err)
	}
	return Tolerances{USD: usd, MEGY: megy, Share: share}, nil
}

// Load reads the YAML file at configPath, expands ${ENV} references, applies defaults and validates.
func Load(configPath string) (*Config, error) {
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(raw)
}

// Parse builds a Config from raw YAML.
func Parse(raw []byte) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if _, err := cfg.Distribution.Tolerances(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Address returns host:port for the HTTP listener
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
