package config

import (
	"os"
	"time"

	"github.com/tnicklin/coarseclock/logger"
	"go.uber.org/config"
)

// NTPConfig holds NTP source configuration.
type NTPConfig struct {
	Server       string        `yaml:"server"`
	SyncInterval time.Duration `yaml:"sync_interval"`
	Timeout      time.Duration `yaml:"timeout"`
}

// ClockConfig selects and configures the underlying clock source.
type ClockConfig struct {
	// Source is one of "system", "monotonic" or "ntp".
	Source string    `yaml:"source"`
	NTP    NTPConfig `yaml:"ntp"`
}

// MetricsConfig holds the prometheus endpoint configuration. An empty
// Addr disables the endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// AppConfig holds all application configuration.
type AppConfig struct {
	Logger  logger.Config `yaml:"logger"`
	Clock   ClockConfig   `yaml:"clock"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// Load reads configuration from the specified YAML files.
// Files are merged in order, with later files overriding earlier ones.
// Missing files are silently ignored.
func Load(files ...string) (*AppConfig, error) {
	opts := make([]config.YAMLOption, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			opts = append(opts, config.File(f))
		}
	}

	if len(opts) == 0 {
		return nil, os.ErrNotExist
	}

	provider, err := config.NewYAML(opts...)
	if err != nil {
		return nil, err
	}

	var cfg AppConfig
	if err := provider.Get(config.Root).Populate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadWithDefaults loads configuration with sensible defaults.
func LoadWithDefaults(files ...string) (*AppConfig, error) {
	cfg, err := Load(files...)
	if err != nil {
		return nil, err
	}

	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if len(cfg.Logger.OutputPaths) == 0 {
		cfg.Logger.OutputPaths = []string{"stdout"}
	}
	if cfg.Clock.Source == "" {
		cfg.Clock.Source = "system"
	}
	if cfg.Clock.NTP.Server == "" {
		cfg.Clock.NTP.Server = "pool.ntp.org"
	}
	if cfg.Clock.NTP.SyncInterval <= 0 {
		cfg.Clock.NTP.SyncInterval = 30 * time.Minute
	}
	if cfg.Clock.NTP.Timeout <= 0 {
		cfg.Clock.NTP.Timeout = 5 * time.Second
	}

	return cfg, nil
}
