package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultDataDir       = "data"
	DefaultProgressEvery = 100
	DefaultPlotHeight    = 15
	DefaultPlotWidth     = 80
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
	DataDir       string `yaml:"data_dir"`
	ProgressEvery int    `yaml:"progress_every"`
	PlotHeight    int    `yaml:"plot_height"`
	PlotWidth     int    `yaml:"plot_width"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
		DataDir:       DefaultDataDir,
		ProgressEvery: DefaultProgressEvery,
		PlotHeight:    DefaultPlotHeight,
		PlotWidth:     DefaultPlotWidth,
	}
}

// Load reads path over the defaults, so absent keys keep their default.
func Load(path string) (*Config, error) {
	return LoadInto(path, DefaultConfig())
}

// LoadInto reads path over a copy of base. Keys absent from the file keep
// the value from base; base itself is not modified.
func LoadInto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// Resolve layers the named preset (or the defaults when empty) under the
// config file at path (skipped when empty).
func Resolve(preset, path string) (*Config, error) {
	cfg := DefaultConfig()
	if preset != "" {
		if cfg = GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %q (have %v)", ErrInvalidConfig, preset, ListPresets())
		}
	}
	if path == "" {
		return cfg, nil
	}
	return LoadInto(path, cfg)
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir is empty", ErrInvalidConfig)
	}
	if c.ProgressEvery < 0 {
		return fmt.Errorf("%w: progress_every must be >= 0, got %d", ErrInvalidConfig, c.ProgressEvery)
	}
	if c.PlotHeight < 1 || c.PlotWidth < 0 {
		return fmt.Errorf("%w: plot size %dx%d", ErrInvalidConfig, c.PlotWidth, c.PlotHeight)
	}
	return nil
}

// ConfigureLogger applies the level and format to l.
func (c *Config) ConfigureLogger(l *logrus.Logger) error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	l.SetLevel(level)
	if c.LogFormat == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
