// Package config holds the dashboard configuration: where the dataset lives,
// how it is shaped, where to listen and how charts are sized.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/anrid/tb-burden/pkg/stats"
)

// Config is the root configuration.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Chart   ChartConfig   `yaml:"chart"`
}

// DataConfig points at the dataset file.
type DataConfig struct {
	Path  string `yaml:"path"`
	Shape string `yaml:"shape"` // normalized | renamed

	// DefaultCountry is preselected when present in the data; otherwise the
	// first DefaultCountryCount countries are.
	DefaultCountry      string `yaml:"default_country"`
	DefaultCountryCount int    `yaml:"default_country_count"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug | info | warn | error
}

type ChartConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Path:                "data/TB_Burden_Country.csv",
			Shape:               string(stats.ShapeRenamed),
			DefaultCountry:      stats.DefaultCountry,
			DefaultCountryCount: stats.DefaultCountryCount,
		},
		Server:  ServerConfig{Addr: ":8501"},
		Logging: LoggingConfig{Level: "info"},
		Chart:   ChartConfig{Width: 1000, Height: 500},
	}
}

// Load reads a YAML config on top of the defaults. A missing file is not an
// error. Values from the environment (and a .env file in the working
// directory, if any) override the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	// .env is optional.
	_ = godotenv.Load()

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("TB_DATA_PATH"); v != "" {
		c.Data.Path = v
	}
	if v := os.Getenv("TB_DATA_SHAPE"); v != "" {
		c.Data.Shape = v
	}
	if v := os.Getenv("TB_LISTEN_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("TB_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the configuration for values the program cannot run with.
func (c *Config) Validate() error {
	if c.Data.Path == "" {
		return fmt.Errorf("data path not configured (set data.path or TB_DATA_PATH)")
	}
	if _, err := stats.ParseShape(c.Data.Shape); err != nil {
		return err
	}
	if c.Data.DefaultCountryCount < 0 {
		return fmt.Errorf("invalid default_country_count: %d", c.Data.DefaultCountryCount)
	}

	valid := false
	for _, l := range ValidLogLevels {
		if c.Logging.Level == l {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}

	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("invalid chart size: %dx%d", c.Chart.Width, c.Chart.Height)
	}
	return nil
}

// DataShape returns the parsed dataset shape. Call Validate first.
func (c *Config) DataShape() stats.Shape {
	s, _ := stats.ParseShape(c.Data.Shape)
	return s
}
