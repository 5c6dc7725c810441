// Package config loads tool configuration: compiled defaults, overlaid by
// an optional YAML file, overlaid by CODETAPE_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Log output formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config is the resolved tool configuration.
type Config struct {
	// ArchivePath is the SQLite archive location.
	ArchivePath string `yaml:"archive_path" env:"CODETAPE_ARCHIVE"`
	// DeltaThreshold is the compact-codec delta cutoff in (0, 1].
	DeltaThreshold float64 `yaml:"delta_threshold" env:"CODETAPE_DELTA_THRESHOLD"`
	// DefaultSpeed is the replay speed used when none is given.
	DefaultSpeed float64 `yaml:"default_speed" env:"CODETAPE_SPEED"`
	// Compress controls zstd compression of exported compact files.
	Compress bool `yaml:"compress" env:"CODETAPE_COMPRESS"`
	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format" env:"CODETAPE_LOG_FORMAT"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		ArchivePath:    defaultArchivePath(),
		DeltaThreshold: 0.3,
		DefaultSpeed:   1.0,
		Compress:       true,
		LogFormat:      LogFormatText,
	}
}

// Load resolves the configuration. A non-empty path names a YAML file that
// must exist; an empty path skips the file layer. Environment variables win
// over the file, the file wins over defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.ArchivePath == "" {
		return fmt.Errorf("archive_path must not be empty")
	}
	if c.DeltaThreshold <= 0 || c.DeltaThreshold > 1 {
		return fmt.Errorf("delta_threshold %v out of range (0, 1]", c.DeltaThreshold)
	}
	if c.DefaultSpeed < 0.1 || c.DefaultSpeed > 10 {
		return fmt.Errorf("default_speed %v out of range [0.1, 10]", c.DefaultSpeed)
	}
	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("log_format %q must be %q or %q", c.LogFormat, LogFormatText, LogFormatJSON)
	}
	return nil
}

func defaultArchivePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "codetape.db"
	}
	return filepath.Join(home, ".codetape", "archive.db")
}
