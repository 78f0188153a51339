// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	zlog "github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Catalog CatalogConfig `yaml:"catalog"`
	Storage StorageConfig `yaml:"storage"`
	Search  SearchConfig  `yaml:"search"`
	Home    HomeConfig    `yaml:"home"`
	Log     LogConfig     `yaml:"log"`
}

// CatalogConfig represents iTunes Search API configuration.
type CatalogConfig struct {
	BaseURL    string `yaml:"base_url" default:"https://itunes.apple.com" validate:"required,url"`
	Limit      int    `yaml:"limit" default:"20" validate:"gte=1,lte=200"`
	TimeoutSec int    `yaml:"timeout_sec" default:"10" validate:"gte=1,lte=120"`
}

// StorageConfig represents library storage configuration.
// Settings are decoded by the selected backend.
type StorageConfig struct {
	Type     string         `yaml:"type" default:"file" validate:"oneof=file memory"`
	Settings map[string]any `yaml:"settings"`
}

// SearchConfig represents type-ahead search configuration.
type SearchConfig struct {
	DebounceMs int `yaml:"debounce_ms" default:"500" validate:"gte=0,lte=5000"`
}

// HomeConfig represents the browse views.
// Empty Sections means the built-in home rows.
type HomeConfig struct {
	Sections            []SectionConfig `yaml:"sections" validate:"dive"`
	RecentlyPlayedQuery string          `yaml:"recently_played_query" default:"imagine dragons"`
	RecentlyPlayedLimit int             `yaml:"recently_played_limit" default:"10" validate:"gte=1,lte=200"`
	DefaultGenre        string          `yaml:"default_genre" default:"pop"`
}

// SectionConfig represents a single home feed row.
type SectionConfig struct {
	Title string `yaml:"title" validate:"required"`
	Query string `yaml:"query" validate:"required"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	Output string `yaml:"output" default:"stderr"`
	File   string `yaml:"file"`
}

// Load loads configuration from a YAML file.
// A missing file is not an error; defaults and environment variables apply.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, errors.Wrap(err, "failed to parse config file")
			}
		case os.IsNotExist(err):
			zlog.Debug().Msgf("config: %s not found, using defaults", path)
		default:
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("HEARO_DATA_DIR"); v != "" {
		if c.Storage.Settings == nil {
			c.Storage.Settings = make(map[string]any)
		}
		c.Storage.Settings["dir"] = v
	}
	if v := os.Getenv("HEARO_CATALOG_URL"); v != "" {
		c.Catalog.BaseURL = v
	}
	if v := os.Getenv("HEARO_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// CatalogTimeout returns the catalog request timeout.
func (c *Config) CatalogTimeout() time.Duration {
	return time.Duration(c.Catalog.TimeoutSec) * time.Second
}

// SearchDebounce returns the type-ahead idle delay.
func (c *Config) SearchDebounce() time.Duration {
	return time.Duration(c.Search.DebounceMs) * time.Millisecond
}
