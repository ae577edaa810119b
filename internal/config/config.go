// Package config loads provview settings from defaults, an optional
// provview.yaml file and PROVVIEW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/aretw0/provview/internal/logging"
)

// EnvPrefix is prepended to every environment variable, e.g. PROVVIEW_LOG_LEVEL.
const EnvPrefix = "PROVVIEW"

// Config holds all runtime settings.
type Config struct {
	LogLevel  string        `mapstructure:"log_level"`
	LogFormat string        `mapstructure:"log_format"`
	HTTP      HTTPConfig    `mapstructure:"http"`
	Query     QueryConfig   `mapstructure:"query"`
	Metrics   MetricsConfig `mapstructure:"metrics"`
}

type HTTPConfig struct {
	Address string `mapstructure:"address"`
}

type QueryConfig struct {
	// MaxSize is the largest accepted query in bytes.
	MaxSize int `mapstructure:"max_size"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// New returns a viper instance with defaults and environment bindings.
// Callers may bind command line flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", logging.FormatText)
	v.SetDefault("http.address", ":8080")
	v.SetDefault("query.max_size", 4096)
	v.SetDefault("metrics.enabled", true)
}

// Load reads file, or provview.yaml from the usual search paths when file is
// empty, and decodes the merged settings.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("provview")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.provview")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		errs = append(errs, fmt.Errorf("log_format: %w", err))
	}
	if c.HTTP.Address == "" {
		errs = append(errs, errors.New("http.address must not be empty"))
	}
	if c.Query.MaxSize <= 0 {
		errs = append(errs, fmt.Errorf("query.max_size must be positive, got %d", c.Query.MaxSize))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
