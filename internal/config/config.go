// Package config loads settings for the fetch command.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables read into the configuration, so
// FETCH_MAXTRIES sets maxtries and FETCH_LOG_LEVEL sets log.level
const EnvPrefix = "FETCH_"

// Config holds everything the fetch command can be told
type Config struct {
	MaxTries int           `koanf:"maxtries"`
	Timeout  time.Duration `koanf:"timeout"`
	Log      LogConfig     `koanf:"log"`
}

// LogConfig controls diagnostic output
type LogConfig struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}

// Load loads configuration from multiple sources with priority:
// 1. Overrides, normally flags set on the command line (highest priority)
// 2. Environment variables
// 3. The YAML file at path, if path is not empty
// 4. Default values (lowest priority)
func Load(path string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Unlike the defaults, a file that was asked for has to exist
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			// Convert FETCH_LOG_LEVEL to log.level for koanf
			key = strings.TrimPrefix(key, EnvPrefix)
			return strings.ReplaceAll(strings.ToLower(key), "_", "."), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load overrides: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"maxtries": 3,
		"timeout":  "0s", // no overall deadline

		"log.level":  "info",
		"log.pretty": false,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}

// Validate checks the values Load could not type-check on its own
func Validate(cfg *Config) error {
	var errs []error

	if cfg.MaxTries < 2 {
		errs = append(errs, fmt.Errorf("maxtries must be at least 2, received %d", cfg.MaxTries))
	}

	if cfg.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, received %s", cfg.Timeout))
	}

	return errors.Join(errs...)
}
