package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SIDELINED_CONFIG is set
//  3. DW_API_KEY, the chart key name the publishing scripts used
//  4. env (prefix SIDELINED_)
//
// Command-line flags are applied by the caller on top of the result.
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("SIDELINED_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	legacyKey := env.Provider("DW_", ".", func(s string) string {
		if s == "DW_API_KEY" {
			return "datawrapper_api_key"
		}
		return ""
	})
	if err := k.Load(legacyKey, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// SIDELINED_HTTP_TIMEOUT -> http_timeout (flat keys)
	envProvider := env.Provider("SIDELINED_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "sidelined_")
		if s == "config" {
			return ""
		}
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
