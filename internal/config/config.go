// Package config defines process configuration and how it is loaded.
package config

import (
	"fmt"
	"time"

	"github.com/fortuna/sidelined/internal/ingest"
	"github.com/fortuna/sidelined/internal/ingest/bref"
	"github.com/fortuna/sidelined/internal/ingest/spotrac"
	"github.com/fortuna/sidelined/internal/model"
	"github.com/fortuna/sidelined/internal/report"
)

// firstSeason is the first season Basketball-Reference has advanced stats for.
const firstSeason = 1947

// Config contains process configuration.
type Config struct {
	// Season is the end year of the season, e.g. 2025 for 2024-25. Zero
	// selects the current season.
	Season int `koanf:"season"`

	// HTTPTimeout bounds each outbound request.
	HTTPTimeout time.Duration `koanf:"http_timeout"`

	// UserAgent is sent to both scraped sites.
	UserAgent string `koanf:"user_agent"`

	SpotracBaseURL string `koanf:"spotrac_base_url"`
	BrefBaseURL    string `koanf:"bref_base_url"`

	// FetchMode is "http" or "browser" (headless Chrome).
	FetchMode string `koanf:"fetch_mode"`

	DatawrapperAPIKey string `koanf:"datawrapper_api_key"`
	DatawrapperAPIURL string `koanf:"datawrapper_api_url"`
	DatawrapperByline string `koanf:"datawrapper_byline"`

	// AtlasDSN enables the Postgres sink when set.
	AtlasDSN string `koanf:"atlas_dsn"`

	// RedisURL enables the Redis stream sink when set.
	RedisURL string `koanf:"redis_url"`

	// RESTPort is the listen port of the serve command.
	RESTPort int `koanf:"rest_port"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		HTTPTimeout:       ingest.DefaultTimeout,
		UserAgent:         ingest.UserAgent,
		SpotracBaseURL:    spotrac.BaseURL,
		BrefBaseURL:       bref.BaseURL,
		FetchMode:         string(ingest.FetchModeHTTP),
		DatawrapperAPIURL: report.DatawrapperAPIURL,
		DatawrapperByline: report.DefaultByline,
		RESTPort:          8080,
	}
}

// SeasonAt returns the configured season, or the season in progress at now.
func (c *Config) SeasonAt(now time.Time) int {
	if c.Season != 0 {
		return c.Season
	}
	return model.CurrentSeason(now)
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.Season != 0 && c.Season < firstSeason {
		return fmt.Errorf("%w: season %d is before %d", ErrInvalidConfig, c.Season, firstSeason)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%w: http_timeout must be positive", ErrInvalidConfig)
	}
	switch ingest.FetchMode(c.FetchMode) {
	case ingest.FetchModeHTTP, ingest.FetchModeBrowser:
	default:
		return fmt.Errorf("%w: fetch_mode %q (want http or browser)", ErrInvalidConfig, c.FetchMode)
	}
	if c.RESTPort <= 0 || c.RESTPort > 65535 {
		return fmt.Errorf("%w: rest_port %d", ErrInvalidConfig, c.RESTPort)
	}
	return nil
}
