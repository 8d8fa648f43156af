package bref

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fortuna/sidelined/internal/ingest"
	"github.com/fortuna/sidelined/internal/model"
)

// BaseURL of Basketball-Reference's league pages.
const BaseURL = "https://www.basketball-reference.com/leagues"

// Client is the performance data source: the season's Advanced table, one
// row per team stint.
type Client struct {
	fetcher ingest.Fetcher
	baseURL string
	logger  *log.Logger
}

var _ ingest.Source[model.PerformanceStint] = (*Client)(nil)

// New creates a Basketball-Reference client. An empty baseURL selects BaseURL.
func New(fetcher ingest.Fetcher, baseURL string, logger *log.Logger) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = BaseURL
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[bref] ", log.LstdFlags)
	}
	return &Client{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Name identifies the source in logs and errors.
func (c *Client) Name() string {
	return "bref"
}

// SeasonURL returns the Advanced page for season.
func (c *Client) SeasonURL(season int) string {
	return fmt.Sprintf("%s/NBA_%d_advanced.html", c.baseURL, season)
}

// FetchSeason fetches and parses the season's per-stint advanced stats.
func (c *Client) FetchSeason(ctx context.Context, season int) ([]model.PerformanceStint, error) {
	url := c.SeasonURL(season)

	body, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch performance: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse performance HTML: %w", err)
	}

	stints, stats, err := ParseAdvanced(doc)
	if err != nil {
		var drift *model.SchemaDriftError
		if errors.As(err, &drift) {
			drift.URL = url
		}
		return nil, err
	}

	if stats.Combined > 0 {
		c.logger.Printf("Dropped %d combined-team rows", stats.Combined)
	}
	if stats.Malformed > 0 {
		c.logger.Printf("⚠️  Skipped %d malformed stint rows", stats.Malformed)
	}
	c.logger.Printf("✓ Parsed %d stints for %d", len(stints), season)
	return stints, nil
}
