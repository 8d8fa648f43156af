package spotrac

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

const (
	// BaseURL of the NBA injury tracker; the season and view are appended.
	BaseURL = "https://www.spotrac.com/nba/injured/_/year"

	// ViewPlayer lists one row per injured player.
	ViewPlayer = "player"
)

// Client is the injury data source.
type Client struct {
	fetcher ingest.Fetcher
	baseURL string
	view    string
	logger  *log.Logger
}

var _ ingest.Source[model.InjuryRecord] = (*Client)(nil)

// New creates a Spotrac client. An empty baseURL selects BaseURL.
func New(fetcher ingest.Fetcher, baseURL string, logger *log.Logger) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = BaseURL
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[spotrac] ", log.LstdFlags)
	}
	return &Client{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		view:    ViewPlayer,
		logger:  logger,
	}
}

// Name identifies the source in logs and errors.
func (c *Client) Name() string {
	return "spotrac"
}

// SeasonURL returns the injury page for season.
func (c *Client) SeasonURL(season int) string {
	return fmt.Sprintf("%s/%d/view/%s", c.baseURL, season, c.view)
}

// FetchSeason fetches and parses the season's injury table.
func (c *Client) FetchSeason(ctx context.Context, season int) ([]model.InjuryRecord, error) {
	url := c.SeasonURL(season)

	body, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch injuries: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse injuries HTML: %w", err)
	}

	records, skipped, err := ParseInjuries(doc)
	if err != nil {
		var drift *model.SchemaDriftError
		if errors.As(err, &drift) {
			drift.URL = url
		}
		return nil, err
	}

	if skipped > 0 {
		c.logger.Printf("⚠️  Skipped %d malformed injury rows", skipped)
	}
	c.logger.Printf("✓ Parsed %d injury records for %d", len(records), season)
	return records, nil
}
