package ingest

import "context"

// Source fetches one season of normalized records from a remote site. Markup
// details stay behind this interface.
type Source[T any] interface {
	Name() string
	FetchSeason(ctx context.Context, season int) ([]T, error)
}

// Fetcher returns the HTML body at url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetchMode selects the Fetcher implementation.
type FetchMode string

const (
	FetchModeHTTP    FetchMode = "http"
	FetchModeBrowser FetchMode = "browser"
)
