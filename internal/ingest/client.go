package ingest

import (
	"context"
	"log"
	"time"

	"github.com/fortuna/sidelined/internal/model"
	"github.com/go-resty/resty/v2"
)

const (
	// UserAgent for requests. Both sites answer 403 to default client agents.
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

	// DefaultTimeout per request.
	DefaultTimeout = 20 * time.Second
)

// HTTPFetcher fetches pages with a plain HTTP client.
type HTTPFetcher struct {
	client *resty.Client
	logger *log.Logger
}

// NewHTTPFetcher creates a fetcher with the given per-request timeout and
// User-Agent. Zero values select the defaults.
func NewHTTPFetcher(timeout time.Duration, userAgent string, logger *log.Logger) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = UserAgent
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[fetch] ", log.LstdFlags)
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)

	return &HTTPFetcher{client: client, logger: logger}
}

// Fetch performs a GET and returns the body. Any non-2xx status is a
// RemoteFetchError carrying the status and body.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.logger.Printf("GET %s", url)

	res, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return "", &model.RemoteFetchError{Op: "GET", URL: url, Err: err}
	}
	if !res.IsSuccess() {
		return "", &model.RemoteFetchError{
			Op:         "GET",
			URL:        url,
			StatusCode: res.StatusCode(),
			Body:       res.String(),
		}
	}

	f.logger.Printf("✓ %s (%d bytes)", url, len(res.Body()))
	return res.String(), nil
}
