package ingest

import (
	"fmt"
	"log"
	"time"
)

// NewFetcher builds the Fetcher for mode. The returned close func releases any
// browser resources and is always safe to call.
func NewFetcher(mode FetchMode, timeout time.Duration, userAgent string, logger *log.Logger) (Fetcher, func(), error) {
	switch mode {
	case "", FetchModeHTTP:
		return NewHTTPFetcher(timeout, userAgent, logger), func() {}, nil
	case FetchModeBrowser:
		b := NewBrowserFetcher(timeout, userAgent, logger)
		return b, b.Close, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown fetch mode %q (want http or browser)", mode)
	}
}
