package ingest

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/fortuna/sidelined/internal/model"
)

// MinRequestInterval between browser page loads to avoid rate limiting.
const MinRequestInterval = 2 * time.Second

// BrowserFetcher loads pages in headless Chrome, for when a site rejects plain
// HTTP clients.
type BrowserFetcher struct {
	mu          sync.Mutex
	lastRequest time.Time
	interval    time.Duration
	timeout     time.Duration
	logger      *log.Logger

	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewBrowserFetcher starts a headless Chrome allocator. Call Close when done.
func NewBrowserFetcher(timeout time.Duration, userAgent string, logger *log.Logger) *BrowserFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = UserAgent
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[browser] ", log.LstdFlags)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &BrowserFetcher{
		interval: MinRequestInterval,
		timeout:  timeout,
		logger:   logger,
		allocCtx: allocCtx,
		cancel:   cancel,
	}
}

// Close releases the browser.
func (b *BrowserFetcher) Close() {
	if b.cancel != nil {
		b.cancel()
	}
}

// throttle reserves the next request slot and waits for it. Concurrent callers
// are spaced at least interval apart.
func (b *BrowserFetcher) throttle(ctx context.Context) error {
	b.mu.Lock()
	now := time.Now()
	slot := now
	if !b.lastRequest.IsZero() {
		if next := b.lastRequest.Add(b.interval); next.After(now) {
			slot = next
		}
	}
	b.lastRequest = slot
	b.mu.Unlock()

	wait := slot.Sub(now)
	if wait <= 0 {
		return nil
	}
	b.logger.Printf("Rate limiting: waiting %v before next request", wait)

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Fetch navigates to url and returns the rendered document HTML. HTML comments
// survive OuterHTML, so comment-wrapped tables can still be unwrapped.
func (b *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := b.throttle(ctx); err != nil {
		return "", err
	}

	browserCtx, cancel := chromedp.NewContext(b.allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, b.timeout)
	defer cancel()

	// tie the page to the caller's cancellation too
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	b.logger.Printf("Navigate %s", url)

	var htmlContent string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady(`body`, chromedp.ByQuery),
		chromedp.OuterHTML(`html`, &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return "", &model.RemoteFetchError{Op: "navigate", URL: url, Err: fmt.Errorf("chromedp: %w", err)}
	}
	if htmlContent == "" {
		return "", &model.RemoteFetchError{Op: "navigate", URL: url, Err: fmt.Errorf("empty HTML content returned")}
	}

	return htmlContent, nil
}
