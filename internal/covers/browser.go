package covers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// BrowserLoader renders pages in a headless Chrome. The browser starts on the
// first Load and is reused until Close.
type BrowserLoader struct {
	timeout time.Duration
	opts    []chromedp.ExecAllocatorOption

	mu            sync.Mutex
	browserCtx    context.Context
	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc
	closed        bool
}

// NewBrowserLoader creates a loader whose page loads give up after timeout.
func NewBrowserLoader(timeout time.Duration) *BrowserLoader {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &BrowserLoader{
		timeout: timeout,
		opts: []chromedp.ExecAllocatorOption{
			chromedp.NoDefaultBrowserCheck,
			chromedp.NoFirstRun,
			chromedp.UserAgent(browserUserAgent),
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-sync", true),
			chromedp.Flag("mute-audio", true),
			chromedp.Flag("disable-default-apps", true),
			chromedp.Flag("blink-settings", "imagesEnabled=false"),
		},
	}
}

// browser returns the shared browser context, starting Chrome if needed.
func (b *BrowserLoader) browser() (context.Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("browser loader is closed")
	}
	if b.browserCtx != nil {
		return b.browserCtx, nil
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), b.opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	slog.Info("headless browser started for cover scraping")
	b.browserCtx = browserCtx
	b.cancelAlloc = cancelAlloc
	b.cancelBrowser = cancelBrowser
	return browserCtx, nil
}

// Load opens pageURL in a new tab and returns the rendered document.
func (b *BrowserLoader) Load(ctx context.Context, pageURL string) ([]byte, error) {
	browserCtx, err := b.browser()
	if err != nil {
		return nil, err
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.timeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	var document string
	err = chromedp.Run(tabCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": browserAcceptLanguage}),
		chromedp.Navigate(pageURL),
		chromedp.OuterHTML("html", &document, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return []byte(document), nil
}

// Close shuts the browser down. Loads after Close fail.
func (b *BrowserLoader) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	if b.cancelBrowser != nil {
		b.cancelBrowser()
		b.cancelAlloc()
		slog.Info("headless browser stopped")
	}
	b.browserCtx = nil
	return nil
}
