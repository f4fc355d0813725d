package covers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Browser-like headers; the marketplace rejects obvious bot clients.
const (
	browserUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	browserAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	browserAcceptLanguage = "zh-TW,zh;q=0.9,en-US;q=0.8,en;q=0.7"
)

// maxPageBytes caps how much of a product page is read.
const maxPageBytes = 5 << 20

// DefaultFetchTimeout bounds a primary-site page load.
const DefaultFetchTimeout = 15 * time.Second

// HTTPLoader fetches pages with a plain GET.
type HTTPLoader struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewHTTPLoader creates a loader whose requests give up after timeout.
func NewHTTPLoader(timeout time.Duration) *HTTPLoader {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPLoader{
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
	}
}

func (l *HTTPLoader) Load(ctx context.Context, pageURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", browserAccept)
	req.Header.Set("Accept-Language", browserAcceptLanguage)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	return body, nil
}

// Close drops idle keep-alive connections.
func (l *HTTPLoader) Close() error {
	l.httpClient.CloseIdleConnections()
	return nil
}
