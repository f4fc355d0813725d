package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultGoogleBooksURL is the volumes search endpoint.
const DefaultGoogleBooksURL = "https://www.googleapis.com/books/v1/volumes"

// BookInfo is informational bibliographic data returned alongside a cover.
// It is not authoritative and never written to the store.
type BookInfo struct {
	Title         string   `json:"title,omitempty"`
	Authors       []string `json:"authors,omitempty"`
	Publisher     string   `json:"publisher,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
}

// CoverMatch is the best cover found for a title/author query.
type CoverMatch struct {
	CoverURL string
	Info     BookInfo
}

// GoogleBooksClient searches the Google Books volumes API for cover images.
type GoogleBooksClient struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	rateLimiter *rate.Limiter
}

// GoogleBooksOptions configures a GoogleBooksClient. Zero values use defaults.
type GoogleBooksOptions struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	RateInterval time.Duration // Minimum spacing between requests, 0 disables limiting
}

// NewGoogleBooksClient creates a client for the public volumes search API.
func NewGoogleBooksClient(opts GoogleBooksOptions) *GoogleBooksClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultGoogleBooksURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.RateInterval), 1)
	}

	return &GoogleBooksClient{
		httpClient:  &http.Client{Timeout: opts.Timeout},
		baseURL:     opts.BaseURL,
		apiKey:      opts.APIKey,
		rateLimiter: limiter,
	}
}

// imagePreference lists imageLinks keys from largest to smallest.
var imagePreference = []string{"extraLarge", "large", "medium", "small", "thumbnail"}

// SearchCover queries by title, narrowed by author when given, and returns the
// largest image of the first match.
func (c *GoogleBooksClient) SearchCover(ctx context.Context, title, author string) (*CoverMatch, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	query := "intitle:" + title
	if author != "" {
		query += " inauthor:" + author
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", "1")
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search volumes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(result.Items) == 0 {
		return nil, fmt.Errorf("no matching books found")
	}

	volume := result.Items[0].VolumeInfo
	imageURL := pickImage(volume.ImageLinks)
	if imageURL == "" {
		return nil, fmt.Errorf("match has no cover image")
	}

	coverURL, err := normalizeImageURL(imageURL)
	if err != nil {
		return nil, err
	}

	return &CoverMatch{
		CoverURL: coverURL,
		Info: BookInfo{
			Title:         volume.Title,
			Authors:       volume.Authors,
			Publisher:     volume.Publisher,
			PublishedDate: volume.PublishedDate,
		},
	}, nil
}

func pickImage(links map[string]string) string {
	for _, key := range imagePreference {
		if link := strings.TrimSpace(links[key]); link != "" {
			return link
		}
	}
	return ""
}

// normalizeImageURL forces https and drops the zoom parameter so the API
// serves the full-size image.
func normalizeImageURL(raw string) (string, error) {
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid image url %q: %w", raw, err)
	}
	if u.Scheme == "http" {
		u.Scheme = "https"
	}
	if u.Scheme != "https" || u.Host == "" {
		return "", fmt.Errorf("invalid image url %q", raw)
	}

	q := u.Query()
	if q.Has("zoom") {
		q.Del("zoom")
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Google Books API response types

type volumesResponse struct {
	TotalItems int          `json:"totalItems"`
	Items      []volumeItem `json:"items"`
}

type volumeItem struct {
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title         string            `json:"title"`
	Authors       []string          `json:"authors"`
	Publisher     string            `json:"publisher"`
	PublishedDate string            `json:"publishedDate"`
	ImageLinks    map[string]string `json:"imageLinks"`
}
