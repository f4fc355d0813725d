package covers

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// coverClasses is the class list the marketplace puts on the product image.
var coverClasses = []string{"cover", "M201106_0_getTakelook_P00a400020052_image_wrap"}

// PageLoader returns the markup of a product page.
type PageLoader interface {
	Load(ctx context.Context, pageURL string) ([]byte, error)
}

// SiteScraper reads cover images from the marketplace's product pages.
type SiteScraper struct {
	domain string
	origin string
	loader PageLoader
}

// NewSiteScraper creates a scraper for pages on domain (and its subdomains).
// Relative image paths are resolved against origin.
func NewSiteScraper(domain, origin string, loader PageLoader) *SiteScraper {
	return &SiteScraper{
		domain: strings.ToLower(strings.TrimPrefix(strings.TrimSpace(domain), ".")),
		origin: strings.TrimRight(origin, "/"),
		loader: loader,
	}
}

// Handles reports whether pageURL is an http(s) link on the marketplace domain.
func (s *SiteScraper) Handles(pageURL string) bool {
	if s.domain == "" {
		return false
	}
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == s.domain || strings.HasSuffix(host, "."+s.domain)
}

// FetchCover loads the page and returns the normalized https cover URL.
func (s *SiteScraper) FetchCover(ctx context.Context, pageURL string) (string, error) {
	body, err := s.loader.Load(ctx, pageURL)
	if err != nil {
		return "", err
	}

	raw, err := extractCoverURL(body)
	if err != nil {
		return "", err
	}
	return normalizeScrapedURL(raw, s.origin)
}

// extractCoverURL prefers the marketplace cover image, then og:image, then a
// link rel="image_src".
func extractCoverURL(body []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	var cover, ogImage, imageSrc string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if cover != "" {
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "img":
				if hasClasses(attr(n, "class"), coverClasses) {
					cover = firstNonEmpty(attr(n, "src"), attr(n, "data-src"))
				}
			case "meta":
				if ogImage == "" && attr(n, "property") == "og:image" {
					ogImage = attr(n, "content")
				}
			case "link":
				if imageSrc == "" && strings.EqualFold(attr(n, "rel"), "image_src") {
					imageSrc = attr(n, "href")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if found := firstNonEmpty(cover, ogImage, imageSrc); found != "" {
		return found, nil
	}
	return "", fmt.Errorf("cover image not found on page")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func hasClasses(classAttr string, want []string) bool {
	present := make(map[string]bool)
	for _, c := range strings.Fields(classAttr) {
		present[c] = true
	}
	for _, c := range want {
		if !present[c] {
			return false
		}
	}
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// normalizeScrapedURL turns a scraped src into an absolute https URL:
// "//host/x" and "http://host/x" become https, "/x" and "x" are joined to
// origin.
func normalizeScrapedURL(raw, origin string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty image url")
	}

	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(raw, "//"):
		raw = "https:" + raw
	case strings.HasPrefix(lower, "http://"):
		raw = "https://" + raw[len("http://"):]
	case strings.HasPrefix(lower, "https://"):
	case strings.HasPrefix(lower, "data:"):
		return "", fmt.Errorf("inline image data is not a usable cover url")
	case strings.HasPrefix(raw, "/"):
		raw = origin + raw
	default:
		raw = origin + "/" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid image url %q: %w", raw, err)
	}
	if u.Scheme != "https" || u.Host == "" {
		return "", fmt.Errorf("invalid image url %q", raw)
	}
	return u.String(), nil
}
