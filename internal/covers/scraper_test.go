package covers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productPage = `<!DOCTYPE html>
<html><head>
<meta property="og:image" content="https://im2.book.com.tw/og.jpg">
</head><body>
<div class="cnt_mod002 cover_img">
  <img class="cover M201106_0_getTakelook_P00a400020052_image_wrap" src="//im2.book.com.tw/image/getImage?i=https://www.books.com.tw/img/001/001.jpg&amp;v=1&amp;w=348&amp;h=348" alt="Cover">
</div>
</body></html>`

type staticLoader struct {
	body []byte
	err  error
}

func (l staticLoader) Load(ctx context.Context, pageURL string) ([]byte, error) {
	return l.body, l.err
}

func TestSiteScraper_Handles(t *testing.T) {
	scraper := NewSiteScraper("books.com.tw", "https://www.books.com.tw", staticLoader{})

	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.books.com.tw/products/0010000001", true},
		{"http://books.com.tw/products/1", true},
		{"https://search.BOOKS.com.tw/x", true},
		{"https://notbooks.com.tw/x", false},
		{"https://books.com.tw.evil.example/x", false},
		{"ftp://www.books.com.tw/x", false},
		{"www.books.com.tw/products/1", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, scraper.Handles(tt.url))
		})
	}
}

func TestSiteScraper_FetchCover(t *testing.T) {
	scraper := NewSiteScraper("books.com.tw", "https://www.books.com.tw", staticLoader{body: []byte(productPage)})

	coverURL, err := scraper.FetchCover(context.Background(), "https://www.books.com.tw/products/1")
	require.NoError(t, err)
	assert.Equal(t, "https://im2.book.com.tw/image/getImage?i=https://www.books.com.tw/img/001/001.jpg&v=1&w=348&h=348", coverURL)
}

func TestExtractCoverURL(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		want    string
		wantErr bool
	}{
		{
			name: "cover image",
			page: productPage,
			want: "//im2.book.com.tw/image/getImage?i=https://www.books.com.tw/img/001/001.jpg&v=1&w=348&h=348",
		},
		{
			name: "class order does not matter",
			page: `<img class="M201106_0_getTakelook_P00a400020052_image_wrap cover extra" data-src="/img/a.jpg">`,
			want: "/img/a.jpg",
		},
		{
			name: "partial class list is ignored",
			page: `<img class="cover" src="/wrong.jpg"><meta property="og:image" content="https://cdn.example.com/og.jpg">`,
			want: "https://cdn.example.com/og.jpg",
		},
		{
			name: "image_src link fallback",
			page: `<head><link rel="image_src" href="http://cdn.example.com/link.jpg"></head>`,
			want: "http://cdn.example.com/link.jpg",
		},
		{
			name:    "nothing usable",
			page:    `<html><body><img src="/logo.png"></body></html>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractCoverURL([]byte(tt.page))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "not found")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeScrapedURL(t *testing.T) {
	origin := "https://www.books.com.tw"
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"//im2.book.com.tw/a.jpg", "https://im2.book.com.tw/a.jpg", false},
		{"http://im2.book.com.tw/a.jpg", "https://im2.book.com.tw/a.jpg", false},
		{"HTTP://im2.book.com.tw/a.jpg", "https://im2.book.com.tw/a.jpg", false},
		{"https://im2.book.com.tw/a.jpg", "https://im2.book.com.tw/a.jpg", false},
		{"/img/001/a.jpg", "https://www.books.com.tw/img/001/a.jpg", false},
		{"img/001/a.jpg", "https://www.books.com.tw/img/001/a.jpg", false},
		{"data:image/png;base64,AAAA", "", true},
		{"   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := normalizeScrapedURL(tt.raw, origin)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHTTPLoader_SendsBrowserHeaders(t *testing.T) {
	var gotUA, gotLang string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Write([]byte(productPage))
	}))
	defer server.Close()

	body, err := NewHTTPLoader(2*time.Second).Load(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, productPage, string(body))
	assert.Contains(t, gotUA, "Mozilla/5.0")
	assert.Equal(t, browserAcceptLanguage, gotLang)
}

func TestHTTPLoader_Non2xxFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewHTTPLoader(2*time.Second).Load(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status: 403")
}

func TestHTTPLoader_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	start := time.Now()
	_, err := NewHTTPLoader(100*time.Millisecond).Load(context.Background(), server.URL)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSiteScraper_WithHTTPLoader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<img class="cover M201106_0_getTakelook_P00a400020052_image_wrap" src="/covers/42.jpg">`))
	}))
	defer server.Close()

	scraper := NewSiteScraper("127.0.0.1", "https://www.books.com.tw", NewHTTPLoader(2*time.Second))
	require.True(t, scraper.Handles(server.URL+"/products/42"))

	coverURL, err := scraper.FetchCover(context.Background(), server.URL+"/products/42")
	require.NoError(t, err)
	assert.Equal(t, "https://www.books.com.tw/covers/42.jpg", coverURL)
}

func TestBrowserLoader_ClosedWithoutStart(t *testing.T) {
	loader := NewBrowserLoader(time.Second)

	require.NoError(t, loader.Close())
	require.NoError(t, loader.Close())

	_, err := loader.Load(context.Background(), "https://www.books.com.tw/products/1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}
