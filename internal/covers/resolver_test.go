package covers

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/metadata"
)

type fakePrimary struct {
	domain   string
	coverURL string
	err      error
	calls    []string
}

func (f *fakePrimary) Handles(pageURL string) bool {
	return strings.Contains(pageURL, f.domain)
}

func (f *fakePrimary) FetchCover(ctx context.Context, pageURL string) (string, error) {
	f.calls = append(f.calls, pageURL)
	return f.coverURL, f.err
}

type fakeSearcher struct {
	match *metadata.CoverMatch
	err   error
	calls int
}

func (f *fakeSearcher) SearchCover(ctx context.Context, title, author string) (*metadata.CoverMatch, error) {
	f.calls++
	return f.match, f.err
}

func searchMatch(url string) *metadata.CoverMatch {
	return &metadata.CoverMatch{
		CoverURL: url,
		Info:     metadata.BookInfo{Title: "Dune", Authors: []string{"Frank Herbert"}, Publisher: "Ace"},
	}
}

func TestResolver_PrimarySiteWins(t *testing.T) {
	primary := &fakePrimary{domain: "books.com.tw", coverURL: "https://im.books.com.tw/cover.jpg"}
	search := &fakeSearcher{match: searchMatch("https://books.google.com/x")}

	result, err := NewResolver(primary, search).Resolve(context.Background(), "https://www.books.com.tw/products/1", "Dune", "Frank Herbert")
	require.NoError(t, err)

	assert.Equal(t, SourcePrimarySite, result.Source)
	assert.Equal(t, "https://im.books.com.tw/cover.jpg", result.CoverURL)
	assert.Nil(t, result.Info)
	assert.Equal(t, 0, search.calls, "search tier is skipped after a primary hit")
}

func TestResolver_FallsBackToSearch(t *testing.T) {
	primary := &fakePrimary{domain: "books.com.tw", err: fmt.Errorf("unexpected status: 503")}
	search := &fakeSearcher{match: searchMatch("https://books.google.com/x")}

	result, err := NewResolver(primary, search).Resolve(context.Background(), "https://www.books.com.tw/products/1", "Dune", "Frank Herbert")
	require.NoError(t, err)

	assert.Equal(t, SourceSearchAPI, result.Source)
	assert.Equal(t, "https://books.google.com/x", result.CoverURL)
	require.NotNil(t, result.Info)
	assert.Equal(t, "Ace", result.Info.Publisher)
	assert.Len(t, primary.calls, 1)
}

func TestResolver_NeverAttemptsPrimaryOffDomain(t *testing.T) {
	tests := []struct {
		name         string
		alternateURL string
	}{
		{"no alternate url", ""},
		{"other marketplace", "https://www.example-books.com/item/1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := &fakePrimary{domain: "books.com.tw", coverURL: "https://im.books.com.tw/cover.jpg"}
			search := &fakeSearcher{match: searchMatch("https://books.google.com/x")}

			result, err := NewResolver(primary, search).Resolve(context.Background(), tt.alternateURL, "Dune", "")
			require.NoError(t, err)

			assert.Empty(t, primary.calls)
			assert.Equal(t, SourceSearchAPI, result.Source)
		})
	}
}

func TestResolver_BothTiersFail(t *testing.T) {
	primary := &fakePrimary{domain: "books.com.tw", err: fmt.Errorf("cover image not found on page")}
	search := &fakeSearcher{err: fmt.Errorf("no matching books found")}

	result, err := NewResolver(primary, search).Resolve(context.Background(), "https://www.books.com.tw/products/1", "Unknown", "")
	require.Error(t, err)
	assert.Nil(t, result)

	var resolveErr *ResolveError
	require.ErrorAs(t, err, &resolveErr)
	assert.Equal(t, "cover image not found on page", resolveErr.PrimaryReason)
	assert.Equal(t, "no matching books found", resolveErr.SearchReason)
	assert.Equal(t, "primary-site: cover image not found on page; search-api: no matching books found", err.Error())
}

func TestResolver_SearchOnlyFailure(t *testing.T) {
	search := &fakeSearcher{err: fmt.Errorf("no matching books found")}

	_, err := NewResolver(nil, search).Resolve(context.Background(), "", "Unknown", "")
	require.Error(t, err)

	var resolveErr *ResolveError
	require.ErrorAs(t, err, &resolveErr)
	assert.Empty(t, resolveErr.PrimaryReason)
	assert.Equal(t, "search-api: no matching books found", err.Error())
}

func TestResolver_NoSearchTier(t *testing.T) {
	_, err := NewResolver(nil, nil).Resolve(context.Background(), "", "Dune", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search tier not configured")
}

func TestResolveError_Empty(t *testing.T) {
	assert.Equal(t, "no cover source available", (&ResolveError{}).Error())
}
