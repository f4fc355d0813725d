package covers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mrlokans/bookshelf/internal/metadata"
)

// Source names the tier that produced a cover.
type Source string

const (
	SourcePrimarySite Source = "primary-site"
	SourceSearchAPI   Source = "search-api"
)

// Result is a successful resolution. Info is only set by the search tier.
type Result struct {
	CoverURL string             `json:"cover_url"`
	Source   Source             `json:"source"`
	Info     *metadata.BookInfo `json:"book_info,omitempty"`
}

// ResolveError records why each attempted tier failed. PrimaryReason is empty
// when the primary tier was not attempted.
type ResolveError struct {
	PrimaryReason string
	SearchReason  string
}

func (e *ResolveError) Error() string {
	var parts []string
	if e.PrimaryReason != "" {
		parts = append(parts, string(SourcePrimarySite)+": "+e.PrimaryReason)
	}
	if e.SearchReason != "" {
		parts = append(parts, string(SourceSearchAPI)+": "+e.SearchReason)
	}
	if len(parts) == 0 {
		return "no cover source available"
	}
	return strings.Join(parts, "; ")
}

// PrimarySource is a site-specific cover source keyed by product page URL.
type PrimarySource interface {
	Handles(pageURL string) bool
	FetchCover(ctx context.Context, pageURL string) (string, error)
}

// CoverSearcher finds a cover from bibliographic fields.
type CoverSearcher interface {
	SearchCover(ctx context.Context, title, author string) (*metadata.CoverMatch, error)
}

// Resolver runs the primary-site tier, then the search tier.
type Resolver struct {
	primary PrimarySource
	search  CoverSearcher
}

// NewResolver creates a Resolver. Either tier may be nil to disable it.
func NewResolver(primary PrimarySource, search CoverSearcher) *Resolver {
	return &Resolver{primary: primary, search: search}
}

// Resolve returns the best cover for a book. The error, when non-nil, is
// always a *ResolveError.
func (r *Resolver) Resolve(ctx context.Context, alternateURL, title, author string) (*Result, error) {
	failure := &ResolveError{}
	alternateURL = strings.TrimSpace(alternateURL)

	if alternateURL != "" && r.primary != nil && r.primary.Handles(alternateURL) {
		coverURL, err := r.primary.FetchCover(ctx, alternateURL)
		if err == nil {
			slog.Debug("cover resolved", "tier", SourcePrimarySite, "url", alternateURL, "cover_url", coverURL)
			return &Result{CoverURL: coverURL, Source: SourcePrimarySite}, nil
		}
		failure.PrimaryReason = err.Error()
		slog.Info("primary-site tier failed, falling back to search", "url", alternateURL, "error", err)
	}

	if r.search == nil {
		failure.SearchReason = "search tier not configured"
		return nil, failure
	}

	match, err := r.search.SearchCover(ctx, title, author)
	if err != nil {
		failure.SearchReason = err.Error()
		slog.Info("search-api tier failed", "title", title, "error", err)
		return nil, failure
	}

	info := match.Info
	return &Result{CoverURL: match.CoverURL, Source: SourceSearchAPI, Info: &info}, nil
}
