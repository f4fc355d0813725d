package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookshelf/internal/covers"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/categories"
	"github.com/mrlokans/bookshelf/internal/database/sync"
	"github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/metadata"
	"github.com/mrlokans/bookshelf/internal/recognition"
	"github.com/mrlokans/bookshelf/internal/scheduler"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// BookStore implementations
var _ http.BookStore = (*books.Repository)(nil)
var _ covers.BookStore = (*books.Repository)(nil)
var _ recognition.BookCreator = (*books.Repository)(nil)

// CategoryStore implementations
var _ http.CategoryStore = (*categories.Repository)(nil)
var _ scheduler.CategoryCleaner = (*categories.Repository)(nil)

// =============================================================================
// Cover Pipeline
// =============================================================================

// Tier implementations
var _ covers.PrimarySource = (*covers.SiteScraper)(nil)
var _ covers.CoverSearcher = (*metadata.GoogleBooksClient)(nil)

// PageLoader implementations
var _ covers.PageLoader = (*covers.HTTPLoader)(nil)
var _ covers.PageLoader = (*covers.BrowserLoader)(nil)

// Orchestration
var _ covers.CoverResolver = (*covers.Resolver)(nil)
var _ http.CoverFetcher = (*covers.Fetcher)(nil)

// =============================================================================
// Progress Tracking
// =============================================================================

// ProgressReporter implementations
var _ covers.ProgressReporter = (*sync.Repository)(nil)
var _ http.SyncStatusReader = (*sync.Repository)(nil)

// =============================================================================
// Image Import
// =============================================================================

var _ recognition.Recognizer = (*recognition.AnthropicClient)(nil)
var _ http.ImageImporter = (*recognition.Importer)(nil)
