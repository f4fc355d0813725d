// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - BookStore: Book CRUD (internal/http/stores.go), cover persistence (internal/covers/fetcher.go)
//   - CategoryStore: Category vocabulary (internal/http/stores.go)
//   - CategoryCleaner: Scheduled removal of unused categories (internal/scheduler/category_cleanup.go)
//   - BookCreator: Inserts recognized books (internal/recognition/importer.go)
//
// ## Cover Pipeline Interfaces
//
//   - PrimarySource: Marketplace product page scraping (internal/covers/resolver.go)
//   - CoverSearcher: Bibliographic search fallback (internal/covers/resolver.go)
//   - PageLoader: Raw page retrieval, plain HTTP or headless browser (internal/covers/scraper.go)
//   - CoverResolver / CoverFetcher: Single and batch resolution (internal/covers/fetcher.go, internal/http/stores.go)
//
// ## External Service Interfaces
//
//   - Recognizer: Book list extraction from an image (internal/recognition/importer.go)
//
// ## Progress Tracking Interfaces
//
//   - ProgressReporter: Batch progress reporting (internal/covers/fetcher.go)
//   - SyncStatusReader: Batch progress queries (internal/http/stores.go)
//
// # Adding a New Cover Source
//
// A second marketplace is added by implementing PrimarySource:
//
//	type KinokuniyaScraper struct {
//	    loader covers.PageLoader
//	}
//
//	func (s *KinokuniyaScraper) Handles(pageURL string) bool
//	func (s *KinokuniyaScraper) FetchCover(ctx context.Context, pageURL string) (string, error)
//
//	var _ covers.PrimarySource = (*KinokuniyaScraper)(nil)
//
// and passing it to covers.NewResolver in entrypoint.go.
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Add the model to AutoMigrate in internal/database/database.go
//
//  4. Add compile-time check:
//
//     var _ http.SomeStore = (*Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for examples.
package interfaces
