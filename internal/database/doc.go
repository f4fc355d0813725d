// Package database provides the data access layer for the shelf.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, category seeding
//	├── books/           # Book CRUD and cover updates
//	├── categories/      # Category vocabulary and unused cleanup
//	└── sync/            # Batch cover run progress
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./bookshelf.db", database.WithLogLevel("warn"))
//
//	booksRepo := books.NewRepository(db.DB)
//	categoriesRepo := categories.NewRepository(db.DB)
//
//	book, err := booksRepo.GetBookByID(123)
//	deleted, err := categoriesRepo.DeleteUnusedCategories(entities.DefaultCategory)
//
// # Interface Implementations
//
//   - books.Repository: implements http.BookStore and covers.BookStore
//   - categories.Repository: implements http.CategoryStore and scheduler.CategoryCleaner
//   - sync.Repository: implements covers.ProgressReporter
//
// Sub-packages return errors from internal/errors for missing rows, duplicate
// names and in-use categories so handlers can map them to status codes.
package database
