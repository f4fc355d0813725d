package http

import (
	"context"

	"github.com/mrlokans/bookshelf/internal/covers"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/recognition"
)

// This file consolidates the store and service interfaces used by HTTP
// controllers. Each controller depends only on the methods it calls.

// BookGetter provides read access to books.
type BookGetter interface {
	GetBookByID(id uint) (*entities.Book, error)
}

// BookStore provides CRUD access to books.
type BookStore interface {
	BookGetter
	ListBooks() ([]entities.Book, error)
	CreateBook(book *entities.Book) error
	UpdateBook(id uint, update books.BookUpdate) (int64, error)
	DeleteBook(id uint) (int64, error)
}

// CategoryStore manages the category vocabulary.
type CategoryStore interface {
	ListCategories() ([]entities.Category, error)
	CreateCategory(name string) (*entities.Category, error)
	DeleteCategory(id uint) error
	DeleteUnusedCategories(protected string) (int64, error)
}

// CoverFetcher resolves and stores covers.
type CoverFetcher interface {
	FetchCover(ctx context.Context, book *entities.Book) (*covers.Result, error)
	FetchAll(ctx context.Context, ids []uint) *covers.BatchReport
}

// SyncStatusReader exposes the latest batch progress row.
type SyncStatusReader interface {
	IsSyncRunning() (bool, error)
	GetSyncProgress() (*entities.SyncProgress, error)
}

// ImageImporter creates books from a photographed list.
type ImageImporter interface {
	Import(ctx context.Context, image []byte, mediaType string) (*recognition.ImportReport, error)
}
