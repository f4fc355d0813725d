// Package books provides database operations for shelf entries.
//
// This package implements the BookStore interfaces used by the HTTP layer and
// the cover pipeline.
//
// # Interface Implementation
//
//	var _ http.BookStore = (*Repository)(nil)
//	var _ covers.BookStore = (*Repository)(nil)
//
// # Usage
//
//	repo := books.NewRepository(db)
//	err := repo.CreateBook(&entities.Book{Title: "Dune", Author: "Frank Herbert"})
//	book, err := repo.GetBookByID(book.ID)
package books

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/errors"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// BookUpdate carries the editable fields of a book. Empty strings clear the
// optional fields; a nil Category leaves the category untouched.
type BookUpdate struct {
	Title        string
	Author       string
	URL          string
	AlternateURL string
	CoverURL     string
	Category     *string
}

// CreateBook inserts a book, assigning the default category when none is set.
// The store fills ID and CreatedAt on the passed struct.
func (r *Repository) CreateBook(book *entities.Book) error {
	book.Title = strings.TrimSpace(book.Title)
	book.Author = strings.TrimSpace(book.Author)
	if book.Title == "" || book.Author == "" {
		return errors.Validation("title and author are required")
	}

	book.Category = strings.TrimSpace(book.Category)
	if book.Category == "" {
		book.Category = entities.DefaultCategory
	}
	book.ID = 0

	if err := r.db.Create(book).Error; err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

// GetBookByID retrieves a book by its ID.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFoundf("book %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}
	return &book, nil
}

// ListBooks returns every book, newest first. Rows inserted within the same
// timestamp keep insertion order reversed through the ID tiebreak.
func (r *Repository) ListBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("created_at DESC").Order("id DESC").Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// UpdateBook overwrites the editable fields of a book and returns the number
// of rows changed. CreatedAt is never modified.
func (r *Repository) UpdateBook(id uint, update BookUpdate) (int64, error) {
	title := strings.TrimSpace(update.Title)
	author := strings.TrimSpace(update.Author)
	if title == "" || author == "" {
		return 0, errors.Validation("title and author are required")
	}

	fields := map[string]any{
		"title":         title,
		"author":        author,
		"url":           update.URL,
		"alternate_url": update.AlternateURL,
		"cover_url":     update.CoverURL,
	}
	if update.Category != nil {
		category := strings.TrimSpace(*update.Category)
		if category == "" {
			category = entities.DefaultCategory
		}
		fields["category"] = category
	}

	result := r.db.Model(&entities.Book{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return 0, fmt.Errorf("update book %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, errors.NotFoundf("book %d not found", id)
	}
	return result.RowsAffected, nil
}

// UpdateCoverURL stores a resolved cover URL on a book.
func (r *Repository) UpdateCoverURL(id uint, coverURL string) error {
	result := r.db.Model(&entities.Book{}).Where("id = ?", id).Update("cover_url", coverURL)
	if result.Error != nil {
		return fmt.Errorf("update cover for book %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NotFoundf("book %d not found", id)
	}
	return nil
}

// DeleteBook removes a book permanently. Categories are left untouched.
func (r *Repository) DeleteBook(id uint) (int64, error) {
	result := r.db.Delete(&entities.Book{}, id)
	if result.Error != nil {
		return 0, fmt.Errorf("delete book %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, errors.NotFoundf("book %d not found", id)
	}
	return result.RowsAffected, nil
}

// ListBooksMissingCovers returns books that have a marketplace link but no
// stored cover, oldest first.
func (r *Repository) ListBooksMissingCovers() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.
		Where("alternate_url <> '' AND alternate_url IS NOT NULL").
		Where("cover_url = '' OR cover_url IS NULL").
		Order("id ASC").
		Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("list books missing covers: %w", err)
	}
	return books, nil
}
