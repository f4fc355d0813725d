// Package recognition imports books from a photo of a shopping list. The
// recognition itself is delegated to an external vision model.
package recognition

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Candidate is one book read from an image.
type Candidate struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Link   string `json:"link"`
}

// Recognizer lists the books visible in an image.
type Recognizer interface {
	RecognizeBooks(ctx context.Context, image []byte, mediaType string) ([]Candidate, error)
}

// BookCreator stores a new book.
type BookCreator interface {
	CreateBook(book *entities.Book) error
}

// Rejected is a candidate that could not be imported.
type Rejected struct {
	Book  Candidate `json:"book"`
	Error string    `json:"error"`
}

// ImportReport summarises an image import.
type ImportReport struct {
	Message  string          `json:"message"`
	Imported int             `json:"imported"`
	Total    int             `json:"total"`
	Books    []entities.Book `json:"books"`
	Errors   []Rejected      `json:"errors,omitempty"`
}

// Importer turns recognized candidates into books.
type Importer struct {
	recognizer Recognizer
	store      BookCreator
}

func NewImporter(recognizer Recognizer, store BookCreator) *Importer {
	return &Importer{recognizer: recognizer, store: store}
}

// Import recognizes the image and inserts every candidate that has a title
// and an author, in the default category with the link as purchase URL.
func (i *Importer) Import(ctx context.Context, image []byte, mediaType string) (*ImportReport, error) {
	candidates, err := i.recognizer.RecognizeBooks(ctx, image, mediaType)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{Total: len(candidates), Books: []entities.Book{}}
	if len(candidates) == 0 {
		report.Message = "No books recognized in the image"
		return report, nil
	}

	for _, candidate := range candidates {
		if strings.TrimSpace(candidate.Title) == "" || strings.TrimSpace(candidate.Author) == "" {
			report.Errors = append(report.Errors, Rejected{Book: candidate, Error: "missing title or author"})
			continue
		}

		book := entities.Book{
			Title:    candidate.Title,
			Author:   candidate.Author,
			Category: entities.DefaultCategory,
			URL:      strings.TrimSpace(candidate.Link),
		}
		if err := i.store.CreateBook(&book); err != nil {
			slog.Warn("failed to import recognized book", "title", candidate.Title, "error", err)
			report.Errors = append(report.Errors, Rejected{Book: candidate, Error: err.Error()})
			continue
		}
		report.Books = append(report.Books, book)
	}

	report.Imported = len(report.Books)
	report.Message = fmt.Sprintf("Recognized and imported %d books", report.Imported)
	slog.Info("image import finished", "recognized", report.Total, "imported", report.Imported)
	return report, nil
}
