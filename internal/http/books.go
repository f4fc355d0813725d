package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/entities"
)

type BooksController struct {
	store BookStore
}

func NewBooksController(store BookStore) *BooksController {
	registerValidators()
	return &BooksController{
		store: store,
	}
}

// BookRequest is the body of create and update calls. The camelCase URL
// keys are accepted as aliases of the snake_case ones.
type BookRequest struct {
	Title             string  `json:"title"`
	Author            string  `json:"author"`
	Category          *string `json:"category"`
	URL               string  `json:"url" binding:"omitempty,absurl"`
	AlternateURL      string  `json:"alternate_url" binding:"omitempty,absurl"`
	AlternateURLCamel string  `json:"alternateUrl" binding:"omitempty,absurl"`
	CoverURL          string  `json:"cover_url" binding:"omitempty,absurl"`
	CoverURLCamel     string  `json:"coverUrl" binding:"omitempty,absurl"`
}

func (r BookRequest) alternateURL() string {
	if r.AlternateURL != "" {
		return r.AlternateURL
	}
	return r.AlternateURLCamel
}

func (r BookRequest) coverURL() string {
	if r.CoverURL != "" {
		return r.CoverURL
	}
	return r.CoverURLCamel
}

// BookResponse wraps a single book.
type BookResponse struct {
	Message string         `json:"message,omitempty"`
	Book    *entities.Book `json:"book"`
}

// ListBooks handles GET /api/books
func (controller *BooksController) ListBooks(c *gin.Context) {
	list, err := controller.store.ListBooks()
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": list, "count": len(list)})
}

// GetBook handles GET /api/books/:id
func (controller *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.store.GetBookByID(id)
	if err != nil {
		respondDomainError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, BookResponse{Book: book})
}

// CreateBook handles POST /api/books
func (controller *BooksController) CreateBook(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, bindingErrorMessage(err))
		return
	}

	book := &entities.Book{
		Title:        req.Title,
		Author:       req.Author,
		URL:          req.URL,
		AlternateURL: req.alternateURL(),
		CoverURL:     req.coverURL(),
	}
	if req.Category != nil {
		book.Category = *req.Category
	}

	if err := controller.store.CreateBook(book); err != nil {
		respondDomainError(c, err, "create book")
		return
	}
	respondCreated(c, BookResponse{Message: "Book added", Book: book})
}

// UpdateBook handles PUT /api/books/:id. Title and author are required;
// the URL fields are replaced as sent and category is kept when omitted.
func (controller *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, bindingErrorMessage(err))
		return
	}

	_, err := controller.store.UpdateBook(id, books.BookUpdate{
		Title:        req.Title,
		Author:       req.Author,
		URL:          req.URL,
		AlternateURL: req.alternateURL(),
		CoverURL:     req.coverURL(),
		Category:     req.Category,
	})
	if err != nil {
		respondDomainError(c, err, "update book")
		return
	}

	book, err := controller.store.GetBookByID(id)
	if err != nil {
		respondDomainError(c, err, "reload book")
		return
	}
	c.JSON(http.StatusOK, BookResponse{Message: "Book updated", Book: book})
}

// DeleteBook handles DELETE /api/books/:id
func (controller *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := controller.store.DeleteBook(id); err != nil {
		respondDomainError(c, err, "delete book")
		return
	}
	respondSuccess(c, "Book deleted")
}
