package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/covers"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/errors"
	"github.com/mrlokans/bookshelf/internal/metadata"
)

// CoversController handles cover resolution endpoints.
type CoversController struct {
	books   BookGetter
	fetcher CoverFetcher
	status  SyncStatusReader
}

// NewCoversController creates a new CoversController. status may be nil.
func NewCoversController(books BookGetter, fetcher CoverFetcher, status SyncStatusReader) *CoversController {
	return &CoversController{
		books:   books,
		fetcher: fetcher,
		status:  status,
	}
}

// FetchCoverResponse is the result of a single-book cover fetch.
type FetchCoverResponse struct {
	Success  bool               `json:"success"`
	CoverURL string             `json:"cover_url,omitempty"`
	Source   covers.Source      `json:"source,omitempty"`
	Error    string             `json:"error,omitempty"`
	Book     *entities.Book     `json:"book,omitempty"`
	BookInfo *metadata.BookInfo `json:"book_info,omitempty"`
}

// BatchFetchRequest lists the books of a batch run.
type BatchFetchRequest struct {
	BookIDs      []uint `json:"bookIds"`
	BookIDsSnake []uint `json:"book_ids"`
}

func (r BatchFetchRequest) ids() []uint {
	if len(r.BookIDs) > 0 {
		return r.BookIDs
	}
	return r.BookIDsSnake
}

// FetchCover handles POST /api/books/:id/fetch-cover
// A cover that no tier can find is reported with success=false and 200.
func (cc *CoversController) FetchCover(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := cc.books.GetBookByID(id)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			c.JSON(http.StatusNotFound, FetchCoverResponse{Error: "book not found"})
			return
		}
		respondInternalError(c, err, "load book for cover")
		return
	}

	result, err := cc.fetcher.FetchCover(c.Request.Context(), book)
	if err != nil {
		var resolveErr *covers.ResolveError
		switch {
		case errors.Is(err, errors.ErrValidation):
			c.JSON(http.StatusBadRequest, FetchCoverResponse{Error: err.Error(), Book: book})
		case errors.As(err, &resolveErr):
			c.JSON(http.StatusOK, FetchCoverResponse{Error: resolveErr.Error(), Book: book})
		default:
			respondInternalError(c, err, "fetch cover")
		}
		return
	}

	c.JSON(http.StatusOK, FetchCoverResponse{
		Success:  true,
		CoverURL: result.CoverURL,
		Source:   result.Source,
		Book:     book,
		BookInfo: result.Info,
	})
}

// BatchFetchCovers handles POST /api/books/batch-fetch-covers
// The batch runs to completion even if the client disconnects.
func (cc *CoversController) BatchFetchCovers(c *gin.Context) {
	var req BatchFetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "bookIds must be a non-empty array of book ids")
		return
	}

	ids := req.ids()
	if len(ids) == 0 {
		respondBadRequest(c, "bookIds must be a non-empty array of book ids")
		return
	}

	report := cc.fetcher.FetchAll(context.WithoutCancel(c.Request.Context()), ids)
	c.JSON(http.StatusOK, report)
}

// BatchStatus handles GET /api/books/batch-fetch-covers/status
func (cc *CoversController) BatchStatus(c *gin.Context) {
	idle := gin.H{"status": entities.SyncStatusIdle}
	if cc.status == nil {
		c.JSON(http.StatusOK, idle)
		return
	}

	// Marks an abandoned run as failed before it is reported.
	if _, err := cc.status.IsSyncRunning(); err != nil {
		respondInternalError(c, err, "check batch status")
		return
	}

	progress, err := cc.status.GetSyncProgress()
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			c.JSON(http.StatusOK, idle)
			return
		}
		respondInternalError(c, err, "load batch status")
		return
	}
	c.JSON(http.StatusOK, progress)
}
