package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/database/categories"
	"github.com/mrlokans/bookshelf/internal/errors"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// InUseResponse is returned when a category cannot be removed.
type InUseResponse struct {
	Error     string `json:"error"`
	BookCount int64  `json:"book_count"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	slog.Error("internal error", "context", context, "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondError sends an error response with the given status code.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// respondDomainError maps a coded error to its status. Uncoded errors are
// treated as internal and not exposed.
func respondDomainError(c *gin.Context, err error, context string) {
	var domainErr *errors.Error
	if !errors.As(err, &domainErr) || domainErr.Code == errors.CodeInternal {
		respondInternalError(c, err, context)
		return
	}

	if domainErr.Code == errors.CodeInUse {
		var details categories.InUseDetails
		switch d := domainErr.Details.(type) {
		case categories.InUseDetails:
			details = d
		case *categories.InUseDetails:
			details = *d
		}
		c.JSON(http.StatusBadRequest, InUseResponse{Error: domainErr.Message, BookCount: details.BookCount})
		return
	}

	if domainErr.Code == errors.CodeUpstream || domainErr.Code == errors.CodeUnavailable {
		slog.Warn("upstream failure", "context", context, "error", err)
	}

	c.JSON(domainErr.HTTPStatus(), ErrorResponse{
		Error:   domainErr.Error(),
		Code:    string(domainErr.Code),
		Details: domainErr.Details,
	})
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}
