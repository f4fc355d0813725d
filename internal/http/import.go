package http

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// DefaultMaxUploadBytes caps image uploads when no limit is configured.
const DefaultMaxUploadBytes int64 = 5 << 20

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// ImportController creates books from a photographed shopping list.
type ImportController struct {
	importer ImageImporter
	maxBytes int64
}

// NewImportController creates an ImportController. A nil importer makes the
// endpoint answer 503.
func NewImportController(importer ImageImporter, maxBytes int64) *ImportController {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &ImportController{importer: importer, maxBytes: maxBytes}
}

// ImportFromImage handles POST /api/books/import-from-image
// Expects a multipart form with an "image" file.
func (ic *ImportController) ImportFromImage(c *gin.Context) {
	if ic.importer == nil {
		respondError(c, http.StatusServiceUnavailable, "image import is not configured")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ic.maxBytes+(1<<20))

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondBadRequest(c, "image file is required")
		return
	}
	if fileHeader.Size > ic.maxBytes {
		respondBadRequest(c, fmt.Sprintf("image exceeds the %d byte limit", ic.maxBytes))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondBadRequest(c, "failed to read image")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, ic.maxBytes+1))
	if err != nil {
		respondBadRequest(c, "failed to read image")
		return
	}
	if int64(len(data)) > ic.maxBytes {
		respondBadRequest(c, fmt.Sprintf("image exceeds the %d byte limit", ic.maxBytes))
		return
	}

	mediaType, ok := detectImageType(data)
	if !ok {
		respondBadRequest(c, "unsupported image type, expected jpeg, png, webp or gif")
		return
	}

	report, err := ic.importer.Import(c.Request.Context(), data, mediaType)
	if err != nil {
		respondDomainError(c, err, "import from image")
		return
	}
	c.JSON(http.StatusOK, report)
}

// detectImageType sniffs the upload rather than trusting the client header.
func detectImageType(data []byte) (string, bool) {
	mtype := mimetype.Detect(data)
	for _, allowed := range allowedImageTypes {
		if mtype.Is(allowed) {
			return allowed, true
		}
	}
	return "", false
}
