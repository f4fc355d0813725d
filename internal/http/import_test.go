package http

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/errors"
	"github.com/mrlokans/bookshelf/internal/recognition"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type stubImporter struct {
	mediaType string
	size      int
	report    *recognition.ImportReport
	err       error
}

func (s *stubImporter) Import(_ context.Context, image []byte, mediaType string) (*recognition.ImportReport, error) {
	s.mediaType = mediaType
	s.size = len(image)
	return s.report, s.err
}

func multipartRequest(t *testing.T, field string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, "list.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/books/import-from-image", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func serveImport(controller *ImportController, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router := newImportRouter(controller)
	router.ServeHTTP(w, req)
	return w
}

func TestImportFromImage(t *testing.T) {
	t.Run("passes detected type to the importer", func(t *testing.T) {
		importer := &stubImporter{report: &recognition.ImportReport{
			Message:  "Recognized and imported 1 books",
			Imported: 1,
			Total:    1,
			Books:    []entities.Book{{ID: 1, Title: "Dune", Author: "Herbert", Category: entities.DefaultCategory}},
		}}

		w := serveImport(NewImportController(importer, 0), multipartRequest(t, "image", pngHeader))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "image/png", importer.mediaType)
		assert.Equal(t, len(pngHeader), importer.size)
		report := decode[recognition.ImportReport](t, w)
		assert.Equal(t, 1, report.Imported)
	})

	t.Run("not configured", func(t *testing.T) {
		w := serveImport(NewImportController(nil, 0), multipartRequest(t, "image", pngHeader))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		w := serveImport(NewImportController(&stubImporter{}, 0), multipartRequest(t, "photo", pngHeader))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "image file is required")
	})

	t.Run("unsupported type", func(t *testing.T) {
		w := serveImport(NewImportController(&stubImporter{}, 0), multipartRequest(t, "image", []byte("just some text")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "unsupported image type")
	})

	t.Run("too large", func(t *testing.T) {
		content := append(append([]byte{}, pngHeader...), make([]byte, 64)...)
		w := serveImport(NewImportController(&stubImporter{}, 32), multipartRequest(t, "image", content))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("upstream failure", func(t *testing.T) {
		importer := &stubImporter{err: errors.Upstream("recognition failed", fmt.Errorf("status 529"))}
		w := serveImport(NewImportController(importer, 0), multipartRequest(t, "image", pngHeader))
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func newImportRouter(controller *ImportController) http.Handler {
	router := gin.New()
	router.POST("/api/books/import-from-image", controller.ImportFromImage)
	return router
}
