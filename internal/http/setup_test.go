package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/covers"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/categories"
	syncstore "github.com/mrlokans/bookshelf/internal/database/sync"
	"github.com/mrlokans/bookshelf/internal/entities"
)

type testEnv struct {
	db         *database.Database
	books      *books.Repository
	categories *categories.Repository
	progress   *syncstore.Repository
	fetcher    *covers.Fetcher
	router     *gin.Engine
}

// stubResolver answers every resolution with the configured result.
type stubResolver struct {
	result *covers.Result
	err    error
	calls  []string
}

func (s *stubResolver) Resolve(_ context.Context, alternateURL, title, _ string) (*covers.Result, error) {
	s.calls = append(s.calls, title)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestEnv(t *testing.T, resolver covers.CoverResolver, importer ImageImporter) *testEnv {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		db:         db,
		books:      books.NewRepository(db.DB),
		categories: categories.NewRepository(db.DB),
		progress:   syncstore.NewRepository(db.DB),
	}
	env.fetcher = covers.NewFetcher(env.books, resolver, 0)
	env.fetcher.SetProgressReporter(env.progress)

	env.router = NewRouter(RouterConfig{
		BookStore:     env.books,
		CategoryStore: env.categories,
		Database:      db,
		CoverFetcher:  env.fetcher,
		SyncStatus:    env.progress,
		Importer:      importer,
		Version:       "test",
	})
	return env
}

func (env *testEnv) addBook(t *testing.T, book entities.Book) *entities.Book {
	t.Helper()
	require.NoError(t, env.books.CreateBook(&book))
	return &book
}

func (env *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req, _ := http.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
