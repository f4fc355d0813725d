package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/entities"
)

func TestListCategories_DefaultLast(t *testing.T) {
	env := newTestEnv(t, &stubResolver{}, nil)

	w := env.do("GET", "/api/categories", nil)

	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]entities.Category](t, w)
	require.Len(t, list, len(entities.DefaultCategories))
	assert.Equal(t, entities.DefaultCategory, list[len(list)-1].Name)
	assert.Equal(t, "Art", list[0].Name)
}

func TestCreateCategory(t *testing.T) {
	env := newTestEnv(t, &stubResolver{}, nil)

	w := env.do("POST", "/api/categories", gin.H{"name": "  Science  "})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[struct {
		Message  string            `json:"message"`
		Category entities.Category `json:"category"`
	}](t, w)
	assert.Equal(t, "Science", resp.Category.Name)

	w = env.do("POST", "/api/categories", gin.H{"name": "Science"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do("POST", "/api/categories", gin.H{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteCategory(t *testing.T) {
	t.Run("refuses categories in use with the book count", func(t *testing.T) {
		env := newTestEnv(t, &stubResolver{}, nil)
		env.addBook(t, entities.Book{Title: "Dune", Author: "Herbert", Category: "Science"})
		env.addBook(t, entities.Book{Title: "Cosmos", Author: "Sagan", Category: "Science"})
		category, err := env.categories.CreateCategory("Science")
		require.NoError(t, err)

		w := env.do("DELETE", "/api/categories/"+itoa(category.ID), nil)

		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode[InUseResponse](t, w)
		assert.Equal(t, int64(2), resp.BookCount)
		assert.NotEmpty(t, resp.Error)
	})

	t.Run("removes unused categories", func(t *testing.T) {
		env := newTestEnv(t, &stubResolver{}, nil)
		category, err := env.categories.CreateCategory("Science")
		require.NoError(t, err)

		w := env.do("DELETE", "/api/categories/"+itoa(category.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		assert.Equal(t, http.StatusNotFound, env.do("DELETE", "/api/categories/"+itoa(category.ID), nil).Code)
	})
}

func TestCleanupUnusedCategories(t *testing.T) {
	env := newTestEnv(t, &stubResolver{}, nil)
	env.addBook(t, entities.Book{Title: "Dune", Author: "Herbert", Category: "Fiction"})

	w := env.do("DELETE", "/api/categories/cleanup/unused", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[struct {
		Message      string `json:"message"`
		DeletedCount int64  `json:"deleted_count"`
	}](t, w)
	assert.Equal(t, int64(len(entities.DefaultCategories)-2), resp.DeletedCount)

	list, err := env.categories.ListCategories()
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, c := range list {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Fiction", entities.DefaultCategory}, names)
}
