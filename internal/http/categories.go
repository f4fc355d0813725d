package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/entities"
)

type CategoriesController struct {
	store CategoryStore
}

func NewCategoriesController(store CategoryStore) *CategoriesController {
	return &CategoriesController{store: store}
}

type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// ListCategories handles GET /api/categories. The default category is
// always last.
func (cc *CategoriesController) ListCategories(c *gin.Context) {
	list, err := cc.store.ListCategories()
	if err != nil {
		respondInternalError(c, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, list)
}

// CreateCategory handles POST /api/categories
func (cc *CategoriesController) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	category, err := cc.store.CreateCategory(req.Name)
	if err != nil {
		respondDomainError(c, err, "create category")
		return
	}
	respondCreated(c, gin.H{"message": "Category added", "category": category})
}

// DeleteCategory handles DELETE /api/categories/:id. Categories still used
// by books are refused with the number of referencing books.
func (cc *CategoriesController) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := cc.store.DeleteCategory(id); err != nil {
		respondDomainError(c, err, "delete category")
		return
	}
	respondSuccess(c, "Category deleted")
}

// CleanupUnused handles DELETE /api/categories/cleanup/unused
func (cc *CategoriesController) CleanupUnused(c *gin.Context) {
	deleted, err := cc.store.DeleteUnusedCategories(entities.DefaultCategory)
	if err != nil {
		respondInternalError(c, err, "cleanup categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       fmt.Sprintf("Deleted %d unused categories", deleted),
		"deleted_count": deleted,
	})
}
