// Package categories provides database operations for the category vocabulary.
//
// Books copy a category name into their own column; nothing here is a foreign
// key. A category is "unused" when no book carries its name.
//
// # Interface Implementation
//
//	var _ http.CategoryStore = (*Repository)(nil)
//	var _ scheduler.CategoryCleaner = (*Repository)(nil)
//
// # Usage
//
//	repo := categories.NewRepository(db)
//	category, err := repo.CreateCategory("  Travel ")
//	deleted, err := repo.DeleteUnusedCategories(entities.DefaultCategory)
package categories

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/errors"
)

// Repository handles all category database operations.
type Repository struct {
	db       *gorm.DB
	sentinel string
}

// NewRepository creates a new categories repository using the default
// sentinel category.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, sentinel: entities.DefaultCategory}
}

// InUseDetails is attached to the error returned when deleting a referenced
// category.
type InUseDetails struct {
	BookCount int64 `json:"book_count"`
}

// ListCategories returns every category with the sentinel last and the rest
// in name order.
func (r *Repository) ListCategories() ([]entities.Category, error) {
	var categories []entities.Category
	if err := r.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	sort.SliceStable(categories, func(i, j int) bool {
		iSentinel := categories[i].Name == r.sentinel
		jSentinel := categories[j].Name == r.sentinel
		if iSentinel != jSentinel {
			return jSentinel
		}
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

// GetCategoryByID retrieves a category by ID.
func (r *Repository) GetCategoryByID(id uint) (*entities.Category, error) {
	var category entities.Category
	err := r.db.First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFoundf("category %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	return &category, nil
}

// CreateCategory inserts a trimmed category name. Names are unique and
// compared exactly.
func (r *Repository) CreateCategory(name string) (*entities.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Validation("category name is required")
	}

	category := &entities.Category{Name: name}
	if err := r.db.Create(category).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, errors.AlreadyExistsf("category %q already exists", name)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

// CountBooksWithCategoryName counts books whose category equals name.
func (r *Repository) CountBooksWithCategoryName(name string) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Where("category = ?", name).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count books in category %q: %w", name, err)
	}
	return count, nil
}

// DeleteCategory removes a category that no book references. A referenced
// category yields an in-use error whose details carry the book count.
func (r *Repository) DeleteCategory(id uint) error {
	category, err := r.GetCategoryByID(id)
	if err != nil {
		return err
	}

	count, err := r.CountBooksWithCategoryName(category.Name)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.InUse(
			fmt.Sprintf("category %q is used by %d book(s)", category.Name, count),
			InUseDetails{BookCount: count},
		)
	}

	result := r.db.Delete(&entities.Category{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete category %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NotFoundf("category %d not found", id)
	}
	return nil
}

// DeleteUnusedCategories removes every category with no referencing books,
// except the protected one, and returns how many were removed.
func (r *Repository) DeleteUnusedCategories(protected string) (int64, error) {
	result := r.db.Exec(`
		DELETE FROM categories
		WHERE name <> ?
		AND name NOT IN (SELECT DISTINCT category FROM books WHERE category IS NOT NULL)
	`, protected)
	if result.Error != nil {
		return 0, fmt.Errorf("delete unused categories: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ListUnusedCategories returns what DeleteUnusedCategories would remove.
func (r *Repository) ListUnusedCategories(protected string) ([]entities.Category, error) {
	var categories []entities.Category
	err := r.db.
		Where("name <> ?", protected).
		Where("name NOT IN (SELECT DISTINCT category FROM books WHERE category IS NOT NULL)").
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("list unused categories: %w", err)
	}
	return categories, nil
}

// isUniqueViolation recognises duplicate-key failures whether or not the
// connection was opened with TranslateError.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
