package entities

import "time"

// DefaultCategory is the sentinel category assigned to books created without
// one. It is never removed by unused-category cleanup.
const DefaultCategory = "Other"

// DefaultCategories is the vocabulary seeded on first start.
var DefaultCategories = []string{
	"Fiction",
	"Essays",
	"Poetry",
	"Technology",
	"Business",
	"Self-Growth",
	"History",
	"Art",
	DefaultCategory,
}

// Book is a shelf entry. Optional text fields use the empty string for absent.
type Book struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:512;not null" json:"title"`
	Author       string    `gorm:"size:256;not null" json:"author"`
	Category     string    `gorm:"size:128;index;not null;default:'Other'" json:"category"`
	URL          string    `gorm:"size:2048" json:"url"`
	AlternateURL string    `gorm:"column:alternate_url;size:2048" json:"alternate_url"`
	CoverURL     string    `gorm:"size:2048" json:"cover_url"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasAlternateURL reports whether the book carries a marketplace link usable
// as a scrape source.
func (b *Book) HasAlternateURL() bool {
	return b.AlternateURL != ""
}

// Category is a tag name books copy into their Category field. Books do not
// reference categories by key.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// IsDefault reports whether the category is the protected sentinel.
func (c *Category) IsDefault() bool {
	return c.Name == DefaultCategory
}
