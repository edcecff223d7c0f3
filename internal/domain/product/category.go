package product

import (
	"context"
	"fmt"
	"time"
)

// Sentinel errors for category lookups.
var (
	ErrCategoryNotFound    = fmt.Errorf("category not found")
	ErrSubcategoryNotFound = fmt.Errorf("subcategory not found")
)

// Category is top-level catalog metadata. Its name is denormalized onto
// Product.Category as a display cache; Rename refreshes that cache in the
// same transaction.
type Category struct {
	ID           string
	Name         string
	Slug         string
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Subcategory belongs to exactly one Category.
type Subcategory struct {
	ID           string
	CategoryID   string
	Name         string
	Slug         string
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CategoryRepository manages category and subcategory metadata.
type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ListSubcategories(ctx context.Context) ([]Subcategory, error)
	CreateCategory(ctx context.Context, c *Category) error
	CreateSubcategory(ctx context.Context, s *Subcategory) error
	// Rename updates the category name and refreshes the denormalized
	// Product.Category strings atomically.
	Rename(ctx context.Context, id, newName string) error
	Reorder(ctx context.Context, id string, displayOrder int) error
	DeleteCategory(ctx context.Context, id string) error
	DeleteSubcategory(ctx context.Context, id string) error
}
