package product

import (
	"context"
	"fmt"
	"time"
)

// ErrNotFound is returned when a product does not exist.
var ErrNotFound = fmt.Errorf("product not found")

// PlaceholderImage is served for products whose image list is empty.
const PlaceholderImage = "/images/placeholder.jpg"

// Product is a catalog entry. PriceDa is in Algerian Dinar, which has no
// subunits, so all money in the system is plain integer arithmetic.
type Product struct {
	ID            string
	Slug          string
	Name          string
	PriceDa       int64
	Category      string
	SubcategoryID string
	Description   string
	Benefits      []string
	Images        []string
	Stock         int
	IsFeatured    bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ImageList returns the product images, falling back to the placeholder when
// none were uploaded.
func (p *Product) ImageList() []string {
	if len(p.Images) == 0 {
		return []string{PlaceholderImage}
	}
	return p.Images
}

// SortOrder enumerates the supported listing sort modes.
type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortPriceAsc  SortOrder = "price-asc"
	SortPriceDesc SortOrder = "price-desc"
	SortName      SortOrder = "name"
)

// ListFilter narrows and paginates a catalog listing. Zero values mean
// "no constraint"; Page and PageSize are normalized by the repository.
type ListFilter struct {
	Category    string
	Subcategory string
	PriceMinDa  int64
	PriceMaxDa  int64
	Featured    bool
	Sort        SortOrder
	Page        int
	PageSize    int
}

// Page is one page of a catalog listing.
type Page struct {
	Products   []Product
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// Update carries a partial product update; nil fields are left unchanged.
// Stock set through here is an admin correction, not a reservation; order
// flows go through the reservation engine only.
type Update struct {
	Slug          *string
	Name          *string
	PriceDa       *int64
	Category      *string
	SubcategoryID *string
	Description   *string
	Benefits      *[]string
	Images        *[]string
	Stock         *int
	IsFeatured    *bool
}

// Repository defines catalog persistence operations.
type Repository interface {
	List(ctx context.Context, filter ListFilter) (*Page, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, id string, upd Update) (*Product, error)
	Delete(ctx context.Context, id string) error
}
