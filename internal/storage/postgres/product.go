package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nbenali/dz-storefront/internal/domain/product"
)

const productColumns = `id, slug, name, price_da, category, COALESCE(subcategory_id, ''),
	description, benefits, images, stock, is_featured, created_at, updated_at`

const (
	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	getProductBySlugSQL = `SELECT ` + productColumns + ` FROM products WHERE slug = $1`

	getProductsByIDsSQL = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	insertProductSQL = `INSERT INTO products
		(id, slug, name, price_da, category, subcategory_id, description,
		 benefits, images, stock, is_featured)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10, $11)`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`

	// Order items keep a weak product reference; the original storefront
	// removes them when a product is deleted, so dangling lines never render.
	deleteProductItemsSQL = `DELETE FROM order_items WHERE product_id = $1`
)

const (
	defaultPageSize = 12
	maxPageSize     = 100
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns one page of the catalog matching the filter.
func (r *ProductRepository) List(ctx context.Context, f product.ListFilter) (*product.Page, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}

	where, args := buildProductFilter(f)

	var total int
	countSQL := `SELECT count(*) FROM products` + where
	if err := r.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting products: %w", err)
	}

	listSQL := fmt.Sprintf(`SELECT %s FROM products%s %s LIMIT $%d OFFSET $%d`,
		productColumns, where, orderClause(f.Sort), len(args)+1, len(args)+2)
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := r.pool.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	totalPages := (total + f.PageSize - 1) / f.PageSize
	return &product.Page{
		Products:   products,
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: totalPages,
	}, nil
}

func buildProductFilter(f product.ListFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.Subcategory != "" {
		add("subcategory_id IN (SELECT id FROM subcategories WHERE name = $%d)", f.Subcategory)
	}
	if f.PriceMinDa > 0 {
		add("price_da >= $%d", f.PriceMinDa)
	}
	if f.PriceMaxDa > 0 {
		add("price_da <= $%d", f.PriceMaxDa)
	}
	if f.Featured {
		conds = append(conds, "is_featured")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(sort product.SortOrder) string {
	switch sort {
	case product.SortPriceAsc:
		return "ORDER BY price_da ASC"
	case product.SortPriceDesc:
		return "ORDER BY price_da DESC"
	case product.SortName:
		return "ORDER BY name ASC"
	default:
		return "ORDER BY created_at DESC"
	}
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	return r.getOne(ctx, getProductByIDSQL, id)
}

// GetBySlug returns a single product by its URL slug.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*product.Product, error) {
	return r.getOne(ctx, getProductBySlugSQL, slug)
}

func (r *ProductRepository) getOne(ctx context.Context, sql, key string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, sql, key)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", key, err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", key, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	_, err := r.pool.Exec(ctx, insertProductSQL,
		p.ID, p.Slug, p.Name, p.PriceDa, p.Category, p.SubcategoryID,
		p.Description, p.Benefits, p.Images, p.Stock, p.IsFeatured,
	)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// Update applies a partial update and returns the refreshed product.
func (r *ProductRepository) Update(ctx context.Context, id string, upd product.Update) (*product.Product, error) {
	var (
		sets []string
		args = []any{id}
	)
	set := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if upd.Slug != nil {
		set("slug", *upd.Slug)
	}
	if upd.Name != nil {
		set("name", *upd.Name)
	}
	if upd.PriceDa != nil {
		set("price_da", *upd.PriceDa)
	}
	if upd.Category != nil {
		set("category", *upd.Category)
	}
	if upd.SubcategoryID != nil {
		args = append(args, *upd.SubcategoryID)
		sets = append(sets, fmt.Sprintf("subcategory_id = NULLIF($%d, '')", len(args)))
	}
	if upd.Description != nil {
		set("description", *upd.Description)
	}
	if upd.Benefits != nil {
		set("benefits", *upd.Benefits)
	}
	if upd.Images != nil {
		set("images", *upd.Images)
	}
	if upd.Stock != nil {
		set("stock", *upd.Stock)
	}
	if upd.IsFeatured != nil {
		set("is_featured", *upd.IsFeatured)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	sets = append(sets, "updated_at = now()")

	sql := fmt.Sprintf(`UPDATE products SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(sets, ", "), productColumns)
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("updating product %q: %w", id, err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("updating product %q: %w", id, err)
	}
	return &p, nil
}

// Delete removes a product and any order items that still reference it,
// atomically.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteProductItemsSQL, id); err != nil {
			return fmt.Errorf("deleting items for product %q: %w", id, err)
		}
		ct, err := tx.Exec(ctx, deleteProductSQL, id)
		if err != nil {
			return fmt.Errorf("deleting product %q: %w", id, err)
		}
		if ct.RowsAffected() == 0 {
			return product.ErrNotFound
		}
		return nil
	})
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.Slug, &p.Name, &p.PriceDa, &p.Category, &p.SubcategoryID,
		&p.Description, &p.Benefits, &p.Images, &p.Stock, &p.IsFeatured,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}
