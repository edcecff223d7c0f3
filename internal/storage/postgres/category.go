package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nbenali/dz-storefront/internal/domain/product"
)

const (
	listCategoriesSQL = `SELECT id, name, slug, display_order, created_at, updated_at
		FROM categories ORDER BY display_order, name`

	listSubcategoriesSQL = `SELECT id, category_id, name, slug, display_order, created_at, updated_at
		FROM subcategories ORDER BY display_order, name`

	insertCategorySQL = `INSERT INTO categories (id, name, slug, display_order)
		VALUES ($1, $2, $3, $4)`

	insertSubcategorySQL = `INSERT INTO subcategories (id, category_id, name, slug, display_order)
		VALUES ($1, $2, $3, $4, $5)`

	// The name on products is a display cache; the rename refreshes it in
	// the same transaction so the two never diverge.
	cascadeCategorySQL = `UPDATE products SET category = $2, updated_at = now()
		WHERE category = $1`

	reorderCategorySQL = `UPDATE categories SET display_order = $2, updated_at = now()
		WHERE id = $1`

	deleteCategorySQL    = `DELETE FROM categories WHERE id = $1`
	deleteSubcategorySQL = `DELETE FROM subcategories WHERE id = $1`
)

var _ product.CategoryRepository = (*CategoryRepository)(nil)

// CategoryRepository implements product.CategoryRepository backed by
// PostgreSQL.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a CategoryRepository that uses the given pool.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// ListCategories returns all categories in display order.
func (r *CategoryRepository) ListCategories(ctx context.Context) ([]product.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, scanCategory)
}

// ListSubcategories returns all subcategories in display order.
func (r *CategoryRepository) ListSubcategories(ctx context.Context) ([]product.Subcategory, error) {
	rows, err := r.pool.Query(ctx, listSubcategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing subcategories: %w", err)
	}
	return pgx.CollectRows(rows, scanSubcategory)
}

// CreateCategory inserts a new category.
func (r *CategoryRepository) CreateCategory(ctx context.Context, c *product.Category) error {
	_, err := r.pool.Exec(ctx, insertCategorySQL, c.ID, c.Name, c.Slug, c.DisplayOrder)
	if err != nil {
		return fmt.Errorf("creating category %q: %w", c.ID, err)
	}
	return nil
}

// CreateSubcategory inserts a new subcategory.
func (r *CategoryRepository) CreateSubcategory(ctx context.Context, s *product.Subcategory) error {
	_, err := r.pool.Exec(ctx, insertSubcategorySQL, s.ID, s.CategoryID, s.Name, s.Slug, s.DisplayOrder)
	if err != nil {
		return fmt.Errorf("creating subcategory %q: %w", s.ID, err)
	}
	return nil
}

// Rename updates a category's name and refreshes the denormalized product
// strings in one transaction.
func (r *CategoryRepository) Rename(ctx context.Context, id, newName string) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		var oldName string
		err := tx.QueryRow(ctx,
			`SELECT name FROM categories WHERE id = $1 FOR UPDATE`, id).Scan(&oldName)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return product.ErrCategoryNotFound
			}
			return fmt.Errorf("locking category %q: %w", id, err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE categories SET name = $2, updated_at = now() WHERE id = $1`,
			id, newName); err != nil {
			return fmt.Errorf("renaming category %q: %w", id, err)
		}
		if _, err := tx.Exec(ctx, cascadeCategorySQL, oldName, newName); err != nil {
			return fmt.Errorf("cascading category rename %q: %w", id, err)
		}
		return nil
	})
}

// Reorder sets a category's display rank.
func (r *CategoryRepository) Reorder(ctx context.Context, id string, displayOrder int) error {
	ct, err := r.pool.Exec(ctx, reorderCategorySQL, id, displayOrder)
	if err != nil {
		return fmt.Errorf("reordering category %q: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return product.ErrCategoryNotFound
	}
	return nil
}

// DeleteCategory removes a category; subcategories cascade via FK.
func (r *CategoryRepository) DeleteCategory(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, deleteCategorySQL, id)
	if err != nil {
		return fmt.Errorf("deleting category %q: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return product.ErrCategoryNotFound
	}
	return nil
}

// DeleteSubcategory removes a subcategory; products referencing it fall back
// to NULL via the FK.
func (r *CategoryRepository) DeleteSubcategory(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, deleteSubcategorySQL, id)
	if err != nil {
		return fmt.Errorf("deleting subcategory %q: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return product.ErrSubcategoryNotFound
	}
	return nil
}

func scanCategory(row pgx.CollectableRow) (product.Category, error) {
	var c product.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.DisplayOrder, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func scanSubcategory(row pgx.CollectableRow) (product.Subcategory, error) {
	var s product.Subcategory
	err := row.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Slug, &s.DisplayOrder, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}
