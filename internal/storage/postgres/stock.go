package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nbenali/dz-storefront/internal/domain/stock"
)

const (
	// The stock check lives inside the UPDATE itself: the row condition
	// serializes check-and-decrement per product, so two concurrent
	// reservations can never both observe pre-decrement stock.
	reserveStockSQL = `UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2`

	releaseStockSQL = `UPDATE products SET stock = stock + $2, updated_at = now()
		WHERE id = $1`

	productNameSQL = `SELECT name FROM products WHERE id = $1`
)

var _ stock.Engine = (*StockEngine)(nil)

// StockEngine implements stock.Engine with its own transaction per call.
// The order repository shares the same tx-scoped primitives so checkout and
// status transitions cover reservation and order write in one unit.
type StockEngine struct {
	pool *pgxpool.Pool
}

// NewStockEngine returns a StockEngine that uses the given pool.
func NewStockEngine(pool *pgxpool.Pool) *StockEngine {
	return &StockEngine{pool: pool}
}

// Reserve decrements stock for every line, all-or-nothing.
func (e *StockEngine) Reserve(ctx context.Context, items []stock.Item) error {
	return inTx(ctx, e.pool, func(tx pgx.Tx) error {
		return reserveStockTx(ctx, tx, items)
	})
}

// Release increments stock for every line. Missing products are skipped.
func (e *StockEngine) Release(ctx context.Context, items []stock.Item) error {
	return inTx(ctx, e.pool, func(tx pgx.Tx) error {
		return releaseStockTx(ctx, tx, items)
	})
}

// reserveStockTx applies conditional decrements within tx. Any line that
// cannot be covered aborts with *stock.InsufficientError; the caller's
// rollback undoes every prior decrement.
func reserveStockTx(ctx context.Context, tx pgx.Tx, items []stock.Item) error {
	for _, item := range items {
		ct, err := tx.Exec(ctx, reserveStockSQL, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("reserving stock for %q: %w", item.ProductID, err)
		}
		if ct.RowsAffected() == 0 {
			// Either the product is gone or its stock is short; name it for
			// the customer-facing message, falling back to the id.
			name := item.ProductID
			var fetched string
			if err := tx.QueryRow(ctx, productNameSQL, item.ProductID).Scan(&fetched); err == nil {
				name = fetched
			} else if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("naming product %q: %w", item.ProductID, err)
			}
			return &stock.InsufficientError{ProductName: name}
		}
	}
	return nil
}

// releaseStockTx increments stock within tx, best-effort per line: a deleted
// product's bookkeeping is moot and its line is skipped.
func releaseStockTx(ctx context.Context, tx pgx.Tx, items []stock.Item) error {
	for _, item := range items {
		if _, err := tx.Exec(ctx, releaseStockSQL, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("releasing stock for %q: %w", item.ProductID, err)
		}
	}
	return nil
}
