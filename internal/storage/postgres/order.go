package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nbenali/dz-storefront/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders
		(id, status, first_name, last_name, phone, wilaya, address, notes,
		 subtotal_da, shipping_da, total_da, stock_reserved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	insertOrderItemSQL = `INSERT INTO order_items
		(id, order_id, product_id, quantity, unit_price_da, subtotal_da)
		VALUES ($1, $2, $3, $4, $5, $6)`

	selectOrderSQL = `SELECT id, status, first_name, last_name, phone, wilaya, address, notes,
		subtotal_da, shipping_da, total_da, stock_reserved, created_at, updated_at
		FROM orders WHERE id = $1`

	// Status transitions lock the order row so concurrent admin updates on
	// the same order serialize.
	selectOrderForUpdateSQL = selectOrderSQL + ` FOR UPDATE`

	listOrdersSQL = `SELECT id, status, first_name, last_name, phone, wilaya, address, notes,
		subtotal_da, shipping_da, total_da, stock_reserved, created_at, updated_at
		FROM orders ORDER BY created_at DESC`

	selectOrderItemsSQL = `SELECT id, order_id, product_id, quantity, unit_price_da, subtotal_da
		FROM order_items WHERE order_id = $1 ORDER BY id`

	selectItemsByOrdersSQL = `SELECT id, order_id, product_id, quantity, unit_price_da, subtotal_da
		FROM order_items WHERE order_id = ANY($1) ORDER BY id`

	updateOrderStatusSQL = `UPDATE orders
		SET status = $2, stock_reserved = $3, updated_at = now() WHERE id = $1`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create reserves stock and inserts the order with its items in one
// transaction. An insufficient line rolls back every decrement and persists
// nothing.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := reserveStockTx(ctx, tx, o.StockItems()); err != nil {
			return err
		}

		c := o.Customer
		_, err := tx.Exec(ctx, insertOrderSQL,
			o.ID, string(o.Status), c.FirstName, c.LastName, c.Phone, c.Wilaya,
			c.Address, c.Notes, o.SubtotalDa, o.ShippingDa, o.TotalDa, o.StockReserved,
		)
		if err != nil {
			return fmt.Errorf("creating order %q: %w", o.ID, err)
		}

		for _, it := range o.Items {
			_, err := tx.Exec(ctx, insertOrderItemSQL,
				it.ID, it.OrderID, it.ProductID, it.Quantity, it.UnitPriceDa, it.SubtotalDa,
			)
			if err != nil {
				return fmt.Errorf("creating order item %q: %w", it.ID, err)
			}
		}
		return nil
	})
}

// Get returns one order with its items.
func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, selectOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	itemRows, err := r.pool.Query(ctx, selectOrderItemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting items for order %q: %w", id, err)
	}
	o.Items, err = pgx.CollectRows(itemRows, scanOrderItem)
	if err != nil {
		return nil, fmt.Errorf("getting items for order %q: %w", id, err)
	}
	return &o, nil
}

// List returns all orders newest first, items included.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	itemRows, err := r.pool.Query(ctx, selectItemsByOrdersSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("listing order items: %w", err)
	}
	items, err := pgx.CollectRows(itemRows, scanOrderItem)
	if err != nil {
		return nil, fmt.Errorf("listing order items: %w", err)
	}
	for _, it := range items {
		i := index[it.OrderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return orders, nil
}

// UpdateStatus locks the order row, applies the transition's stock effect,
// and writes the new status and stockReserved flag together. A failed
// re-reservation aborts the whole transaction, leaving the order untouched.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, to order.Status) (*order.Order, error) {
	var updated *order.Order
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		o, err := lockOrder(ctx, tx, id)
		if err != nil {
			return err
		}

		reserved := o.StockReserved
		switch order.TransitionEffect(reserved, to) {
		case order.EffectReserve:
			if err := reserveStockTx(ctx, tx, o.StockItems()); err != nil {
				return err
			}
			reserved = true
		case order.EffectRelease:
			if err := releaseStockTx(ctx, tx, o.StockItems()); err != nil {
				return err
			}
			reserved = false
		}

		if _, err := tx.Exec(ctx, updateOrderStatusSQL, id, string(to), reserved); err != nil {
			return fmt.Errorf("updating order %q status: %w", id, err)
		}

		o.Status = to
		o.StockReserved = reserved
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete releases held stock, then removes the order; items go with it via
// the FK cascade. One transaction, so inventory is never lost.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		o, err := lockOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if o.StockReserved {
			if err := releaseStockTx(ctx, tx, o.StockItems()); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(ctx, deleteOrderSQL, id); err != nil {
			return fmt.Errorf("deleting order %q: %w", id, err)
		}
		return nil
	})
}

// lockOrder loads an order and its items under FOR UPDATE.
func lockOrder(ctx context.Context, tx pgx.Tx, id string) (*order.Order, error) {
	rows, err := tx.Query(ctx, selectOrderForUpdateSQL, id)
	if err != nil {
		return nil, fmt.Errorf("locking order %q: %w", id, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("locking order %q: %w", id, err)
	}

	itemRows, err := tx.Query(ctx, selectOrderItemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting items for order %q: %w", id, err)
	}
	o.Items, err = pgx.CollectRows(itemRows, scanOrderItem)
	if err != nil {
		return nil, fmt.Errorf("getting items for order %q: %w", id, err)
	}
	return &o, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o      order.Order
		status string
	)
	err := row.Scan(
		&o.ID, &status,
		&o.Customer.FirstName, &o.Customer.LastName, &o.Customer.Phone,
		&o.Customer.Wilaya, &o.Customer.Address, &o.Customer.Notes,
		&o.SubtotalDa, &o.ShippingDa, &o.TotalDa, &o.StockReserved,
		&o.CreatedAt, &o.UpdatedAt,
	)
	o.Status = order.Status(status)
	return o, err
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var it order.Item
	err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPriceDa, &it.SubtotalDa)
	return it, err
}
