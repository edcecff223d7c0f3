// Package stock defines the reservation engine contract: the sole authority
// for moving Product.stock in connection with orders.
package stock

import (
	"context"
	"fmt"
)

// Item is one reservation line.
type Item struct {
	ProductID string
	Quantity  int
}

// InsufficientError reports the first product whose available stock cannot
// cover the requested quantity. A failed reservation leaves no partial
// decrement behind.
type InsufficientError struct {
	ProductName string
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.ProductName)
}

// Engine reserves and releases stock. Both operations cover all lines as a
// single atomic unit.
//
// Reserve fails with *InsufficientError when any line cannot be covered, and
// with product.ErrNotFound semantics folded into the same error when the row
// is missing. Release is best-effort per line: rows for deleted products are
// skipped.
type Engine interface {
	Reserve(ctx context.Context, items []Item) error
	Release(ctx context.Context, items []Item) error
}
