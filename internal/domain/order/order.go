package order

import (
	"context"
	"fmt"
	"time"

	"github.com/nbenali/dz-storefront/internal/domain/stock"
)

// ErrNotFound is returned by status updates and deletes on a nonexistent order.
var ErrNotFound = fmt.Errorf("order not found")

// Customer is the cash-on-delivery contact captured at checkout.
type Customer struct {
	FirstName string
	LastName  string
	Phone     string
	Wilaya    string
	Address   string
	Notes     string
}

// Order is the checkout aggregate. StockReserved records whether this order
// currently holds a stock decrement; it flips only inside the same
// transaction as the stock mutation itself.
type Order struct {
	ID            string
	Status        Status
	Customer      Customer
	SubtotalDa    int64
	ShippingDa    int64
	TotalDa       int64
	StockReserved bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Items         []Item
}

// Item is one order line. UnitPriceDa is the product price captured at order
// time; later product price changes never touch it. Items are immutable once
// created.
type Item struct {
	ID          string
	OrderID     string
	ProductID   string
	Quantity    int
	UnitPriceDa int64
	SubtotalDa  int64
}

// StockItems maps the order lines to reservation engine lines.
func (o *Order) StockItems() []stock.Item {
	items := make([]stock.Item, len(o.Items))
	for i, it := range o.Items {
		items[i] = stock.Item{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return items
}

// Repository persists orders. Create, UpdateStatus and Delete each cover
// their stock side effect and the order write in one atomic unit; a failure
// in either part leaves both unchanged.
type Repository interface {
	// Create reserves stock for every line and inserts the order with its
	// items in a single transaction. Fails with *stock.InsufficientError
	// without persisting anything when any line cannot be covered.
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	// UpdateStatus applies the transition's stock effect (per
	// TransitionEffect) and the status write together. Returns ErrNotFound
	// for unknown ids and *stock.InsufficientError when re-reservation fails,
	// leaving the order in its prior state.
	UpdateStatus(ctx context.Context, id string, to Status) (*Order, error)
	// Delete releases held stock, then removes the order and its items.
	Delete(ctx context.Context, id string) error
}
