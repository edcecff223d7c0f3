package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/nbenali/dz-storefront/internal/captcha"
	"github.com/nbenali/dz-storefront/internal/domain/product"
	"github.com/nbenali/dz-storefront/internal/shipping"
)

// ErrCaptcha is returned when the captcha token is missing or fails
// verification. Nothing is persisted.
var ErrCaptcha = fmt.Errorf("captcha verification failed")

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// Service is the checkout orchestrator and the entry point for all
// admin-driven order mutations.
type Service struct {
	products product.Repository
	orders   Repository
	captcha  captcha.Verifier
}

// NewService creates an order Service. Pass captcha.Nop{} when no verifier
// is configured.
func NewService(products product.Repository, orders Repository, verifier captcha.Verifier) *Service {
	return &Service{
		products: products,
		orders:   orders,
		captcha:  verifier,
	}
}

// Checkout turns a submitted cart into a persisted pending order.
//
// The pipeline: structural validation (all violations itemized), captcha,
// batched product resolution, pricing from current catalog prices, then a
// single transaction that reserves stock and inserts the order. Any failure
// leaves no order and no stock change.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ok, err := s.captcha.Verify(ctx, req.CaptchaToken)
	if err != nil {
		return nil, errors.Wrap(err, "verify captcha")
	}
	if !ok {
		return nil, ErrCaptcha
	}

	// Batch fetch all referenced products in a single read.
	ids := make([]string, 0, len(req.Items))
	seen := make(map[string]bool, len(req.Items))
	for _, item := range req.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, &ProductNotFoundError{ProductID: id}
		}
	}

	// Price every line from the current product record; client-supplied
	// prices are never trusted.
	orderID := uuid.New().String()
	items := make([]Item, len(req.Items))
	var subtotal int64
	for i, line := range req.Items {
		p := byID[line.ProductID]
		lineSubtotal := p.PriceDa * int64(line.Quantity)
		items[i] = Item{
			ID:          uuid.New().String(),
			OrderID:     orderID,
			ProductID:   line.ProductID,
			Quantity:    line.Quantity,
			UnitPriceDa: p.PriceDa,
			SubtotalDa:  lineSubtotal,
		}
		subtotal += lineSubtotal
	}
	shippingDa := shipping.Lookup(req.Wilaya)

	o := &Order{
		ID:     orderID,
		Status: StatusPending,
		Customer: Customer{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
			Wilaya:    req.Wilaya,
			Address:   req.Address,
			Notes:     req.Notes,
		},
		SubtotalDa:    subtotal,
		ShippingDa:    shippingDa,
		TotalDa:       subtotal + shippingDa,
		StockReserved: true,
		Items:         items,
	}

	// Reservation and persistence commit together; an InsufficientError here
	// means nothing was written.
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Get returns one order with its items.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.orders.Get(ctx, id)
}

// List returns all orders, newest first.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.orders.List(ctx)
}

// UpdateStatus moves an order to a new status, applying the transition's
// stock side effect atomically with the status write.
func (s *Service) UpdateStatus(ctx context.Context, id, rawStatus string) (*Order, error) {
	st, err := ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	return s.orders.UpdateStatus(ctx, id, st)
}

// Delete removes an order, releasing any held stock first so inventory is
// never permanently under-counted.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.orders.Delete(ctx, id)
}
