//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"testing"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestCheckout_SingleItem(t *testing.T) {
	argan := productBySlug(t, "huile-argan-pure")

	resp := doJSON(t, http.MethodPost, "/api/checkout", "",
		validCheckout(checkoutItem{ProductID: argan.ID, Quantity: 2}))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	o := decodeJSON[orderResponse](t, resp)
	if !uuidPattern.MatchString(o.ID) {
		t.Errorf("order id %q is not a UUID", o.ID)
	}
	if o.Status != "pending" {
		t.Errorf("status: got %q, want pending", o.Status)
	}
	if o.SubtotalDa != 17000 { // 2 x 8500
		t.Errorf("subtotal: got %d, want 17000", o.SubtotalDa)
	}
	if o.ShippingDa != 400 { // Alger
		t.Errorf("shipping: got %d, want 400", o.ShippingDa)
	}
	if o.TotalDa != 17400 {
		t.Errorf("total: got %d, want 17400", o.TotalDa)
	}

	// The reservation is visible in the public catalog immediately.
	after := productBySlug(t, "huile-argan-pure")
	if after.Stock != argan.Stock-2 {
		t.Errorf("stock: got %d, want %d", after.Stock, argan.Stock-2)
	}
}

func TestCheckout_ValidationErrors(t *testing.T) {
	req := validCheckout(checkoutItem{ProductID: "irrelevant", Quantity: 1})
	req.Phone = "021 12 34 56"
	req.Address = "short"

	resp := doJSON(t, http.MethodPost, "/api/checkout", "", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if _, ok := body.FieldErrors["phone"]; !ok {
		t.Error("expected phone field error")
	}
	if _, ok := body.FieldErrors["address"]; !ok {
		t.Error("expected address field error")
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/checkout", "", validCheckout())
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCheckout_UnknownProduct(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/checkout", "",
		validCheckout(checkoutItem{ProductID: "00000000-0000-0000-0000-000000000000", Quantity: 1}))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCheckout_InsufficientStock(t *testing.T) {
	figue := productBySlug(t, "huile-figue-barbarie")

	resp := doJSON(t, http.MethodPost, "/api/checkout", "",
		validCheckout(checkoutItem{ProductID: figue.ID, Quantity: figue.Stock + 1}))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}

	// All-or-nothing: the failed attempt must not move stock.
	after := productBySlug(t, "huile-figue-barbarie")
	if after.Stock != figue.Stock {
		t.Errorf("stock moved on failed checkout: got %d, want %d", after.Stock, figue.Stock)
	}
}

func TestCheckout_MultiLineAllOrNothing(t *testing.T) {
	savon := productBySlug(t, "savon-nigelle-alep")
	figue := productBySlug(t, "huile-figue-barbarie")

	// Second line over-asks, so the first line must not be decremented either.
	resp := doJSON(t, http.MethodPost, "/api/checkout", "", validCheckout(
		checkoutItem{ProductID: savon.ID, Quantity: 1},
		checkoutItem{ProductID: figue.ID, Quantity: figue.Stock + 1},
	))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}

	afterSavon := productBySlug(t, "savon-nigelle-alep")
	if afterSavon.Stock != savon.Stock {
		t.Errorf("first line stock moved: got %d, want %d", afterSavon.Stock, savon.Stock)
	}
}

// TestCheckout_ConcurrentNoOversell fires more buyers than there is stock at
// the live server and expects the database-side conditional decrement to let
// exactly the available units through.
func TestCheckout_ConcurrentNoOversell(t *testing.T) {
	token := adminToken(t)

	resp := doJSON(t, http.MethodPost, "/api/admin/products", token, map[string]any{
		"name":    "Baume Karité Brut",
		"priceDa": 1500,
		"stock":   5,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	created := decodeJSON[productResponse](t, resp)
	resp.Body.Close()

	const buyers = 12

	type result struct {
		status  int
		orderID string
		err     error
	}
	results := make(chan result, buyers)

	for range buyers {
		go func() {
			body, err := json.Marshal(validCheckout(checkoutItem{ProductID: created.ID, Quantity: 1}))
			if err != nil {
				results <- result{err: err}
				return
			}
			req, err := http.NewRequestWithContext(context.Background(),
				http.MethodPost, baseURL+"/api/checkout", bytes.NewReader(body))
			if err != nil {
				results <- result{err: err}
				return
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := httpClient.Do(req)
			if err != nil {
				results <- result{err: err}
				return
			}
			defer resp.Body.Close()

			res := result{status: resp.StatusCode}
			if resp.StatusCode == http.StatusCreated {
				var o orderResponse
				if err := json.NewDecoder(resp.Body).Decode(&o); err != nil {
					res.err = err
				} else {
					res.orderID = o.ID
				}
			}
			results <- res
		}()
	}

	var orderIDs []string
	conflicts := 0
	for range buyers {
		res := <-results
		if res.err != nil {
			t.Fatalf("checkout: %v", res.err)
		}
		switch res.status {
		case http.StatusCreated:
			orderIDs = append(orderIDs, res.orderID)
		case http.StatusConflict:
			conflicts++
		default:
			t.Errorf("unexpected status %d", res.status)
		}
	}

	if len(orderIDs) != 5 {
		t.Errorf("successful checkouts: got %d, want exactly the 5 units in stock", len(orderIDs))
	}
	if conflicts != buyers-5 {
		t.Errorf("conflicts: got %d, want %d", conflicts, buyers-5)
	}
	if got := productBySlug(t, created.Slug).Stock; got != 0 {
		t.Errorf("stock after the rush: got %d, want 0", got)
	}

	// Clean up so later tests see only the seed catalog.
	for _, id := range orderIDs {
		resp := doJSON(t, http.MethodDelete, "/api/admin/orders/"+id, token, nil)
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("delete order %s: expected 204, got %d", id, resp.StatusCode)
		}
		resp.Body.Close()
	}
	resp = doJSON(t, http.MethodDelete, "/api/admin/products/"+created.ID, token, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete product: expected 204, got %d", resp.StatusCode)
	}
}
