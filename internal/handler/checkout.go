package handler

import (
	"net/http"
	"time"

	"github.com/nbenali/dz-storefront/internal/domain/order"
)

type orderItemResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"productId"`
	Quantity    int    `json:"quantity"`
	UnitPriceDa int64  `json:"unitPriceDa"`
	SubtotalDa  int64  `json:"subtotalDa"`
}

type orderResponse struct {
	ID         string              `json:"id"`
	Status     string              `json:"status"`
	FirstName  string              `json:"firstName"`
	LastName   string              `json:"lastName"`
	Phone      string              `json:"phone"`
	Wilaya     string              `json:"wilaya"`
	Address    string              `json:"address"`
	Notes      string              `json:"notes,omitempty"`
	SubtotalDa int64               `json:"subtotalDa"`
	ShippingDa int64               `json:"shippingDa"`
	TotalDa    int64               `json:"totalDa"`
	Items      []orderItemResponse `json:"items"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			UnitPriceDa: it.UnitPriceDa,
			SubtotalDa:  it.SubtotalDa,
		})
	}
	return orderResponse{
		ID:         o.ID,
		Status:     string(o.Status),
		FirstName:  o.Customer.FirstName,
		LastName:   o.Customer.LastName,
		Phone:      o.Customer.Phone,
		Wilaya:     o.Customer.Wilaya,
		Address:    o.Customer.Address,
		Notes:      o.Customer.Notes,
		SubtotalDa: o.SubtotalDa,
		ShippingDa: o.ShippingDa,
		TotalDa:    o.TotalDa,
		Items:      items,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req order.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}

	o, err := h.orders.Checkout(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}
