package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nbenali/dz-storefront/internal/domain/product"
	"github.com/nbenali/dz-storefront/internal/domain/stock"
)

// Orders.

func (h *Handler) adminListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) adminGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) adminUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateOrderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}
	o, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) adminDeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Products.

type createProductRequest struct {
	Slug          string   `json:"slug"`
	Name          string   `json:"name"`
	PriceDa       int64    `json:"priceDa"`
	Category      string   `json:"category"`
	SubcategoryID string   `json:"subcategoryId,omitempty"`
	Description   string   `json:"description"`
	Benefits      []string `json:"benefits"`
	Images        []string `json:"images"`
	Stock         int      `json:"stock"`
	IsFeatured    bool     `json:"isFeatured"`
}

func (h *Handler) adminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}
	if req.Name == "" || req.PriceDa <= 0 || req.Stock < 0 {
		badRequest(w, "name, a positive priceDa and a non-negative stock are required")
		return
	}
	if req.Slug == "" {
		req.Slug = slugify(req.Name)
	}

	p := &product.Product{
		ID:            uuid.New().String(),
		Slug:          req.Slug,
		Name:          req.Name,
		PriceDa:       req.PriceDa,
		Category:      req.Category,
		SubcategoryID: req.SubcategoryID,
		Description:   req.Description,
		Benefits:      req.Benefits,
		Images:        req.Images,
		Stock:         req.Stock,
		IsFeatured:    req.IsFeatured,
	}
	if err := h.products.Create(r.Context(), p); err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toProductResponse(*p))
}

type updateProductRequest struct {
	Slug          *string   `json:"slug"`
	Name          *string   `json:"name"`
	PriceDa       *int64    `json:"priceDa"`
	Category      *string   `json:"category"`
	SubcategoryID *string   `json:"subcategoryId"`
	Description   *string   `json:"description"`
	Benefits      *[]string `json:"benefits"`
	Images        *[]string `json:"images"`
	Stock         *int      `json:"stock"`
	IsFeatured    *bool     `json:"isFeatured"`
}

func (h *Handler) adminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req updateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}
	if req.PriceDa != nil && *req.PriceDa <= 0 {
		badRequest(w, "priceDa must be positive")
		return
	}
	if req.Stock != nil && *req.Stock < 0 {
		badRequest(w, "stock must be non-negative")
		return
	}

	p, err := h.products.Update(r.Context(), chi.URLParam(r, "id"), product.Update{
		Slug:          req.Slug,
		Name:          req.Name,
		PriceDa:       req.PriceDa,
		Category:      req.Category,
		SubcategoryID: req.SubcategoryID,
		Description:   req.Description,
		Benefits:      req.Benefits,
		Images:        req.Images,
		Stock:         req.Stock,
		IsFeatured:    req.IsFeatured,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toProductResponse(*p))
}

type adjustStockRequest struct {
	Delta int `json:"delta"`
}

// adminAdjustStock applies a relative stock correction through the
// reservation engine, so manual adjustments obey the same never-negative
// guarantee as checkout.
func (h *Handler) adminAdjustStock(w http.ResponseWriter, r *http.Request) {
	var req adjustStockRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}
	if req.Delta == 0 {
		badRequest(w, "delta must be non-zero")
		return
	}

	id := chi.URLParam(r, "id")
	items := []stock.Item{{ProductID: id, Quantity: req.Delta}}
	var err error
	if req.Delta < 0 {
		items[0].Quantity = -req.Delta
		err = h.stock.Reserve(r.Context(), items)
	} else {
		err = h.stock.Release(r.Context(), items)
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toProductResponse(*p))
}

func (h *Handler) adminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Categories.

type createCategoryRequest struct {
	Name         string `json:"name"`
	Slug         string `json:"slug,omitempty"`
	DisplayOrder int    `json:"displayOrder"`
}

func (h *Handler) adminCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}
	if req.Name == "" {
		badRequest(w, "name is required")
		return
	}
	if req.Slug == "" {
		req.Slug = slugify(req.Name)
	}

	c := &product.Category{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Slug:         req.Slug,
		DisplayOrder: req.DisplayOrder,
	}
	if err := h.categories.CreateCategory(r.Context(), c); err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryResponse{
		ID: c.ID, Name: c.Name, Slug: c.Slug, DisplayOrder: c.DisplayOrder,
	})
}

type updateCategoryRequest struct {
	Name         *string `json:"name"`
	DisplayOrder *int    `json:"displayOrder"`
}

func (h *Handler) adminUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req updateCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}
	if req.Name == nil && req.DisplayOrder == nil {
		badRequest(w, "nothing to update")
		return
	}

	id := chi.URLParam(r, "id")
	if req.Name != nil {
		if *req.Name == "" {
			badRequest(w, "name must not be empty")
			return
		}
		if err := h.categories.Rename(r.Context(), id, *req.Name); err != nil {
			h.respondError(w, r, err)
			return
		}
	}
	if req.DisplayOrder != nil {
		if err := h.categories.Reorder(r.Context(), id, *req.DisplayOrder); err != nil {
			h.respondError(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) adminDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Subcategories.

type createSubcategoryRequest struct {
	CategoryID   string `json:"categoryId"`
	Name         string `json:"name"`
	Slug         string `json:"slug,omitempty"`
	DisplayOrder int    `json:"displayOrder"`
}

func (h *Handler) adminCreateSubcategory(w http.ResponseWriter, r *http.Request) {
	var req createSubcategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "malformed request body")
		return
	}
	if req.Name == "" || req.CategoryID == "" {
		badRequest(w, "name and categoryId are required")
		return
	}
	if req.Slug == "" {
		req.Slug = slugify(req.Name)
	}

	s := &product.Subcategory{
		ID:           uuid.New().String(),
		CategoryID:   req.CategoryID,
		Name:         req.Name,
		Slug:         req.Slug,
		DisplayOrder: req.DisplayOrder,
	}
	if err := h.categories.CreateSubcategory(r.Context(), s); err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, subcategoryResponse{
		ID: s.ID, CategoryID: s.CategoryID, Name: s.Name, Slug: s.Slug, DisplayOrder: s.DisplayOrder,
	})
}

func (h *Handler) adminDeleteSubcategory(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.DeleteSubcategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// slugify lowercases a name and squashes runs of non-alphanumerics to single
// hyphens.
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
