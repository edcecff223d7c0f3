// Package handler is the HTTP transport: a chi router over the domain
// services, with a single error-mapping point for the whole API surface.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/nbenali/dz-storefront/internal/auth"
	"github.com/nbenali/dz-storefront/internal/captcha"
	"github.com/nbenali/dz-storefront/internal/domain/order"
	"github.com/nbenali/dz-storefront/internal/domain/product"
	"github.com/nbenali/dz-storefront/internal/domain/stock"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product responses.
	// When empty, image paths are returned as stored.
	ImageBaseURL string
}

// Handler exposes the storefront API over HTTP.
type Handler struct {
	products     product.Repository
	categories   product.CategoryRepository
	orders       *order.Service
	stock        stock.Engine
	gateway      *auth.Gateway
	captcha      captcha.Verifier
	imageBaseURL string
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	products product.Repository,
	categories product.CategoryRepository,
	orders *order.Service,
	engine stock.Engine,
	gateway *auth.Gateway,
	verifier captcha.Verifier,
) *Handler {
	return &Handler{
		products:     products,
		categories:   categories,
		orders:       orders,
		stock:        engine,
		gateway:      gateway,
		captcha:      verifier,
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// Routes mounts the full API surface on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	// Public storefront.
	r.Get("/products", h.listProducts)
	r.Get("/products/{slug}", h.getProduct)
	r.Get("/categories", h.listCategories)
	r.Get("/subcategories", h.listSubcategories)
	r.Post("/checkout", h.checkout)

	// Back office. Login is the only ungated admin route.
	r.Post("/admin/login", h.adminLogin)
	r.Route("/admin", func(r chi.Router) {
		r.Use(h.requireAdmin)

		r.Get("/orders", h.adminListOrders)
		r.Get("/orders/{id}", h.adminGetOrder)
		r.Patch("/orders/{id}", h.adminUpdateOrderStatus)
		r.Delete("/orders/{id}", h.adminDeleteOrder)

		r.Post("/products", h.adminCreateProduct)
		r.Patch("/products/{id}", h.adminUpdateProduct)
		r.Delete("/products/{id}", h.adminDeleteProduct)
		r.Post("/products/{id}/stock", h.adminAdjustStock)

		r.Post("/categories", h.adminCreateCategory)
		r.Patch("/categories/{id}", h.adminUpdateCategory)
		r.Delete("/categories/{id}", h.adminDeleteCategory)

		r.Post("/subcategories", h.adminCreateSubcategory)
		r.Delete("/subcategories/{id}", h.adminDeleteSubcategory)
	})

	return r
}

type errorResponse struct {
	Error       string            `json:"error"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError is the single mapping point from domain errors to HTTP.
// Anything unrecognized is logged and surfaces as an opaque 500.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		valErr   *order.ValidationError
		pnfErr   *order.ProductNotFoundError
		stockErr *stock.InsufficientError
	)

	switch {
	case errors.As(err, &valErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:       "invalid submission",
			FieldErrors: valErr.Fields,
		})
	case errors.Is(err, order.ErrCaptcha):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "captcha verification failed"})
	case errors.As(err, &pnfErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: pnfErr.Error()})
	case errors.As(err, &stockErr):
		writeJSON(w, http.StatusConflict, errorResponse{Error: stockErr.Error()})
	case errors.Is(err, order.ErrInvalidStatus):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid order status"})
	case errors.Is(err, order.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "order not found"})
	case errors.Is(err, product.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "product not found"})
	case errors.Is(err, product.ErrCategoryNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "category not found"})
	case errors.Is(err, product.ErrSubcategoryNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "subcategory not found"})
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, auth.ErrTokenExpired):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func decodeJSON(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}

// badRequest reports a malformed (undecodable) body.
func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
