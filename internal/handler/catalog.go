package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nbenali/dz-storefront/internal/domain/product"
)

type productResponse struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	PriceDa       int64     `json:"priceDa"`
	Category      string    `json:"category"`
	SubcategoryID string    `json:"subcategoryId,omitempty"`
	Benefits      []string  `json:"benefits"`
	Images        []string  `json:"images"`
	Stock         int       `json:"stock"`
	InStock       bool      `json:"inStock"`
	IsFeatured    bool      `json:"isFeatured"`
	CreatedAt     time.Time `json:"createdAt"`
}

type productListResponse struct {
	Products   []productResponse `json:"products"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}

func (h *Handler) toProductResponse(p product.Product) productResponse {
	images := p.ImageList()
	if h.imageBaseURL != "" {
		prefixed := make([]string, len(images))
		for i, img := range images {
			if strings.HasPrefix(img, "http://") || strings.HasPrefix(img, "https://") {
				prefixed[i] = img
				continue
			}
			prefixed[i] = h.imageBaseURL + "/" + strings.TrimPrefix(img, "/")
		}
		images = prefixed
	}
	benefits := p.Benefits
	if benefits == nil {
		benefits = []string{}
	}
	return productResponse{
		ID:            p.ID,
		Slug:          p.Slug,
		Name:          p.Name,
		Description:   p.Description,
		PriceDa:       p.PriceDa,
		Category:      p.Category,
		SubcategoryID: p.SubcategoryID,
		Benefits:      benefits,
		Images:        images,
		Stock:         p.Stock,
		InStock:       p.Stock > 0,
		IsFeatured:    p.IsFeatured,
		CreatedAt:     p.CreatedAt,
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := product.ListFilter{
		Category:    q.Get("category"),
		Subcategory: q.Get("subcategory"),
		Featured:    q.Get("featured") == "true",
	}
	if v := q.Get("priceMin"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			badRequest(w, "priceMin must be a non-negative integer")
			return
		}
		filter.PriceMinDa = n
	}
	if v := q.Get("priceMax"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			badRequest(w, "priceMax must be a non-negative integer")
			return
		}
		filter.PriceMaxDa = n
	}
	switch q.Get("sort") {
	case "", "newest":
		filter.Sort = product.SortNewest
	case "price-asc":
		filter.Sort = product.SortPriceAsc
	case "price-desc":
		filter.Sort = product.SortPriceDesc
	case "name":
		filter.Sort = product.SortName
	default:
		badRequest(w, "unknown sort order")
		return
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			badRequest(w, "page must be a positive integer")
			return
		}
		filter.Page = n
	}
	if v := q.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			badRequest(w, "pageSize must be a positive integer")
			return
		}
		filter.PageSize = n
	}

	page, err := h.products.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	resp := productListResponse{
		Products:   make([]productResponse, 0, len(page.Products)),
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}
	for _, p := range page.Products {
		resp.Products = append(resp.Products, h.toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	p, err := h.products.GetBySlug(r.Context(), slug)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toProductResponse(*p))
}

type categoryResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	DisplayOrder int    `json:"displayOrder"`
}

type subcategoryResponse struct {
	ID           string `json:"id"`
	CategoryID   string `json:"categoryId"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	DisplayOrder int    `json:"displayOrder"`
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.ListCategories(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	resp := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		resp = append(resp, categoryResponse{ID: c.ID, Name: c.Name, Slug: c.Slug, DisplayOrder: c.DisplayOrder})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) listSubcategories(w http.ResponseWriter, r *http.Request) {
	subs, err := h.categories.ListSubcategories(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	resp := make([]subcategoryResponse, 0, len(subs))
	for _, s := range subs {
		resp = append(resp, subcategoryResponse{
			ID: s.ID, CategoryID: s.CategoryID, Name: s.Name, Slug: s.Slug, DisplayOrder: s.DisplayOrder,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
