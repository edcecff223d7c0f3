//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	page := decodeJSON[productListResponse](t, resp)
	if page.Total != 6 {
		t.Fatalf("total: got %d, want 6", page.Total)
	}
	for _, p := range page.Products {
		if p.PriceDa <= 0 {
			t.Errorf("product %s: non-positive price %d", p.Slug, p.PriceDa)
		}
		if len(p.Images) == 0 {
			t.Errorf("product %s: empty image list", p.Slug)
		}
	}
}

func TestListProducts_FilterByCategory(t *testing.T) {
	resp := doGet(t, "/api/products?category=Haircare")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	page := decodeJSON[productListResponse](t, resp)
	if page.Total != 1 {
		t.Fatalf("total: got %d, want 1", page.Total)
	}
	if page.Products[0].Slug != "henne-neutre-cassia" {
		t.Errorf("slug: got %s", page.Products[0].Slug)
	}
}

func TestListProducts_PriceSort(t *testing.T) {
	resp := doGet(t, "/api/products?sort=price-asc")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	page := decodeJSON[productListResponse](t, resp)
	for i := 1; i < len(page.Products); i++ {
		if page.Products[i].PriceDa < page.Products[i-1].PriceDa {
			t.Fatalf("products not sorted by ascending price at index %d", i)
		}
	}
}

func TestListProducts_PriceRange(t *testing.T) {
	resp := doGet(t, "/api/products?priceMin=5000&priceMax=8000")
	defer resp.Body.Close()

	page := decodeJSON[productListResponse](t, resp)
	for _, p := range page.Products {
		if p.PriceDa < 5000 || p.PriceDa > 8000 {
			t.Errorf("product %s: price %d outside requested range", p.Slug, p.PriceDa)
		}
	}
}

func TestGetProductBySlug(t *testing.T) {
	p := productBySlug(t, "huile-argan-pure")

	if p.Name != "Huile d'Argan Pure BIO" {
		t.Errorf("name: got %q", p.Name)
	}
	if p.PriceDa != 8500 {
		t.Errorf("price: got %d, want 8500", p.PriceDa)
	}
	if !p.InStock {
		t.Error("expected product in stock")
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/nonexistent-slug")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestListCategories(t *testing.T) {
	resp := doGet(t, "/api/categories")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	categories := decodeJSON[[]map[string]any](t, resp)
	if len(categories) != 2 {
		t.Fatalf("categories: got %d, want 2", len(categories))
	}
}
