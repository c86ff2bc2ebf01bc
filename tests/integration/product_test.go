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

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) < seededCount {
		t.Fatalf("expected at least %d products, got %d", seededCount, len(products))
	}
}

func TestListProducts_Fields(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)

	var almonds *productResponse
	for i := range products {
		if products[i].Name == "Premium Almond Pack" {
			almonds = &products[i]
			break
		}
	}

	if almonds == nil {
		t.Fatal("seeded product 'Premium Almond Pack' not found")
	}
	if almonds.Slug == "" {
		t.Error("slug is empty")
	}
	if almonds.OriginalPrice != "12.5" {
		t.Errorf("original_price: got %q, want %q", almonds.OriginalPrice, "12.5")
	}
	// 10% off 12.50.
	if almonds.DiscountPrice != "11.25" {
		t.Errorf("discount_price: got %q, want %q", almonds.DiscountPrice, "11.25")
	}
}

func TestGetProduct_BySlug(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()
	products := decodeJSON[[]productResponse](t, resp)
	if len(products) == 0 {
		t.Fatal("no products seeded")
	}

	one := doGet(t, "/api/products/"+products[0].Slug)
	defer one.Body.Close()

	if one.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", one.StatusCode)
	}
	got := decodeJSON[productResponse](t, one)
	if got.Slug != products[0].Slug {
		t.Errorf("slug: got %q, want %q", got.Slug, products[0].Slug)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/definitely-not-a-slug")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if body.Code != http.StatusNotFound {
		t.Errorf("error code: got %d, want 404", body.Code)
	}
}

func TestCreateProduct_RequiresStaff(t *testing.T) {
	body := map[string]any{
		"name":           "Forbidden Fruit",
		"original_price": "5.00",
	}

	// Anonymous.
	resp := doPost(t, "/api/products", body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous create: expected 401, got %d", resp.StatusCode)
	}

	// Regular user.
	userToken := registerUser(t, "shopper-products@example.com", "s3cret!")
	resp = doRequest(t, http.MethodPost, "/api/products", body, userToken)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("user create: expected 403, got %d", resp.StatusCode)
	}
}

func TestProductLifecycle_AsStaff(t *testing.T) {
	admin := login(t, adminEmail, adminPassword)

	// Create with a discount.
	resp := doRequest(t, http.MethodPost, "/api/products", map[string]any{
		"name":                "Integration Walnuts",
		"original_price":      "20.00",
		"discount_percentage": "25",
		"stock":               10,
	}, admin)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	created := decodeJSON[productResponse](t, resp)
	resp.Body.Close()

	if created.DiscountPrice != "15" {
		t.Errorf("discount_price: got %q, want %q", created.DiscountPrice, "15")
	}

	// Update the percentage; the discount price follows.
	resp = doRequest(t, http.MethodPut, "/api/products/"+created.Slug, map[string]any{
		"name":                "Integration Walnuts",
		"original_price":      "20.00",
		"discount_percentage": "50",
		"stock":               10,
	}, admin)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", resp.StatusCode)
	}
	updated := decodeJSON[productResponse](t, resp)
	resp.Body.Close()

	if updated.DiscountPrice != "10" {
		t.Errorf("updated discount_price: got %q, want %q", updated.DiscountPrice, "10")
	}
	if updated.Slug != created.Slug {
		t.Errorf("slug changed on update: %q -> %q", created.Slug, updated.Slug)
	}

	// Delete.
	resp = doRequest(t, http.MethodDelete, "/api/products/"+created.Slug, nil, admin)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}

	resp = doGet(t, "/api/products/"+created.Slug)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", resp.StatusCode)
	}
}
