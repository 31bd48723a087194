//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
)

func TestCreateAndGetProduct(t *testing.T) {
	created := createProduct(t, tokenFor(t, "alice"), map[string]any{
		"name":  "Commuter bike",
		"price": 120.5,
	})

	if created.OwnerID != "alice" {
		t.Errorf("ownerId: got %q, want %q", created.OwnerID, "alice")
	}
	if created.Condition != "good" {
		t.Errorf("condition default: got %q, want %q", created.Condition, "good")
	}
	if created.Status != "active" {
		t.Errorf("status default: got %q, want %q", created.Status, "active")
	}

	resp := doGet(t, "/products/"+created.ID)
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	got := decodeData[productResponse](t, env)
	if got.Name != "Commuter bike" {
		t.Errorf("name: got %q, want %q", got.Name, "Commuter bike")
	}
	if got.Price != 120.5 {
		t.Errorf("price: got %v, want 120.5", got.Price)
	}
	if got.ViewsCount != 1 {
		t.Errorf("viewsCount after first fetch: got %d, want 1", got.ViewsCount)
	}
}

func TestCreateProduct_RequiresAuth(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/products", "", map[string]any{"name": "x"})
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if env.Success {
		t.Error("success must be false")
	}

	// A deactivated account's token is rejected the same way.
	resp = doJSON(t, http.MethodPost, "/products", tokenFor(t, "carol"), map[string]any{"name": "x"})
	decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("deactivated account: expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateProduct_Validation(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/products", tokenFor(t, "alice"), map[string]any{
		"name":        "",
		"description": "y",
		"category":    "Nope",
		"price":       -5,
		"latitude":    1000,
		"longitude":   0,
		"images":      []string{},
	})
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if len(env.Errors) == 0 {
		t.Error("expected field errors in envelope")
	}
}

func TestBrowseProducts(t *testing.T) {
	token := tokenFor(t, "alice")
	createProduct(t, token, map[string]any{"name": "Browse fixture A"})
	createProduct(t, token, map[string]any{"name": "Browse fixture B", "category": "Books"})

	resp := doGet(t, "/products?category=Books&limit=5")
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	page := decodeData[pageResponse](t, env)
	if page.Pagination.Limit != 5 {
		t.Errorf("limit: got %d, want 5", page.Pagination.Limit)
	}
	for _, p := range page.Products {
		if p.Category != "Books" {
			t.Errorf("category filter leaked: got %q", p.Category)
		}
		if p.Status != "active" {
			t.Errorf("browse must only show active listings, got %q", p.Status)
		}
	}
}

func TestBrowseProducts_RejectsBadPaging(t *testing.T) {
	resp := doGet(t, "/products?limit=101")
	decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSearchProducts(t *testing.T) {
	token := tokenFor(t, "alice")
	near := createProduct(t, token, map[string]any{
		"name":      "Telescope close by",
		"latitude":  48.2082,
		"longitude": 16.3738,
	})
	createProduct(t, token, map[string]any{
		"name":      "Telescope far away",
		"latitude":  59.3293,
		"longitude": 18.0686,
	})

	query := url.Values{}
	query.Set("search", "telescope")
	query.Set("loc", "48.20,16.37")
	query.Set("maxDistance", "50000")

	resp := doGet(t, "/products/search?"+query.Encode())
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", resp.StatusCode, env.Message)
	}

	page := decodeData[pageResponse](t, env)
	if len(page.Products) != 1 {
		t.Fatalf("expected 1 product within 50km, got %d", len(page.Products))
	}
	if page.Products[0].ID != near.ID {
		t.Errorf("got %q, want the nearby listing %q", page.Products[0].ID, near.ID)
	}
}

func TestSearchProducts_OrdersByDistance(t *testing.T) {
	// Three matching listings spread north of the search point; insertion
	// order deliberately differs from distance order.
	token := tokenFor(t, "alice")
	mid := createProduct(t, token, map[string]any{
		"name":      "Gramophone mid range",
		"latitude":  48.3082,
		"longitude": 16.3738,
	})
	far := createProduct(t, token, map[string]any{
		"name":      "Gramophone far out",
		"latitude":  48.4582,
		"longitude": 16.3738,
	})
	near := createProduct(t, token, map[string]any{
		"name":      "Gramophone next door",
		"latitude":  48.2182,
		"longitude": 16.3738,
	})

	query := url.Values{}
	query.Set("search", "gramophone")
	query.Set("loc", "48.2082,16.3738")
	query.Set("maxDistance", "50000")

	resp := doGet(t, "/products/search?"+query.Encode())
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", resp.StatusCode, env.Message)
	}

	page := decodeData[pageResponse](t, env)
	if len(page.Products) != 3 {
		t.Fatalf("expected 3 products within 50km, got %d", len(page.Products))
	}
	want := []string{near.ID, mid.ID, far.ID}
	for i, p := range page.Products {
		if p.ID != want[i] {
			t.Errorf("position %d: got %q, want %q", i, p.ID, want[i])
		}
	}
}

func TestSearchProducts_RequiresLocation(t *testing.T) {
	resp := doGet(t, "/products/search?search=telescope")
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if env.Success {
		t.Error("success must be false")
	}
}

func TestUpdateProduct_OwnerOnly(t *testing.T) {
	created := createProduct(t, tokenFor(t, "alice"), nil)
	path := "/products/" + created.ID

	resp := doJSON(t, http.MethodPut, path, tokenFor(t, "bob"), map[string]any{"name": "hijacked"})
	decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-owner edit: expected 403, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPut, path, tokenFor(t, "alice"), map[string]any{
		"price":  60,
		"status": "sold",
	})
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owner edit: expected 200, got %d (%s)", resp.StatusCode, env.Message)
	}

	updated := decodeData[productResponse](t, env)
	if updated.Price != 60 {
		t.Errorf("price: got %v, want 60", updated.Price)
	}
	if updated.Status != "sold" {
		t.Errorf("status: got %q, want %q", updated.Status, "sold")
	}
	if updated.Name != created.Name {
		t.Errorf("untouched field changed: got %q, want %q", updated.Name, created.Name)
	}
}

func TestDeleteProduct(t *testing.T) {
	created := createProduct(t, tokenFor(t, "alice"), nil)
	path := "/products/" + created.ID

	resp := doJSON(t, http.MethodDelete, path, tokenFor(t, "bob"), nil)
	decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-owner delete: expected 403, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodDelete, path, tokenFor(t, "alice"), nil)
	decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owner delete: expected 200, got %d", resp.StatusCode)
	}

	resp = doGet(t, path)
	decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted listing: expected 404, got %d", resp.StatusCode)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/products/no-such-listing")
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if env.Message != "product not found" {
		t.Errorf("message: got %q", env.Message)
	}
}

func TestListMine(t *testing.T) {
	token := tokenFor(t, "bob")
	var ids []string
	for i := 0; i < 2; i++ {
		p := createProduct(t, token, map[string]any{
			"name": fmt.Sprintf("Bob's listing %d", i),
		})
		ids = append(ids, p.ID)
	}

	resp := doJSON(t, http.MethodPost, "/products/mine", token, nil)
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	page := decodeData[pageResponse](t, env)
	found := map[string]bool{}
	for _, p := range page.Products {
		if p.OwnerID != "bob" {
			t.Errorf("foreign listing in /products/mine: owner %q", p.OwnerID)
		}
		found[p.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			t.Errorf("own listing %q missing from /products/mine", id)
		}
	}
}
