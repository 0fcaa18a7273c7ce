//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/products", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 5 {
		t.Fatalf("expected 5 products, got %d", len(products))
	}

	for _, p := range products {
		if p.ID == "" || p.Name == "" || p.Price == "" {
			t.Errorf("product %+v has empty fields", p)
		}
	}
}

func TestListProducts_NoAuthRequired(t *testing.T) {
	// The catalog is public; no Authorization header needed.
	resp := doGet(t, "/products", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
