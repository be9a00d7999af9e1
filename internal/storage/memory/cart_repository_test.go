package memory_test

import (
	"testing"

	"github.com/fishgalaxy/backend/internal/domain"
	"github.com/fishgalaxy/backend/internal/storage/memory"
)

func TestCartRepository_GetMissingReturnsEmptyCart(t *testing.T) {
	repo := memory.NewCartRepository()

	cart, err := repo.Get("customer-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if cart.CustomerID != "customer-1" || len(cart.Items) != 0 {
		t.Fatalf("expected empty cart for new customer, got %+v", cart)
	}
}

func TestCartRepository_UpsertKeepsID(t *testing.T) {
	repo := memory.NewCartRepository()

	if err := repo.Upsert(domain.Cart{
		CustomerID: "customer-1",
		Items:      []domain.CartItem{{ProductID: "product-1", Quantity: 1}},
	}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	first, err := repo.Get("customer-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if first.ID == "" {
		t.Fatal("upsert must assign a cart id")
	}

	if err := repo.Upsert(domain.Cart{
		CustomerID: "customer-1",
		Items:      []domain.CartItem{{ProductID: "product-2", Quantity: 3}},
	}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	second, err := repo.Get("customer-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("cart id must be stable across upserts: %s != %s", second.ID, first.ID)
	}
	if len(second.Items) != 1 || second.Items[0].ProductID != "product-2" {
		t.Fatalf("upsert must replace the cart contents, got %+v", second.Items)
	}
}

func TestCartRepository_CountWithProduct(t *testing.T) {
	repo := memory.NewCartRepository()

	repo.Upsert(domain.Cart{CustomerID: "customer-1", Items: []domain.CartItem{{ProductID: "product-1", Quantity: 1}}})
	repo.Upsert(domain.Cart{CustomerID: "customer-2", Items: []domain.CartItem{{ProductID: "product-1", Quantity: 2}}})
	repo.Upsert(domain.Cart{CustomerID: "customer-3", Items: []domain.CartItem{{ProductID: "product-2", Quantity: 1}}})

	count, err := repo.CountWithProduct("product-1")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected product in 2 carts, got %d", count)
	}
}
