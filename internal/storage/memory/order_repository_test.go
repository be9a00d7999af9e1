package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/fishgalaxy/backend/internal/domain"
	"github.com/fishgalaxy/backend/internal/storage/memory"
)

func newOrder(id string, orderID int64, createdAt time.Time) domain.Order {
	return domain.Order{
		ID:         id,
		OrderID:    orderID,
		CustomerID: "customer-1",
		Status:     domain.OrderStatusPending,
		StatusHistory: []domain.StatusEntry{
			{Status: domain.OrderStatusPending, Date: createdAt, Description: "Order placed"},
		},
		Products: []domain.OrderLine{
			{ProductID: "product-1", Name: "Rohu 1kg", Quantity: 2, OfferMinor: 25000, TotalMinor: 50000},
		},
		TotalMinor: 50000,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func TestOrderRepository_CreateGetByRef(t *testing.T) {
	repo := memory.NewOrderRepository()
	now := time.Now().UTC()
	order := newOrder("order-1", 1000, now)

	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	byID, err := repo.GetByRef(domain.OrderRef{ID: "order-1"})
	if err != nil {
		t.Fatalf("get by id failed: %v", err)
	}
	if byID.OrderID != 1000 {
		t.Fatalf("expected order number 1000, got %d", byID.OrderID)
	}

	byNumber, err := repo.GetByRef(domain.OrderRef{OrderID: 1000})
	if err != nil {
		t.Fatalf("get by number failed: %v", err)
	}
	if byNumber.ID != "order-1" {
		t.Fatalf("expected internal id order-1, got %s", byNumber.ID)
	}

	if _, err := repo.GetByRef(domain.OrderRef{OrderID: 9999}); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_SetStatusAppendsHistoryOnce(t *testing.T) {
	repo := memory.NewOrderRepository()
	now := time.Now().UTC()
	if err := repo.Create(newOrder("order-1", 1000, now)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := repo.SetStatus(domain.OrderRef{OrderID: 1000}, domain.StatusEntry{
		Status:      domain.OrderStatusShipped,
		Date:        now.Add(time.Hour),
		Description: "Handed to courier",
	})
	if err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	if updated.Status != domain.OrderStatusShipped {
		t.Fatalf("expected shipped, got %s", updated.Status)
	}
	if len(updated.StatusHistory) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(updated.StatusHistory))
	}

	// Повтор того же статуса: статус меняется, история не растёт,
	// первая запись сохраняет своё описание.
	updated, err = repo.SetStatus(domain.OrderRef{OrderID: 1000}, domain.StatusEntry{
		Status:      domain.OrderStatusShipped,
		Date:        now.Add(2 * time.Hour),
		Description: "Duplicate description",
	})
	if err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	if len(updated.StatusHistory) != 2 {
		t.Fatalf("expected history not to grow, got %d entries", len(updated.StatusHistory))
	}
	if updated.StatusHistory[1].Description != "Handed to courier" {
		t.Fatalf("first description must win, got %q", updated.StatusHistory[1].Description)
	}
}

func TestOrderRepository_ListSortsAndPaginates(t *testing.T) {
	repo := memory.NewOrderRepository()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		order := newOrder(
			"order-"+string(rune('a'+i)),
			int64(1000+i),
			base.Add(time.Duration(i)*time.Minute),
		)
		if err := repo.Create(order); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	filter := domain.OrderFilter{Page: 1, Limit: 10}
	page, total, err := repo.List(filter)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 15 {
		t.Fatalf("expected total 15, got %d", total)
	}
	if len(page) != 10 {
		t.Fatalf("expected 10 orders on the first page, got %d", len(page))
	}
	if page[0].OrderID != 1014 {
		t.Fatalf("expected newest order first, got %d", page[0].OrderID)
	}

	filter = domain.OrderFilter{Page: 2, Limit: 10}
	page, _, err = repo.List(filter)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page) != 5 {
		t.Fatalf("expected 5 orders on the second page, got %d", len(page))
	}
}

func TestOrderRepository_ListFiltersByStatus(t *testing.T) {
	repo := memory.NewOrderRepository()
	now := time.Now().UTC()
	if err := repo.Create(newOrder("order-1", 1000, now)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	shipped := newOrder("order-2", 1001, now)
	shipped.Status = domain.OrderStatusShipped
	if err := repo.Create(shipped); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	page, total, err := repo.List(domain.OrderFilter{
		Statuses: []domain.OrderStatus{domain.OrderStatusShipped},
		Page:     1,
		Limit:    10,
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(page) != 1 || page[0].ID != "order-2" {
		t.Fatalf("expected only the shipped order, got total=%d page=%v", total, page)
	}
}

func TestOrderRepository_Clear(t *testing.T) {
	repo := memory.NewOrderRepository()
	if err := repo.Create(newOrder("order-1", 1000, time.Now().UTC())); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	_, total, err := repo.List(domain.OrderFilter{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected empty repository after clear, got %d", total)
	}
}
