package memory_test

import (
	"testing"

	"github.com/fishgalaxy/backend/internal/domain"
	"github.com/fishgalaxy/backend/internal/storage/memory"
)

func TestOutboxRepository_EnqueuePull(t *testing.T) {
	repo := memory.NewOutboxRepository()

	first, err := repo.Enqueue(domain.OutboxMessage{
		AggregateType: domain.AggregateTypeOrder,
		AggregateID:   "order-1",
		EventType:     domain.EventTypeOrderCreated,
		Payload:       []byte(`{"order_id":1000}`),
	})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if first.ID == "" {
		t.Fatal("enqueue must assign an id")
	}

	second, err := repo.Enqueue(domain.OutboxMessage{
		AggregateType: domain.AggregateTypeOrder,
		AggregateID:   "order-2",
		EventType:     domain.EventTypeOrderCreated,
	})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending messages, got %d", len(pending))
	}
	if pending[0].ID != first.ID || pending[1].ID != second.ID {
		t.Fatal("pending messages must come in enqueue order")
	}
}

func TestOutboxRepository_MarkSentRemovesFromPending(t *testing.T) {
	repo := memory.NewOutboxRepository()

	msg, err := repo.Enqueue(domain.OutboxMessage{
		AggregateType: domain.AggregateTypeOrder,
		AggregateID:   "order-1",
		EventType:     domain.EventTypeOrderCreated,
	})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	if err := repo.MarkSent(msg.ID); err != nil {
		t.Fatalf("mark sent failed: %v", err)
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("sent message must leave the pending set, got %d", len(pending))
	}

	stats, err := repo.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.PendingCount != 0 {
		t.Fatalf("expected 0 pending in stats, got %d", stats.PendingCount)
	}

	if err := repo.MarkSent("missing"); err == nil {
		t.Fatal("expected error for unknown message id")
	}
}

func TestOutboxRepository_PullPendingLimit(t *testing.T) {
	repo := memory.NewOutboxRepository()
	for i := 0; i < 5; i++ {
		if _, err := repo.Enqueue(domain.OutboxMessage{
			AggregateType: domain.AggregateTypeOrder,
			EventType:     domain.EventTypeOrderCreated,
		}); err != nil {
			t.Fatalf("enqueue failed: %v", err)
		}
	}

	pending, err := repo.PullPending(3)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("expected limit to cap the batch at 3, got %d", len(pending))
	}
}
