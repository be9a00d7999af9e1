package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fishgalaxy/backend/internal/domain"
)

// outboxRecord — запись outbox вместе со статусом доставки.
type outboxRecord struct {
	msg       domain.OutboxMessage
	status    string
	attempts  int
	createdAt time.Time
}

// outboxRepositoryInMemory — простая in-memory реализация OutboxRepository.
type outboxRepositoryInMemory struct {
	mu    sync.RWMutex
	items []*outboxRecord
	byID  map[string]*outboxRecord
}

// NewOutboxRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOutboxRepository() domain.OutboxRepository {
	return &outboxRepositoryInMemory{
		byID: make(map[string]*outboxRecord),
	}
}

func (r *outboxRepositoryInMemory) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	record := &outboxRecord{
		msg:       msg,
		status:    "pending",
		createdAt: time.Now().UTC(),
	}
	r.items = append(r.items, record)
	r.byID[msg.ID] = record
	return msg, nil
}

// PullPending возвращает не более limit ожидающих сообщений в порядке постановки.
func (r *outboxRepositoryInMemory) PullPending(limit int) ([]domain.OutboxMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	result := make([]domain.OutboxMessage, 0, limit)
	for _, record := range r.items {
		if record.status != "pending" {
			continue
		}
		result = append(result, record.msg)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (r *outboxRepositoryInMemory) Stats() (domain.OutboxStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats domain.OutboxStats
	for _, record := range r.items {
		if record.status != "pending" {
			continue
		}
		stats.PendingCount++
		if stats.OldestPendingAt.IsZero() || record.createdAt.Before(stats.OldestPendingAt) {
			stats.OldestPendingAt = record.createdAt
		}
	}
	return stats, nil
}

func (r *outboxRepositoryInMemory) MarkSent(id string) error {
	return r.markStatus(id, "sent")
}

func (r *outboxRepositoryInMemory) MarkFailed(id string) error {
	return r.markStatus(id, "failed")
}

func (r *outboxRepositoryInMemory) markStatus(id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("outbox message not found: %s", id)
	}
	record.status = status
	record.attempts++
	return nil
}

var _ domain.OutboxRepository = (*outboxRepositoryInMemory)(nil)
