package outbox_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fishgalaxy/backend/internal/domain"
	"github.com/fishgalaxy/backend/internal/service/outbox"
)

type fakeOutbox struct {
	mu      sync.Mutex
	pending []domain.OutboxMessage
	sent    []string
	failed  []string
}

var _ domain.OutboxRepository = (*fakeOutbox)(nil)

func (f *fakeOutbox) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, msg)
	return msg, nil
}

func (f *fakeOutbox) PullPending(limit int) ([]domain.OutboxMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > 0 && limit < len(f.pending) {
		return append([]domain.OutboxMessage(nil), f.pending[:limit]...), nil
	}
	return append([]domain.OutboxMessage(nil), f.pending...), nil
}

func (f *fakeOutbox) Stats() (domain.OutboxStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stats := domain.OutboxStats{PendingCount: len(f.pending)}
	if len(f.pending) > 0 {
		stats.OldestPendingAt = time.Now().UTC().Add(-time.Second)
	}
	return stats, nil
}

func (f *fakeOutbox) MarkSent(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeOutbox) MarkFailed(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeOutbox) marks() (sent, failed []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...), append([]string(nil), f.failed...)
}

// fakePublisher отдаёт ошибки из perAttempt по одной на вызов; когда очередь
// пуста, возвращает always.
type fakePublisher struct {
	mu         sync.Mutex
	always     error
	perAttempt []error
	count      int
}

var _ domain.OutboxPublisher = (*fakePublisher)(nil)

func (f *fakePublisher) Publish(domain.OutboxMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.count++
	if len(f.perAttempt) > 0 {
		err := f.perAttempt[0]
		f.perAttempt = f.perAttempt[1:]
		return err
	}
	return f.always
}

func (f *fakePublisher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

func pendingEvent(id string) domain.OutboxMessage {
	return domain.OutboxMessage{
		ID:            id,
		AggregateType: domain.AggregateTypeOrder,
		AggregateID:   "order-" + id,
		EventType:     domain.EventTypeOrderCreated,
		Payload:       []byte(`{"order_id":1000}`),
	}
}

func TestWorker_ProcessOnce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		publisher   *fakePublisher
		wantCalls   int
		wantSent    int
		wantFailed  int
		wantDLQSent int
	}{
		{
			name:      "publishes and marks sent",
			publisher: &fakePublisher{},
			wantCalls: 1,
			wantSent:  1,
		},
		{
			name:      "recovers after transient errors",
			publisher: &fakePublisher{perAttempt: []error{errors.New("broker busy"), errors.New("broker busy"), nil}},
			wantCalls: 3,
			wantSent:  1,
		},
		{
			name:        "exhausts retries, marks failed and duplicates to dlq",
			publisher:   &fakePublisher{always: errors.New("broker down")},
			wantCalls:   3,
			wantFailed:  1,
			wantDLQSent: 1,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &fakeOutbox{pending: []domain.OutboxMessage{pendingEvent("msg-1")}}
			dlq := &fakePublisher{}

			worker := outbox.NewWorker(
				repo,
				tt.publisher,
				outbox.WithDLQPublisher(dlq),
				outbox.WithRetryBaseDelay(0),
				outbox.WithMaxAttempts(3),
			)
			worker.ProcessOnce(context.Background())

			if got := tt.publisher.calls(); got != tt.wantCalls {
				t.Errorf("publish calls = %d, want %d", got, tt.wantCalls)
			}
			sent, failed := repo.marks()
			if len(sent) != tt.wantSent {
				t.Errorf("sent marks = %d, want %d", len(sent), tt.wantSent)
			}
			if len(failed) != tt.wantFailed {
				t.Errorf("failed marks = %d, want %d", len(failed), tt.wantFailed)
			}
			if got := dlq.calls(); got != tt.wantDLQSent {
				t.Errorf("dlq publishes = %d, want %d", got, tt.wantDLQSent)
			}
		})
	}
}

func TestWorker_ProcessOnce_MarksCorrectMessage(t *testing.T) {
	t.Parallel()

	repo := &fakeOutbox{pending: []domain.OutboxMessage{pendingEvent("msg-7")}}
	worker := outbox.NewWorker(repo, &fakePublisher{}, outbox.WithRetryBaseDelay(0))

	worker.ProcessOnce(context.Background())

	sent, _ := repo.marks()
	if len(sent) != 1 || sent[0] != "msg-7" {
		t.Fatalf("sent marks = %v, want [msg-7]", sent)
	}
}

func TestWorker_Run_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	worker := outbox.NewWorker(
		&fakeOutbox{},
		&fakePublisher{},
		outbox.WithPollInterval(5*time.Millisecond),
		outbox.WithRetryBaseDelay(0),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Run(ctx)
	}()

	time.Sleep(15 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("worker did not stop on context cancel")
	}
}
