package memory

import (
	"sync"

	"github.com/fishgalaxy/backend/internal/domain"
)

// sequenceAllocatorInMemory — in-memory счётчик именованных последовательностей.
type sequenceAllocatorInMemory struct {
	mu     sync.Mutex
	values map[string]int64
}

// NewSequenceAllocator возвращает in-memory аллокатор для локальной разработки и тестов.
func NewSequenceAllocator() domain.SequenceAllocator {
	return &sequenceAllocatorInMemory{
		values: make(map[string]int64),
	}
}

// AllocateNext выдаёт следующее значение последовательности под мьютексом:
// первая аллокация нового scope возвращает SequenceBootstrap.
func (a *sequenceAllocatorInMemory) AllocateNext(scope string) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	current, ok := a.values[scope]
	if !ok {
		a.values[scope] = domain.SequenceBootstrap
		return domain.SequenceBootstrap, nil
	}

	current++
	a.values[scope] = current
	return current, nil
}

var _ domain.SequenceAllocator = (*sequenceAllocatorInMemory)(nil)
