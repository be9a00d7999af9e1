package postgres

import (
	"database/sql"
	"fmt"

	"github.com/fishgalaxy/backend/internal/domain"
)

type sequenceAllocator struct {
	db *sql.DB
}

// NewSequenceAllocator создаёт PostgreSQL-реализацию SequenceAllocator.
func NewSequenceAllocator(store *Store) domain.SequenceAllocator {
	return &sequenceAllocator{db: store.DB()}
}

// AllocateNext выдаёт следующее значение последовательности одним атомарным
// оператором: upsert с инкрементом и RETURNING. Две конкурентные аллокации
// никогда не получат одно и то же значение — гонку разруливает БД.
func (a *sequenceAllocator) AllocateNext(scope string) (int64, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var value int64
	err := a.db.QueryRowContext(ctx, `
		INSERT INTO sequences (scope, value)
		VALUES ($1, $2)
		ON CONFLICT (scope) DO UPDATE
		SET value = sequences.value + 1
		RETURNING value
	`, scope, domain.SequenceBootstrap).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrAllocationFailed, err)
	}

	return value, nil
}

var _ domain.SequenceAllocator = (*sequenceAllocator)(nil)
