package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/fishgalaxy/backend/internal/domain"
	"github.com/fishgalaxy/backend/internal/storage/memory"
	"github.com/fishgalaxy/backend/internal/storage/postgres"
)

// Dependencies содержит репозитории приложения. В зависимости от конфигурации
// они обслуживаются либо PostgreSQL, либо in-memory хранилищем.
type Dependencies struct {
	Orders     domain.OrderRepository
	Categories domain.CategoryRepository
	Products   domain.ProductRepository
	Carts      domain.CartRepository
	Customers  domain.CustomerRepository
	Codes      domain.OTPRepository
	Outbox     domain.OutboxRepository
	Allocator  domain.SequenceAllocator

	// Store не nil только при работе с PostgreSQL.
	Store *postgres.Store
}

// NewDependencies строит слой хранения. Пустой DSN означает in-memory режим.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if cfg.DatabaseURI == "" {
		logger.Info("using in-memory storage")
		carts := memory.NewCartRepository()
		return &Dependencies{
			Orders:     memory.NewOrderRepository(),
			Categories: memory.NewCategoryRepository(),
			Products:   memory.NewProductRepository(carts),
			Carts:      carts,
			Customers:  memory.NewCustomerRepository(),
			Codes:      memory.NewOTPRepository(),
			Outbox:     memory.NewOutboxRepository(),
			Allocator:  memory.NewSequenceAllocator(),
		}, nil
	}

	store, err := postgres.Open(ctx, cfg.DatabaseURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &Dependencies{
		Orders:     postgres.NewOrderRepository(store),
		Categories: postgres.NewCategoryRepository(store),
		Products:   postgres.NewProductRepository(store),
		Carts:      postgres.NewCartRepository(store),
		Customers:  postgres.NewCustomerRepository(store),
		Codes:      postgres.NewOTPRepository(store),
		Outbox:     postgres.NewOutboxRepository(store),
		Allocator:  postgres.NewSequenceAllocator(store),
		Store:      store,
	}, nil
}

// Close освобождает ресурсы хранилища.
func (d *Dependencies) Close() {
	if d.Store != nil {
		d.Store.Close()
	}
}
