package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fishgalaxy/backend/internal/domain"
)

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository создаёт PostgreSQL-реализацию CartRepository.
func NewCartRepository(store *Store) domain.CartRepository {
	return &cartRepository{db: store.DB()}
}

func (r *cartRepository) Get(customerID string) (domain.Cart, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var cart domain.Cart
	err := r.db.QueryRowContext(ctx, `
		SELECT id, customer_id, updated_at
		FROM carts
		WHERE customer_id = $1
	`, customerID).Scan(&cart.ID, &cart.CustomerID, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Отсутствие корзины не ошибка: возвращаем пустую.
			return domain.Cart{CustomerID: customerID}, nil
		}
		return domain.Cart{}, fmt.Errorf("select cart: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, quantity
		FROM cart_items
		WHERE cart_id = $1
	`, cart.ID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return domain.Cart{}, fmt.Errorf("scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("iterate cart items: %w", err)
	}

	return cart, nil
}

func (r *cartRepository) Upsert(cart domain.Cart) error {
	ctx, cancel := opCtx()
	defer cancel()

	if cart.ID == "" {
		cart.ID = uuid.NewString()
	}
	cart.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO carts (id, customer_id, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id) DO UPDATE SET updated_at = EXCLUDED.updated_at
		RETURNING id
	`, cart.ID, cart.CustomerID, cart.UpdatedAt).Scan(&cart.ID)
	if err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cart.ID); err != nil {
		return fmt.Errorf("clear cart items: %w", err)
	}

	for _, item := range cart.Items {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO cart_items (cart_id, product_id, quantity)
			VALUES ($1, $2, $3)
		`, cart.ID, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("insert cart item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit cart upsert: %w", err)
	}

	return nil
}

func (r *cartRepository) CountWithProduct(productID string) (int, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var count int
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT cart_id)
		FROM cart_items
		WHERE product_id = $1
	`, productID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count carts with product: %w", err)
	}

	return count, nil
}

var _ domain.CartRepository = (*cartRepository)(nil)
