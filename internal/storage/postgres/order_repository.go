package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fishgalaxy/backend/internal/domain"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

const orderColumns = `
	id, order_id, customer_id, status,
	sub_total_minor, tax_minor, shipping_minor, total_minor, total_quantity,
	addr_name, addr_shop_name, addr_address, addr_pincode, addr_email, addr_mobile,
	notes, delivery_date, created_at, updated_at
`

func (r *orderRepository) Create(order domain.Order) error {
	ctx, cancel := opCtx()
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	`,
		order.ID, order.OrderID, order.CustomerID, string(order.Status),
		order.SubTotalMinor, order.TaxMinor, order.ShippingMinor, order.TotalMinor, order.TotalQuantity,
		order.Address.Name, order.Address.ShopName, order.Address.Address,
		order.Address.Pincode, order.Address.Email, order.Address.Mobile,
		order.Notes, order.DeliveryDate, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i, line := range order.Products {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (
				order_id, position, product_id, name, quantity,
				price_minor, offer_minor, total_minor
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`,
			order.ID, i, line.ProductID, line.Name, line.Quantity,
			line.PriceMinor, line.OfferMinor, line.TotalMinor,
		); err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}

	for _, entry := range order.StatusHistory {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO order_status_history (order_id, status, occurred, description, reason)
			VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT (order_id, status) DO NOTHING
		`,
			order.ID, string(entry.Status), entry.Date, entry.Description, entry.Reason,
		); err != nil {
			return fmt.Errorf("insert status history: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}

	return nil
}

func (r *orderRepository) GetByRef(ref domain.OrderRef) (domain.Order, error) {
	ctx, cancel := opCtx()
	defer cancel()

	return r.getByRef(ctx, ref)
}

func (r *orderRepository) getByRef(ctx context.Context, ref domain.OrderRef) (domain.Order, error) {
	where, arg := refPredicate(ref)

	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE `+where, arg)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	if err := r.loadDetails(ctx, &order); err != nil {
		return domain.Order{}, err
	}

	return order, nil
}

// SetStatus безусловно выставляет статус и дописывает запись истории одним
// атомарным INSERT ... ON CONFLICT DO NOTHING: две конкурентные смены на один
// и тот же статус не породят дубликат, сохранится описание первой.
func (r *orderRepository) SetStatus(ref domain.OrderRef, entry domain.StatusEntry) (domain.Order, error) {
	ctx, cancel := opCtx()
	defer cancel()

	if entry.Date.IsZero() {
		entry.Date = time.Now().UTC()
	}

	where, arg := refPredicate(ref)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var orderID string
	err = tx.QueryRowContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE `+strings.Replace(where, "$1", "$3", 1)+`
		RETURNING id
	`, string(entry.Status), time.Now().UTC(), arg).Scan(&orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("update order status: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO order_status_history (order_id, status, occurred, description, reason)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (order_id, status) DO NOTHING
	`, orderID, string(entry.Status), entry.Date, entry.Description, entry.Reason); err != nil {
		return domain.Order{}, fmt.Errorf("append status history: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("commit status update: %w", err)
	}

	return r.getByRef(ctx, domain.OrderRef{ID: orderID})
}

func (r *orderRepository) List(filter domain.OrderFilter) ([]domain.Order, int, error) {
	ctx, cancel := opCtx()
	defer cancel()

	where, args := buildOrderWhere(filter)

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset())
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT `+orderColumns+`
		FROM orders
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	for i := range orders {
		if err := r.loadDetails(ctx, &orders[i]); err != nil {
			return nil, 0, err
		}
	}

	return orders, total, nil
}

func (r *orderRepository) Clear() error {
	ctx, cancel := opCtx()
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM orders`); err != nil {
		return fmt.Errorf("clear orders: %w", err)
	}
	return nil
}

// refPredicate переводит OrderRef в условие WHERE с одним аргументом.
func refPredicate(ref domain.OrderRef) (string, any) {
	if ref.ID != "" {
		return "id = $1", ref.ID
	}
	return "order_id = $1", ref.OrderID
}

// buildOrderWhere собирает WHERE по спецификации фильтра.
func buildOrderWhere(filter domain.OrderFilter) (string, []any) {
	conds := make([]string, 0, 4)
	args := make([]any, 0, 4)

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		add("status = ANY($%d)", statuses)
	}
	if !filter.StartingDate.IsZero() {
		add("created_at >= $%d", filter.StartingDate)
	}
	if !filter.EndingDate.IsZero() {
		add("created_at <= $%d", filter.EndingDate)
	}

	switch {
	case filter.Search.ID != "":
		add("id = $%d", filter.Search.ID)
	case filter.Search.OrderID != 0:
		add("order_id = $%d", filter.Search.OrderID)
	case filter.Search.Text != "":
		args = append(args, "%"+filter.Search.Text+"%")
		conds = append(conds, fmt.Sprintf(
			"(addr_name ILIKE $%d OR addr_shop_name ILIKE $%d)", len(args), len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order  domain.Order
		status string
	)
	err := row.Scan(
		&order.ID, &order.OrderID, &order.CustomerID, &status,
		&order.SubTotalMinor, &order.TaxMinor, &order.ShippingMinor,
		&order.TotalMinor, &order.TotalQuantity,
		&order.Address.Name, &order.Address.ShopName, &order.Address.Address,
		&order.Address.Pincode, &order.Address.Email, &order.Address.Mobile,
		&order.Notes, &order.DeliveryDate, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	order.Status = domain.OrderStatus(status)
	return order, nil
}

func (r *orderRepository) loadDetails(ctx context.Context, order *domain.Order) error {
	lines, err := r.loadLines(ctx, order.ID)
	if err != nil {
		return err
	}
	order.Products = lines

	history, err := r.loadHistory(ctx, order.ID)
	if err != nil {
		return err
	}
	order.StatusHistory = history

	return nil
}

func (r *orderRepository) loadLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, name, quantity, price_minor, offer_minor, total_minor
		FROM order_lines
		WHERE order_id = $1
		ORDER BY position ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.OrderLine, 0)
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(
			&line.ProductID, &line.Name, &line.Quantity,
			&line.PriceMinor, &line.OfferMinor, &line.TotalMinor,
		); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}

	return lines, nil
}

func (r *orderRepository) loadHistory(ctx context.Context, orderID string) ([]domain.StatusEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, occurred, description, reason
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY occurred ASC, status ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load status history: %w", err)
	}
	defer rows.Close()

	history := make([]domain.StatusEntry, 0)
	for rows.Next() {
		var (
			entry  domain.StatusEntry
			status string
		)
		if err := rows.Scan(&status, &entry.Date, &entry.Description, &entry.Reason); err != nil {
			return nil, fmt.Errorf("scan status history: %w", err)
		}
		entry.Status = domain.OrderStatus(status)
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status history: %w", err)
	}

	return history, nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
