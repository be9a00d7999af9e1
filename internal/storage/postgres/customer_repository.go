package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fishgalaxy/backend/internal/domain"
)

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository создаёт PostgreSQL-реализацию CustomerRepository.
func NewCustomerRepository(store *Store) domain.CustomerRepository {
	return &customerRepository{db: store.DB()}
}

const customerColumns = `
	id, name, shop_name, email, mobile, pincode, address, role,
	is_active, profile_img_url, created_at, updated_at
`

func (r *customerRepository) Create(customer domain.Customer) (domain.Customer, error) {
	ctx, cancel := opCtx()
	defer cancel()

	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	if customer.Role == "" {
		customer.Role = domain.RoleUser
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO customers (`+customerColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		customer.ID, customer.Name, customer.ShopName, customer.Email,
		customer.Mobile, customer.Pincode, customer.Address, string(customer.Role),
		customer.IsActive, customer.ProfileImgURL, customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Customer{}, domain.ErrMobileTaken
		}
		return domain.Customer{}, fmt.Errorf("insert customer: %w", err)
	}

	return customer, nil
}

func (r *customerRepository) Get(id string) (domain.Customer, error) {
	return r.getOne(`WHERE id = $1`, id)
}

func (r *customerRepository) GetByMobile(mobile string) (domain.Customer, error) {
	return r.getOne(`WHERE mobile = $1`, mobile)
}

func (r *customerRepository) getOne(where string, arg any) (domain.Customer, error) {
	ctx, cancel := opCtx()
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers `+where, arg)

	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("select customer: %w", err)
	}
	return customer, nil
}

func (r *customerRepository) List(filter domain.CustomerFilter) ([]domain.Customer, int, error) {
	ctx, cancel := opCtx()
	defer cancel()

	conds := []string{"role = 'user'"}
	args := make([]any, 0, 4)

	switch filter.Status {
	case "":
	case "active":
		conds = append(conds, "is_active = TRUE")
	default:
		conds = append(conds, "is_active = FALSE")
	}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		search := fmt.Sprintf(
			"(name ILIKE $%d OR shop_name ILIKE $%d OR email ILIKE $%d", n, n, n)
		if num, err := strconv.ParseInt(filter.Search, 10, 64); err == nil {
			args = append(args, num)
			search += fmt.Sprintf(" OR pincode = $%d", len(args))
			args = append(args, "%"+filter.Search+"%")
			search += fmt.Sprintf(" OR mobile LIKE $%d", len(args))
		}
		search += ")"
		conds = append(conds, search)
	}

	where := "WHERE " + strings.Join(conds, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM customers `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit, filter.Offset())

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT `+customerColumns+`
		FROM customers
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0)
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan customer row: %w", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate customer rows: %w", err)
	}

	return customers, total, nil
}

func (r *customerRepository) Update(customer domain.Customer) (domain.Customer, error) {
	ctx, cancel := opCtx()
	defer cancel()

	customer.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		UPDATE customers
		SET name = $2, shop_name = $3, email = $4, pincode = $5,
		    address = $6, profile_img_url = $7, updated_at = $8
		WHERE id = $1
	`,
		customer.ID, customer.Name, customer.ShopName, customer.Email,
		customer.Pincode, customer.Address, customer.ProfileImgURL, customer.UpdatedAt,
	)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("update customer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Customer{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}

	return r.Get(customer.ID)
}

func (r *customerRepository) SetActive(id string, active bool) (domain.Customer, error) {
	ctx, cancel := opCtx()
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE customers
		SET is_active = $2, updated_at = $3
		WHERE id = $1
	`, id, active, time.Now().UTC())
	if err != nil {
		return domain.Customer{}, fmt.Errorf("set customer active: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Customer{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}

	return r.Get(id)
}

func (r *customerRepository) Delete(id string) (domain.Customer, error) {
	customer, err := r.Get(id)
	if err != nil {
		return domain.Customer{}, err
	}

	ctx, cancel := opCtx()
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id); err != nil {
		return domain.Customer{}, fmt.Errorf("delete customer: %w", err)
	}

	return customer, nil
}

func scanCustomer(row rowScanner) (domain.Customer, error) {
	var (
		customer domain.Customer
		role     string
		email    sql.NullString
	)
	err := row.Scan(
		&customer.ID, &customer.Name, &customer.ShopName, &email,
		&customer.Mobile, &customer.Pincode, &customer.Address, &role,
		&customer.IsActive, &customer.ProfileImgURL, &customer.CreatedAt, &customer.UpdatedAt,
	)
	if err != nil {
		return domain.Customer{}, err
	}
	customer.Email = email.String
	customer.Role = domain.Role(role)
	return customer, nil
}

// isUniqueViolation распознаёт нарушение уникального индекса PostgreSQL.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return false
}

var _ domain.CustomerRepository = (*customerRepository)(nil)
