package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fishgalaxy/backend/internal/domain"
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт PostgreSQL-реализацию ProductRepository.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{db: store.DB()}
}

const productColumns = `
	id, name, description, category_id, image_url, more_image_url,
	price_minor, offer_minor, status, is_latest_product, is_offer_product,
	is_active, created_at, updated_at
`

func (r *productRepository) Create(product domain.Product) (domain.Product, error) {
	ctx, cancel := opCtx()
	defer cancel()

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	product.IsActive = true
	if product.Status == "" {
		product.Status = domain.ProductStatusStocked
	}

	moreImages, err := json.Marshal(product.MoreImageURL)
	if err != nil {
		return domain.Product{}, fmt.Errorf("encode product images: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		product.ID, product.Name, product.Description, nullableID(product.CategoryID),
		product.ImageURL, moreImages,
		product.PriceMinor, product.OfferMinor, string(product.Status),
		product.IsLatestProduct, product.IsOfferProduct,
		product.IsActive, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}

	return product, nil
}

func (r *productRepository) Get(id string) (domain.Product, error) {
	ctx, cancel := opCtx()
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, id)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}
	return product, nil
}

func (r *productRepository) List(filter domain.ProductFilter) ([]domain.Product, int, error) {
	ctx, cancel := opCtx()
	defer cancel()

	conds := []string{"is_active = TRUE"}
	args := make([]any, 0, 6)

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.OnlyStocked {
		conds = append(conds, "status = 'stocked'")
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.CategoryID != "" {
		add("category_id = $%d", filter.CategoryID)
	}
	if filter.Search != "" {
		add("name ILIKE $%d", "%"+filter.Search+"%")
	}
	if filter.MaxOfferMinor > 0 {
		add("offer_minor >= $%d", filter.MinOfferMinor)
		add("offer_minor <= $%d", filter.MaxOfferMinor)
	}
	if !filter.StartingDate.IsZero() {
		add("created_at >= $%d", filter.StartingDate)
	}
	if !filter.EndingDate.IsZero() {
		add("created_at <= $%d", filter.EndingDate)
	}
	if filter.OnlyLatest {
		conds = append(conds, "is_latest_product = TRUE")
	}
	if filter.OnlyOffers {
		conds = append(conds, "is_offer_product = TRUE")
	}

	where := "WHERE " + strings.Join(conds, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit, filter.Offset())

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT `+productColumns+`
		FROM products
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, where, productOrderBy(filter.Sort), len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, total, nil
}

// productOrderBy переводит вариант сортировки витрины в ORDER BY.
func productOrderBy(sort domain.ProductSort) string {
	switch sort {
	case domain.ProductSortPriceAsc:
		return "offer_minor ASC"
	case domain.ProductSortPriceDesc:
		return "offer_minor DESC"
	case domain.ProductSortLatest:
		return "is_latest_product DESC, created_at DESC"
	case domain.ProductSortOffers:
		return "is_offer_product DESC, created_at DESC"
	default:
		return "created_at DESC"
	}
}

func (r *productRepository) Update(product domain.Product) (domain.Product, error) {
	ctx, cancel := opCtx()
	defer cancel()

	product.UpdatedAt = time.Now().UTC()

	moreImages, err := json.Marshal(product.MoreImageURL)
	if err != nil {
		return domain.Product{}, fmt.Errorf("encode product images: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, description = $3, category_id = $4, image_url = $5,
		    more_image_url = $6, price_minor = $7, offer_minor = $8, status = $9,
		    is_latest_product = $10, is_offer_product = $11, updated_at = $12
		WHERE id = $1
	`,
		product.ID, product.Name, product.Description, nullableID(product.CategoryID),
		product.ImageURL, moreImages,
		product.PriceMinor, product.OfferMinor, string(product.Status),
		product.IsLatestProduct, product.IsOfferProduct, product.UpdatedAt,
	)
	if err != nil {
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Product{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.Product{}, domain.ErrProductNotFound
	}

	return r.Get(product.ID)
}

// Deactivate мягко удаляет товар и выкидывает его из всех корзин в одной
// транзакции: откат любого шага откатывает оба изменения.
func (r *productRepository) Deactivate(id string) (domain.Product, error) {
	ctx, cancel := opCtx()
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Product{}, fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET is_active = FALSE, updated_at = $2
		WHERE id = $1
	`, id, time.Now().UTC())
	if err != nil {
		return domain.Product{}, fmt.Errorf("deactivate product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Product{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		err = domain.ErrProductNotFound
		return domain.Product{}, err
	}

	if _, err = tx.ExecContext(ctx, `
		DELETE FROM cart_items WHERE product_id = $1
	`, id); err != nil {
		return domain.Product{}, fmt.Errorf("pull product from carts: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return domain.Product{}, fmt.Errorf("commit deactivate: %w", err)
	}

	return r.Get(id)
}

func (r *productRepository) ReassignCategory(fromCategoryID, toCategoryID string) error {
	ctx, cancel := opCtx()
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET category_id = $2, updated_at = $3
		WHERE category_id = $1
	`, fromCategoryID, toCategoryID, time.Now().UTC()); err != nil {
		return fmt.Errorf("reassign category: %w", err)
	}

	return nil
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		product    domain.Product
		categoryID sql.NullString
		status     string
		moreImages []byte
	)
	err := row.Scan(
		&product.ID, &product.Name, &product.Description, &categoryID,
		&product.ImageURL, &moreImages,
		&product.PriceMinor, &product.OfferMinor, &status,
		&product.IsLatestProduct, &product.IsOfferProduct,
		&product.IsActive, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return domain.Product{}, err
	}
	product.CategoryID = categoryID.String
	product.Status = domain.ProductStatus(status)
	if len(moreImages) > 0 {
		if err := json.Unmarshal(moreImages, &product.MoreImageURL); err != nil {
			return domain.Product{}, fmt.Errorf("decode product images: %w", err)
		}
	}
	return product, nil
}

// nullableID переводит пустую строку в NULL для внешних ключей.
func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}

var _ domain.ProductRepository = (*productRepository)(nil)
