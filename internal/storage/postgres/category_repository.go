package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fishgalaxy/backend/internal/domain"
)

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository создаёт PostgreSQL-реализацию CategoryRepository.
func NewCategoryRepository(store *Store) domain.CategoryRepository {
	return &categoryRepository{db: store.DB()}
}

const categoryColumns = `id, name, img_url, display_order, is_active, created_at, updated_at`

func (r *categoryRepository) Create(category domain.Category) (domain.Category, error) {
	ctx, cancel := opCtx()
	defer cancel()

	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if category.CreatedAt.IsZero() {
		category.CreatedAt = now
	}
	category.UpdatedAt = now

	// Позиция назначается в той же команде, что и вставка: новая категория
	// встаёт в конец списка даже при конкурентном создании.
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES ($1, $2, $3,
			(SELECT COALESCE(MAX(display_order), 0) + 1 FROM categories),
			$4, $5, $6)
		RETURNING display_order
	`,
		category.ID, category.Name, category.ImgURL,
		category.IsActive, category.CreatedAt, category.UpdatedAt,
	).Scan(&category.Order)
	if err != nil {
		return domain.Category{}, fmt.Errorf("insert category: %w", err)
	}

	return category, nil
}

func (r *categoryRepository) Get(id string) (domain.Category, error) {
	ctx, cancel := opCtx()
	defer cancel()

	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *categoryRepository) GetByName(name string) (domain.Category, error) {
	ctx, cancel := opCtx()
	defer cancel()

	return r.getOne(ctx, `WHERE name = $1`, name)
}

func (r *categoryRepository) getOne(ctx context.Context, where string, arg any) (domain.Category, error) {
	var category domain.Category
	err := r.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories `+where, arg,
	).Scan(
		&category.ID, &category.Name, &category.ImgURL, &category.Order,
		&category.IsActive, &category.CreatedAt, &category.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Category{}, domain.ErrCategoryNotFound
		}
		return domain.Category{}, fmt.Errorf("select category: %w", err)
	}
	return category, nil
}

func (r *categoryRepository) List(filter domain.CategoryFilter) ([]domain.Category, int, error) {
	ctx, cancel := opCtx()
	defer cancel()

	conds := make([]string, 0, 2)
	args := make([]any, 0, 2)

	switch filter.Status {
	case "":
	case "active":
		conds = append(conds, "is_active = TRUE")
	default:
		conds = append(conds, "is_active = FALSE")
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit, filter.Offset())

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT `+categoryColumns+`
		FROM categories
		%s
		ORDER BY display_order ASC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(
			&category.ID, &category.Name, &category.ImgURL, &category.Order,
			&category.IsActive, &category.CreatedAt, &category.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate category rows: %w", err)
	}

	return categories, total, nil
}

func (r *categoryRepository) Update(category domain.Category) (domain.Category, error) {
	ctx, cancel := opCtx()
	defer cancel()

	category.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		UPDATE categories
		SET name = $2, img_url = $3, is_active = $4, updated_at = $5
		WHERE id = $1
	`, category.ID, category.Name, category.ImgURL, category.IsActive, category.UpdatedAt)
	if err != nil {
		return domain.Category{}, fmt.Errorf("update category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Category{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.Category{}, domain.ErrCategoryNotFound
	}

	return r.getOne(ctx, `WHERE id = $1`, category.ID)
}

func (r *categoryRepository) Delete(id string) (domain.Category, error) {
	ctx, cancel := opCtx()
	defer cancel()

	category, err := r.getOne(ctx, `WHERE id = $1`, id)
	if err != nil {
		return domain.Category{}, err
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return domain.Category{}, fmt.Errorf("delete category: %w", err)
	}

	return category, nil
}

// Reorder выставляет каждой перечисленной категории позицию index+1 одним
// батчем в транзакции. Категории вне списка не трогаются; неизвестный ID
// откатывает весь батч.
func (r *categoryRepository) Reorder(ids []string) error {
	ctx, cancel := opCtx()
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	for i, id := range ids {
		res, err := tx.ExecContext(ctx, `
			UPDATE categories SET display_order = $2, updated_at = $3 WHERE id = $1
		`, id, i+1, time.Now().UTC())
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("reorder category %s: %w", id, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("reorder category %s: %w", id, err)
		}
		if affected == 0 {
			_ = tx.Rollback()
			return domain.ErrCategoryNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}

	return nil
}

var _ domain.CategoryRepository = (*categoryRepository)(nil)
