package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fishgalaxy/backend/internal/domain"
)

type otpRepository struct {
	db *sql.DB
}

// NewOTPRepository создаёт PostgreSQL-реализацию OTPRepository.
func NewOTPRepository(store *Store) domain.OTPRepository {
	return &otpRepository{db: store.DB()}
}

// Save сохраняет код, замещая предыдущий для того же номера: на один номер
// живёт не больше одного кода.
func (r *otpRepository) Save(code domain.OTPCode) error {
	ctx, cancel := opCtx()
	defer cancel()

	now := time.Now().UTC()
	if code.CreatedAt.IsZero() {
		code.CreatedAt = now
	}
	if code.ExpiresAt.IsZero() {
		code.ExpiresAt = code.CreatedAt.Add(domain.OTPTTL)
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO otp_codes (mobile, code, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (mobile) DO UPDATE
		SET code = EXCLUDED.code,
		    created_at = EXCLUDED.created_at,
		    expires_at = EXCLUDED.expires_at
	`, code.Mobile, code.Code, code.CreatedAt, code.ExpiresAt); err != nil {
		return fmt.Errorf("save otp code: %w", err)
	}

	return nil
}

// Get возвращает живой код; истёкший или отсутствующий код — ErrOTPExpired.
func (r *otpRepository) Get(mobile string) (domain.OTPCode, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var code domain.OTPCode
	err := r.db.QueryRowContext(ctx, `
		SELECT mobile, code, created_at, expires_at
		FROM otp_codes
		WHERE mobile = $1 AND expires_at > $2
	`, mobile, time.Now().UTC()).Scan(
		&code.Mobile, &code.Code, &code.CreatedAt, &code.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.OTPCode{}, domain.ErrOTPExpired
		}
		return domain.OTPCode{}, fmt.Errorf("select otp code: %w", err)
	}

	return code, nil
}

func (r *otpRepository) Delete(mobile string) error {
	ctx, cancel := opCtx()
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM otp_codes WHERE mobile = $1`, mobile); err != nil {
		return fmt.Errorf("delete otp code: %w", err)
	}
	return nil
}

// DeleteExpired удаляет истёкшие коды батчами; замена TTL-коллекции источника.
func (r *otpRepository) DeleteExpired(before time.Time, limit int) (int, error) {
	ctx, cancel := opCtx()
	defer cancel()

	if limit <= 0 {
		limit = 100
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM otp_codes
		WHERE mobile IN (
			SELECT mobile FROM otp_codes
			WHERE expires_at <= $1
			ORDER BY expires_at
			LIMIT $2
		)
	`, before, limit)
	if err != nil {
		return 0, fmt.Errorf("delete expired otp codes: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return int(affected), nil
}

var _ domain.OTPRepository = (*otpRepository)(nil)
