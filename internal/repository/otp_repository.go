package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stayloft/hotel-bookings/internal/domain"
)

// OTPRepository stores bcrypt-hashed one-time passcodes keyed by email.
// Issuing a code supersedes any earlier codes for the same address.
type OTPRepository interface {
	Issue(ctx context.Context, email, codeHash string) error
	Latest(ctx context.Context, email string) (*domain.OTP, error)
	Consume(ctx context.Context, id int64) error
}

type otpRepository struct {
	pool *pgxpool.Pool
}

func NewOTPRepository(pool *pgxpool.Pool) OTPRepository {
	return &otpRepository{pool: pool}
}

func (r *otpRepository) Issue(ctx context.Context, email, codeHash string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM otps WHERE email = $1`, email); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO otps (email, code_hash) VALUES ($1, $2)`, email, codeHash); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *otpRepository) Latest(ctx context.Context, email string) (*domain.OTP, error) {
	const q = `
		SELECT id, email, code_hash, created_at
		FROM otps
		WHERE lower(email) = lower($1)
		ORDER BY id DESC
		LIMIT 1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var o domain.OTP
	err := r.pool.QueryRow(ctx, q, email).Scan(&o.ID, &o.Email, &o.CodeHash, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *otpRepository) Consume(ctx context.Context, id int64) error {
	const q = `DELETE FROM otps WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
