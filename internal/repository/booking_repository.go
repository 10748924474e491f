package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stayloft/hotel-bookings/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	FindByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error)
	Cancel(ctx context.Context, id int64) error
}

type bookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{pool: pool}
}

const bookingCols = `id, user_id, room_id, start_date, end_date, guest_name, government_id, phone_number, amount, payment_id, created_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID, &b.UserID, &b.RoomID, &b.StartDate, &b.EndDate,
		&b.GuestName, &b.GovernmentID, &b.PhoneNumber, &b.Amount, &b.PaymentID,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a booking after re-checking the overlap condition under a
// row lock on the room. Locking the room serializes concurrent attempts for
// the same room, so two requests cannot both pass the overlap check before
// either commits. The room's availability flag is flipped in the same
// transaction.
func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var roomID int64
	err = tx.QueryRow(ctx, `SELECT id FROM rooms WHERE id = $1 FOR UPDATE`, b.RoomID).Scan(&roomID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	// Half-open [start, end): a stay ending the day another begins is not
	// a conflict.
	var conflict bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE room_id = $1 AND start_date < $3 AND end_date > $2
		)`, b.RoomID, b.StartDate, b.EndDate).Scan(&conflict)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrRoomAlreadyBooked
	}

	const insert = `
		INSERT INTO bookings (user_id, room_id, start_date, end_date, guest_name, government_id, phone_number, amount, payment_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + bookingCols

	created, err := scanBooking(tx.QueryRow(ctx, insert,
		b.UserID, b.RoomID, b.StartDate, b.EndDate,
		b.GuestName, b.GovernmentID, b.PhoneNumber, b.Amount, b.PaymentID))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicatePayment
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE rooms SET available = false, updated_at = now() WHERE id = $1`, b.RoomID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id int64) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

func (r *bookingRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = `
		SELECT ` + bookingCols + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.RoomID, &b.StartDate, &b.EndDate,
			&b.GuestName, &b.GovernmentID, &b.PhoneNumber, &b.Amount, &b.PaymentID,
			&b.CreatedAt,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}

// Cancel removes the booking and restores the room's availability flag in
// one transaction.
func (r *bookingRepository) Cancel(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var roomID int64
	err = tx.QueryRow(ctx, `DELETE FROM bookings WHERE id = $1 RETURNING room_id`, id).Scan(&roomID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE rooms SET available = true, updated_at = now() WHERE id = $1`, roomID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
