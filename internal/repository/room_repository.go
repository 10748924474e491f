package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stayloft/hotel-bookings/internal/domain"
)

type RoomRepository interface {
	Create(ctx context.Context, req *domain.CreateRoomRequest) (*domain.Room, error)
	FindByID(ctx context.Context, id int64) (*domain.Room, error)
	List(ctx context.Context, limit, offset int) ([]domain.Room, error)
	Update(ctx context.Context, id int64, req *domain.UpdateRoomRequest) (*domain.Room, error)
	Delete(ctx context.Context, id int64) error
}

type roomRepository struct {
	pool *pgxpool.Pool
}

func NewRoomRepository(pool *pgxpool.Pool) RoomRepository {
	return &roomRepository{pool: pool}
}

const roomCols = `id, name, description, price, category, has_ac, has_parking, available, created_at, updated_at`

func scanRoom(row pgx.Row) (*domain.Room, error) {
	var rm domain.Room
	err := row.Scan(
		&rm.ID, &rm.Name, &rm.Description, &rm.Price, &rm.Category,
		&rm.HasAC, &rm.HasParking, &rm.Available, &rm.CreatedAt, &rm.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rm, nil
}

func (r *roomRepository) Create(ctx context.Context, req *domain.CreateRoomRequest) (*domain.Room, error) {
	const q = `
		INSERT INTO rooms (name, description, price, category, has_ac, has_parking, available)
		VALUES ($1, $2, $3, $4, $5, $6, true)
		RETURNING ` + roomCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanRoom(r.pool.QueryRow(ctx, q,
		req.Name, req.Description, req.Price, req.Category, req.HasAC, req.HasParking))
}

func (r *roomRepository) FindByID(ctx context.Context, id int64) (*domain.Room, error) {
	const q = `SELECT ` + roomCols + ` FROM rooms WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rm, err := scanRoom(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return rm, err
}

func (r *roomRepository) List(ctx context.Context, limit, offset int) ([]domain.Room, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	const q = `
		SELECT ` + roomCols + `
		FROM rooms
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		var rm domain.Room
		if err := rows.Scan(
			&rm.ID, &rm.Name, &rm.Description, &rm.Price, &rm.Category,
			&rm.HasAC, &rm.HasParking, &rm.Available, &rm.CreatedAt, &rm.UpdatedAt,
		); err != nil {
			return nil, err
		}
		rooms = append(rooms, rm)
	}

	return rooms, rows.Err()
}

func (r *roomRepository) Update(ctx context.Context, id int64, req *domain.UpdateRoomRequest) (*domain.Room, error) {
	const q = `
		UPDATE rooms
		SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			price = COALESCE($4, price),
			category = COALESCE($5, category),
			has_ac = COALESCE($6, has_ac),
			has_parking = COALESCE($7, has_parking),
			available = COALESCE($8, available),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + roomCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rm, err := scanRoom(r.pool.QueryRow(ctx, q, id,
		req.Name, req.Description, req.Price, req.Category, req.HasAC, req.HasParking, req.Available))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rm, err
}

func (r *roomRepository) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM rooms WHERE id = $1`
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
