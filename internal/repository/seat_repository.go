package repository

import (
	"context"
	"fmt"
	"time"

	"go-ticketing-platform/internal/model"
	apperrors "go-ticketing-platform/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SeatRepository interface {
	BulkCreate(ctx context.Context, seats []*model.Seat) (int, error)
	FindByID(ctx context.Context, id int) (*model.Seat, error)
	ListAvailableByVenue(ctx context.Context, venueID int) ([]*model.Seat, error)

	// Transaction methods
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Seat, error)
	Reserve(ctx context.Context, tx pgx.Tx, id int, userID int) error
	Release(ctx context.Context, tx pgx.Tx, id int) error
	MarkSold(ctx context.Context, tx pgx.Tx, id int) error
}

type SeatRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewSeatRepository(pool *pgxpool.Pool) SeatRepository {
	return &SeatRepositoryImpl{
		pool: pool,
	}
}

const seatColumns = `id, venue_id, block, row, number, seat_type, status,
		reserved_by, reserved_at, version, created_at, updated_at`

func scanSeat(row pgx.Row) (*model.Seat, error) {
	var seat model.Seat
	err := row.Scan(
		&seat.ID,
		&seat.VenueID,
		&seat.Block,
		&seat.Row,
		&seat.Number,
		&seat.SeatType,
		&seat.Status,
		&seat.ReservedBy,
		&seat.ReservedAt,
		&seat.Version,
		&seat.CreatedAt,
		&seat.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

func (r *SeatRepositoryImpl) BulkCreate(ctx context.Context, seats []*model.Seat) (int, error) {
	rows := make([][]interface{}, 0, len(seats))
	for _, seat := range seats {
		rows = append(rows, []interface{}{
			seat.VenueID, seat.Block, seat.Row, seat.Number, seat.SeatType, model.SeatStatusAvailable,
		})
	}

	count, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"seats"},
		[]string{"venue_id", "block", "row", "number", "seat_type", "status"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("bulk create seats: %w", err)
	}

	return int(count), nil
}

func (r *SeatRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Seat, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM seats
		WHERE id = $1
	`, seatColumns)

	seat, err := scanSeat(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrSeatNotFound
		}
		return nil, err
	}

	return seat, nil
}

func (r *SeatRepositoryImpl) ListAvailableByVenue(ctx context.Context, venueID int) ([]*model.Seat, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM seats
		WHERE venue_id = $1 AND status = $2
		ORDER BY block, row, number
	`, seatColumns)

	rows, err := r.pool.Query(ctx, query, venueID, model.SeatStatusAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]*model.Seat, 0)

	for rows.Next() {
		seat, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}

func (r *SeatRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Seat, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM seats
		WHERE id = $1
		FOR UPDATE
	`, seatColumns)

	seat, err := scanSeat(tx.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrSeatNotFound
		}
		return nil, err
	}

	return seat, nil
}

// Reserve 原子地將 available 翻為 reserved 並記錄預約者。
// 前置條件不成立（已被預約或售出）時影響 0 列，回傳 ErrSeatUnavailable。
func (r *SeatRepositoryImpl) Reserve(ctx context.Context, tx pgx.Tx, id int, userID int) error {
	query := `
		UPDATE seats
		SET status = $1, reserved_by = $2, reserved_at = $3,
			version = version + 1, updated_at = $3
		WHERE id = $4 AND status = $5
	`

	result, err := tx.Exec(ctx, query,
		model.SeatStatusReserved, userID, time.Now().UTC(), id, model.SeatStatusAvailable)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrSeatUnavailable
	}

	return nil
}

func (r *SeatRepositoryImpl) Release(ctx context.Context, tx pgx.Tx, id int) error {
	query := `
		UPDATE seats
		SET status = $1, reserved_by = NULL, reserved_at = NULL,
			version = version + 1, updated_at = $2
		WHERE id = $3
	`

	result, err := tx.Exec(ctx, query, model.SeatStatusAvailable, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrSeatNotFound
	}

	return nil
}

func (r *SeatRepositoryImpl) MarkSold(ctx context.Context, tx pgx.Tx, id int) error {
	query := `
		UPDATE seats
		SET status = $1, reserved_by = NULL, reserved_at = NULL,
			version = version + 1, updated_at = $2
		WHERE id = $3
	`

	result, err := tx.Exec(ctx, query, model.SeatStatusSold, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrSeatNotFound
	}

	return nil
}
