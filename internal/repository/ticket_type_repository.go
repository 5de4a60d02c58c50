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

type TicketTypeRepository interface {
	FindByID(ctx context.Context, id int) (*model.TicketType, error)
	ListByEventID(ctx context.Context, eventID int) ([]*model.TicketType, error)

	// Transaction methods
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.TicketType, error)
	IncrementSold(ctx context.Context, tx pgx.Tx, id int, quantity int) error
	DecrementSold(ctx context.Context, tx pgx.Tx, id int, quantity int) error
}

type TicketTypeRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketTypeRepository(pool *pgxpool.Pool) TicketTypeRepository {
	return &TicketTypeRepositoryImpl{
		pool: pool,
	}
}

const ticketTypeColumns = `id, event_id, name, kind, price, total_quantity,
		sold_quantity, sale_start, sale_end, created_at, updated_at`

func scanTicketType(row pgx.Row) (*model.TicketType, error) {
	var tt model.TicketType
	err := row.Scan(
		&tt.ID,
		&tt.EventID,
		&tt.Name,
		&tt.Kind,
		&tt.Price,
		&tt.TotalQuantity,
		&tt.SoldQuantity,
		&tt.SaleStart,
		&tt.SaleEnd,
		&tt.CreatedAt,
		&tt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

func (r *TicketTypeRepositoryImpl) FindByID(ctx context.Context, id int) (*model.TicketType, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM ticket_types
		WHERE id = $1
	`, ticketTypeColumns)

	tt, err := scanTicketType(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketTypeNotFound
		}
		return nil, err
	}

	return tt, nil
}

func (r *TicketTypeRepositoryImpl) ListByEventID(ctx context.Context, eventID int) ([]*model.TicketType, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM ticket_types
		WHERE event_id = $1
		ORDER BY price DESC
	`, ticketTypeColumns)

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ticketTypes := make([]*model.TicketType, 0)

	for rows.Next() {
		tt, err := scanTicketType(rows)
		if err != nil {
			return nil, err
		}
		ticketTypes = append(ticketTypes, tt)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ticketTypes, nil
}

func (r *TicketTypeRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.TicketType, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM ticket_types
		WHERE id = $1
		FOR UPDATE
	`, ticketTypeColumns)

	tt, err := scanTicketType(tx.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketTypeNotFound
		}
		return nil, err
	}

	return tt, nil
}

// IncrementSold 原子地加總已售數量，超賣時影響 0 列並回傳 ErrInsufficientInventory
func (r *TicketTypeRepositoryImpl) IncrementSold(ctx context.Context, tx pgx.Tx, id int, quantity int) error {
	query := `
		UPDATE ticket_types
		SET sold_quantity = sold_quantity + $1, updated_at = $2
		WHERE id = $3 AND sold_quantity + $1 <= total_quantity
	`

	result, err := tx.Exec(ctx, query, quantity, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrInsufficientInventory
	}

	return nil
}

func (r *TicketTypeRepositoryImpl) DecrementSold(ctx context.Context, tx pgx.Tx, id int, quantity int) error {
	query := `
		UPDATE ticket_types
		SET sold_quantity = GREATEST(sold_quantity - $1, 0), updated_at = $2
		WHERE id = $3
	`

	result, err := tx.Exec(ctx, query, quantity, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketTypeNotFound
	}

	return nil
}
