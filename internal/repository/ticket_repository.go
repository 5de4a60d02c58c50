package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-ticketing-platform/internal/model"
	apperrors "go-ticketing-platform/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation Postgres unique_violation SQLSTATE
const uniqueViolation = "23505"

type TicketRepository interface {
	FindByTicketNumber(ctx context.Context, ticketNumber string) (*model.Ticket, error)
	ListByUserID(ctx context.Context, userID int) ([]*model.Ticket, error)
	ListByOrderID(ctx context.Context, orderID int) ([]*model.Ticket, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error)
	FindByTicketNumberWithLock(ctx context.Context, tx pgx.Tx, ticketNumber string) (*model.Ticket, error)
	ListByOrderIDWithLock(ctx context.Context, tx pgx.Tx, orderID int) ([]*model.Ticket, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.TicketStatus) error

	// QR render pipeline
	SaveQRPng(ctx context.Context, ticketNumber string, png []byte) error
	GetQRPng(ctx context.Context, ticketNumber string) ([]byte, error)
}

type TicketRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &TicketRepositoryImpl{
		pool: pool,
	}
}

const ticketColumns = `id, order_id, seat_id, ticket_type_id, ticket_number,
		credential, status, created_at, updated_at`

func scanTicket(row pgx.Row) (*model.Ticket, error) {
	var ticket model.Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.OrderID,
		&ticket.SeatID,
		&ticket.TicketTypeID,
		&ticket.TicketNumber,
		&ticket.Credential,
		&ticket.Status,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// Create 發行一張票。同一座位已有未取消票券時
// （tickets.seat_id 部分唯一索引）回傳 ErrSeatAlreadyTicketed。
func (r *TicketRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error) {
	query := fmt.Sprintf(`
		INSERT INTO tickets (order_id, seat_id, ticket_type_id, ticket_number, credential, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s
	`, ticketColumns)

	created, err := scanTicket(tx.QueryRow(ctx, query,
		ticket.OrderID, ticket.SeatID, ticket.TicketTypeID,
		ticket.TicketNumber, ticket.Credential, ticket.Status,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "uq_tickets_seat_active" {
			return nil, apperrors.ErrSeatAlreadyTicketed
		}
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	return created, nil
}

func (r *TicketRepositoryImpl) FindByTicketNumber(ctx context.Context, ticketNumber string) (*model.Ticket, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tickets
		WHERE ticket_number = $1
	`, ticketColumns)

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, ticketNumber))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	return ticket, nil
}

func (r *TicketRepositoryImpl) FindByTicketNumberWithLock(ctx context.Context, tx pgx.Tx, ticketNumber string) (*model.Ticket, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tickets
		WHERE ticket_number = $1
		FOR UPDATE
	`, ticketColumns)

	ticket, err := scanTicket(tx.QueryRow(ctx, query, ticketNumber))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	return ticket, nil
}

func (r *TicketRepositoryImpl) ListByUserID(ctx context.Context, userID int) ([]*model.Ticket, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tickets
		WHERE order_id IN (SELECT id FROM orders WHERE user_id = $1)
		ORDER BY created_at DESC
	`, ticketColumns)

	return r.queryTickets(ctx, query, userID)
}

func (r *TicketRepositoryImpl) ListByOrderID(ctx context.Context, orderID int) ([]*model.Ticket, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tickets
		WHERE order_id = $1
		ORDER BY created_at
	`, ticketColumns)

	return r.queryTickets(ctx, query, orderID)
}

func (r *TicketRepositoryImpl) queryTickets(ctx context.Context, query string, arg any) ([]*model.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]*model.Ticket, 0)

	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}

func (r *TicketRepositoryImpl) ListByOrderIDWithLock(ctx context.Context, tx pgx.Tx, orderID int) ([]*model.Ticket, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tickets
		WHERE order_id = $1
		ORDER BY created_at
		FOR UPDATE
	`, ticketColumns)

	rows, err := tx.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]*model.Ticket, 0)

	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}

func (r *TicketRepositoryImpl) UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.TicketStatus) error {
	query := `
		UPDATE tickets
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := tx.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketNotFound
	}

	return nil
}

func (r *TicketRepositoryImpl) GetQRPng(ctx context.Context, ticketNumber string) ([]byte, error) {
	query := `
		SELECT qr_png
		FROM tickets
		WHERE ticket_number = $1
	`

	var png []byte
	err := r.pool.QueryRow(ctx, query, ticketNumber).Scan(&png)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	return png, nil
}

func (r *TicketRepositoryImpl) SaveQRPng(ctx context.Context, ticketNumber string, png []byte) error {
	query := `
		UPDATE tickets
		SET qr_png = $1, updated_at = $2
		WHERE ticket_number = $3
	`

	result, err := r.pool.Exec(ctx, query, png, time.Now().UTC(), ticketNumber)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrTicketNotFound
	}

	return nil
}
