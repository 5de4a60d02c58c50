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

type OrderRepository interface {
	FindByID(ctx context.Context, id int) (*model.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error)
	ListByUserID(ctx context.Context, userID int) ([]*model.Order, error)
	FindPayment(ctx context.Context, orderID int) (*model.Payment, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, order *model.Order) (*model.Order, error)
	CreatePayment(ctx context.Context, tx pgx.Tx, payment *model.Payment) (*model.Payment, error)
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Order, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.OrderStatus) (*model.Order, error)
}

type OrderRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &OrderRepositoryImpl{
		pool: pool,
	}
}

const orderColumns = `id, order_number, user_id, event_id, total_amount, status, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var order model.Order
	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.UserID,
		&order.EventID,
		&order.TotalAmount,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, order *model.Order) (*model.Order, error) {
	query := fmt.Sprintf(`
		INSERT INTO orders (order_number, user_id, event_id, total_amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s
	`, orderColumns)

	created, err := scanOrder(tx.QueryRow(ctx, query,
		order.OrderNumber, order.UserID, order.EventID, order.TotalAmount, order.Status,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return created, nil
}

func (r *OrderRepositoryImpl) CreatePayment(ctx context.Context, tx pgx.Tx, payment *model.Payment) (*model.Payment, error) {
	query := `
		INSERT INTO payments (order_id, method, amount, status, transaction_id, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, order_id, method, amount, status, transaction_id, paid_at, created_at
	`

	err := tx.QueryRow(ctx, query,
		payment.OrderID, payment.Method, payment.Amount, payment.Status,
		payment.TransactionID, payment.PaidAt,
	).Scan(
		&payment.ID,
		&payment.OrderID,
		&payment.Method,
		&payment.Amount,
		&payment.Status,
		&payment.TransactionID,
		&payment.PaidAt,
		&payment.CreatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	return payment, nil
}

func (r *OrderRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Order, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		WHERE id = $1
	`, orderColumns)

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, err
	}

	return order, nil
}

func (r *OrderRepositoryImpl) FindByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		WHERE order_number = $1
	`, orderColumns)

	order, err := scanOrder(r.pool.QueryRow(ctx, query, orderNumber))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, err
	}

	return order, nil
}

func (r *OrderRepositoryImpl) ListByUserID(ctx context.Context, userID int) ([]*model.Order, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, orderColumns)

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*model.Order, 0)

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *OrderRepositoryImpl) FindPayment(ctx context.Context, orderID int) (*model.Payment, error) {
	query := `
		SELECT id, order_id, method, amount, status, transaction_id, paid_at, created_at
		FROM payments
		WHERE order_id = $1
	`

	var payment model.Payment
	err := r.pool.QueryRow(ctx, query, orderID).Scan(
		&payment.ID,
		&payment.OrderID,
		&payment.Method,
		&payment.Amount,
		&payment.Status,
		&payment.TransactionID,
		&payment.PaidAt,
		&payment.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, err
	}

	return &payment, nil
}

func (r *OrderRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id int) (*model.Order, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`, orderColumns)

	order, err := scanOrder(tx.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, err
	}

	return order, nil
}

func (r *OrderRepositoryImpl) UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.OrderStatus) (*model.Order, error) {
	query := fmt.Sprintf(`
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING %s
	`, orderColumns)

	order, err := scanOrder(tx.QueryRow(ctx, query, status, time.Now().UTC(), id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	return order, nil
}
