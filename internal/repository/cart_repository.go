package repository

import (
	"context"
	"fmt"

	"go-ticketing-platform/internal/model"
	apperrors "go-ticketing-platform/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CartRepository interface {
	FindByUserID(ctx context.Context, userID int) (*model.Cart, error)
	ListItems(ctx context.Context, cartID int) ([]*model.CartItem, error)

	// Transaction methods
	GetOrCreate(ctx context.Context, tx pgx.Tx, userID int) (*model.Cart, error)
	FindByUserIDWithLock(ctx context.Context, tx pgx.Tx, userID int) (*model.Cart, error)
	ListItemsWithLock(ctx context.Context, tx pgx.Tx, cartID int) ([]*model.CartItem, error)
	AddItem(ctx context.Context, tx pgx.Tx, item *model.CartItem) (*model.CartItem, error)
	FindItem(ctx context.Context, tx pgx.Tx, cartID int, itemID int) (*model.CartItem, error)
	DeleteItem(ctx context.Context, tx pgx.Tx, itemID int) error
	DeleteCartWithItems(ctx context.Context, tx pgx.Tx, cartID int) error
	CountItems(ctx context.Context, tx pgx.Tx, cartID int) (int, error)
}

type CartRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) CartRepository {
	return &CartRepositoryImpl{
		pool: pool,
	}
}

func (r *CartRepositoryImpl) FindByUserID(ctx context.Context, userID int) (*model.Cart, error) {
	query := `
		SELECT id, user_id, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`

	var cart model.Cart
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrCartNotFound
		}
		return nil, err
	}

	return &cart, nil
}

// GetOrCreate 取得或建立使用者的購物車。
// carts.user_id 帶唯一索引，ON CONFLICT 保證同一使用者只會有一台車。
func (r *CartRepositoryImpl) GetOrCreate(ctx context.Context, tx pgx.Tx, userID int) (*model.Cart, error) {
	query := `
		INSERT INTO carts (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = now()
		RETURNING id, user_id, created_at, updated_at
	`

	var cart model.Cart
	err := tx.QueryRow(ctx, query, userID).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}

	return &cart, nil
}

func (r *CartRepositoryImpl) FindByUserIDWithLock(ctx context.Context, tx pgx.Tx, userID int) (*model.Cart, error) {
	query := `
		SELECT id, user_id, created_at, updated_at
		FROM carts
		WHERE user_id = $1
		FOR UPDATE
	`

	var cart model.Cart
	err := tx.QueryRow(ctx, query, userID).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrCartNotFound
		}
		return nil, err
	}

	return &cart, nil
}

func (r *CartRepositoryImpl) ListItems(ctx context.Context, cartID int) ([]*model.CartItem, error) {
	query := `
		SELECT id, cart_id, seat_id, ticket_type_id, added_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY added_at
	`

	return r.queryItems(ctx, r.pool, query, cartID)
}

// ListItemsWithLock 結帳時鎖定全部購物車項目
func (r *CartRepositoryImpl) ListItemsWithLock(ctx context.Context, tx pgx.Tx, cartID int) ([]*model.CartItem, error) {
	query := `
		SELECT id, cart_id, seat_id, ticket_type_id, added_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY added_at
		FOR UPDATE
	`

	return r.queryItems(ctx, tx, query, cartID)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *CartRepositoryImpl) queryItems(ctx context.Context, q querier, query string, cartID int) ([]*model.CartItem, error) {
	rows, err := q.Query(ctx, query, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*model.CartItem, 0)

	for rows.Next() {
		var item model.CartItem
		err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.SeatID,
			&item.TicketTypeID,
			&item.AddedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *CartRepositoryImpl) AddItem(ctx context.Context, tx pgx.Tx, item *model.CartItem) (*model.CartItem, error) {
	query := `
		INSERT INTO cart_items (cart_id, seat_id, ticket_type_id)
		VALUES ($1, $2, $3)
		RETURNING id, cart_id, seat_id, ticket_type_id, added_at
	`

	err := tx.QueryRow(ctx, query,
		item.CartID, item.SeatID, item.TicketTypeID,
	).Scan(
		&item.ID,
		&item.CartID,
		&item.SeatID,
		&item.TicketTypeID,
		&item.AddedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}

	return item, nil
}

func (r *CartRepositoryImpl) FindItem(ctx context.Context, tx pgx.Tx, cartID int, itemID int) (*model.CartItem, error) {
	query := `
		SELECT id, cart_id, seat_id, ticket_type_id, added_at
		FROM cart_items
		WHERE id = $1 AND cart_id = $2
		FOR UPDATE
	`

	var item model.CartItem
	err := tx.QueryRow(ctx, query, itemID, cartID).Scan(
		&item.ID,
		&item.CartID,
		&item.SeatID,
		&item.TicketTypeID,
		&item.AddedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrCartItemNotFound
		}
		return nil, err
	}

	return &item, nil
}

func (r *CartRepositoryImpl) DeleteItem(ctx context.Context, tx pgx.Tx, itemID int) error {
	result, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrCartItemNotFound
	}

	return nil
}

func (r *CartRepositoryImpl) DeleteCartWithItems(ctx context.Context, tx pgx.Tx, cartID int) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return err
	}

	result, err := tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrCartNotFound
	}

	return nil
}

func (r *CartRepositoryImpl) CountItems(ctx context.Context, tx pgx.Tx, cartID int) (int, error) {
	var count int
	err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM cart_items WHERE cart_id = $1`, cartID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
