package service

import (
	"context"
	"errors"
	"time"

	"go-ticketing-platform/internal/cache"
	"go-ticketing-platform/internal/model"
	"go-ticketing-platform/internal/repository"
	apperrors "go-ticketing-platform/pkg/app_errors"
	"go-ticketing-platform/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type CartService interface {
	// AddSeat 預約座位並加入購物車；座位鎖定失敗時整筆交易回滾
	AddSeat(ctx context.Context, userID int, seatID int, ticketTypeID int) (*model.CartItem, error)
	// AddGeneralAdmission 自由席加購，quantity 張各一列項目
	AddGeneralAdmission(ctx context.Context, userID int, ticketTypeID int, quantity int) ([]*model.CartItem, error)
	// RemoveItem 釋放座位（或回補自由席庫存）並刪除項目
	RemoveItem(ctx context.Context, userID int, itemID int) error
	GetCart(ctx context.Context, userID int) (*model.Cart, []*model.CartItem, error)
}

type CartServiceImpl struct {
	pool        *pgxpool.Pool
	carts       repository.CartRepository
	seats       repository.SeatRepository
	ticketTypes repository.TicketTypeRepository
	inventory   cache.GAInventoryManager
}

func NewCartService(
	pool *pgxpool.Pool,
	carts repository.CartRepository,
	seats repository.SeatRepository,
	ticketTypes repository.TicketTypeRepository,
	inventory cache.GAInventoryManager,
) CartService {
	return &CartServiceImpl{
		pool:        pool,
		carts:       carts,
		seats:       seats,
		ticketTypes: ticketTypes,
		inventory:   inventory,
	}
}

func (s *CartServiceImpl) AddSeat(ctx context.Context, userID int, seatID int, ticketTypeID int) (*model.CartItem, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ticketType, err := s.ticketTypes.FindByIDWithLock(ctx, tx, ticketTypeID)
	if err != nil {
		return nil, err
	}
	if !ticketType.IsOnSale(time.Now().UTC()) {
		return nil, apperrors.ErrNotOnSale
	}

	cart, err := s.carts.GetOrCreate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	// 座位 row lock 下原子翻轉 available→reserved；
	// 失敗時整筆交易回滾，不會留下 CartItem
	if err := s.seats.Reserve(ctx, tx, seatID, userID); err != nil {
		return nil, err
	}

	item, err := s.carts.AddItem(ctx, tx, &model.CartItem{
		CartID:       cart.ID,
		SeatID:       &seatID,
		TicketTypeID: ticketTypeID,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return item, nil
}

func (s *CartServiceImpl) AddGeneralAdmission(ctx context.Context, userID int, ticketTypeID int, quantity int) ([]*model.CartItem, error) {
	if quantity <= 0 {
		return nil, apperrors.ErrInvalidInput
	}

	// 1. Redis 快取先行扣減，擋掉大部分超賣流量；
	// 未預熱（ErrTicketTypeNotFound）時直接走 DB 冷路徑
	usedFastPath := false
	_, _, err := s.inventory.DecreRemaining(ctx, ticketTypeID, quantity)
	switch {
	case err == nil:
		usedFastPath = true
	case errors.Is(err, apperrors.ErrInsufficientInventory):
		return nil, apperrors.ErrInsufficientInventory
	case errors.Is(err, apperrors.ErrTicketTypeNotFound):
		// 冷路徑
	default:
		logger.WithComponent("service").Warn("inventory cache unavailable, falling back to db",
			zap.Int("ticket_type_id", ticketTypeID), zap.Error(err))
	}

	items, err := s.addGeneralAdmissionTx(ctx, userID, ticketTypeID, quantity)
	if err != nil {
		if usedFastPath {
			// 回滾快取：使用 context.Background() 確保一定執行
			if rbErr := s.inventory.RollbackRemaining(context.Background(), ticketTypeID, quantity); rbErr != nil {
				logger.WithComponent("service").Error("inventory rollback failed",
					zap.Int("ticket_type_id", ticketTypeID), zap.Error(rbErr))
			}
		}
		return nil, err
	}

	return items, nil
}

func (s *CartServiceImpl) addGeneralAdmissionTx(ctx context.Context, userID int, ticketTypeID int, quantity int) ([]*model.CartItem, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ticketType, err := s.ticketTypes.FindByIDWithLock(ctx, tx, ticketTypeID)
	if err != nil {
		return nil, err
	}
	if !ticketType.IsOnSale(time.Now().UTC()) {
		return nil, apperrors.ErrNotOnSale
	}
	if ticketType.RemainingQuantity() < quantity {
		return nil, apperrors.ErrInsufficientInventory
	}

	// sold_quantity 的守衛式 UPDATE 是最終裁決
	if err := s.ticketTypes.IncrementSold(ctx, tx, ticketTypeID, quantity); err != nil {
		return nil, err
	}

	cart, err := s.carts.GetOrCreate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]*model.CartItem, 0, quantity)
	for i := 0; i < quantity; i++ {
		item, err := s.carts.AddItem(ctx, tx, &model.CartItem{
			CartID:       cart.ID,
			TicketTypeID: ticketTypeID,
		})
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return items, nil
}

func (s *CartServiceImpl) RemoveItem(ctx context.Context, userID int, itemID int) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cart, err := s.carts.FindByUserIDWithLock(ctx, tx, userID)
	if err != nil {
		return err
	}

	item, err := s.carts.FindItem(ctx, tx, cart.ID, itemID)
	if err != nil {
		return err
	}

	gaReturned := false
	if item.IsSeatItem() {
		if err := s.seats.Release(ctx, tx, *item.SeatID); err != nil {
			return err
		}
	} else {
		if err := s.ticketTypes.DecrementSold(ctx, tx, item.TicketTypeID, 1); err != nil {
			return err
		}
		gaReturned = true
	}

	if err := s.carts.DeleteItem(ctx, tx, item.ID); err != nil {
		return err
	}

	// 清空後購物車一併刪除
	count, err := s.carts.CountItems(ctx, tx, cart.ID)
	if err != nil {
		return err
	}
	if count == 0 {
		if err := s.carts.DeleteCartWithItems(ctx, tx, cart.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	// 自由席回到 DB 後把快取也補回，否則預熱過的票種會越賣越少。
	// 用 context.Background()：請求被取消也要完成回補
	if gaReturned {
		if err := s.inventory.RollbackRemaining(context.Background(), item.TicketTypeID, 1); err != nil {
			logger.WithComponent("service").Warn("failed to rollback inventory cache",
				zap.Int("ticket_type_id", item.TicketTypeID), zap.Error(err))
		}
	}

	return nil
}

func (s *CartServiceImpl) GetCart(ctx context.Context, userID int) (*model.Cart, []*model.CartItem, error) {
	cart, err := s.carts.FindByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.carts.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, nil, err
	}

	return cart, items, nil
}
