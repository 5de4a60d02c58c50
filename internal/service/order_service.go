package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go-ticketing-platform/internal/cache"
	"go-ticketing-platform/internal/model"
	"go-ticketing-platform/internal/queue"
	"go-ticketing-platform/internal/repository"
	apperrors "go-ticketing-platform/pkg/app_errors"
	"go-ticketing-platform/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type OrderService interface {
	// Checkout 把購物車轉為已付款訂單並發行票券，全程單一交易
	Checkout(ctx context.Context, userID int) (*model.Order, error)
	// CancelOrder 取消訂單：票券轉 cancelled、座位釋放、自由席庫存回補。
	// 只能取消自己的訂單，否則視同不存在。
	CancelOrder(ctx context.Context, orderID int, userID int) error
	GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error)
	ListByUser(ctx context.Context, userID int) ([]*model.Order, error)
}

type OrderServiceImpl struct {
	pool          *pgxpool.Pool
	orders        repository.OrderRepository
	carts         repository.CartRepository
	seats         repository.SeatRepository
	tickets       repository.TicketRepository
	ticketTypes   repository.TicketTypeRepository
	ticketService TicketService
	renderQueue   queue.QRRenderQueue
	inventory     cache.GAInventoryManager
}

func NewOrderService(
	pool *pgxpool.Pool,
	orders repository.OrderRepository,
	carts repository.CartRepository,
	seats repository.SeatRepository,
	tickets repository.TicketRepository,
	ticketTypes repository.TicketTypeRepository,
	ticketService TicketService,
	renderQueue queue.QRRenderQueue,
	inventory cache.GAInventoryManager,
) OrderService {
	return &OrderServiceImpl{
		pool:          pool,
		orders:        orders,
		carts:         carts,
		seats:         seats,
		tickets:       tickets,
		ticketTypes:   ticketTypes,
		ticketService: ticketService,
		renderQueue:   renderQueue,
		inventory:     inventory,
	}
}

// generateOrderNumber 產生 "ORD" + 日期 + 8 位大寫十六進位的訂單編號
func generateOrderNumber(now time.Time) string {
	u := uuid.New()
	return fmt.Sprintf("ORD%s%s", now.Format("20060102"), strings.ToUpper(hex.EncodeToString(u[:])[:8]))
}

func (s *OrderServiceImpl) Checkout(ctx context.Context, userID int) (*model.Order, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// 1. 鎖定購物車與全部項目；沒有車或沒有項目一律 EmptyCart，
	// 且發生在任何資料變更之前
	cart, err := s.carts.FindByUserIDWithLock(ctx, tx, userID)
	if err != nil {
		if err == apperrors.ErrCartNotFound {
			return nil, apperrors.ErrEmptyCart
		}
		return nil, err
	}

	items, err := s.carts.ListItemsWithLock(ctx, tx, cart.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperrors.ErrEmptyCart
	}

	// 2. 活動與金額由項目上明確記錄的票種解析，不從座位回推
	ticketTypes := make(map[int]*model.TicketType)
	totalAmount := 0.0
	for _, item := range items {
		tt, ok := ticketTypes[item.TicketTypeID]
		if !ok {
			tt, err = s.ticketTypes.FindByIDWithLock(ctx, tx, item.TicketTypeID)
			if err != nil {
				return nil, err
			}
			ticketTypes[item.TicketTypeID] = tt
		}
		totalAmount += tt.Price
	}
	eventID := ticketTypes[items[0].TicketTypeID].EventID

	now := time.Now().UTC()

	// 3. 建立訂單與支付。MVP：支付同步且必定成功
	order, err := s.orders.Create(ctx, tx, &model.Order{
		OrderNumber: generateOrderNumber(now),
		UserID:      userID,
		EventID:     eventID,
		TotalAmount: totalAmount,
		Status:      model.OrderStatusPaid,
	})
	if err != nil {
		return nil, err
	}

	_, err = s.orders.CreatePayment(ctx, tx, &model.Payment{
		OrderID:       order.ID,
		Method:        model.PaymentMethodCreditCard,
		Amount:        totalAmount,
		Status:        model.PaymentStatusCompleted,
		TransactionID: strings.ReplaceAll(uuid.New().String(), "-", ""),
		PaidAt:        &now,
	})
	if err != nil {
		return nil, err
	}

	// 4. 逐項翻轉座位並發行票券
	issued := make([]*model.Ticket, 0, len(items))
	for _, item := range items {
		if item.IsSeatItem() {
			if err := s.seats.MarkSold(ctx, tx, *item.SeatID); err != nil {
				return nil, err
			}
		}

		ticket, err := s.ticketService.Issue(ctx, tx, order, item.SeatID, item.TicketTypeID)
		if err != nil {
			return nil, err
		}
		issued = append(issued, ticket)
	}

	// 5. 刪除購物車
	if err := s.carts.DeleteCartWithItems(ctx, tx, cart.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	// 交易提交後才排 QR 渲染；失敗只記警告，credential 本身已有效
	for _, ticket := range issued {
		job := &queue.QRRenderJob{TicketNumber: ticket.TicketNumber, Credential: ticket.Credential}
		if err := s.renderQueue.PublishJob(ctx, job); err != nil {
			logger.WithComponent("service").Warn("failed to enqueue qr render",
				zap.String("ticket_number", ticket.TicketNumber), zap.Error(err))
		}
	}

	return order, nil
}

func (s *OrderServiceImpl) CancelOrder(ctx context.Context, orderID int, userID int) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	order, err := s.orders.FindByIDWithLock(ctx, tx, orderID)
	if err != nil {
		return err
	}

	if order.UserID != userID {
		return apperrors.ErrOrderNotFound
	}

	if !order.Status.CanTransitionTo(model.OrderStatusCancelled) {
		return apperrors.ErrInvalidStatusTransition
	}

	if _, err := s.orders.UpdateStatus(ctx, tx, order.ID, model.OrderStatusCancelled); err != nil {
		return err
	}

	tickets, err := s.tickets.ListByOrderIDWithLock(ctx, tx, order.ID)
	if err != nil {
		return err
	}

	gaReturned := make(map[int]int)
	for _, ticket := range tickets {
		if ticket.Status == model.TicketStatusCancelled {
			continue
		}
		if err := s.tickets.UpdateStatus(ctx, tx, ticket.ID, model.TicketStatusCancelled); err != nil {
			return err
		}
		if ticket.SeatID != nil {
			if err := s.seats.Release(ctx, tx, *ticket.SeatID); err != nil {
				return err
			}
		} else {
			if err := s.ticketTypes.DecrementSold(ctx, tx, ticket.TicketTypeID, 1); err != nil {
				return err
			}
			gaReturned[ticket.TicketTypeID]++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	// 自由席回到 DB 後把快取也補回，否則預熱過的票種會越賣越少。
	// 用 context.Background()：請求被取消也要完成回補
	for ticketTypeID, qty := range gaReturned {
		if err := s.inventory.RollbackRemaining(context.Background(), ticketTypeID, qty); err != nil {
			logger.WithComponent("service").Warn("failed to rollback inventory cache",
				zap.Int("ticket_type_id", ticketTypeID), zap.Error(err))
		}
	}

	return nil
}

func (s *OrderServiceImpl) GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	return s.orders.FindByOrderNumber(ctx, orderNumber)
}

func (s *OrderServiceImpl) ListByUser(ctx context.Context, userID int) ([]*model.Order, error) {
	return s.orders.ListByUserID(ctx, userID)
}
