package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"go-ticketing-platform/internal/model"
	"go-ticketing-platform/internal/qrsign"
	"go-ticketing-platform/internal/repository"
	apperrors "go-ticketing-platform/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketService interface {
	// Issue 在呼叫端的交易內發行一張票。
	// 同一座位重複發行是呼叫端錯誤，回傳 ErrSeatAlreadyTicketed 而非默默去重。
	Issue(ctx context.Context, tx pgx.Tx, order *model.Order, seatID *int, ticketTypeID int) (*model.Ticket, error)
	// Cancel 取消核准：票轉 cancelled，座位釋放回 available。
	// 只能取消自己訂單下的票，否則視同不存在。
	Cancel(ctx context.Context, ticketNumber string, userID int) error
	ListByUser(ctx context.Context, userID int) ([]*model.Ticket, error)
	// 單票查詢也只限本人：credential 不能讓持票號的第三者撈走
	GetByTicketNumber(ctx context.Context, ticketNumber string, userID int) (*model.Ticket, error)
	GetQRPng(ctx context.Context, ticketNumber string, userID int) ([]byte, error)
}

type TicketServiceImpl struct {
	pool    *pgxpool.Pool
	tickets repository.TicketRepository
	seats   repository.SeatRepository
	orders  repository.OrderRepository
	signer  *qrsign.Signer
}

func NewTicketService(
	pool *pgxpool.Pool,
	tickets repository.TicketRepository,
	seats repository.SeatRepository,
	orders repository.OrderRepository,
	signer *qrsign.Signer,
) TicketService {
	return &TicketServiceImpl{
		pool:    pool,
		tickets: tickets,
		seats:   seats,
		orders:  orders,
		signer:  signer,
	}
}

// generateTicketNumber 產生 "TKT" + 12 位大寫十六進位的票號。
// 空間夠大，碰撞機率可忽略；真撞上會被唯一索引擋下。
func generateTicketNumber() string {
	u := uuid.New()
	return "TKT" + strings.ToUpper(hex.EncodeToString(u[:])[:12])
}

func (s *TicketServiceImpl) Issue(ctx context.Context, tx pgx.Tx, order *model.Order, seatID *int, ticketTypeID int) (*model.Ticket, error) {
	ticketNumber := generateTicketNumber()

	ticket := &model.Ticket{
		OrderID:      order.ID,
		SeatID:       seatID,
		TicketTypeID: ticketTypeID,
		TicketNumber: ticketNumber,
		Credential:   s.signer.Credential(ticketNumber),
		Status:       model.TicketStatusValid,
	}

	created, err := s.tickets.Create(ctx, tx, ticket)
	if err != nil {
		return nil, fmt.Errorf("issue ticket: %w", err)
	}

	return created, nil
}

func (s *TicketServiceImpl) Cancel(ctx context.Context, ticketNumber string, userID int) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ticket, err := s.tickets.FindByTicketNumberWithLock(ctx, tx, ticketNumber)
	if err != nil {
		return err
	}

	if err := s.checkOwner(ctx, ticket, userID); err != nil {
		return err
	}

	if !ticket.Status.CanTransitionTo(model.TicketStatusCancelled) {
		return apperrors.ErrInvalidStatusTransition
	}

	if err := s.tickets.UpdateStatus(ctx, tx, ticket.ID, model.TicketStatusCancelled); err != nil {
		return err
	}

	if ticket.SeatID != nil {
		if err := s.seats.Release(ctx, tx, *ticket.SeatID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// checkOwner 票的持有人是訂單的買家；別人的票一律視同不存在
func (s *TicketServiceImpl) checkOwner(ctx context.Context, ticket *model.Ticket, userID int) error {
	order, err := s.orders.FindByID(ctx, ticket.OrderID)
	if err != nil {
		return err
	}
	if order.UserID != userID {
		return apperrors.ErrTicketNotFound
	}
	return nil
}

func (s *TicketServiceImpl) ListByUser(ctx context.Context, userID int) ([]*model.Ticket, error) {
	return s.tickets.ListByUserID(ctx, userID)
}

func (s *TicketServiceImpl) GetByTicketNumber(ctx context.Context, ticketNumber string, userID int) (*model.Ticket, error) {
	ticket, err := s.tickets.FindByTicketNumber(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, ticket, userID); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketServiceImpl) GetQRPng(ctx context.Context, ticketNumber string, userID int) ([]byte, error) {
	ticket, err := s.tickets.FindByTicketNumber(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, ticket, userID); err != nil {
		return nil, err
	}
	return s.tickets.GetQRPng(ctx, ticket.TicketNumber)
}
