package service

import (
	"context"
	"errors"
	"time"

	"go-ticketing-platform/internal/model"
	"go-ticketing-platform/internal/qrsign"
	"go-ticketing-platform/internal/repository"
	apperrors "go-ticketing-platform/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ScanOutcome 掃描結果代碼，kiosk 端依此分支，不比對訊息字串
type ScanOutcome string

const (
	ScanAdmitted         ScanOutcome = "admitted"
	ScanInvalidSignature ScanOutcome = "invalid_signature"
	ScanTicketNotFound   ScanOutcome = "ticket_not_found"
	ScanCancelled        ScanOutcome = "cancelled"
	ScanAlreadyUsed      ScanOutcome = "already_used"
	ScanTooEarly         ScanOutcome = "too_early"
	ScanEventEnded       ScanOutcome = "event_ended"
)

// ScanResult 掃描的結構化結果。拒絕不是 error；
// error 只代表基礎設施故障。
type ScanResult struct {
	Outcome ScanOutcome
	Ticket  *model.Ticket
	Event   *model.Event
	Entry   *model.Entry
}

func (r *ScanResult) Admitted() bool {
	return r.Outcome == ScanAdmitted
}

// entryWindowBefore 活動開始前多久開放入場
const entryWindowBefore = 24 * time.Hour

type EntryService interface {
	// Scan 驗票入場。同一張票的併發掃描由票券 row lock 序列化：
	// 恰好一個 Admitted，其餘觀察到 used 而得到 AlreadyUsed。
	Scan(ctx context.Context, rawPayload string, gate string, staffUserID int) (*ScanResult, error)
	ListRecent(ctx context.Context, limit int) ([]*model.Entry, error)
	Stats(ctx context.Context, eventID *int) (*model.EntryStats, error)
}

type EntryServiceImpl struct {
	pool    *pgxpool.Pool
	entries repository.EntryRepository
	tickets repository.TicketRepository
	orders  repository.OrderRepository
	events  repository.EventRepository
	signer  *qrsign.Signer
}

func NewEntryService(
	pool *pgxpool.Pool,
	entries repository.EntryRepository,
	tickets repository.TicketRepository,
	orders repository.OrderRepository,
	events repository.EventRepository,
	signer *qrsign.Signer,
) EntryService {
	return &EntryServiceImpl{
		pool:    pool,
		entries: entries,
		tickets: tickets,
		orders:  orders,
		events:  events,
		signer:  signer,
	}
}

func (s *EntryServiceImpl) Scan(ctx context.Context, rawPayload string, gate string, staffUserID int) (*ScanResult, error) {
	// 1. 簽章驗證失敗不碰任何資料
	ticketNumber, err := s.signer.Verify(rawPayload)
	if err != nil {
		return &ScanResult{Outcome: ScanInvalidSignature}, nil
	}

	if gate == "" {
		gate = model.DefaultGate
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// 2. 鎖定票券列，序列化同票掃描
	ticket, err := s.tickets.FindByTicketNumberWithLock(ctx, tx, ticketNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrTicketNotFound) {
			return &ScanResult{Outcome: ScanTicketNotFound}, nil
		}
		return nil, err
	}

	// 3. 票券狀態
	if ticket.Status == model.TicketStatusCancelled {
		return &ScanResult{Outcome: ScanCancelled, Ticket: ticket}, nil
	}
	if ticket.Status == model.TicketStatusUsed {
		// 回報原入場時刻供現場人員判讀
		existing, err := s.entries.FindByTicketID(ctx, tx, ticket.ID)
		if err != nil {
			return nil, err
		}
		return &ScanResult{Outcome: ScanAlreadyUsed, Ticket: ticket, Entry: existing}, nil
	}

	// 4. 入場時間窗：開始 24 小時前起、結束前有效
	order, err := s.orders.FindByID(ctx, ticket.OrderID)
	if err != nil {
		return nil, err
	}
	event, err := s.events.FindByID(ctx, order.EventID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if event.StartDatetime.After(now.Add(entryWindowBefore)) {
		return &ScanResult{Outcome: ScanTooEarly, Ticket: ticket, Event: event}, nil
	}
	if event.EndDatetime != nil && event.EndDatetime.Before(now) {
		return &ScanResult{Outcome: ScanEventEnded, Ticket: ticket, Event: event}, nil
	}

	// 5. 寫入場紀錄 + 票轉 used，同一交易內原子完成。
	// entries.ticket_id 唯一索引是交易檢查外的第二道防線。
	entry, err := s.entries.Create(ctx, tx, &model.Entry{
		TicketID:  ticket.ID,
		Gate:      gate,
		ScannedBy: &staffUserID,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrTicketAlreadyUsed) {
			return &ScanResult{Outcome: ScanAlreadyUsed, Ticket: ticket}, nil
		}
		return nil, err
	}

	if err := s.tickets.UpdateStatus(ctx, tx, ticket.ID, model.TicketStatusUsed); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	ticket.Status = model.TicketStatusUsed
	return &ScanResult{Outcome: ScanAdmitted, Ticket: ticket, Event: event, Entry: entry}, nil
}

func (s *EntryServiceImpl) ListRecent(ctx context.Context, limit int) ([]*model.Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.entries.ListRecent(ctx, limit)
}

func (s *EntryServiceImpl) Stats(ctx context.Context, eventID *int) (*model.EntryStats, error) {
	return s.entries.Stats(ctx, eventID)
}
