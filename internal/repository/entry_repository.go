package repository

import (
	"context"
	"errors"
	"fmt"

	"go-ticketing-platform/internal/model"
	apperrors "go-ticketing-platform/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EntryRepository interface {
	ListRecent(ctx context.Context, limit int) ([]*model.Entry, error)
	Stats(ctx context.Context, eventID *int) (*model.EntryStats, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, entry *model.Entry) (*model.Entry, error)
	FindByTicketID(ctx context.Context, tx pgx.Tx, ticketID int) (*model.Entry, error)
}

type EntryRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewEntryRepository(pool *pgxpool.Pool) EntryRepository {
	return &EntryRepositoryImpl{
		pool: pool,
	}
}

// Create 寫入入場紀錄。entries.ticket_id 唯一索引擋下同票第二筆，
// 此時回傳 ErrTicketAlreadyUsed，由呼叫端轉為 AlreadyUsed 拒絕。
func (r *EntryRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, entry *model.Entry) (*model.Entry, error) {
	query := `
		INSERT INTO entries (ticket_id, gate, scanned_by)
		VALUES ($1, $2, $3)
		RETURNING id, ticket_id, gate, scanned_by, entered_at
	`

	err := tx.QueryRow(ctx, query,
		entry.TicketID, entry.Gate, entry.ScannedBy,
	).Scan(
		&entry.ID,
		&entry.TicketID,
		&entry.Gate,
		&entry.ScannedBy,
		&entry.EnteredAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, apperrors.ErrTicketAlreadyUsed
		}
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	return entry, nil
}

func (r *EntryRepositoryImpl) FindByTicketID(ctx context.Context, tx pgx.Tx, ticketID int) (*model.Entry, error) {
	query := `
		SELECT id, ticket_id, gate, scanned_by, entered_at
		FROM entries
		WHERE ticket_id = $1
	`

	var entry model.Entry
	err := tx.QueryRow(ctx, query, ticketID).Scan(
		&entry.ID,
		&entry.TicketID,
		&entry.Gate,
		&entry.ScannedBy,
		&entry.EnteredAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &entry, nil
}

func (r *EntryRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]*model.Entry, error) {
	query := `
		SELECT id, ticket_id, gate, scanned_by, entered_at
		FROM entries
		ORDER BY entered_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*model.Entry, 0)

	for rows.Next() {
		var entry model.Entry
		err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.Gate,
			&entry.ScannedBy,
			&entry.EnteredAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// Stats 入場統計：總數、今日數、各閘門分佈。eventID 為 nil 時統計全部。
func (r *EntryRepositoryImpl) Stats(ctx context.Context, eventID *int) (*model.EntryStats, error) {
	filter := ""
	args := []interface{}{}
	if eventID != nil {
		filter = `
			WHERE e.ticket_id IN (
				SELECT t.id FROM tickets t
				JOIN orders o ON o.id = t.order_id
				WHERE o.event_id = $1
			)`
		args = append(args, *eventID)
	}

	query := fmt.Sprintf(`
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE e.entered_at::date = now()::date)
		FROM entries e
		%s
	`, filter)

	stats := &model.EntryStats{GateStats: make(map[string]int)}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&stats.TotalEntries, &stats.TodayEntries); err != nil {
		return nil, err
	}

	gateQuery := fmt.Sprintf(`
		SELECT e.gate, COUNT(*)
		FROM entries e
		%s
		GROUP BY e.gate
	`, filter)

	rows, err := r.pool.Query(ctx, gateQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var gate string
		var count int
		if err := rows.Scan(&gate, &count); err != nil {
			return nil, err
		}
		stats.GateStats[gate] = count
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
