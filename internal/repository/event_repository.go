package repository

import (
	"context"
	"fmt"

	"go-ticketing-platform/internal/model"
	apperrors "go-ticketing-platform/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventRepository 活動目錄介面。核心只讀取，不更動活動資料。
type EventRepository interface {
	FindByID(ctx context.Context, id int) (*model.Event, error)
	ListPublic(ctx context.Context) ([]*model.Event, error)
	FindVenue(ctx context.Context, venueID int) (*model.Venue, error)
}

type EventRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &EventRepositoryImpl{
		pool: pool,
	}
}

const eventColumns = `id, name, description, venue_id, organizer_id,
		start_datetime, end_datetime, is_public, created_at, updated_at`

func scanEvent(row pgx.Row) (*model.Event, error) {
	var event model.Event
	err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.VenueID,
		&event.OrganizerID,
		&event.StartDatetime,
		&event.EndDatetime,
		&event.IsPublic,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE id = $1
	`, eventColumns)

	event, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}

	return event, nil
}

func (r *EventRepositoryImpl) ListPublic(ctx context.Context) ([]*model.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE is_public = true
		ORDER BY start_datetime DESC
	`, eventColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*model.Event, 0)

	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

func (r *EventRepositoryImpl) FindVenue(ctx context.Context, venueID int) (*model.Venue, error) {
	query := `
		SELECT id, name, address, capacity, created_at, updated_at
		FROM venues
		WHERE id = $1
	`

	var venue model.Venue
	err := r.pool.QueryRow(ctx, query, venueID).Scan(
		&venue.ID,
		&venue.Name,
		&venue.Address,
		&venue.Capacity,
		&venue.CreatedAt,
		&venue.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}

	return &venue, nil
}
