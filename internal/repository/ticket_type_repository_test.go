package repository

import (
	"context"
	"testing"
	"time"

	"go-ticketing-platform/internal/model"
	apperrors "go-ticketing-platform/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func incrementSoldInTx(t *testing.T, repo TicketTypeRepository, id, quantity int) error {
	t.Helper()
	ctx := context.Background()

	tx, err := testDB.BeginTx(ctx, pgx.TxOptions{})
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	if err := repo.IncrementSold(ctx, tx, id, quantity); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func TestTicketTypeRepository_IncrementSold_Guard(t *testing.T) {
	setupTestWithTruncate(t)
	ctx := context.Background()
	repo := NewTicketTypeRepository(getTestDB())

	venueID := createTestVenue(t, "venue-1")
	start := time.Now().UTC().Add(48 * time.Hour)
	eventID := createTestEvent(t, venueID, "event-1", start, start.Add(3*time.Hour))
	ticketTypeID := createTestTicketType(t, eventID, model.TicketTypeFree, 3000, 10)

	// 守衛式 UPDATE：sold_quantity 永不超過 total_quantity
	require.NoError(t, incrementSoldInTx(t, repo, ticketTypeID, 8))

	err := incrementSoldInTx(t, repo, ticketTypeID, 3)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientInventory)

	require.NoError(t, incrementSoldInTx(t, repo, ticketTypeID, 2))

	ticketType, err := repo.FindByID(ctx, ticketTypeID)
	require.NoError(t, err)
	assert.Equal(t, 10, ticketType.SoldQuantity)
	assert.True(t, ticketType.IsSoldOut())
}

func TestTicketTypeRepository_DecrementSold_Floor(t *testing.T) {
	setupTestWithTruncate(t)
	ctx := context.Background()
	repo := NewTicketTypeRepository(getTestDB())

	venueID := createTestVenue(t, "venue-1")
	start := time.Now().UTC().Add(48 * time.Hour)
	eventID := createTestEvent(t, venueID, "event-1", start, start.Add(3*time.Hour))
	ticketTypeID := createTestTicketType(t, eventID, model.TicketTypeFree, 3000, 10)

	require.NoError(t, incrementSoldInTx(t, repo, ticketTypeID, 2))

	tx, err := testDB.BeginTx(ctx, pgx.TxOptions{})
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	// 回補超過已售量時下限為 0
	require.NoError(t, repo.DecrementSold(ctx, tx, ticketTypeID, 5))
	require.NoError(t, tx.Commit(ctx))

	ticketType, err := repo.FindByID(ctx, ticketTypeID)
	require.NoError(t, err)
	assert.Equal(t, 0, ticketType.SoldQuantity)
}
