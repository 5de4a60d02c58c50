package repository

import (
	"context"
	"sync"
	"testing"

	"go-ticketing-platform/internal/model"
	apperrors "go-ticketing-platform/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reserveInTx(t *testing.T, repo SeatRepository, seatID, userID int) error {
	t.Helper()
	ctx := context.Background()

	tx, err := testDB.BeginTx(ctx, pgx.TxOptions{})
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	if err := repo.Reserve(ctx, tx, seatID, userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func releaseInTx(t *testing.T, repo SeatRepository, seatID int) {
	t.Helper()
	ctx := context.Background()

	tx, err := testDB.BeginTx(ctx, pgx.TxOptions{})
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	require.NoError(t, repo.Release(ctx, tx, seatID))
	require.NoError(t, tx.Commit(ctx))
}

func TestSeatRepository_ReserveReleaseReserve(t *testing.T) {
	setupTestWithTruncate(t)
	ctx := context.Background()
	repo := NewSeatRepository(getTestDB())

	venueID := createTestVenue(t, "venue-1")
	seatID := createTestSeat(t, venueID, "A", "1", "1")
	user1 := createTestUser(t, "user1", "user1@example.com", false)
	user2 := createTestUser(t, "user2", "user2@example.com", false)

	// U1 預約成功
	require.NoError(t, reserveInTx(t, repo, seatID, user1))

	seat, err := repo.FindByID(ctx, seatID)
	require.NoError(t, err)
	assert.Equal(t, model.SeatStatusReserved, seat.Status)
	require.NotNil(t, seat.ReservedBy)
	assert.Equal(t, user1, *seat.ReservedBy)
	assert.Equal(t, 1, seat.Version)

	// U2 對同一座位失敗
	err = reserveInTx(t, repo, seatID, user2)
	assert.ErrorIs(t, err, apperrors.ErrSeatUnavailable)

	// U1 釋放後 U2 成功
	releaseInTx(t, repo, seatID)

	seat, err = repo.FindByID(ctx, seatID)
	require.NoError(t, err)
	assert.Equal(t, model.SeatStatusAvailable, seat.Status)
	assert.Nil(t, seat.ReservedBy)

	require.NoError(t, reserveInTx(t, repo, seatID, user2))

	seat, err = repo.FindByID(ctx, seatID)
	require.NoError(t, err)
	assert.Equal(t, model.SeatStatusReserved, seat.Status)
	require.NotNil(t, seat.ReservedBy)
	assert.Equal(t, user2, *seat.ReservedBy)
}

func TestSeatRepository_ConcurrentReserve(t *testing.T) {
	setupTestWithTruncate(t)
	ctx := context.Background()
	repo := NewSeatRepository(getTestDB())

	venueID := createTestVenue(t, "venue-1")
	seatID := createTestSeat(t, venueID, "A", "1", "1")

	const workers = 10
	userIDs := make([]int, workers)
	for i := 0; i < workers; i++ {
		userIDs[i] = createTestUser(t, "user", string(rune('a'+i))+"@example.com", false)
	}

	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()
			results <- reserveInTx(t, repo, seatID, userID)
		}(userIDs[i])
	}

	wg.Wait()
	close(results)

	var success, unavailable int
	for err := range results {
		switch {
		case err == nil:
			success++
		case assert.ErrorIs(t, err, apperrors.ErrSeatUnavailable):
			unavailable++
		}
	}

	// 恰好一個贏家
	assert.Equal(t, 1, success)
	assert.Equal(t, workers-1, unavailable)

	seat, err := repo.FindByID(ctx, seatID)
	require.NoError(t, err)
	assert.Equal(t, model.SeatStatusReserved, seat.Status)
	assert.Equal(t, 1, seat.Version)
}

func TestSeatRepository_BulkCreate(t *testing.T) {
	setupTestWithTruncate(t)
	ctx := context.Background()
	repo := NewSeatRepository(getTestDB())

	venueID := createTestVenue(t, "venue-1")

	seats := []*model.Seat{
		{VenueID: venueID, Block: "A", Row: "1", Number: "1", SeatType: model.SeatTypeS, Status: model.SeatStatusAvailable},
		{VenueID: venueID, Block: "A", Row: "1", Number: "2", SeatType: model.SeatTypeS, Status: model.SeatStatusAvailable},
		{VenueID: venueID, Block: "A", Row: "2", Number: "1", SeatType: model.SeatTypeA, Status: model.SeatStatusAvailable},
	}

	created, err := repo.BulkCreate(ctx, seats)
	require.NoError(t, err)
	assert.Equal(t, 3, created)

	available, err := repo.ListAvailableByVenue(ctx, venueID)
	require.NoError(t, err)
	assert.Len(t, available, 3)
}
