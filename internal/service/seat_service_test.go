package service

import (
	"context"
	"testing"

	"go-ticketing-platform/internal/model"
	"go-ticketing-platform/internal/repository"
	apperrors "go-ticketing-platform/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandRows(t *testing.T) {
	t.Run("NumericRange", func(t *testing.T) {
		rows, err := expandRows("1", "3")
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2", "3"}, rows)
	})

	t.Run("LetterRange", func(t *testing.T) {
		rows, err := expandRows("A", "D")
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "C", "D"}, rows)
	})

	t.Run("LowercaseLetters", func(t *testing.T) {
		rows, err := expandRows("a", "c")
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "C"}, rows)
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, c := range [][2]string{
			{"", "3"},
			{"1", ""},
			{"5", "2"},
			{"D", "A"},
			{"1", "B"},
			// 多字母排不可默默截斷成單字母範圍
			{"AA", "AC"},
			{"A", "BC"},
		} {
			_, err := expandRows(c[0], c[1])
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput, "start=%q end=%q", c[0], c[1])
		}
	})
}

func TestSeatService_GenerateSeats(t *testing.T) {
	setupTestWithTruncate(t)
	ctx := context.Background()
	svc := NewSeatService(repository.NewSeatRepository(getTestDB()))

	venueID := createTestVenue(t, "venue-1")

	created, err := svc.GenerateSeats(ctx, GenerateSeatsParams{
		VenueID:     venueID,
		Block:       "A",
		SeatType:    model.SeatTypeS,
		RowStart:    "1",
		RowEnd:      "2",
		NumberStart: 1,
		NumberEnd:   10,
	})
	require.NoError(t, err)
	assert.Equal(t, 20, created)

	available, err := svc.ListAvailable(ctx, venueID)
	require.NoError(t, err)
	assert.Len(t, available, 20)
}

func TestSeatService_GenerateSeats_InvalidNumbers(t *testing.T) {
	setupTestWithTruncate(t)
	svc := NewSeatService(repository.NewSeatRepository(getTestDB()))

	_, err := svc.GenerateSeats(context.Background(), GenerateSeatsParams{
		VenueID:     1,
		Block:       "A",
		SeatType:    model.SeatTypeS,
		RowStart:    "1",
		RowEnd:      "2",
		NumberStart: 5,
		NumberEnd:   1,
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
