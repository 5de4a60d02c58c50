package service

import (
	"context"
	"testing"
	"time"

	"go-ticketing-platform/internal/model"
	"go-ticketing-platform/internal/repository"
	apperrors "go-ticketing-platform/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTicketService() (TicketService, repository.TicketRepository) {
	db := getTestDB()
	tickets := repository.NewTicketRepository(db)
	seats := repository.NewSeatRepository(db)
	orders := repository.NewOrderRepository(db)
	return NewTicketService(db, tickets, seats, orders, testSigner), tickets
}

func TestTicketService_Cancel(t *testing.T) {
	setupTestWithTruncate(t)
	ctx := context.Background()
	svc, tickets := newTicketService()

	now := time.Now().UTC()
	venueID := createTestVenue(t, "venue-1")
	eventID := createTestEvent(t, venueID, "event-1", now.Add(48*time.Hour), now.Add(51*time.Hour))
	ticketTypeID := createTestTicketType(t, eventID, model.TicketTypeFree, 3000, 100)
	userID := createTestUser(t, "buyer", "buyer@example.com")

	createTestPaidOrderWithTicket(t, userID, eventID, ticketTypeID, "TKT0000000000A1")

	// 別人的票取消不了
	otherID := createTestUser(t, "other", "other@example.com")
	err := svc.Cancel(ctx, "TKT0000000000A1", otherID)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)

	require.NoError(t, svc.Cancel(ctx, "TKT0000000000A1", userID))

	ticket, err := tickets.FindByTicketNumber(ctx, "TKT0000000000A1")
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusCancelled, ticket.Status)

	// cancelled 是終態
	err = svc.Cancel(ctx, "TKT0000000000A1", userID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatusTransition)
}

func TestTicketService_Cancel_NotFound(t *testing.T) {
	setupTestWithTruncate(t)
	svc, _ := newTicketService()

	err := svc.Cancel(context.Background(), "TKT0000000000FF", 1)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
}

func TestTicketService_GetQRPng(t *testing.T) {
	setupTestWithTruncate(t)
	ctx := context.Background()
	svc, tickets := newTicketService()

	now := time.Now().UTC()
	venueID := createTestVenue(t, "venue-1")
	eventID := createTestEvent(t, venueID, "event-1", now.Add(48*time.Hour), now.Add(51*time.Hour))
	ticketTypeID := createTestTicketType(t, eventID, model.TicketTypeFree, 3000, 100)
	userID := createTestUser(t, "buyer", "buyer@example.com")

	createTestPaidOrderWithTicket(t, userID, eventID, ticketTypeID, "TKT0000000000A1")

	// 尚未渲染
	png, err := svc.GetQRPng(ctx, "TKT0000000000A1", userID)
	require.NoError(t, err)
	assert.Empty(t, png)

	require.NoError(t, tickets.SaveQRPng(ctx, "TKT0000000000A1", []byte{0x89, 0x50, 0x4E, 0x47}))

	png, err = svc.GetQRPng(ctx, "TKT0000000000A1", userID)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, png)
}

func TestTicketService_ReadsAreOwnerScoped(t *testing.T) {
	setupTestWithTruncate(t)
	ctx := context.Background()
	svc, _ := newTicketService()

	now := time.Now().UTC()
	venueID := createTestVenue(t, "venue-1")
	eventID := createTestEvent(t, venueID, "event-1", now.Add(48*time.Hour), now.Add(51*time.Hour))
	ticketTypeID := createTestTicketType(t, eventID, model.TicketTypeFree, 3000, 100)
	ownerID := createTestUser(t, "owner", "owner@example.com")
	otherID := createTestUser(t, "other", "other@example.com")

	createTestPaidOrderWithTicket(t, ownerID, eventID, ticketTypeID, "TKT0000000000A1")

	// 知道票號也撈不到別人的票與 credential
	_, err := svc.GetByTicketNumber(ctx, "TKT0000000000A1", otherID)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)

	_, err = svc.GetQRPng(ctx, "TKT0000000000A1", otherID)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)

	ticket, err := svc.GetByTicketNumber(ctx, "TKT0000000000A1", ownerID)
	require.NoError(t, err)
	assert.Equal(t, "TKT0000000000A1", ticket.TicketNumber)
}
