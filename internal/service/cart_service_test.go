package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-ticketing-platform/internal/cache"
	"go-ticketing-platform/internal/model"
	"go-ticketing-platform/internal/repository"
	apperrors "go-ticketing-platform/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartFixture struct {
	cartService CartService
	inventory   cache.GAInventoryManager
	carts       repository.CartRepository
	seats       repository.SeatRepository
	ticketTypes repository.TicketTypeRepository
}

func newCartFixture() *cartFixture {
	db := getTestDB()
	carts := repository.NewCartRepository(db)
	seats := repository.NewSeatRepository(db)
	ticketTypes := repository.NewTicketTypeRepository(db)
	inventory := cache.NewGAInventoryManager(testRedis)

	return &cartFixture{
		cartService: NewCartService(db, carts, seats, ticketTypes, inventory),
		inventory:   inventory,
		carts:       carts,
		seats:       seats,
		ticketTypes: ticketTypes,
	}
}

func TestCartService_AddSeat(t *testing.T) {
	setupTestWithTruncate(t)
	ctx := context.Background()
	f := newCartFixture()

	venueID, eventID := seedOnSaleEvent(t)
	ticketTypeID := createTestTicketType(t, eventID, model.TicketTypeReserved, 5000, 100)
	seatID := createTestSeat(t, venueID, "A", "1", "1")
	user1 := createTestUser(t, "user1", "user1@example.com")
	user2 := createTestUser(t, "user2", "user2@example.com")

	item, err := f.cartService.AddSeat(ctx, user1, seatID, ticketTypeID)
	require.NoError(t, err)
	require.NotNil(t, item.SeatID)
	assert.Equal(t, seatID, *item.SeatID)

	// 他人搶同一座位失敗，整筆交易回滾，連購物車都不會留下
	_, err = f.cartService.AddSeat(ctx, user2, seatID, ticketTypeID)
	assert.ErrorIs(t, err, apperrors.ErrSeatUnavailable)

	_, _, err = f.cartService.GetCart(ctx, user2)
	assert.ErrorIs(t, err, apperrors.ErrCartNotFound)
}

func TestCartService_AddGeneralAdmission_ColdPath(t *testing.T) {
	setupTestWithTruncate(t)
	ctx := context.Background()
	f := newCartFixture()

	_, eventID := seedOnSaleEvent(t)
	ticketTypeID := createTestTicketType(t, eventID, model.TicketTypeFree, 3000, 5)
	userID := createTestUser(t, "buyer", "buyer@example.com")

	// 未預熱 Redis，直接走 DB 冷路徑
	items, err := f.cartService.AddGeneralAdmission(ctx, userID, ticketTypeID, 3)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	// 超出剩餘量被擋下
	_, err = f.cartService.AddGeneralAdmission(ctx, userID, ticketTypeID, 3)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientInventory)

	ticketType, err := f.ticketTypes.FindByID(ctx, ticketTypeID)
	require.NoError(t, err)
	assert.Equal(t, 3, ticketType.SoldQuantity)
}

func TestCartService_AddGeneralAdmission_WarmedFastPath(t *testing.T) {
	setupTestWithTruncate(t)
	ctx := context.Background()
	f := newCartFixture()

	_, eventID := seedOnSaleEvent(t)
	ticketTypeID := createTestTicketType(t, eventID, model.TicketTypeFree, 3000, 5)
	userID := createTestUser(t, "buyer", "buyer@example.com")

	require.NoError(t, f.inventory.WarmUpInventory(ctx, ticketTypeID, 5, 3000))

	items, err := f.cartService.AddGeneralAdmission(ctx, userID, ticketTypeID, 2)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	// Redis 快取同步扣減
	remaining, err := f.inventory.GetRemaining(ctx, ticketTypeID)
	require.NoError(t, err)
	assert.Equal(t, 3, remaining)

	// 快取層直接擋下超賣，不進 DB
	_, err = f.cartService.AddGeneralAdmission(ctx, userID, ticketTypeID, 4)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientInventory)

	ticketType, err := f.ticketTypes.FindByID(ctx, ticketTypeID)
	require.NoError(t, err)
	assert.Equal(t, 2, ticketType.SoldQuantity)
}

func TestCartService_AddGeneralAdmission_ConcurrentOversell(t *testing.T) {
	setupTestWithTruncate(t)
	ctx := context.Background()
	f := newCartFixture()

	_, eventID := seedOnSaleEvent(t)
	const total = 10
	ticketTypeID := createTestTicketType(t, eventID, model.TicketTypeFree, 3000, total)

	require.NoError(t, f.inventory.WarmUpInventory(ctx, ticketTypeID, total, 3000))

	const buyers = 20
	userIDs := make([]int, buyers)
	for i := 0; i < buyers; i++ {
		userIDs[i] = createTestUser(t, "buyer", "buyer"+string(rune('a'+i))+"@example.com")
	}

	var wg sync.WaitGroup
	results := make(chan error, buyers)

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()
			_, err := f.cartService.AddGeneralAdmission(ctx, userID, ticketTypeID, 1)
			results <- err
		}(userIDs[i])
	}

	wg.Wait()
	close(results)

	var success int
	for err := range results {
		if err == nil {
			success++
		} else {
			assert.ErrorIs(t, err, apperrors.ErrInsufficientInventory)
		}
	}

	// 總賣出量不可超過庫存
	assert.Equal(t, total, success)

	ticketType, err := f.ticketTypes.FindByID(ctx, ticketTypeID)
	require.NoError(t, err)
	assert.Equal(t, total, ticketType.SoldQuantity)
}

func TestCartService_AddGeneralAdmission_NotOnSale(t *testing.T) {
	setupTestWithTruncate(t)
	ctx := context.Background()
	f := newCartFixture()

	now := time.Now().UTC()
	venueID := createTestVenue(t, "venue-1")
	eventID := createTestEvent(t, venueID, "event-1", now.Add(48*time.Hour), now.Add(51*time.Hour))
	ticketTypeID := createTestTicketType(t, eventID, model.TicketTypeFree, 3000, 5)
	userID := createTestUser(t, "buyer", "buyer@example.com")

	// 銷售期間已結束
	_, err := testDB.Exec(ctx, `
		UPDATE ticket_types SET sale_start = $1, sale_end = $2 WHERE id = $3
	`, now.Add(-48*time.Hour), now.Add(-24*time.Hour), ticketTypeID)
	require.NoError(t, err)

	_, err = f.cartService.AddGeneralAdmission(ctx, userID, ticketTypeID, 1)
	assert.ErrorIs(t, err, apperrors.ErrNotOnSale)
}

func TestCartService_RemoveItem(t *testing.T) {
	setupTestWithTruncate(t)
	ctx := context.Background()
	f := newCartFixture()

	venueID, eventID := seedOnSaleEvent(t)
	reservedType := createTestTicketType(t, eventID, model.TicketTypeReserved, 5000, 100)
	freeType := createTestTicketType(t, eventID, model.TicketTypeFree, 3000, 5)
	seatID := createTestSeat(t, venueID, "A", "1", "1")
	userID := createTestUser(t, "buyer", "buyer@example.com")

	seatItem, err := f.cartService.AddSeat(ctx, userID, seatID, reservedType)
	require.NoError(t, err)
	gaItems, err := f.cartService.AddGeneralAdmission(ctx, userID, freeType, 1)
	require.NoError(t, err)

	// 移除座席項目：座位釋放
	require.NoError(t, f.cartService.RemoveItem(ctx, userID, seatItem.ID))

	seat, err := f.seats.FindByID(ctx, seatID)
	require.NoError(t, err)
	assert.Equal(t, model.SeatStatusAvailable, seat.Status)

	// 移除自由席項目：庫存回補，空車刪除
	require.NoError(t, f.cartService.RemoveItem(ctx, userID, gaItems[0].ID))

	ticketType, err := f.ticketTypes.FindByID(ctx, freeType)
	require.NoError(t, err)
	assert.Equal(t, 0, ticketType.SoldQuantity)

	assert.Equal(t, 0, countRows(t, "carts"))
}

func TestCartService_RemoveItem_RestoresWarmedInventory(t *testing.T) {
	setupTestWithTruncate(t)
	ctx := context.Background()
	f := newCartFixture()

	_, eventID := seedOnSaleEvent(t)
	const total = 5
	ticketTypeID := createTestTicketType(t, eventID, model.TicketTypeFree, 3000, total)
	userID := createTestUser(t, "buyer", "buyer@example.com")

	require.NoError(t, f.inventory.WarmUpInventory(ctx, ticketTypeID, total, 3000))

	// 整批買光再整批移除
	items, err := f.cartService.AddGeneralAdmission(ctx, userID, ticketTypeID, total)
	require.NoError(t, err)
	for _, item := range items {
		require.NoError(t, f.cartService.RemoveItem(ctx, userID, item.ID))
	}

	// 快取與 DB 都回到滿額，重新加購不會被快取誤擋
	remaining, err := f.inventory.GetRemaining(ctx, ticketTypeID)
	require.NoError(t, err)
	assert.Equal(t, total, remaining)

	regained, err := f.cartService.AddGeneralAdmission(ctx, userID, ticketTypeID, total)
	require.NoError(t, err)
	assert.Len(t, regained, total)
}
