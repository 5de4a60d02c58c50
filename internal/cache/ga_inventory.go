package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	apperrors "go-ticketing-platform/pkg/app_errors"

	"github.com/redis/go-redis/v9"
)

type TicketTypeInfo struct {
	Remaining int
	Price     float64
}

// GAInventoryManager 自由席庫存的 Redis 快取。
// 高流量開賣時作為資料庫前的第一道閘，DB 交易仍是最終裁決。
type GAInventoryManager interface {
	// 預熱：把票種剩餘數量與價格載入 Redis
	WarmUpInventory(ctx context.Context, ticketTypeID int, remaining int, price float64) error
	// 獲取：取得剩餘數量
	GetRemaining(ctx context.Context, ticketTypeID int) (int, error)
	// 獲取：取得票種資訊
	GetInfo(ctx context.Context, ticketTypeID int) (TicketTypeInfo, error)
	// 減少：扣減剩餘數量 (使用Lua腳本確保原子性)
	DecreRemaining(ctx context.Context, ticketTypeID int, quantity int) (bool, float64, error)
	// 回補：庫存回到 DB 的任何路徑（交易失敗、移出購物車、取消訂單）
	// 都要把數量加回；未預熱的票種視為無事可做 (使用Lua腳本確保原子性)
	RollbackRemaining(ctx context.Context, ticketTypeID int, quantity int) error
}

type GAInventoryManagerImpl struct {
	client *redis.Client
}

func NewGAInventoryManager(client *redis.Client) GAInventoryManager {
	return &GAInventoryManagerImpl{
		client: client,
	}
}

func (m *GAInventoryManagerImpl) getInfoKey(ticketTypeID int) string {
	return fmt.Sprintf("ticket_type:%d:info", ticketTypeID)
}

func (m *GAInventoryManagerImpl) WarmUpInventory(ctx context.Context, ticketTypeID int, remaining int, price float64) error {
	key := m.getInfoKey(ticketTypeID)
	return m.client.HSet(ctx, key, map[string]interface{}{
		"remaining": remaining,
		"price":     price,
	}).Err()
}

func (m *GAInventoryManagerImpl) GetRemaining(ctx context.Context, ticketTypeID int) (int, error) {
	key := m.getInfoKey(ticketTypeID)
	val, err := m.client.HGet(ctx, key, "remaining").Int()
	if err == redis.Nil {
		return -1, apperrors.ErrTicketTypeNotFound
	}
	return val, err
}

func (m *GAInventoryManagerImpl) GetInfo(ctx context.Context, ticketTypeID int) (TicketTypeInfo, error) {
	key := m.getInfoKey(ticketTypeID)
	result, err := m.client.HGetAll(ctx, key).Result()
	if err != nil {
		return TicketTypeInfo{}, err
	}

	// 檢查 key 是否存在
	if len(result) == 0 {
		return TicketTypeInfo{}, apperrors.ErrTicketTypeNotFound
	}

	remaining, err := strconv.Atoi(result["remaining"])
	if err != nil {
		return TicketTypeInfo{}, fmt.Errorf("invalid remaining: %v", err)
	}

	price, err := strconv.ParseFloat(result["price"], 64)
	if err != nil {
		return TicketTypeInfo{}, fmt.Errorf("invalid price: %v", err)
	}

	return TicketTypeInfo{
		Remaining: remaining,
		Price:     price,
	}, nil
}

// DecreRemaining 扣減剩餘數量：
// 1. 檢查票種資訊是否已預熱
// 2. 檢查剩餘數量
// 3. 執行扣減
func (m *GAInventoryManagerImpl) DecreRemaining(ctx context.Context, ticketTypeID int, quantity int) (bool, float64, error) {
	key := m.getInfoKey(ticketTypeID)

	script := `
		local info_key = KEYS[1]
		local request_qty = tonumber(ARGV[1])

		local info = redis.call('HMGET', info_key, 'remaining', 'price')
		local remaining = info[1]
		local price = info[2]

		if not remaining or not price then
			return {-2, '0.0'} -- 錯誤：票種資訊未預熱
		end

		if tonumber(remaining) < request_qty then
			return {-1, '0.0'} -- 錯誤：庫存不足
		end

		redis.call('HINCRBY', info_key, 'remaining', -request_qty)

		return {1, tostring(price)}
	`

	result, err := m.client.Eval(ctx, script, []string{key}, quantity).Result()
	if err != nil {
		return false, 0, err
	}

	resSlice := result.([]interface{})
	code := resSlice[0].(int64)
	priceStr := resSlice[1].(string)

	price, _ := strconv.ParseFloat(priceStr, 64)

	switch code {
	case 1:
		return true, price, nil
	case -1:
		return false, 0.0, apperrors.ErrInsufficientInventory
	case -2:
		return false, 0.0, apperrors.ErrTicketTypeNotFound
	default:
		return false, 0.0, errors.New("unexpected result")
	}
}

func (m *GAInventoryManagerImpl) RollbackRemaining(ctx context.Context, ticketTypeID int, quantity int) error {
	key := m.getInfoKey(ticketTypeID)

	script := `
		local info_key = KEYS[1]
		local rollback_qty = tonumber(ARGV[1])

		if redis.call('EXISTS', info_key) == 0 then
			return "SKIP" -- 未預熱，沒有可回補的快取
		end

		redis.call('HINCRBY', info_key, 'remaining', rollback_qty)

		return "OK"
	`

	_, err := m.client.Eval(ctx, script, []string{key}, quantity).Result()
	if err != nil {
		return err
	}

	return nil
}
