package queue_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"go-ticketing-platform/config"
	"go-ticketing-platform/internal/database"
	"go-ticketing-platform/internal/queue"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRdb *redis.Client

func TestMain(m *testing.M) {
	cfg := config.LoadTestConfig()

	var err error
	testRdb, err = database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize test redis: %v", err)
	}

	code := m.Run()
	testRdb.Close()
	os.Exit(code)
}

func cleanupStream(ctx context.Context, t *testing.T) {
	t.Helper()
	_ = testRdb.Del(ctx, queue.StreamKey).Err()
}

// --- 1. 建構 ---

func TestNewRedisStreamQRQueue(t *testing.T) {
	ctx := context.Background()
	cleanupStream(ctx, t)

	t.Run("success", func(t *testing.T) {
		q, err := queue.NewRedisStreamQRQueue(testRdb, "test-consumer", nil)
		require.NoError(t, err)
		require.NotNil(t, q)
	})

	t.Run("empty_consumer_id_generates_uuid", func(t *testing.T) {
		cleanupStream(ctx, t)
		q, err := queue.NewRedisStreamQRQueue(testRdb, "", nil)
		require.NoError(t, err)
		require.NotNil(t, q)
	})
}

// --- 2. 發送與訂閱：發出去的內容與收進來的內容一致 ---

func TestRedisStreamQRQueue_Subscribe_deliversPublishedJob(t *testing.T) {
	ctx := context.Background()
	cleanupStream(ctx, t)

	q, err := queue.NewRedisStreamQRQueue(testRdb, "deliver-test", nil)
	require.NoError(t, err)

	job := &queue.QRRenderJob{
		TicketNumber: "TKT0000000000A1",
		Credential:   "TKT0000000000A1:deadbeefdeadbeef",
	}
	require.NoError(t, q.PublishJob(ctx, job))

	subCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	delCh, err := q.SubscribeJobs(subCtx)
	require.NoError(t, err)

	select {
	case d, ok := <-delCh:
		require.True(t, ok, "應收到一筆")
		require.NotNil(t, d.Data)
		assert.Equal(t, job.TicketNumber, d.Data.TicketNumber)
		assert.Equal(t, job.Credential, d.Data.Credential)
		d.Ack()
	case <-subCtx.Done():
		t.Fatal("timeout 未收到訊息")
	}
}

// --- 3. Ack 結果：Ack 後該訊息不應再被投遞 ---

func TestRedisStreamQRQueue_Ack_preventsRedelivery(t *testing.T) {
	ctx := context.Background()
	cleanupStream(ctx, t)

	q, err := queue.NewRedisStreamQRQueue(testRdb, "ack-test", nil)
	require.NoError(t, err)

	job := &queue.QRRenderJob{
		TicketNumber: "TKT0000000000B2",
		Credential:   "TKT0000000000B2:cafebabecafebabe",
	}
	require.NoError(t, q.PublishJob(ctx, job))

	subCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	delCh, err := q.SubscribeJobs(subCtx)
	require.NoError(t, err)

	var first *queue.QRRenderJob
	select {
	case d, ok := <-delCh:
		require.True(t, ok)
		require.NotNil(t, d.Data)
		first = d.Data
		d.Ack()
	case <-subCtx.Done():
		t.Fatal("timeout 未收到第一筆")
	}

	// 驗證結果：下一讀應為 channel 關閉（cancel 後），不應再收到同一筆
	cancel()
	next, ok := <-delCh
	assert.False(t, ok, "Ack 後不應再投遞；下一讀應為 channel 關閉")
	if ok && next.Data != nil && next.Data.TicketNumber == first.TicketNumber {
		t.Fatalf("Ack 後不應再收到同一筆: TicketNumber=%s", first.TicketNumber)
	}
}

// --- 4. Nack(false) 結果：丟棄後該訊息不應再被投遞 ---

func TestRedisStreamQRQueue_NackDiscard_preventsRedelivery(t *testing.T) {
	ctx := context.Background()
	cleanupStream(ctx, t)

	q, err := queue.NewRedisStreamQRQueue(testRdb, "nack-discard-test", nil)
	require.NoError(t, err)

	job := &queue.QRRenderJob{
		TicketNumber: "TKT0000000000C3",
		Credential:   "TKT0000000000C3:feedfacefeedface",
	}
	require.NoError(t, q.PublishJob(ctx, job))

	subCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	delCh, err := q.SubscribeJobs(subCtx)
	require.NoError(t, err)

	select {
	case d, ok := <-delCh:
		require.True(t, ok)
		require.NotNil(t, d.Data)
		assert.Equal(t, job.TicketNumber, d.Data.TicketNumber)
		d.Nack(false)
	case <-subCtx.Done():
		t.Fatal("timeout 未收到第一筆")
	}

	// 驗證結果：短時間內不應再收到同一筆（已丟棄）
	select {
	case d, ok := <-delCh:
		if ok && d.Data != nil && d.Data.TicketNumber == job.TicketNumber {
			t.Fatalf("Nack(false) 後不應再投遞同一筆，表示未正確丟棄: TicketNumber=%s", d.Data.TicketNumber)
		}
	case <-time.After(2 * time.Second):
		// 2 秒內無第二次投遞，視為已丟棄
	}
	cancel()
}

// --- 5. Nack(true) 結果：重試時應在約 ClaimMinIdleTime 後再次投遞 ---

func TestRedisStreamQRQueue_NackRequeue_redeliversAfterIdle(t *testing.T) {
	ctx := context.Background()
	cleanupStream(ctx, t)

	cfg := &queue.RedisStreamQRQueueConfig{
		ClaimMinIdleTime:   200 * time.Millisecond,
		ReadGroupBlockTime: 500 * time.Millisecond,
	}
	q, err := queue.NewRedisStreamQRQueue(testRdb, "nack-requeue-test", cfg)
	require.NoError(t, err)

	job := &queue.QRRenderJob{
		TicketNumber: "TKT0000000000D4",
		Credential:   "TKT0000000000D4:abad1deaabad1dea",
	}
	require.NoError(t, q.PublishJob(ctx, job))

	subCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	delCh, err := q.SubscribeJobs(subCtx)
	require.NoError(t, err)

	select {
	case d, ok := <-delCh:
		require.True(t, ok)
		require.NotNil(t, d.Data)
		assert.Equal(t, job.TicketNumber, d.Data.TicketNumber)
		d.Nack(true)
	case <-subCtx.Done():
		t.Fatal("timeout 未收到第一筆")
	}

	// 驗證結果：應在 ClaimMinIdleTime 後再次收到同一筆（XAUTOCLAIM 領回）
	select {
	case d, ok := <-delCh:
		require.True(t, ok, "Nack(requeue) 後應在 ClaimMinIdleTime 後再次投遞")
		require.NotNil(t, d.Data)
		assert.Equal(t, job.TicketNumber, d.Data.TicketNumber, "重試應為同一筆")
		d.Ack()
	case <-subCtx.Done():
		t.Fatal("timeout 未收到重試投遞")
	}
}
