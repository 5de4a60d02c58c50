package queue

import (
	"context"
)

// QRRenderJob QR 圖像渲染工作。渲染為 best-effort，
// credential 本身即為有效憑證，圖檔只是呈現形式。
type QRRenderJob struct {
	TicketNumber string `json:"ticket_number"`
	Credential   string `json:"credential"`
}

type Delivery struct {
	Data *QRRenderJob
	Ack  func()
	Nack func(requeue bool)
}

type QRRenderQueue interface {
	// 發送渲染工作到隊列
	PublishJob(ctx context.Context, job *QRRenderJob) error
	// 訂閱渲染工作隊列
	SubscribeJobs(ctx context.Context) (<-chan Delivery, error)
}

type QRRenderQueueImpl struct {
	// 使用 Go channel 來模擬 MQ 隊列
	ch chan *QRRenderJob
}

func NewQRRenderQueue(bufferSize int) QRRenderQueue {
	return &QRRenderQueueImpl{
		ch: make(chan *QRRenderJob, bufferSize),
	}
}

func (q *QRRenderQueueImpl) PublishJob(ctx context.Context, job *QRRenderJob) error {
	q.ch <- job
	return nil
}

func (q *QRRenderQueueImpl) SubscribeJobs(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case job, ok := <-q.ch:
				if !ok {
					return
				}

				// 將原始 job 包裝成 Delivery 格式給 Worker
				out <- Delivery{
					Data: job,
					Ack:  func() { /* 記憶體版不用做特別動作 */ },
					Nack: func(requeue bool) {
						if requeue {
							q.ch <- job // 簡單模擬重回隊列
						}
					},
				}
			}
		}
	}()

	return out, nil
}
