package worker

import (
	"context"

	"go-ticketing-platform/internal/queue"
	"go-ticketing-platform/internal/repository"
	"go-ticketing-platform/pkg/logger"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// qrPngSize 渲染出的 QR 圖檔邊長（像素）
const qrPngSize = 256

type QRWorker interface {
	// 訂閱渲染工作隊列
	Start(ctx context.Context) error
}

type QRWorkerImpl struct {
	tickets repository.TicketRepository
	queue   queue.QRRenderQueue
}

func NewQRWorker(tickets repository.TicketRepository, queue queue.QRRenderQueue) QRWorker {
	return &QRWorkerImpl{
		tickets: tickets,
		queue:   queue,
	}
}

func (w *QRWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeJobs(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			if err := w.render(ctx, msg.Data); err != nil {
				logger.WithComponent("worker").Warn("qr render failed, will retry",
					zap.String("ticket_number", msg.Data.TicketNumber), zap.Error(err))
				msg.Nack(true)
			} else {
				msg.Ack()
			}
		}
	}()
	return nil
}

// render 把 credential 渲染為 PNG 並寫回票券列。
// payload 以 credential 為準，掃描器讀出後送 Verify。
func (w *QRWorkerImpl) render(ctx context.Context, job *queue.QRRenderJob) error {
	png, err := qrcode.Encode(job.Credential, qrcode.Low, qrPngSize)
	if err != nil {
		return err
	}

	return w.tickets.SaveQRPng(ctx, job.TicketNumber, png)
}
