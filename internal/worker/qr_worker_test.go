package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-ticketing-platform/internal/queue"
	"go-ticketing-platform/internal/repository"
)

type savedPng struct {
	ticketNumber string
	png          []byte
}

// 簡單的 Mock 實作，只攔截 SaveQRPng
type mockTicketRepository struct {
	repository.TicketRepository
	saved   chan savedPng
	failing bool
}

func (m *mockTicketRepository) SaveQRPng(ctx context.Context, ticketNumber string, png []byte) error {
	if m.failing {
		m.failing = false
		return errors.New("db temporarily unavailable")
	}
	m.saved <- savedPng{ticketNumber: ticketNumber, png: png}
	return nil
}

func TestQRWorker_RendersPublishedJob(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	q := queue.NewQRRenderQueue(10)
	repo := &mockTicketRepository{saved: make(chan savedPng, 1)}

	w := NewQRWorker(repo, q)
	if err := w.Start(ctx); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}

	job := &queue.QRRenderJob{
		TicketNumber: "TKT0000000000A1",
		Credential:   "TKT0000000000A1:deadbeefdeadbeef",
	}
	if err := q.PublishJob(ctx, job); err != nil {
		t.Fatalf("failed to publish job: %v", err)
	}

	select {
	case got := <-repo.saved:
		if got.ticketNumber != job.TicketNumber {
			t.Errorf("saved png for %q, want %q", got.ticketNumber, job.TicketNumber)
		}
		if len(got.png) == 0 {
			t.Error("saved png is empty")
		}
	case <-time.After(time.Second):
		t.Error("超時！Worker 沒有在時間內渲染工作")
	}
}

func TestQRWorker_RetriesOnSaveFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	q := queue.NewQRRenderQueue(10)
	// 第一次 SaveQRPng 失敗，Nack 後重新入隊再成功
	repo := &mockTicketRepository{saved: make(chan savedPng, 1), failing: true}

	w := NewQRWorker(repo, q)
	if err := w.Start(ctx); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}

	job := &queue.QRRenderJob{
		TicketNumber: "TKT0000000000B2",
		Credential:   "TKT0000000000B2:cafebabecafebabe",
	}
	if err := q.PublishJob(ctx, job); err != nil {
		t.Fatalf("failed to publish job: %v", err)
	}

	select {
	case got := <-repo.saved:
		if got.ticketNumber != job.TicketNumber {
			t.Errorf("saved png for %q, want %q", got.ticketNumber, job.TicketNumber)
		}
	case <-time.After(time.Second):
		t.Error("超時！Worker 沒有重試失敗的工作")
	}
}
