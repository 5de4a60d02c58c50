package service

import (
	"context"

	"go-ticketing-platform/internal/cache"
	"go-ticketing-platform/internal/model"
	"go-ticketing-platform/internal/repository"
	"go-ticketing-platform/pkg/logger"

	"go.uber.org/zap"
)

// EventService 活動目錄的唯讀介面，外加開賣前的庫存預熱
type EventService interface {
	ListPublic(ctx context.Context) ([]*model.Event, error)
	GetByID(ctx context.Context, id int) (*model.Event, error)
	ListTicketTypes(ctx context.Context, eventID int) ([]*model.TicketType, error)
	// WarmUpInventory 把自由席票種的剩餘數量載入 Redis
	WarmUpInventory(ctx context.Context, eventID int) error
}

type EventServiceImpl struct {
	events      repository.EventRepository
	ticketTypes repository.TicketTypeRepository
	inventory   cache.GAInventoryManager
}

func NewEventService(
	events repository.EventRepository,
	ticketTypes repository.TicketTypeRepository,
	inventory cache.GAInventoryManager,
) EventService {
	return &EventServiceImpl{
		events:      events,
		ticketTypes: ticketTypes,
		inventory:   inventory,
	}
}

func (s *EventServiceImpl) ListPublic(ctx context.Context) ([]*model.Event, error) {
	return s.events.ListPublic(ctx)
}

func (s *EventServiceImpl) GetByID(ctx context.Context, id int) (*model.Event, error) {
	return s.events.FindByID(ctx, id)
}

func (s *EventServiceImpl) ListTicketTypes(ctx context.Context, eventID int) ([]*model.TicketType, error) {
	return s.ticketTypes.ListByEventID(ctx, eventID)
}

func (s *EventServiceImpl) WarmUpInventory(ctx context.Context, eventID int) error {
	ticketTypes, err := s.ticketTypes.ListByEventID(ctx, eventID)
	if err != nil {
		return err
	}

	for _, tt := range ticketTypes {
		if tt.Kind != model.TicketTypeFree {
			continue
		}
		if err := s.inventory.WarmUpInventory(ctx, tt.ID, tt.RemainingQuantity(), tt.Price); err != nil {
			return err
		}
		logger.WithComponent("service").Info("inventory warmed up",
			zap.Int("ticket_type_id", tt.ID), zap.Int("remaining", tt.RemainingQuantity()))
	}

	return nil
}
