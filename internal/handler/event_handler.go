package handler

import (
	"errors"
	"net/http"
	"strconv"

	"go-ticketing-platform/internal/middleware"
	"go-ticketing-platform/internal/service"
	apperrors "go-ticketing-platform/pkg/app_errors"
	"go-ticketing-platform/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type EventHandler struct {
	service service.EventService
}

func NewEventHandler(service service.EventService) *EventHandler {
	return &EventHandler{service: service}
}

// RegisterRoutes 活動瀏覽公開，庫存預熱限工作人員
func (h *EventHandler) RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	router := r.Group("/api/v1/events")
	{
		router.GET("", h.GetEvents)
		router.GET(":id", h.GetEvent)
		router.GET(":id/ticket-types", h.GetTicketTypes)
		router.POST(":id/warm-up", auth, middleware.RequireStaff(), h.WarmUpInventory)
	}
}

func (h *EventHandler) GetEvents(c *gin.Context) {
	events, err := h.service.ListPublic(c)
	if err != nil {
		h.handleEventError(c, err, "GetEvents")
		return
	}

	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	idInt, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	event, err := h.service.GetByID(c, idInt)
	if err != nil {
		h.handleEventError(c, err, "GetEvent")
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) GetTicketTypes(c *gin.Context) {
	idInt, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	ticketTypes, err := h.service.ListTicketTypes(c, idInt)
	if err != nil {
		h.handleEventError(c, err, "GetTicketTypes")
		return
	}

	c.JSON(http.StatusOK, ticketTypes)
}

func (h *EventHandler) WarmUpInventory(c *gin.Context) {
	idInt, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.service.WarmUpInventory(c, idInt); err != nil {
		h.handleEventError(c, err, "WarmUpInventory")
		return
	}

	c.Status(http.StatusOK)
}

// Helper functions

func (h *EventHandler) handleEventError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Event not found",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
