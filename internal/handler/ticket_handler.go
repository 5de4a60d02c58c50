package handler

import (
	"errors"
	"net/http"

	"go-ticketing-platform/internal/middleware"
	"go-ticketing-platform/internal/service"
	apperrors "go-ticketing-platform/pkg/app_errors"
	"go-ticketing-platform/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TicketHandler struct {
	service service.TicketService
}

func NewTicketHandler(service service.TicketService) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	router := r.Group("/api/v1/tickets", auth)
	{
		router.GET("", h.GetTickets)
		router.GET(":ticketNumber", h.GetTicket)
		router.GET(":ticketNumber/qr", h.GetQRPng)
		router.PUT(":ticketNumber/cancel", h.CancelTicket)
	}
}

func (h *TicketHandler) GetTickets(c *gin.Context) {
	tickets, err := h.service.ListByUser(c, middleware.CurrentUserID(c))
	if err != nil {
		h.handleTicketError(c, err, "GetTickets")
		return
	}

	c.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) GetTicket(c *gin.Context) {
	ticket, err := h.service.GetByTicketNumber(c, c.Param("ticketNumber"), middleware.CurrentUserID(c))
	if err != nil {
		h.handleTicketError(c, err, "GetTicket")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// GetQRPng 回傳 worker 渲染好的 QR 圖；尚未渲染時回 404，
// 客戶端可揭示 credential 自行產生
func (h *TicketHandler) GetQRPng(c *gin.Context) {
	png, err := h.service.GetQRPng(c, c.Param("ticketNumber"), middleware.CurrentUserID(c))
	if err != nil {
		h.handleTicketError(c, err, "GetQRPng")
		return
	}
	if len(png) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "QR image not rendered yet"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

func (h *TicketHandler) CancelTicket(c *gin.Context) {
	if err := h.service.Cancel(c, c.Param("ticketNumber"), middleware.CurrentUserID(c)); err != nil {
		h.handleTicketError(c, err, "CancelTicket")
		return
	}

	c.Status(http.StatusOK)
}

// Helper functions

func (h *TicketHandler) handleTicketError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrTicketNotFound):
		log.Warn("Ticket not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Ticket not found",
		})
	case errors.Is(err, apperrors.ErrInvalidStatusTransition):
		log.Warn("Invalid status transition")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Ticket cannot be cancelled in its current status",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
