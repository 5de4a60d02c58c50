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

type CartHandler struct {
	service service.CartService
}

func NewCartHandler(service service.CartService) *CartHandler {
	return &CartHandler{service: service}
}

func (h *CartHandler) RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	router := r.Group("/api/v1/cart", auth)
	{
		router.GET("", h.GetCart)
		router.POST("seats", h.AddSeat)
		router.POST("general", h.AddGeneralAdmission)
		router.DELETE("items/:id", h.RemoveItem)
	}
}

type addSeatRequest struct {
	SeatID       int `json:"seat_id" binding:"required"`
	TicketTypeID int `json:"ticket_type_id" binding:"required"`
}

type addGeneralAdmissionRequest struct {
	TicketTypeID int `json:"ticket_type_id" binding:"required"`
	Quantity     int `json:"quantity" binding:"required"`
}

func (h *CartHandler) AddSeat(c *gin.Context) {
	var req addSeatRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	item, err := h.service.AddSeat(c, middleware.CurrentUserID(c), req.SeatID, req.TicketTypeID)
	if err != nil {
		h.handleCartError(c, err, "AddSeat")
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *CartHandler) AddGeneralAdmission(c *gin.Context) {
	var req addGeneralAdmissionRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	items, err := h.service.AddGeneralAdmission(c, middleware.CurrentUserID(c), req.TicketTypeID, req.Quantity)
	if err != nil {
		h.handleCartError(c, err, "AddGeneralAdmission")
		return
	}

	c.JSON(http.StatusCreated, items)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	itemID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.service.RemoveItem(c, middleware.CurrentUserID(c), itemID); err != nil {
		h.handleCartError(c, err, "RemoveItem")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CartHandler) GetCart(c *gin.Context) {
	cart, items, err := h.service.GetCart(c, middleware.CurrentUserID(c))
	if err != nil {
		h.handleCartError(c, err, "GetCart")
		return
	}

	c.JSON(http.StatusOK, gin.H{"cart": cart, "items": items})
}

// Helper functions

func (h *CartHandler) handleCartError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrSeatUnavailable):
		log.Warn("Seat unavailable")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Seat is no longer available",
		})
	case errors.Is(err, apperrors.ErrInsufficientInventory):
		log.Warn("Insufficient inventory")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Insufficient inventory",
		})
	case errors.Is(err, apperrors.ErrNotOnSale):
		log.Warn("Ticket type not on sale")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Ticket type is not on sale",
		})
	case errors.Is(err, apperrors.ErrSeatNotFound):
		log.Warn("Seat not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Seat not found",
		})
	case errors.Is(err, apperrors.ErrTicketTypeNotFound):
		log.Warn("Ticket type not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Ticket type not found",
		})
	case errors.Is(err, apperrors.ErrCartNotFound), errors.Is(err, apperrors.ErrCartItemNotFound):
		log.Warn("Cart item not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Cart item not found",
		})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid input",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
