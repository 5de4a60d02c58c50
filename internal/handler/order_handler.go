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

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(service service.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

func (h *OrderHandler) RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	router := r.Group("/api/v1/orders", auth)
	{
		router.GET("", h.GetOrders)
		router.GET(":orderNumber", h.GetOrder)
		router.POST("checkout", h.Checkout)
		router.PUT(":id/cancel", h.CancelOrder)
	}
}

// Checkout 把目前購物車一次結帳；空車回 409
func (h *OrderHandler) Checkout(c *gin.Context) {
	order, err := h.service.Checkout(c, middleware.CurrentUserID(c))
	if err != nil {
		h.handleOrderError(c, err, "Checkout")
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.service.GetByOrderNumber(c, c.Param("orderNumber"))
	if err != nil {
		h.handleOrderError(c, err, "GetOrder")
		return
	}

	// 別人的訂單視同不存在
	if order.UserID != middleware.CurrentUserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) GetOrders(c *gin.Context) {
	orders, err := h.service.ListByUser(c, middleware.CurrentUserID(c))
	if err != nil {
		h.handleOrderError(c, err, "GetOrders")
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	idInt, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.service.CancelOrder(c, idInt, middleware.CurrentUserID(c)); err != nil {
		h.handleOrderError(c, err, "CancelOrder")
		return
	}

	c.Status(http.StatusOK)
}

// Helper functions

func (h *OrderHandler) handleOrderError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrEmptyCart):
		log.Warn("Empty cart")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Cart is empty",
		})
	case errors.Is(err, apperrors.ErrOrderNotFound):
		log.Warn("Order not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
	case errors.Is(err, apperrors.ErrInvalidStatusTransition):
		log.Warn("Invalid status transition")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Order cannot be cancelled in its current status",
		})
	case errors.Is(err, apperrors.ErrSeatAlreadyTicketed):
		log.Warn("Seat already ticketed")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Seat already has an active ticket",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
