package handler

import (
	"errors"
	"net/http"
	"strconv"

	"go-ticketing-platform/internal/middleware"
	"go-ticketing-platform/internal/model"
	"go-ticketing-platform/internal/repository"
	"go-ticketing-platform/internal/service"
	apperrors "go-ticketing-platform/pkg/app_errors"
	"go-ticketing-platform/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SeatHandler struct {
	service service.SeatService
	users   repository.UserRepository
}

func NewSeatHandler(service service.SeatService, users repository.UserRepository) *SeatHandler {
	return &SeatHandler{service: service, users: users}
}

func (h *SeatHandler) RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	router := r.Group("/api/v1/venues/:venueId/seats")
	{
		router.GET("available", h.GetAvailableSeats)
		router.POST("generate", auth, h.GenerateSeats)
	}
}

type generateSeatsRequest struct {
	Block       string `json:"block" binding:"required"`
	SeatType    string `json:"seat_type" binding:"required"`
	RowStart    string `json:"row_start" binding:"required"`
	RowEnd      string `json:"row_end" binding:"required"`
	NumberStart int    `json:"number_start" binding:"required"`
	NumberEnd   int    `json:"number_end" binding:"required"`
}

// GenerateSeats 主辦方批次產生座位
func (h *SeatHandler) GenerateSeats(c *gin.Context) {
	venueID, err := strconv.Atoi(c.Param("venueId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	var req generateSeatsRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	// 只有主辦方成員可以產生座位
	if _, err := h.users.FindOrganizerByUserID(c, middleware.CurrentUserID(c)); err != nil {
		h.handleSeatError(c, err, "GenerateSeats")
		return
	}

	seatType := model.SeatType(req.SeatType)
	if seatType != model.SeatTypeS && seatType != model.SeatTypeA && seatType != model.SeatTypeB {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	created, err := h.service.GenerateSeats(c, service.GenerateSeatsParams{
		VenueID:     venueID,
		Block:       req.Block,
		SeatType:    seatType,
		RowStart:    req.RowStart,
		RowEnd:      req.RowEnd,
		NumberStart: req.NumberStart,
		NumberEnd:   req.NumberEnd,
	})
	if err != nil {
		h.handleSeatError(c, err, "GenerateSeats")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"created": created})
}

func (h *SeatHandler) GetAvailableSeats(c *gin.Context) {
	venueID, err := strconv.Atoi(c.Param("venueId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	seats, err := h.service.ListAvailable(c, venueID)
	if err != nil {
		h.handleSeatError(c, err, "GetAvailableSeats")
		return
	}

	c.JSON(http.StatusOK, seats)
}

// Helper functions

func (h *SeatHandler) handleSeatError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrNotAnOrganizer):
		log.Warn("Not an organizer")
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Organizer access required",
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
