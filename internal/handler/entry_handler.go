package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"go-ticketing-platform/internal/middleware"
	"go-ticketing-platform/internal/service"
	"go-ticketing-platform/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 入場日時の表示フォーマット
const entryTimeLayout = "2006年01月02日 15:04"

type EntryHandler struct {
	service service.EntryService
}

func NewEntryHandler(service service.EntryService) *EntryHandler {
	return &EntryHandler{service: service}
}

// RegisterRoutes 入場相關路由都需要 staff 權限
func (h *EntryHandler) RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	router := r.Group("/api/v1/entries", auth, middleware.RequireStaff())
	{
		router.POST("scan", h.Scan)
		router.GET("recent", h.ListRecent)
		router.GET("stats", h.Stats)
	}
}

type scanRequest struct {
	TicketNumber string `form:"ticket_number" binding:"required"`
	Gate         string `form:"gate"`
}

func (h *EntryHandler) Scan(c *gin.Context) {
	var req scanRequest
	if err := BindForm(c, &req); err != nil {
		return
	}

	result, err := h.service.Scan(c, req.TicketNumber, req.Gate, middleware.CurrentUserID(c))
	if err != nil {
		logger.WithComponent("handler").Error("Scan failed",
			zap.String("operation", "Scan"), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "エラーが発生しました",
		})
		return
	}

	resp := gin.H{
		"success": result.Admitted(),
		"message": scanMessage(result),
		"outcome": result.Outcome,
	}
	if result.Ticket != nil {
		resp["ticket"] = gin.H{
			"ticket_number": result.Ticket.TicketNumber,
			"status":        result.Ticket.Status,
		}
	}
	if result.Admitted() {
		resp["entry"] = gin.H{
			"entered_at": result.Entry.EnteredAt,
			"gate":       result.Entry.Gate,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// scanMessage 現場顯示用訊息。kiosk 分支邏輯依 outcome 代碼，不依字串
func scanMessage(result *service.ScanResult) string {
	switch result.Outcome {
	case service.ScanAdmitted:
		return "入場を許可しました"
	case service.ScanInvalidSignature:
		return "QRコードの検証に失敗しました。不正なチケットの可能性があります。"
	case service.ScanTicketNotFound:
		return "チケットが見つかりません"
	case service.ScanCancelled:
		return "このチケットはキャンセルされています"
	case service.ScanAlreadyUsed:
		if result.Entry != nil {
			return fmt.Sprintf("このチケットは既に使用されています（入場日時: %s）",
				result.Entry.EnteredAt.Format(entryTimeLayout))
		}
		return "このチケットは既に使用されています"
	case service.ScanTooEarly:
		if result.Event != nil {
			return fmt.Sprintf("イベント開始前です。イベント開始: %s",
				result.Event.StartDatetime.Format(entryTimeLayout))
		}
		return "イベント開始前です"
	case service.ScanEventEnded:
		return "イベントは既に終了しています"
	default:
		return "エラーが発生しました"
	}
}

func (h *EntryHandler) ListRecent(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}
		limit = parsed
	}

	entries, err := h.service.ListRecent(c, limit)
	if err != nil {
		logger.WithComponent("handler").Error("ListRecent failed",
			zap.String("operation", "ListRecent"), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *EntryHandler) Stats(c *gin.Context) {
	var eventID *int
	if raw := c.Query("event_id"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}
		eventID = &parsed
	}

	stats, err := h.service.Stats(c, eventID)
	if err != nil {
		logger.WithComponent("handler").Error("Stats failed",
			zap.String("operation", "Stats"), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
