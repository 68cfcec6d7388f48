package payment

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"astrobooking/internal/domain"
	"astrobooking/internal/pkg/response"
)

type Handler struct {
	attempts attemptReader
	logger   *zap.Logger
}

func NewHandler(attempts attemptReader, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{attempts: attempts, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/booking/payments/:order_id", h.GetAttempt)
	rg.GET("/booking/sessions/:id/payments", h.ListSessionAttempts)
}

// GetAttempt godoc
// @Summary      Get payment attempt
// @Description  Returns the ledger row recorded for a gateway order
// @Tags         Payments
// @Produce      json
// @Param        order_id path string true "Gateway order id"
// @Success      200 {object} AttemptResponse
// @Failure      404 {object} response.ErrorBody
// @Router       /booking/payments/{order_id} [get]
func (h *Handler) GetAttempt(c *gin.Context) {
	orderID := c.Param("order_id")
	attempt, err := h.attempts.GetByOrderID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "payment attempt not found")
			return
		}
		h.logger.Error("failed to load payment attempt", zap.String("order_id", orderID), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load payment attempt")
		return
	}
	response.Success(c, http.StatusOK, AttemptResponse{Attempt: attempt})
}

// ListSessionAttempts godoc
// @Summary      List payment attempts of a wizard session
// @Description  Returns the ledger rows recorded for the session, oldest first
// @Tags         Payments
// @Produce      json
// @Param        id path string true "Wizard session id"
// @Success      200 {object} AttemptListResponse
// @Router       /booking/sessions/{id}/payments [get]
func (h *Handler) ListSessionAttempts(c *gin.Context) {
	sessionID := c.Param("id")
	attempts, err := h.attempts.ListBySession(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to list payment attempts", zap.String("session_id", sessionID), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list payment attempts")
		return
	}
	if attempts == nil {
		attempts = []domain.PaymentAttempt{}
	}
	response.Success(c, http.StatusOK, AttemptListResponse{Attempts: attempts})
}
