package booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"astrobooking/internal/middleware"
	"astrobooking/internal/modules/availability"
	"astrobooking/internal/modules/payment"
	"astrobooking/internal/modules/status"
	"astrobooking/internal/pkg/response"
)

type Handler struct {
	registry *Registry
	hub      *status.Hub
	loc      *time.Location
	logger   *zap.Logger
}

func NewHandler(registry *Registry, hub *status.Hub, loc *time.Location, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{registry: registry, hub: hub, loc: loc, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/booking/sessions", h.CreateSession)

	s := rg.Group("/booking/sessions/:id")
	s.GET("", h.GetSession)
	s.DELETE("", h.DeleteSession)
	s.POST("/type", h.SelectType)
	s.POST("/date", h.SelectDate)
	s.POST("/time", h.SelectTime)
	s.PUT("/contact", h.UpdateContact)
	s.POST("/back", h.Back)
	s.POST("/restart", h.Restart)
	s.POST("/status/dismiss", h.DismissStatus)
	s.POST("/pay", h.SubmitPayment)
	s.POST("/checkout/complete", h.CheckoutComplete)
	s.POST("/checkout/failed", h.CheckoutFailed)
	s.POST("/checkout/dismissed", h.CheckoutDismissed)
	s.GET("/ws", h.WebSocket)
}

// CreateSession godoc
// @Summary      Start a booking wizard
// @Description  Called when the booking page is entered
// @Tags         Booking
// @Produce      json
// @Success      201 {object} SessionResponse
// @Router       /booking/sessions [post]
func (h *Handler) CreateSession(c *gin.Context) {
	w := h.registry.Create(middleware.SessionFrom(c))
	response.Success(c, http.StatusCreated, SessionResponse{Session: w.Snapshot()})
}

// GetSession godoc
// @Summary      Current wizard state
// @Tags         Booking
// @Produce      json
// @Param        id path string true "Wizard session id"
// @Success      200 {object} SessionResponse
// @Failure      404 {object} response.ErrorBody
// @Router       /booking/sessions/{id} [get]
func (h *Handler) GetSession(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	h.ok(c, w)
}

// DeleteSession godoc
// @Summary      Discard a booking wizard
// @Description  Called when the user navigates away
// @Tags         Booking
// @Param        id path string true "Wizard session id"
// @Success      204
// @Failure      404 {object} response.ErrorBody
// @Router       /booking/sessions/{id} [delete]
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.registry.Delete(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SelectType godoc
// @Summary      Choose consultation type
// @Tags         Booking
// @Accept       json
// @Produce      json
// @Param        id path string true "Wizard session id"
// @Param        body body SelectTypeRequest true "Type"
// @Success      200 {object} SessionResponse
// @Failure      409 {object} response.ErrorBody
// @Failure      422 {object} response.ErrorBody
// @Router       /booking/sessions/{id}/type [post]
func (h *Handler) SelectType(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	var req SelectTypeRequest
	if !bind(c, &req) {
		return
	}
	if err := w.SelectType(req.TypeID); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, w)
}

// SelectDate godoc
// @Summary      Choose consultation date
// @Tags         Booking
// @Accept       json
// @Produce      json
// @Param        id path string true "Wizard session id"
// @Param        body body SelectDateRequest true "Date"
// @Success      200 {object} SessionResponse
// @Failure      409 {object} response.ErrorBody
// @Failure      422 {object} response.ErrorBody
// @Router       /booking/sessions/{id}/date [post]
func (h *Handler) SelectDate(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	var req SelectDateRequest
	if !bind(c, &req) {
		return
	}
	date, err := time.ParseInLocation(availability.DateLayout, req.Date, h.loc)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "date must be YYYY-MM-DD")
		return
	}
	if err := w.SelectDate(date); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, w)
}

// SelectTime godoc
// @Summary      Choose time slot
// @Tags         Booking
// @Accept       json
// @Produce      json
// @Param        id path string true "Wizard session id"
// @Param        body body SelectTimeRequest true "Slot label"
// @Success      200 {object} SessionResponse
// @Failure      409 {object} response.ErrorBody
// @Failure      422 {object} response.ErrorBody
// @Router       /booking/sessions/{id}/time [post]
func (h *Handler) SelectTime(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	var req SelectTimeRequest
	if !bind(c, &req) {
		return
	}
	if err := w.SelectTime(req.Time); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, w)
}

// UpdateContact godoc
// @Summary      Save contact details
// @Tags         Booking
// @Accept       json
// @Produce      json
// @Param        id path string true "Wizard session id"
// @Param        body body ContactRequest true "Contact"
// @Success      200 {object} SessionResponse
// @Failure      409 {object} response.ErrorBody
// @Router       /booking/sessions/{id}/contact [put]
func (h *Handler) UpdateContact(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	var req ContactRequest
	if !bind(c, &req) {
		return
	}
	if err := w.UpdateContact(req); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, w)
}

// Back godoc
// @Summary      Go back one stage
// @Tags         Booking
// @Produce      json
// @Param        id path string true "Wizard session id"
// @Success      200 {object} SessionResponse
// @Failure      409 {object} response.ErrorBody
// @Router       /booking/sessions/{id}/back [post]
func (h *Handler) Back(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	if err := w.Back(); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, w)
}

// Restart godoc
// @Summary      Start over
// @Tags         Booking
// @Produce      json
// @Param        id path string true "Wizard session id"
// @Success      200 {object} SessionResponse
// @Failure      409 {object} response.ErrorBody
// @Router       /booking/sessions/{id}/restart [post]
func (h *Handler) Restart(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	if err := w.Restart(); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, w)
}

// DismissStatus godoc
// @Summary      Close the status message
// @Tags         Booking
// @Produce      json
// @Param        id path string true "Wizard session id"
// @Success      200 {object} SessionResponse
// @Failure      404 {object} response.ErrorBody
// @Router       /booking/sessions/{id}/status/dismiss [post]
func (h *Handler) DismissStatus(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	if err := w.DismissStatus(); err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, w)
}

// SubmitPayment godoc
// @Summary      Pay for the selected consultation
// @Description  Starts order creation and opens checkout; progress is pushed over the session websocket
// @Tags         Booking
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "Wizard session id"
// @Success      202 {object} SessionResponse
// @Failure      400 {object} response.ErrorBody
// @Failure      401 {object} response.ErrorBody
// @Failure      409 {object} response.ErrorBody
// @Router       /booking/sessions/{id}/pay [post]
func (h *Handler) SubmitPayment(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	if s := middleware.SessionFrom(c); s.Present() {
		w.Authenticate(s)
	}
	if _, err := w.SubmitPayment(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusAccepted, SessionResponse{Session: w.Snapshot()})
}

// CheckoutComplete godoc
// @Summary      Relay checkout success
// @Tags         Booking
// @Accept       json
// @Param        id path string true "Wizard session id"
// @Param        body body CheckoutCompleteRequest true "Widget handler payload"
// @Success      202 {object} SessionResponse
// @Failure      409 {object} response.ErrorBody
// @Router       /booking/sessions/{id}/checkout/complete [post]
func (h *Handler) CheckoutComplete(c *gin.Context) {
	var req CheckoutCompleteRequest
	h.resolve(c, &req, func() payment.Outcome {
		return payment.Outcome{Kind: payment.OutcomeCompleted, OrderID: req.OrderID, PaymentID: req.PaymentID, Signature: req.Signature}
	})
}

// CheckoutFailed godoc
// @Summary      Relay checkout failure
// @Tags         Booking
// @Accept       json
// @Param        id path string true "Wizard session id"
// @Param        body body CheckoutFailedRequest true "Failure"
// @Success      202 {object} SessionResponse
// @Failure      409 {object} response.ErrorBody
// @Router       /booking/sessions/{id}/checkout/failed [post]
func (h *Handler) CheckoutFailed(c *gin.Context) {
	var req CheckoutFailedRequest
	h.resolve(c, &req, func() payment.Outcome {
		return payment.Outcome{Kind: payment.OutcomeFailed, OrderID: req.OrderID, Reason: req.Reason}
	})
}

// CheckoutDismissed godoc
// @Summary      Relay checkout dismissal
// @Tags         Booking
// @Accept       json
// @Param        id path string true "Wizard session id"
// @Param        body body CheckoutDismissedRequest true "Order"
// @Success      202 {object} SessionResponse
// @Failure      409 {object} response.ErrorBody
// @Router       /booking/sessions/{id}/checkout/dismissed [post]
func (h *Handler) CheckoutDismissed(c *gin.Context) {
	var req CheckoutDismissedRequest
	h.resolve(c, &req, func() payment.Outcome {
		return payment.Outcome{Kind: payment.OutcomeDismissed, OrderID: req.OrderID}
	})
}

// WebSocket godoc
// @Summary      Wizard event stream
// @Tags         Booking
// @Param        id path string true "Wizard session id"
// @Router       /booking/sessions/{id}/ws [get]
func (h *Handler) WebSocket(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	conn, err := status.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.String("session_id", w.ID()), zap.Error(err))
		return
	}
	h.hub.ServeWS(conn, w.ID())
}

func (h *Handler) resolve(c *gin.Context, req any, outcome func() payment.Outcome) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	if !bind(c, req) {
		return
	}
	if err := w.ResolveCheckout(outcome()); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusAccepted, SessionResponse{Session: w.Snapshot()})
}

func (h *Handler) wizard(c *gin.Context) (*Wizard, bool) {
	w, err := h.registry.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return w, true
}

func (h *Handler) ok(c *gin.Context, w *Wizard) {
	response.Success(c, http.StatusOK, SessionResponse{Session: w.Snapshot()})
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return false
	}
	return true
}

func (h *Handler) fail(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrSessionClosed):
		response.NotFound(c, "booking session not found")
	case errors.Is(err, payment.ErrAuthRequired):
		response.Unauthorized(c, payment.MsgAuthRequired)
	case errors.As(err, &verr):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", MsgFillRequired, verr.Fields)
	case errors.Is(err, ErrAttemptInFlight):
		response.Conflict(c, "ATTEMPT_IN_FLIGHT", "A payment is already in progress")
	case errors.Is(err, ErrWrongStage):
		response.Conflict(c, "WRONG_STAGE", "This step is not available right now")
	case errors.Is(err, ErrNoCheckout):
		response.Conflict(c, "NO_CHECKOUT", "No checkout is open for this order")
	case errors.Is(err, ErrUnknownType):
		response.Error(c, http.StatusUnprocessableEntity, "UNKNOWN_TYPE", "Unknown consultation type")
	case errors.Is(err, ErrDateUnavailable):
		response.Error(c, http.StatusUnprocessableEntity, "DATE_UNAVAILABLE", "That date is not available")
	case errors.Is(err, ErrSlotUnavailable):
		response.Error(c, http.StatusUnprocessableEntity, "SLOT_UNAVAILABLE", "That time slot is not available")
	default:
		h.logger.Error("booking request failed", zap.String("path", c.FullPath()), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", payment.MsgSomethingWentWrong)
	}
}
