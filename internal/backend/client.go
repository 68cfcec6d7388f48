package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"astrobooking/internal/domain"
)

// DefaultTimeout bounds every backend call.
const DefaultTimeout = 10 * time.Second

var tracer = otel.Tracer("astrobooking.internal.backend")

// LatencyObserver receives one observation per backend call.
type LatencyObserver interface {
	ObserveBackendCall(operation, status string, seconds float64)
}

// Client talks to the booking backend (order creation and payment verification).
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	observer   LatencyObserver
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// WithObserver attaches a latency observer.
func (c *Client) WithObserver(o LatencyObserver) *Client {
	c.observer = o
	return c
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreateOrder asks the backend for a gateway order of amountMajorUnits.
func (c *Client) CreateOrder(ctx context.Context, session domain.Session, amountMajorUnits int64, currency string) (*Order, error) {
	ctx, span := tracer.Start(ctx, "backend.create_order")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("astrobooking.amount_major_units", amountMajorUnits),
		attribute.String("astrobooking.currency", currency),
	)

	var order Order
	if err := c.post(ctx, "create_order", "/create-order", session, createOrderRequest{Amount: amountMajorUnits, Currency: currency}, &order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create order failed")
		return nil, err
	}
	if order.ID == "" {
		err := errors.New("backend: create order returned no order id")
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("astrobooking.order_id", order.ID))
	return &order, nil
}

// VerifyPayment asks the backend to check the gateway signature.
func (c *Client) VerifyPayment(ctx context.Context, session domain.Session, v Verification) (*VerifyResult, error) {
	ctx, span := tracer.Start(ctx, "backend.verify_payment")
	defer span.End()
	span.SetAttributes(
		attribute.String("astrobooking.order_id", v.OrderID),
		attribute.String("astrobooking.payment_id", v.PaymentID),
	)

	var res VerifyResult
	if err := c.post(ctx, "verify_payment", "/verify-payment", session, v, &res); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "verify payment failed")
		return nil, err
	}
	return &res, nil
}

func (c *Client) post(ctx context.Context, op, path string, session domain.Session, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("backend: %s payload: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("backend: %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if session.Present() {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(op, "unreachable", started)
		c.logger.Warn("backend call failed", zap.String("operation", op), zap.Error(err))
		return &UnreachableError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.observe(op, "unreachable", started)
		return &UnreachableError{Op: op, Err: err}
	}
	if resp.StatusCode >= 300 {
		c.observe(op, "error", started)
		apiErr := &APIError{Op: op, StatusCode: resp.StatusCode, Detail: parseDetail(raw)}
		c.logger.Info("backend rejected call",
			zap.String("operation", op),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", apiErr.Detail),
		)
		return apiErr
	}
	c.observe(op, "ok", started)

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("backend: %s decode: %w", op, err)
	}
	return nil
}

func (c *Client) observe(op, status string, started time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveBackendCall(op, status, time.Since(started).Seconds())
}

// parseDetail pulls the human readable message out of an error body. The
// backend answers with {"detail": "..."}; anything else gets a generic text.
func parseDetail(raw []byte) string {
	var body struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if s, ok := body.Detail.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return GenericErrorMessage
}
