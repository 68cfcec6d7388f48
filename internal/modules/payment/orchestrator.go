package payment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"astrobooking/internal/backend"
	"astrobooking/internal/domain"
)

type ResultKind string

const (
	ResultSuccess   ResultKind = "success"
	ResultFailure   ResultKind = "failure"
	ResultDismissed ResultKind = "dismissed"
)

// Result is the terminal outcome of one payment attempt.
type Result struct {
	Kind      ResultKind `json:"kind"`
	OrderID   string     `json:"order_id,omitempty"`
	PaymentID string     `json:"payment_id,omitempty"`
	Signature string     `json:"-"`
	Reason    string     `json:"reason,omitempty"`
}

// Config holds the merchant-facing widget settings.
type Config struct {
	KeyID       string
	DisplayName string
	Currency    string
}

// Request describes what is being paid for. ScheduledStart and InviteURL are
// stored on the ledger row only.
type Request struct {
	SessionID      string
	Session        domain.Session
	Type           domain.ConsultationType
	Contact        domain.Contact
	ScheduledStart *time.Time
	InviteURL      string
	Opened         func(CheckoutOptions)
}

// Orchestrator runs order creation, the checkout handshake and signature
// verification for one attempt at a time per caller.
type Orchestrator struct {
	backend  orderBackend
	checkout Checkout
	ledger   attemptLedger
	observer attemptObserver
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

func NewOrchestrator(b orderBackend, checkout Checkout, ledger attemptLedger, cfg Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	return &Orchestrator{
		backend:  b,
		checkout: checkout,
		ledger:   ledger,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// WithObserver attaches an attempt outcome observer.
func (o *Orchestrator) WithObserver(obs attemptObserver) *Orchestrator {
	o.observer = obs
	return o
}

// RequireSession rejects callers without a credential. It performs no I/O.
func RequireSession(s domain.Session) error {
	if !s.Present() {
		return ErrAuthRequired
	}
	return nil
}

// Pay runs one attempt to completion. The returned error classifies failures
// (ErrAuthRequired, *OrderCreationError, ErrPaymentFailed, *VerificationError);
// a dismissed widget is not an error.
func (o *Orchestrator) Pay(ctx context.Context, req Request) (Result, error) {
	if err := RequireSession(req.Session); err != nil {
		o.observe("auth_required")
		return Result{}, err
	}
	log := o.logger.With(zap.String("session_id", req.SessionID), zap.String("consultation_type", req.Type.ID))

	order, err := o.backend.CreateOrder(ctx, req.Session, req.Type.PriceMajorUnits, o.cfg.Currency)
	if err != nil {
		log.Warn("order creation failed", zap.Error(err))
		o.observe("order_error")
		return Result{Kind: ResultFailure}, &OrderCreationError{Err: err}
	}
	log = log.With(zap.String("order_id", order.ID))
	log.Info("payment order created", zap.Int64("amount_minor_units", order.AmountMinorUnits), zap.String("currency", order.Currency))

	o.record(ctx, log, &domain.PaymentAttempt{
		OrderID:          order.ID,
		SessionID:        req.SessionID,
		ConsultationType: req.Type.ID,
		AmountMinorUnits: order.AmountMinorUnits,
		Currency:         order.Currency,
		Status:           domain.AttemptStatusCreated,
		ScheduledStart:   req.ScheduledStart,
		InviteURL:        req.InviteURL,
	})

	opts := CheckoutOptions{
		KeyID:            o.cfg.KeyID,
		OrderID:          order.ID,
		AmountMinorUnits: order.AmountMinorUnits,
		Currency:         order.Currency,
		DisplayName:      o.cfg.DisplayName,
		Description:      req.Type.Name + " Consultation",
		Prefill: Prefill{
			Name:    req.Contact.Name,
			Email:   req.Contact.Email,
			Contact: req.Contact.Phone,
		},
	}
	outcome, err := o.checkout.Open(ctx, opts, req.Opened)
	if err != nil {
		log.Warn("checkout abandoned", zap.Error(err))
		o.updateStatus(ctx, log, order.ID, domain.AttemptStatusFailed, "checkout abandoned")
		o.observe("abandoned")
		return Result{Kind: ResultFailure, OrderID: order.ID, Reason: "checkout abandoned"}, fmt.Errorf("payment: checkout: %w", err)
	}

	switch outcome.Kind {
	case OutcomeDismissed:
		log.Info("checkout dismissed")
		o.updateStatus(ctx, log, order.ID, domain.AttemptStatusDismissed, "")
		o.observe(string(ResultDismissed))
		return Result{Kind: ResultDismissed, OrderID: order.ID}, nil

	case OutcomeFailed:
		log.Info("checkout failed", zap.String("reason", outcome.Reason))
		o.updateStatus(ctx, log, order.ID, domain.AttemptStatusFailed, outcome.Reason)
		o.observe("payment_failed")
		return Result{Kind: ResultFailure, OrderID: order.ID, Reason: outcome.Reason}, fmt.Errorf("%w: %s", ErrPaymentFailed, outcome.Reason)
	}

	v := backend.Verification{OrderID: outcome.OrderID, PaymentID: outcome.PaymentID, Signature: outcome.Signature}
	if v.OrderID == "" {
		v.OrderID = order.ID
	}
	if _, err := o.backend.VerifyPayment(ctx, req.Session, v); err != nil {
		log.Warn("payment verification failed", zap.String("payment_id", v.PaymentID), zap.Error(err))
		o.updateStatus(ctx, log, order.ID, domain.AttemptStatusFailed, verificationFailedReason)
		o.observe("verification_failed")
		return Result{Kind: ResultFailure, OrderID: v.OrderID, PaymentID: v.PaymentID, Reason: verificationFailedReason}, &VerificationError{OrderID: v.OrderID, Err: err}
	}

	if o.ledger != nil {
		changed, err := o.ledger.MarkPaidIdempotent(context.WithoutCancel(ctx), order.ID, v.PaymentID, o.now().UTC())
		if err != nil {
			log.Error("failed to mark attempt paid", zap.Error(err))
		} else if !changed {
			log.Info("attempt already marked paid")
		}
	}
	log.Info("payment verified", zap.String("payment_id", v.PaymentID))
	o.observe(string(ResultSuccess))
	return Result{Kind: ResultSuccess, OrderID: v.OrderID, PaymentID: v.PaymentID, Signature: v.Signature}, nil
}

func (o *Orchestrator) record(ctx context.Context, log *zap.Logger, a *domain.PaymentAttempt) {
	if o.ledger == nil {
		return
	}
	if err := o.ledger.Create(context.WithoutCancel(ctx), a); err != nil {
		log.Error("failed to record payment attempt", zap.Error(err))
	}
}

func (o *Orchestrator) updateStatus(ctx context.Context, log *zap.Logger, orderID string, status domain.PaymentAttemptStatus, reason string) {
	if o.ledger == nil {
		return
	}
	// The attempt context may already be cancelled when the wizard closes.
	if err := o.ledger.UpdateStatus(context.WithoutCancel(ctx), orderID, status, reason); err != nil {
		log.Error("failed to update payment attempt", zap.String("status", string(status)), zap.Error(err))
	}
}

func (o *Orchestrator) observe(outcome string) {
	if o.observer != nil {
		o.observer.ObserveAttempt(outcome)
	}
}
