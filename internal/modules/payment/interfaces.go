package payment

import (
	"context"
	"time"

	"astrobooking/internal/backend"
	"astrobooking/internal/domain"
)

type orderBackend interface {
	CreateOrder(ctx context.Context, session domain.Session, amountMajorUnits int64, currency string) (*backend.Order, error)
	VerifyPayment(ctx context.Context, session domain.Session, v backend.Verification) (*backend.VerifyResult, error)
}

type attemptLedger interface {
	Create(ctx context.Context, a *domain.PaymentAttempt) error
	UpdateStatus(ctx context.Context, orderID string, status domain.PaymentAttemptStatus, reason string) error
	MarkPaidIdempotent(ctx context.Context, orderID, paymentID string, paidAt time.Time) (bool, error)
}

type attemptReader interface {
	GetByOrderID(ctx context.Context, orderID string) (*domain.PaymentAttempt, error)
	ListBySession(ctx context.Context, sessionID string) ([]domain.PaymentAttempt, error)
}

type attemptObserver interface {
	ObserveAttempt(outcome string)
}
