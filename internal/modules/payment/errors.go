package payment

import (
	"errors"
	"fmt"

	"astrobooking/internal/backend"
)

var (
	ErrAuthRequired  = errors.New("payment: sign in required")
	ErrPaymentFailed = errors.New("payment: checkout reported failure")
	ErrNoPending     = errors.New("payment: no checkout pending for order")
)

const (
	MsgAuthRequired       = "Please sign in to book a consultation"
	MsgSomethingWentWrong = "Something went wrong. Please try again."
	MsgPaymentFailed      = "Payment failed. Please try again."
	MsgVerificationFailed = "Payment verification failed. Please contact support."
	MsgPaymentSucceeded   = "Payment successful! Redirecting to schedule your meeting..."

	verificationFailedReason = "verification failed"
)

// OrderCreationError wraps any failure of the create-order call.
type OrderCreationError struct {
	Err error
}

func (e *OrderCreationError) Error() string {
	return fmt.Sprintf("payment: create order: %v", e.Err)
}

func (e *OrderCreationError) Unwrap() error { return e.Err }

// VerificationError is returned when the backend rejects the signature or the
// verification call cannot complete.
type VerificationError struct {
	OrderID string
	Err     error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("payment: verify order %s: %v", e.OrderID, e.Err)
}

func (e *VerificationError) Unwrap() error { return e.Err }

// UserMessage maps an attempt error to the status text shown on the page.
// reason is the widget's failure description, if any.
func UserMessage(err error, reason string) string {
	var orderErr *OrderCreationError
	var verifyErr *VerificationError
	switch {
	case errors.Is(err, ErrAuthRequired):
		return MsgAuthRequired
	case errors.As(err, &orderErr):
		if msg, ok := backend.UserMessage(orderErr.Err); ok && msg != "" {
			return msg
		}
		return MsgSomethingWentWrong
	case errors.As(err, &verifyErr):
		return MsgVerificationFailed
	case errors.Is(err, ErrPaymentFailed):
		if reason != "" {
			return reason
		}
		return MsgPaymentFailed
	default:
		return MsgSomethingWentWrong
	}
}
