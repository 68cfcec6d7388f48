package booking

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrWrongStage      = errors.New("booking: action not allowed in current stage")
	ErrUnknownType     = errors.New("booking: unknown consultation type")
	ErrDateUnavailable = errors.New("booking: date is not offered")
	ErrSlotUnavailable = errors.New("booking: time slot is not available")
	ErrAttemptInFlight = errors.New("booking: a payment attempt is already in progress")
	ErrNoCheckout      = errors.New("booking: no checkout open for this order")
	ErrSessionNotFound = errors.New("booking: session not found")
	ErrSessionClosed   = errors.New("booking: session closed")
)

const MsgFillRequired = "Please fill in all required fields"

// ValidationError lists the contact fields that failed the presence check.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return "booking: missing required fields: " + strings.Join(names, ", ")
}
