package domain

import "time"

type PaymentAttemptStatus string

const (
	AttemptStatusCreated   PaymentAttemptStatus = "created"
	AttemptStatusPaid      PaymentAttemptStatus = "paid"
	AttemptStatusFailed    PaymentAttemptStatus = "failed"
	AttemptStatusDismissed PaymentAttemptStatus = "dismissed"
)

// PaymentAttempt is the local ledger row for one order/checkout attempt.
type PaymentAttempt struct {
	ID               int64                `gorm:"primaryKey" json:"id"`
	OrderID          string               `gorm:"type:varchar(64);uniqueIndex;not null" json:"order_id"`
	SessionID        string               `gorm:"type:varchar(64);index" json:"-"`
	ConsultationType string               `gorm:"type:varchar(32)" json:"consultation_type"`
	AmountMinorUnits int64                `gorm:"not null" json:"amount_minor_units"`
	Currency         string               `gorm:"type:varchar(8);not null" json:"currency"`
	Status           PaymentAttemptStatus `gorm:"type:varchar(20);default:'created';index" json:"status"`
	PaymentID        string               `gorm:"type:varchar(64)" json:"payment_id,omitempty"`
	FailureReason    string               `gorm:"type:text" json:"failure_reason,omitempty"`
	ScheduledStart   *time.Time           `json:"scheduled_start,omitempty"`
	InviteURL        string               `gorm:"type:text" json:"invite_url,omitempty"`
	PaidAt           *time.Time           `json:"paid_at,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

func (PaymentAttempt) TableName() string { return "payment_attempts" }
