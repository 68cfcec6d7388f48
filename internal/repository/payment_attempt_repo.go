package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"astrobooking/internal/domain"
)

type PaymentAttemptRepository struct {
	db *gorm.DB
}

func NewPaymentAttemptRepository(db *gorm.DB) *PaymentAttemptRepository {
	return &PaymentAttemptRepository{db: db}
}

// Create inserts the attempt. A second insert for the same order id is a no-op.
func (r *PaymentAttemptRepository) Create(ctx context.Context, a *domain.PaymentAttempt) error {
	if a.Status == "" {
		a.Status = domain.AttemptStatusCreated
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "order_id"}}, DoNothing: true}).
		Create(a).Error
}

func (r *PaymentAttemptRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.PaymentAttempt, error) {
	var a domain.PaymentAttempt
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PaymentAttemptRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.PaymentAttempt, error) {
	var out []domain.PaymentAttempt
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// UpdateStatus records a non-paid terminal status. Paid rows are never
// downgraded.
func (r *PaymentAttemptRepository) UpdateStatus(ctx context.Context, orderID string, status domain.PaymentAttemptStatus, reason string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.PaymentAttempt{}).
		Where("order_id = ? AND status <> ?", orderID, domain.AttemptStatusPaid).
		Updates(map[string]interface{}{
			"status":         status,
			"failure_reason": reason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var existing int64
	if err := r.db.WithContext(ctx).Model(&domain.PaymentAttempt{}).Where("order_id = ?", orderID).Count(&existing).Error; err != nil {
		return err
	}
	if existing == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkPaidIdempotent flips the attempt to paid once; changed is false when it
// already was.
func (r *PaymentAttemptRepository) MarkPaidIdempotent(ctx context.Context, orderID, paymentID string, paidAt time.Time) (bool, error) {
	var changed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a domain.PaymentAttempt
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("order_id = ?", orderID).First(&a).Error; err != nil {
			return err
		}
		if a.Status == domain.AttemptStatusPaid {
			changed = false
			return nil
		}
		res := tx.Model(&domain.PaymentAttempt{}).Where("order_id = ?", orderID).Updates(map[string]interface{}{
			"status":         domain.AttemptStatusPaid,
			"payment_id":     paymentID,
			"failure_reason": "",
			"paid_at":        paidAt,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.New("payment attempt not updated")
		}
		changed = true
		return nil
	})
	return changed, err
}
