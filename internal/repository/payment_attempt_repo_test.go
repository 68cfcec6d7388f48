package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"astrobooking/internal/domain"
)

func setupAttemptRepo(t *testing.T) *PaymentAttemptRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:attempts_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.PaymentAttempt{}))
	return NewPaymentAttemptRepository(db)
}

func newAttempt(orderID string) *domain.PaymentAttempt {
	return &domain.PaymentAttempt{
		OrderID:          orderID,
		SessionID:        "sess-1",
		ConsultationType: "career",
		AmountMinorUnits: 299900,
		Currency:         "INR",
	}
}

func TestPaymentAttemptRepository_CreateAndGet(t *testing.T) {
	repo := setupAttemptRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newAttempt("order_1")))
	require.NoError(t, repo.Create(ctx, newAttempt("order_1")))

	got, err := repo.GetByOrderID(ctx, "order_1")
	require.NoError(t, err)
	assert.Equal(t, domain.AttemptStatusCreated, got.Status)
	assert.Equal(t, int64(299900), got.AmountMinorUnits)

	list, err := repo.ListBySession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = repo.GetByOrderID(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPaymentAttemptRepository_MarkPaidIdempotent(t *testing.T) {
	repo := setupAttemptRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newAttempt("order_2")))

	paidAt := time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)
	changed, err := repo.MarkPaidIdempotent(ctx, "order_2", "pay_2", paidAt)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.MarkPaidIdempotent(ctx, "order_2", "pay_2", paidAt)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := repo.GetByOrderID(ctx, "order_2")
	require.NoError(t, err)
	assert.Equal(t, domain.AttemptStatusPaid, got.Status)
	assert.Equal(t, "pay_2", got.PaymentID)
	require.NotNil(t, got.PaidAt)
}

func TestPaymentAttemptRepository_UpdateStatusKeepsPaid(t *testing.T) {
	repo := setupAttemptRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newAttempt("order_3")))

	require.NoError(t, repo.UpdateStatus(ctx, "order_3", domain.AttemptStatusFailed, "Card declined"))
	got, err := repo.GetByOrderID(ctx, "order_3")
	require.NoError(t, err)
	assert.Equal(t, domain.AttemptStatusFailed, got.Status)
	assert.Equal(t, "Card declined", got.FailureReason)

	_, err = repo.MarkPaidIdempotent(ctx, "order_3", "pay_3", time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, "order_3", domain.AttemptStatusDismissed, ""))

	got, err = repo.GetByOrderID(ctx, "order_3")
	require.NoError(t, err)
	assert.Equal(t, domain.AttemptStatusPaid, got.Status)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", domain.AttemptStatusFailed, ""), gorm.ErrRecordNotFound)
}
