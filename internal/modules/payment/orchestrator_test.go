package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"astrobooking/internal/backend"
	"astrobooking/internal/domain"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) CreateOrder(ctx context.Context, session domain.Session, amount int64, currency string) (*backend.Order, error) {
	args := m.Called(ctx, session, amount, currency)
	if o := args.Get(0); o != nil {
		return o.(*backend.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBackend) VerifyPayment(ctx context.Context, session domain.Session, v backend.Verification) (*backend.VerifyResult, error) {
	args := m.Called(ctx, session, v)
	if r := args.Get(0); r != nil {
		return r.(*backend.VerifyResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type fakeLedger struct {
	mu       sync.Mutex
	created  []*domain.PaymentAttempt
	statuses map[string]domain.PaymentAttemptStatus
	reasons  map[string]string
	paid     map[string]string
	failWith error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		statuses: map[string]domain.PaymentAttemptStatus{},
		reasons:  map[string]string{},
		paid:     map[string]string{},
	}
}

func (l *fakeLedger) Create(ctx context.Context, a *domain.PaymentAttempt) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failWith != nil {
		return l.failWith
	}
	l.created = append(l.created, a)
	l.statuses[a.OrderID] = a.Status
	return nil
}

func (l *fakeLedger) UpdateStatus(ctx context.Context, orderID string, status domain.PaymentAttemptStatus, reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	l.statuses[orderID] = status
	l.reasons[orderID] = reason
	return nil
}

func (l *fakeLedger) MarkPaidIdempotent(ctx context.Context, orderID, paymentID string, paidAt time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.statuses[orderID] == domain.AttemptStatusPaid {
		return false, nil
	}
	l.statuses[orderID] = domain.AttemptStatusPaid
	l.paid[orderID] = paymentID
	return true, nil
}

func (l *fakeLedger) status(orderID string) domain.PaymentAttemptStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.statuses[orderID]
}

type scriptedCheckout struct {
	outcome Outcome
	err     error
	opened  []CheckoutOptions
}

func (s *scriptedCheckout) Open(ctx context.Context, opts CheckoutOptions, opened func(CheckoutOptions)) (Outcome, error) {
	s.opened = append(s.opened, opts)
	if opened != nil {
		opened(opts)
	}
	return s.outcome, s.err
}

type countingObserver struct {
	outcomes []string
}

func (c *countingObserver) ObserveAttempt(outcome string) { c.outcomes = append(c.outcomes, outcome) }

var careerType = domain.ConsultationType{ID: "career", Name: "Career", DurationMinutes: 45, PriceMajorUnits: 2999}

func payRequest() Request {
	return Request{
		SessionID: "sess-1",
		Session:   domain.Session{Token: "tok"},
		Type:      careerType,
		Contact:   domain.Contact{Name: "Asha", Email: "a@x.in", Phone: "9999999999"},
	}
}

func newTestOrchestrator(b orderBackend, c Checkout, l attemptLedger) *Orchestrator {
	return NewOrchestrator(b, c, l, Config{KeyID: "rzp_test", DisplayName: "AstroTech Wealth"}, nil)
}

func TestPay_Success(t *testing.T) {
	be := new(mockBackend)
	be.On("CreateOrder", mock.Anything, domain.Session{Token: "tok"}, int64(2999), "INR").
		Return(&backend.Order{ID: "order_1", AmountMinorUnits: 299900, Currency: "INR"}, nil).Once()
	be.On("VerifyPayment", mock.Anything, domain.Session{Token: "tok"}, backend.Verification{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig"}).
		Return(&backend.VerifyResult{Status: "success"}, nil).Once()

	co := &scriptedCheckout{outcome: Outcome{Kind: OutcomeCompleted, OrderID: "order_1", PaymentID: "pay_1", Signature: "sig"}}
	ledger := newFakeLedger()
	obs := &countingObserver{}
	o := newTestOrchestrator(be, co, ledger).WithObserver(obs)

	res, err := o.Pay(context.Background(), payRequest())
	require.NoError(t, err)
	assert.Equal(t, ResultSuccess, res.Kind)
	assert.Equal(t, "order_1", res.OrderID)
	assert.Equal(t, "pay_1", res.PaymentID)

	require.Len(t, co.opened, 1)
	opts := co.opened[0]
	assert.Equal(t, "rzp_test", opts.KeyID)
	assert.Equal(t, int64(299900), opts.AmountMinorUnits)
	assert.Equal(t, "Career Consultation", opts.Description)
	assert.Equal(t, "AstroTech Wealth", opts.DisplayName)
	assert.Equal(t, Prefill{Name: "Asha", Email: "a@x.in", Contact: "9999999999"}, opts.Prefill)

	assert.Equal(t, domain.AttemptStatusPaid, ledger.status("order_1"))
	assert.Equal(t, "pay_1", ledger.paid["order_1"])
	assert.Equal(t, []string{"success"}, obs.outcomes)
	be.AssertExpectations(t)
}

func TestPay_NoSessionMakesNoCalls(t *testing.T) {
	be := new(mockBackend)
	co := &scriptedCheckout{}
	o := newTestOrchestrator(be, co, nil)

	req := payRequest()
	req.Session = domain.Session{}
	_, err := o.Pay(context.Background(), req)

	require.ErrorIs(t, err, ErrAuthRequired)
	assert.Equal(t, MsgAuthRequired, UserMessage(err, ""))
	assert.Empty(t, co.opened)
	be.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPay_OrderCreationError(t *testing.T) {
	be := new(mockBackend)
	be.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &backend.UnreachableError{Err: errors.New("dial tcp: refused")}).Once()
	co := &scriptedCheckout{}
	o := newTestOrchestrator(be, co, newFakeLedger())

	res, err := o.Pay(context.Background(), payRequest())
	require.Error(t, err)
	var orderErr *OrderCreationError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, ResultFailure, res.Kind)
	assert.Equal(t, backend.UnreachableErrorMessage, UserMessage(err, ""))
	assert.Empty(t, co.opened)
}

func TestPay_OrderCreationBackendDetail(t *testing.T) {
	be := new(mockBackend)
	be.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &backend.APIError{Op: "create_order", StatusCode: 400, Detail: "Amount too low"}).Once()
	o := newTestOrchestrator(be, &scriptedCheckout{}, nil)

	_, err := o.Pay(context.Background(), payRequest())
	assert.Equal(t, "Amount too low", UserMessage(err, ""))
}

func TestPay_VerificationRejected(t *testing.T) {
	be := new(mockBackend)
	be.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&backend.Order{ID: "order_2", AmountMinorUnits: 299900, Currency: "INR"}, nil).Once()
	be.On("VerifyPayment", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &backend.APIError{Op: "verify_payment", StatusCode: 400, Detail: "Invalid signature"}).Once()
	co := &scriptedCheckout{outcome: Outcome{Kind: OutcomeCompleted, OrderID: "order_2", PaymentID: "pay_2", Signature: "bad"}}
	ledger := newFakeLedger()
	o := newTestOrchestrator(be, co, ledger)

	res, err := o.Pay(context.Background(), payRequest())
	var verifyErr *VerificationError
	require.ErrorAs(t, err, &verifyErr)
	assert.Equal(t, ResultFailure, res.Kind)
	assert.Equal(t, "verification failed", res.Reason)
	assert.Equal(t, MsgVerificationFailed, UserMessage(err, res.Reason))
	assert.Equal(t, domain.AttemptStatusFailed, ledger.status("order_2"))
}

func TestPay_WidgetFailure(t *testing.T) {
	be := new(mockBackend)
	be.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&backend.Order{ID: "order_3", AmountMinorUnits: 299900, Currency: "INR"}, nil).Once()
	co := &scriptedCheckout{outcome: Outcome{Kind: OutcomeFailed, Reason: "Card declined"}}
	ledger := newFakeLedger()
	o := newTestOrchestrator(be, co, ledger)

	res, err := o.Pay(context.Background(), payRequest())
	require.ErrorIs(t, err, ErrPaymentFailed)
	assert.Equal(t, "Card declined", res.Reason)
	assert.Equal(t, "Card declined", UserMessage(err, res.Reason))
	assert.Equal(t, MsgPaymentFailed, UserMessage(err, ""))
	assert.Equal(t, domain.AttemptStatusFailed, ledger.status("order_3"))
	be.AssertNotCalled(t, "VerifyPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestPay_Dismissed(t *testing.T) {
	be := new(mockBackend)
	be.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&backend.Order{ID: "order_4", AmountMinorUnits: 299900, Currency: "INR"}, nil).Once()
	co := &scriptedCheckout{outcome: Outcome{Kind: OutcomeDismissed}}
	ledger := newFakeLedger()
	o := newTestOrchestrator(be, co, ledger)

	res, err := o.Pay(context.Background(), payRequest())
	require.NoError(t, err)
	assert.Equal(t, ResultDismissed, res.Kind)
	assert.Equal(t, domain.AttemptStatusDismissed, ledger.status("order_4"))
	be.AssertNotCalled(t, "VerifyPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestPay_AbandonedCheckoutIsJournaled(t *testing.T) {
	be := new(mockBackend)
	be.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&backend.Order{ID: "order_5", AmountMinorUnits: 299900, Currency: "INR"}, nil).Once()
	ledger := newFakeLedger()
	o := newTestOrchestrator(be, NewCallbackBridge(), ledger)

	ctx, cancel := context.WithCancel(context.Background())
	req := payRequest()
	req.Opened = func(CheckoutOptions) { cancel() }

	res, err := o.Pay(ctx, req)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, ResultFailure, res.Kind)
	assert.Equal(t, domain.AttemptStatusFailed, ledger.status("order_5"))
	assert.Equal(t, "checkout abandoned", ledger.reasons["order_5"])
}

func TestPay_LedgerErrorsDoNotChangeOutcome(t *testing.T) {
	be := new(mockBackend)
	be.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&backend.Order{ID: "order_6", AmountMinorUnits: 299900, Currency: "INR"}, nil).Once()
	ledger := newFakeLedger()
	ledger.failWith = errors.New("db down")
	o := newTestOrchestrator(be, &scriptedCheckout{outcome: Outcome{Kind: OutcomeDismissed}}, ledger)

	res, err := o.Pay(context.Background(), payRequest())
	require.NoError(t, err)
	assert.Equal(t, ResultDismissed, res.Kind)
}

func TestPay_ThroughCallbackBridge(t *testing.T) {
	be := new(mockBackend)
	be.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&backend.Order{ID: "order_7", AmountMinorUnits: 299900, Currency: "INR"}, nil).Once()
	be.On("VerifyPayment", mock.Anything, mock.Anything, backend.Verification{OrderID: "order_7", PaymentID: "pay_7", Signature: "s"}).
		Return(&backend.VerifyResult{Status: "success"}, nil).Once()
	bridge := NewCallbackBridge()
	o := newTestOrchestrator(be, bridge, nil)

	req := payRequest()
	req.Opened = func(opts CheckoutOptions) {
		go func() {
			_ = bridge.Resolve(opts.OrderID, Outcome{Kind: OutcomeCompleted, PaymentID: "pay_7", Signature: "s"})
		}()
	}

	res, err := o.Pay(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, ResultSuccess, res.Kind)
	be.AssertExpectations(t)
}
