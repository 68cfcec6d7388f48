package payment

import (
	"context"
	"sync"
)

// Prefill seeds the widget's contact fields.
type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// CheckoutOptions configures the third-party checkout widget.
type CheckoutOptions struct {
	KeyID            string  `json:"key"`
	OrderID          string  `json:"order_id"`
	AmountMinorUnits int64   `json:"amount"`
	Currency         string  `json:"currency"`
	DisplayName      string  `json:"name"`
	Description      string  `json:"description"`
	Prefill          Prefill `json:"prefill"`
}

type OutcomeKind string

const (
	OutcomeCompleted OutcomeKind = "completed"
	OutcomeFailed    OutcomeKind = "failed"
	OutcomeDismissed OutcomeKind = "dismissed"
)

// Outcome is whichever widget callback fired first.
type Outcome struct {
	Kind      OutcomeKind
	OrderID   string
	PaymentID string
	Signature string
	Reason    string
}

// Checkout opens the widget and blocks until it reports an outcome. opened is
// called once the widget is ready to receive callbacks.
type Checkout interface {
	Open(ctx context.Context, opts CheckoutOptions, opened func(CheckoutOptions)) (Outcome, error)
}

type pendingCheckout struct {
	once sync.Once
	ch   chan Outcome
}

// CallbackBridge implements Checkout for a widget hosted in the browser. The
// browser relays the widget callback over HTTP and the first one to arrive
// resolves the attempt; later callbacks are ignored.
type CallbackBridge struct {
	mu      sync.Mutex
	pending map[string]*pendingCheckout
}

func NewCallbackBridge() *CallbackBridge {
	return &CallbackBridge{pending: make(map[string]*pendingCheckout)}
}

func (b *CallbackBridge) Open(ctx context.Context, opts CheckoutOptions, opened func(CheckoutOptions)) (Outcome, error) {
	p := &pendingCheckout{ch: make(chan Outcome, 1)}
	b.mu.Lock()
	b.pending[opts.OrderID] = p
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		if b.pending[opts.OrderID] == p {
			delete(b.pending, opts.OrderID)
		}
		b.mu.Unlock()
	}()

	if opened != nil {
		opened(opts)
	}

	select {
	case o := <-p.ch:
		return o, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Resolve delivers an outcome for orderID. It returns ErrNoPending when no
// widget is open for the order or it has already been resolved.
func (b *CallbackBridge) Resolve(orderID string, o Outcome) error {
	b.mu.Lock()
	p, ok := b.pending[orderID]
	b.mu.Unlock()
	if !ok {
		return ErrNoPending
	}

	delivered := false
	p.once.Do(func() {
		if o.OrderID == "" {
			o.OrderID = orderID
		}
		p.ch <- o
		delivered = true
	})
	if !delivered {
		return ErrNoPending
	}
	return nil
}

// Pending reports whether a widget is open for orderID.
func (b *CallbackBridge) Pending(orderID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.pending[orderID]
	return ok
}
