package booking

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"astrobooking/internal/domain"
	"astrobooking/internal/modules/availability"
	"astrobooking/internal/modules/payment"
	"astrobooking/internal/modules/status"
	"astrobooking/internal/pkg/validator"
)

// Deps are the collaborators shared by every wizard in a process.
type Deps struct {
	Catalog   typeCatalog
	Payer     payer
	Resolver  checkoutResolver
	Invites   inviteBuilder
	Publisher status.Publisher
	Observer  stageObserver
	Location  *time.Location
	StatusTTL time.Duration
	Now       func() time.Time
	Logger    *zap.Logger
}

func (d *Deps) setDefaults() {
	if d.Publisher == nil {
		d.Publisher = status.NopPublisher{}
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
}

// Confirmation is what remains of a booking once payment is verified.
type Confirmation struct {
	Type      domain.ConsultationType `json:"type"`
	Date      time.Time               `json:"date"`
	Time      string                  `json:"time"`
	Contact   domain.Contact          `json:"contact"`
	OrderID   string                  `json:"order_id"`
	PaymentID string                  `json:"payment_id"`
	InviteURL string                  `json:"invite_url"`
}

// View is a read-only snapshot of a wizard.
type View struct {
	SessionID     string                   `json:"session_id"`
	Stage         Stage                    `json:"stage"`
	Selection     domain.Selection         `json:"selection"`
	Loading       bool                     `json:"loading"`
	Authenticated bool                     `json:"authenticated"`
	Status        *status.Message          `json:"status,omitempty"`
	Checkout      *payment.CheckoutOptions `json:"checkout,omitempty"`
	Confirmation  *Confirmation            `json:"confirmation,omitempty"`
}

// Attempt is a handle on one running payment attempt.
type Attempt struct {
	done   chan struct{}
	result payment.Result
	err    error
}

func (a *Attempt) Done() <-chan struct{} { return a.done }

// Result is valid once Done is closed.
func (a *Attempt) Result() (payment.Result, error) {
	return a.result, a.err
}

// Wait blocks until the attempt finishes or ctx is done.
func (a *Attempt) Wait(ctx context.Context) (payment.Result, error) {
	select {
	case <-a.done:
		return a.result, a.err
	case <-ctx.Done():
		return payment.Result{}, ctx.Err()
	}
}

// Wizard is one booking page visit. All methods are safe for concurrent use
// and are applied one at a time.
type Wizard struct {
	id   string
	deps Deps
	log  *zap.Logger

	mu           sync.Mutex
	session      domain.Session
	stage        Stage
	sel          domain.Selection
	inFlight     bool
	checkout     *payment.CheckoutOptions
	confirmation *Confirmation
	board        *status.Board
	lastActive   time.Time
	closed       bool

	cancelAttempt context.CancelFunc
	attempts      sync.WaitGroup
}

func NewWizard(id string, session domain.Session, deps Deps) *Wizard {
	deps.setDefaults()
	w := &Wizard{
		id:      id,
		deps:    deps,
		log:     deps.Logger.With(zap.String("session_id", id)),
		session: session,
		stage:   StageChooseType,
	}
	w.board = status.NewBoard(deps.StatusTTL, func(ev status.Event) {
		ev.SessionID = id
		deps.Publisher.Publish(id, ev)
	})
	w.lastActive = deps.Now()
	return w
}

func (w *Wizard) ID() string { return w.id }

// Authenticate replaces the session credential, e.g. after the user signs in
// on the page.
func (w *Wizard) Authenticate(s domain.Session) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touch()
	w.session = s
}

func (w *Wizard) SelectType(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guard(StageChooseType); err != nil {
		return err
	}
	t, ok := w.deps.Catalog.ByID(id)
	if !ok {
		return ErrUnknownType
	}
	w.sel.Type = &t
	w.advance(StageChooseDate)
	return nil
}

// SelectDate accepts only dates the availability generator currently offers;
// the time of day is ignored.
func (w *Wizard) SelectDate(date time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guard(StageChooseDate); err != nil {
		return err
	}
	loc := w.deps.Location
	today := w.deps.Now().In(loc)
	d := date.In(loc)
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	if !availability.IsOffered(today, day) {
		return ErrDateUnavailable
	}
	w.sel.Date = &day
	w.advance(StageChooseTime)
	return nil
}

func (w *Wizard) SelectTime(label string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guard(StageChooseTime); err != nil {
		return err
	}
	slot, ok := availability.FindSlot(label)
	if !ok || !slot.Available {
		return ErrSlotUnavailable
	}
	w.sel.Time = slot.Label
	w.advance(StageEnterDetails)
	return nil
}

func (w *Wizard) UpdateContact(c domain.Contact) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guard(StageEnterDetails); err != nil {
		return err
	}
	if w.inFlight {
		return ErrAttemptInFlight
	}
	w.sel.Contact = c
	return nil
}

// Back moves one stage backwards, clearing the choice made on the stage it
// returns to and everything after it. Contact details are kept.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrSessionClosed
	}
	w.touch()
	if w.inFlight {
		return ErrAttemptInFlight
	}
	prev, ok := w.stage.previous()
	if !ok {
		return ErrWrongStage
	}
	switch prev {
	case StageChooseType:
		w.sel.Type, w.sel.Date, w.sel.Time = nil, nil, ""
	case StageChooseDate:
		w.sel.Date, w.sel.Time = nil, ""
	case StageChooseTime:
		w.sel.Time = ""
	}
	w.advance(prev)
	return nil
}

// Restart discards the selection and any confirmation and returns to the
// first stage.
func (w *Wizard) Restart() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrSessionClosed
	}
	w.touch()
	if w.inFlight {
		return ErrAttemptInFlight
	}
	w.reset()
	return nil
}

// DismissStatus closes the visible status message.
func (w *Wizard) DismissStatus() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrSessionClosed
	}
	w.touch()
	w.board.Dismiss()
	return nil
}

// SubmitPayment starts a payment attempt for the current selection. The
// attempt outlives the caller's context and is cancelled only by Close.
func (w *Wizard) SubmitPayment(ctx context.Context) (*Attempt, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guard(StageEnterDetails); err != nil {
		return nil, err
	}
	if w.inFlight {
		return nil, ErrAttemptInFlight
	}
	if err := payment.RequireSession(w.session); err != nil {
		w.board.Show(status.KindError, payment.MsgAuthRequired)
		return nil, err
	}
	if fields := validator.Validate(w.sel.Contact); fields != nil {
		w.board.Show(status.KindError, MsgFillRequired)
		return nil, &ValidationError{Fields: fields}
	}

	sel := copySelection(w.sel)
	req := payment.Request{
		SessionID: w.id,
		Session:   w.session,
		Type:      *sel.Type,
		Contact:   sel.Contact,
		Opened:    w.checkoutOpened,
	}
	if w.deps.Invites != nil {
		if start, _, ok := w.deps.Invites.Window(sel); ok {
			s := start.UTC()
			req.ScheduledStart = &s
			req.InviteURL = w.deps.Invites.InviteURL(sel)
		}
	}

	attemptCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w.cancelAttempt = cancel
	w.inFlight = true
	w.board.Dismiss()
	w.publish(status.EventLoadingChanged, map[string]bool{"loading": true})

	a := &Attempt{done: make(chan struct{})}
	w.attempts.Add(1)
	go func() {
		defer w.attempts.Done()
		defer cancel()
		res, err := w.deps.Payer.Pay(attemptCtx, req)
		w.finish(sel, res, err)
		a.result, a.err = res, err
		close(a.done)
	}()
	return a, nil
}

// ResolveCheckout relays a widget callback for the open checkout. The order id
// must match the checkout this wizard opened.
func (w *Wizard) ResolveCheckout(o payment.Outcome) error {
	w.mu.Lock()
	w.touch()
	if w.checkout == nil || (o.OrderID != "" && o.OrderID != w.checkout.OrderID) {
		w.mu.Unlock()
		return ErrNoCheckout
	}
	orderID := w.checkout.OrderID
	w.mu.Unlock()

	if w.deps.Resolver == nil {
		return ErrNoCheckout
	}
	if err := w.deps.Resolver.Resolve(orderID, o); err != nil {
		return ErrNoCheckout
	}
	return nil
}

// Close cancels a running attempt and stops pending status timers. It waits
// for the attempt goroutine to exit.
func (w *Wizard) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	if w.cancelAttempt != nil {
		w.cancelAttempt()
	}
	w.board.Stop()
	w.mu.Unlock()

	w.attempts.Wait()
}

func (w *Wizard) Snapshot() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	v := View{
		SessionID:     w.id,
		Stage:         w.stage,
		Selection:     copySelection(w.sel),
		Loading:       w.inFlight,
		Authenticated: w.session.Present(),
		Status:        w.board.Current(),
	}
	if w.checkout != nil {
		co := *w.checkout
		v.Checkout = &co
	}
	if w.confirmation != nil {
		c := *w.confirmation
		v.Confirmation = &c
	}
	return v
}

// Idle reports how long the wizard has gone without a request. Wizards with
// a running attempt are never idle.
func (w *Wizard) Idle(now time.Time) time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight {
		return 0
	}
	return now.Sub(w.lastActive)
}

func (w *Wizard) checkoutOpened(opts payment.CheckoutOptions) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	co := opts
	w.checkout = &co
	w.publish(status.EventCheckoutOpened, co)
}

func (w *Wizard) finish(sel domain.Selection, res payment.Result, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight = false
	w.checkout = nil
	w.cancelAttempt = nil
	if w.closed {
		return
	}
	w.publish(status.EventLoadingChanged, map[string]bool{"loading": false})

	switch {
	case err == nil && res.Kind == payment.ResultSuccess:
		invite := ""
		if w.deps.Invites != nil {
			invite = w.deps.Invites.InviteURL(sel)
		}
		w.confirmation = &Confirmation{
			Type:      *sel.Type,
			Date:      *sel.Date,
			Time:      sel.Time,
			Contact:   sel.Contact,
			OrderID:   res.OrderID,
			PaymentID: res.PaymentID,
			InviteURL: invite,
		}
		w.sel = domain.Selection{}
		w.board.Show(status.KindSuccess, payment.MsgPaymentSucceeded)
		w.advance(StageConfirmed)
		w.log.Info("booking confirmed", zap.String("order_id", res.OrderID), zap.String("payment_id", res.PaymentID))
	case err == nil && res.Kind == payment.ResultDismissed:
		w.log.Debug("checkout dismissed", zap.String("order_id", res.OrderID))
	default:
		w.board.Show(status.KindError, payment.UserMessage(err, res.Reason))
		w.log.Info("payment attempt failed", zap.String("order_id", res.OrderID), zap.Error(err))
	}
}

func (w *Wizard) guard(stage Stage) error {
	if w.closed {
		return ErrSessionClosed
	}
	w.touch()
	if w.stage != stage {
		return ErrWrongStage
	}
	return nil
}

func (w *Wizard) advance(to Stage) {
	w.stage = to
	if w.deps.Observer != nil {
		w.deps.Observer.ObserveStage(to.String())
	}
	w.publish(status.EventStageChanged, map[string]Stage{"stage": to})
}

func (w *Wizard) reset() {
	w.sel = domain.Selection{}
	w.confirmation = nil
	w.board.Dismiss()
	w.advance(StageChooseType)
}

func (w *Wizard) touch() {
	w.lastActive = w.deps.Now()
}

func (w *Wizard) publish(typ string, payload any) {
	w.deps.Publisher.Publish(w.id, status.Event{Type: typ, SessionID: w.id, Payload: payload})
}

func copySelection(s domain.Selection) domain.Selection {
	out := domain.Selection{Time: s.Time, Contact: s.Contact}
	if s.Type != nil {
		t := *s.Type
		out.Type = &t
	}
	if s.Date != nil {
		d := *s.Date
		out.Date = &d
	}
	return out
}
