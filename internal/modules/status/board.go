package status

import (
	"sync"
	"time"
)

// DefaultTTL is how long a status message stays visible unless replaced.
const DefaultTTL = 5 * time.Second

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Message is a transient, toast-style status.
type Message struct {
	Kind    Kind      `json:"kind"`
	Text    string    `json:"text"`
	ShownAt time.Time `json:"shown_at"`
}

// Board holds at most one status message. Showing a message schedules its
// removal after the TTL; a newer message cancels that schedule.
type Board struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	notify  func(Event)
	current *Message
	gen     uint64
	timer   *time.Timer
}

func NewBoard(ttl time.Duration, notify func(Event)) *Board {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if notify == nil {
		notify = func(Event) {}
	}
	return &Board{ttl: ttl, now: time.Now, notify: notify}
}

func (b *Board) Show(kind Kind, text string) {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	if b.timer != nil {
		b.timer.Stop()
	}
	msg := Message{Kind: kind, Text: text, ShownAt: b.now()}
	b.current = &msg
	b.timer = time.AfterFunc(b.ttl, func() { b.expire(gen) })
	b.mu.Unlock()

	b.notify(Event{Type: EventStatusShown, Payload: msg})
}

// Dismiss clears the current message immediately.
func (b *Board) Dismiss() {
	b.mu.Lock()
	b.gen++
	had := b.clearLocked()
	b.mu.Unlock()

	if had {
		b.notify(Event{Type: EventStatusCleared})
	}
}

// Current returns a copy of the visible message, if any.
func (b *Board) Current() *Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return nil
	}
	msg := *b.current
	return &msg
}

// Stop cancels a pending clear without notifying.
func (b *Board) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

func (b *Board) expire(gen uint64) {
	b.mu.Lock()
	if gen != b.gen {
		b.mu.Unlock()
		return
	}
	had := b.clearLocked()
	b.mu.Unlock()

	if had {
		b.notify(Event{Type: EventStatusCleared})
	}
}

func (b *Board) clearLocked() bool {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	had := b.current != nil
	b.current = nil
	return had
}
