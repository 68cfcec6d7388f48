package booking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"astrobooking/internal/domain"
)

// DefaultIdleTTL is how long an untouched wizard survives.
const DefaultIdleTTL = 30 * time.Minute

// Registry owns the live wizards of this process, one per booking page visit.
type Registry struct {
	mu      sync.Mutex
	wizards map[string]*Wizard
	deps    Deps
	idleTTL time.Duration
	logger  *zap.Logger
}

func NewRegistry(deps Deps, idleTTL time.Duration) *Registry {
	deps.setDefaults()
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Registry{
		wizards: make(map[string]*Wizard),
		deps:    deps,
		idleTTL: idleTTL,
		logger:  deps.Logger,
	}
}

func (r *Registry) Create(session domain.Session) *Wizard {
	id := uuid.NewString()
	w := NewWizard(id, session, r.deps)

	r.mu.Lock()
	r.wizards[id] = w
	r.mu.Unlock()

	r.logger.Debug("wizard session created", zap.String("session_id", id))
	return w
}

func (r *Registry) Get(id string) (*Wizard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wizards[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return w, nil
}

// Delete closes and forgets the wizard.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	w, ok := r.wizards[id]
	delete(r.wizards, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	w.Close()
	return nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.wizards)
}

// Sweep closes wizards idle for longer than the TTL and returns how many it
// removed.
func (r *Registry) Sweep() int {
	now := r.deps.Now()
	var stale []*Wizard

	r.mu.Lock()
	for id, w := range r.wizards {
		if w.Idle(now) > r.idleTTL {
			stale = append(stale, w)
			delete(r.wizards, id)
		}
	}
	r.mu.Unlock()

	for _, w := range stale {
		w.Close()
		r.logger.Debug("idle wizard session discarded", zap.String("session_id", w.ID()))
	}
	return len(stale)
}

// Run sweeps periodically until ctx is done, then closes every wizard.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.idleTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.CloseAll()
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Info("idle wizard sessions discarded", zap.Int("count", n))
			}
		}
	}
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := make([]*Wizard, 0, len(r.wizards))
	for id, w := range r.wizards {
		all = append(all, w)
		delete(r.wizards, id)
	}
	r.mu.Unlock()

	for _, w := range all {
		w.Close()
	}
}
