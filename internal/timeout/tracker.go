package timeout

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/portal-session-service/internal/domain"
	"github.com/spec-kit/portal-session-service/internal/events"
	"github.com/spec-kit/portal-session-service/internal/session"
)

// Tracker drives one Machine per live session key. A single ticker
// goroutine advances every machine; request handling only touches state
// under the mutex, so activity events and deadline ticks never race.
type Tracker struct {
	mu       sync.Mutex
	machines map[string]*entry

	cfg        Config
	clock      Clock
	store      session.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger

	tickEvery time.Duration
	stop      chan struct{}
	done      chan struct{}
	started   bool
}

type entry struct {
	machine *Machine
	role    domain.Role
}

// NewTracker builds a tracker over the given session store.
func NewTracker(cfg Config, clock Clock, store session.Store, dispatcher events.Dispatcher, logger *zap.Logger, tickEvery time.Duration) *Tracker {
	if tickEvery <= 0 {
		tickEvery = time.Second
	}
	return &Tracker{
		machines:   make(map[string]*entry),
		cfg:        cfg,
		clock:      clock,
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		tickEvery:  tickEvery,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start launches the ticker goroutine. Safe to call once.
func (t *Tracker) Start() {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return
	}
	t.started = true
	t.mu.Unlock()

	go t.run()
}

// Stop cancels the ticker and waits for it to drain, so no expiry
// callback fires against a torn-down service.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if !t.started {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	close(t.stop)
	<-t.done
}

func (t *Tracker) run() {
	defer close(t.done)

	ticker := time.NewTicker(t.tickEvery)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.TickAll(t.clock.Now())
		}
	}
}

// Register starts tracking a freshly created session.
func (t *Tracker) Register(key string, role domain.Role) {
	now := t.clock.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.machines[key] = &entry{machine: NewMachine(t.cfg, now), role: role}
}

// Drop stops tracking a session, e.g. on explicit logout.
func (t *Tracker) Drop(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.machines, key)
}

// Touch registers qualifying activity for the session. Sessions seen for
// the first time (service restarted under a live cookie) are registered
// lazily with a fresh idle window.
func (t *Tracker) Touch(key string, role domain.Role) {
	now := t.clock.Now()
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.machines[key]
	if !ok {
		t.machines[key] = &entry{machine: NewMachine(t.cfg, now), role: role}
		return
	}
	e.machine.Touch(now)
}

// Extend applies the explicit session-extend control. Returns false when
// the session is unknown or already expired.
func (t *Tracker) Extend(key string) bool {
	now := t.clock.Now()
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.machines[key]
	if !ok {
		return false
	}
	return e.machine.Extend(now)
}

// Status reports the phase and warning countdown for the session.
func (t *Tracker) Status(key string) (Phase, int, bool) {
	now := t.clock.Now()
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.machines[key]
	if !ok {
		return PhaseActive, 0, false
	}
	return e.machine.Phase(), e.machine.Remaining(now), true
}

// TickAll advances every machine to now and handles forced logout for
// machines that expired. Exposed for deterministic tests; the ticker
// goroutine calls it once per interval.
func (t *Tracker) TickAll(now time.Time) {
	type expired struct {
		key    string
		role   domain.Role
		reason string
	}

	t.mu.Lock()
	var dead []expired
	for key, e := range t.machines {
		phase, changed := e.machine.Tick(now)
		if !changed {
			continue
		}
		switch phase {
		case PhaseWarning:
			t.logger.Info("session entered warning phase",
				zap.String("session_key", key),
				zap.Int("remaining_seconds", e.machine.Remaining(now)))
		case PhaseExpired:
			dead = append(dead, expired{key: key, role: e.role, reason: e.machine.ExpiryReason(now)})
		}
	}
	for _, d := range dead {
		delete(t.machines, d.key)
	}
	t.mu.Unlock()

	for _, d := range dead {
		t.forceLogout(d.key, d.role, d.reason)
	}
}

// forceLogout destroys the expired session. The destroy is retried once;
// a session record that still survives is logged loudly rather than left
// as a silent best-effort attempt, since a stale record matching the
// role would otherwise pass the route guard.
func (t *Tracker) forceLogout(key string, role domain.Role, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := t.store.Destroy(ctx, key)
	if err != nil {
		t.logger.Warn("forced logout destroy failed; retrying",
			zap.String("session_key", key), zap.Error(err))
		err = t.store.Destroy(ctx, key)
	}
	if err != nil {
		t.logger.Error("forced logout could not clear session record",
			zap.String("session_key", key), zap.Error(err))
	} else {
		t.logger.Info("session expired; forced logout",
			zap.String("session_key", key),
			zap.String("reason", reason))
	}

	if t.dispatcher != nil {
		_ = t.dispatcher.Publish(ctx, events.Event{
			Type: events.EventSessionExpired,
			Role: role,
			Payload: events.SessionExpiredPayload{
				SessionKey: key,
				Reason:     reason,
			},
		})
	}
}
