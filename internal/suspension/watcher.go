package suspension

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/portal-session-service/internal/domain"
	"github.com/spec-kit/portal-session-service/internal/events"
)

// Watcher polls the flag store and publishes a suspension-changed event
// whenever a role's flag flips. It replaces the browser storage-change
// notification of the original design with an explicit subscription, and
// inherits its eventual-consistency: observers may see a change up to one
// poll interval late.
type Watcher struct {
	flags      FlagStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
	interval   time.Duration

	mu   sync.Mutex
	seen map[domain.Role]bool

	stop    chan struct{}
	done    chan struct{}
	started bool
}

// NewWatcher builds a watcher over the suspendable roles.
func NewWatcher(flags FlagStore, dispatcher events.Dispatcher, logger *zap.Logger, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Watcher{
		flags:      flags,
		dispatcher: dispatcher,
		logger:     logger,
		interval:   interval,
		seen:       make(map[domain.Role]bool),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start launches the poll loop. Safe to call once.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()

	go w.run()
}

// Stop cancels the poll loop and waits for it to drain.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	close(w.stop)
	<-w.done
}

func (w *Watcher) run() {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.Poll(context.Background())
		}
	}
}

// Poll re-reads every suspendable role's flag and publishes changes.
// Exposed for deterministic tests.
func (w *Watcher) Poll(ctx context.Context) {
	for _, role := range domain.Roles() {
		if !role.Suspendable() {
			continue
		}

		suspended, err := w.flags.IsSuspended(ctx, role)
		if err != nil {
			w.logger.Warn("suspension flag read failed",
				zap.String("role", string(role)), zap.Error(err))
			continue
		}

		w.mu.Lock()
		changed := w.seen[role] != suspended
		w.seen[role] = suspended
		w.mu.Unlock()

		if !changed {
			continue
		}

		w.logger.Info("suspension flag changed",
			zap.String("role", string(role)), zap.Bool("suspended", suspended))

		if w.dispatcher != nil {
			_ = w.dispatcher.Publish(ctx, events.Event{
				Type:    events.EventSuspensionChanged,
				Role:    role,
				Payload: events.SuspensionChangedPayload{Suspended: suspended},
			})
		}
	}
}
