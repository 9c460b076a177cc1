package timeout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/portal-session-service/internal/domain"
	"github.com/spec-kit/portal-session-service/internal/events"
	"github.com/spec-kit/portal-session-service/internal/session"
)

// fakeClock is a manually advanced Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// failingStore wraps a Store and fails Destroy a configured number of times.
type failingStore struct {
	session.Store
	mu       sync.Mutex
	failures int
	calls    int
}

func (s *failingStore) Destroy(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failures {
		return errors.New("storage write error")
	}
	return s.Store.Destroy(ctx, key)
}

func newTestTracker(t *testing.T, clock Clock, store session.Store, dispatcher events.Dispatcher) *Tracker {
	t.Helper()
	return NewTracker(DefaultConfig(), clock, store, dispatcher, zap.NewNop(), time.Second)
}

func TestTracker_ExpiryDestroysSessionAndPublishes(t *testing.T) {
	clock := newFakeClock(t0)
	store := session.NewMemoryStore()
	dispatcher := events.NewInMemoryDispatcher()

	var got []events.Event
	dispatcher.Subscribe(events.EventSessionExpired, func(_ context.Context, e events.Event) error {
		got = append(got, e)
		return nil
	})

	tracker := newTestTracker(t, clock, store, dispatcher)

	user := domain.User{ID: "doctor-001", Email: "dr.johnson@downtownmed.com", Name: "Dr. Sarah Johnson", Role: domain.RoleDoctor}
	require.NoError(t, store.Create(context.Background(), "key-1", user))
	tracker.Register("key-1", domain.RoleDoctor)

	clock.Advance(30 * time.Minute)
	tracker.TickAll(clock.Now())

	stored, err := store.Get(context.Background(), "key-1")
	require.NoError(t, err)
	assert.Nil(t, stored, "expired session must be destroyed")

	require.Len(t, got, 1)
	assert.Equal(t, domain.RoleDoctor, got[0].Role)
	payload, ok := got[0].Payload.(events.SessionExpiredPayload)
	require.True(t, ok)
	assert.Equal(t, "key-1", payload.SessionKey)

	_, _, tracked := tracker.Status("key-1")
	assert.False(t, tracked, "expired machine must be dropped")
}

func TestTracker_DestroyRetriedOnce(t *testing.T) {
	clock := newFakeClock(t0)
	store := &failingStore{Store: session.NewMemoryStore(), failures: 1}
	tracker := newTestTracker(t, clock, store, nil)

	require.NoError(t, store.Store.Create(context.Background(), "key-1", domain.User{
		ID: "facility-001", Email: "contact@downtownmed.com", Name: "Downtown", Role: domain.RoleFacility,
	}))
	tracker.Register("key-1", domain.RoleFacility)

	clock.Advance(30 * time.Minute)
	tracker.TickAll(clock.Now())

	assert.Equal(t, 2, store.calls, "first failure must trigger a retry")
	stored, err := store.Store.Get(context.Background(), "key-1")
	require.NoError(t, err)
	assert.Nil(t, stored, "retry must have cleared the record")
}

func TestTracker_StatusReportsWarningCountdown(t *testing.T) {
	clock := newFakeClock(t0)
	tracker := newTestTracker(t, clock, session.NewMemoryStore(), nil)
	tracker.Register("key-1", domain.RoleDoctor)

	clock.Advance(25 * time.Minute)
	tracker.TickAll(clock.Now())

	phase, remaining, ok := tracker.Status("key-1")
	require.True(t, ok)
	assert.Equal(t, PhaseWarning, phase)
	assert.Equal(t, 300, remaining)

	clock.Advance(90 * time.Second)
	tracker.TickAll(clock.Now())

	phase, remaining, ok = tracker.Status("key-1")
	require.True(t, ok)
	assert.Equal(t, PhaseWarning, phase)
	assert.Equal(t, 210, remaining)
}

func TestTracker_ExtendDuringWarning(t *testing.T) {
	clock := newFakeClock(t0)
	tracker := newTestTracker(t, clock, session.NewMemoryStore(), nil)
	tracker.Register("key-1", domain.RoleDoctor)

	clock.Advance(25 * time.Minute)
	tracker.TickAll(clock.Now())

	require.True(t, tracker.Extend("key-1"))

	phase, _, ok := tracker.Status("key-1")
	require.True(t, ok)
	assert.Equal(t, PhaseActive, phase)

	// fresh idle window from the extend
	clock.Advance(24 * time.Minute)
	tracker.TickAll(clock.Now())
	phase, _, _ = tracker.Status("key-1")
	assert.Equal(t, PhaseActive, phase)
}

func TestTracker_TouchKeepsSessionActive(t *testing.T) {
	clock := newFakeClock(t0)
	tracker := newTestTracker(t, clock, session.NewMemoryStore(), nil)
	tracker.Register("key-1", domain.RoleAdmin)

	for i := 0; i < 4; i++ {
		clock.Advance(20 * time.Minute)
		tracker.Touch("key-1", domain.RoleAdmin)
		tracker.TickAll(clock.Now())
	}

	phase, _, ok := tracker.Status("key-1")
	require.True(t, ok)
	assert.Equal(t, PhaseActive, phase)
}

func TestTracker_TouchRegistersUnknownSession(t *testing.T) {
	clock := newFakeClock(t0)
	tracker := newTestTracker(t, clock, session.NewMemoryStore(), nil)

	tracker.Touch("key-after-restart", domain.RoleDoctor)

	phase, _, ok := tracker.Status("key-after-restart")
	require.True(t, ok)
	assert.Equal(t, PhaseActive, phase)
}

func TestTracker_DropStopsTracking(t *testing.T) {
	clock := newFakeClock(t0)
	tracker := newTestTracker(t, clock, session.NewMemoryStore(), nil)
	tracker.Register("key-1", domain.RoleDoctor)
	tracker.Drop("key-1")

	_, _, ok := tracker.Status("key-1")
	assert.False(t, ok)
	assert.False(t, tracker.Extend("key-1"))
}

func TestTracker_StartStop(t *testing.T) {
	clock := newFakeClock(t0)
	tracker := NewTracker(DefaultConfig(), clock, session.NewMemoryStore(), nil, zap.NewNop(), time.Millisecond)

	tracker.Start()
	tracker.Start() // second Start is a no-op
	time.Sleep(5 * time.Millisecond)
	tracker.Stop()
}
