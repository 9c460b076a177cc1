package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var seen []Event
	d.Subscribe(EventSessionCreated, func(_ context.Context, e Event) error {
		seen = append(seen, e)
		return nil
	})
	d.Subscribe(EventSessionDestroyed, func(_ context.Context, e Event) error {
		t.Fatal("destroyed handler must not fire for created events")
		return nil
	})

	err := d.Publish(context.Background(), Event{
		Type:    EventSessionCreated,
		Payload: SessionCreatedPayload{SessionKey: "k1", Email: "dr.johnson@downtownmed.com"},
	})
	require.NoError(t, err)
	require.Len(t, seen, 1)

	payload, ok := seen[0].Payload.(SessionCreatedPayload)
	require.True(t, ok)
	assert.Equal(t, "k1", payload.SessionKey)
}

func TestPublishFillsIDAndTimestamp(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got Event
	d.Subscribe(EventSessionExpired, func(_ context.Context, e Event) error {
		got = e
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventSessionExpired}))
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.Timestamp.IsZero())
}

func TestHandlerErrorDoesNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher()

	calls := 0
	d.Subscribe(EventOTPIssued, func(_ context.Context, _ Event) error {
		calls++
		return errors.New("handler failed")
	})
	d.Subscribe(EventOTPIssued, func(_ context.Context, _ Event) error {
		calls++
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventOTPIssued}))
	assert.Equal(t, 2, calls)
}
