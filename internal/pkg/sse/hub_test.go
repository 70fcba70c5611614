package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesOnlyTargetUser(t *testing.T) {
	hub := NewHub()

	a, cleanupA := hub.Subscribe(1)
	defer cleanupA()
	b, cleanupB := hub.Subscribe(2)
	defer cleanupB()

	n := hub.Publish(Event{UserID: 1, Name: "notification", Data: "hello"})
	assert.Equal(t, 1, n)

	select {
	case ev := <-a:
		assert.Equal(t, "hello", ev.Data)
	default:
		t.Fatal("expected event for user 1")
	}

	select {
	case <-b:
		t.Fatal("user 2 should not receive the event")
	default:
	}
}

func TestHub_CleanupIsIdempotent(t *testing.T) {
	hub := NewHub()

	ch, cleanup := hub.Subscribe(5)
	assert.Equal(t, 1, hub.SubscriberCount(5))

	cleanup()
	cleanup()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.TotalSubscribers())
}

func TestHub_DropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	_, cleanup := hub.Subscribe(9)
	defer cleanup()

	for i := 0; i < hub.bufferSize; i++ {
		require.Equal(t, 1, hub.Publish(Event{UserID: 9}))
	}
	assert.Equal(t, 0, hub.Publish(Event{UserID: 9}))
}

func TestHub_CloseEndsOpenStreams(t *testing.T) {
	hub := NewHub()

	a, cleanupA := hub.Subscribe(1)
	b, cleanupB := hub.Subscribe(1)

	hub.Close()
	_, ok := <-a
	assert.False(t, ok)
	_, ok = <-b
	assert.False(t, ok)
	assert.Equal(t, 0, hub.TotalSubscribers())

	// cleanup after Close must not panic on the already closed channels
	cleanupA()
	cleanupB()

	late, cleanupLate := hub.Subscribe(2)
	defer cleanupLate()
	_, ok = <-late
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Publish(Event{UserID: 2, Name: "notification"}))
}
