package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	require.NoError(t, q.Publish(ctx, Message{Type: TypeSubmission, Body: "rec-1"}))
	require.NoError(t, q.Publish(ctx, Message{Type: TypeSubmission, Body: "rec-2"}))

	out, err := q.Consume(ctx)
	require.NoError(t, err)

	first := <-out
	second := <-out
	assert.Equal(t, "rec-1", first.Body)
	assert.Equal(t, "rec-2", second.Body)
}

func TestInMemoryPublishHonorsContext(t *testing.T) {
	q := NewInMemory(1)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, q.Publish(ctx, Message{Body: "fills the buffer"}))

	cancel()
	err := q.Publish(ctx, Message{Body: "blocked"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInMemoryConsumeStopsOnCancel(t *testing.T) {
	q := NewInMemory(1)
	ctx, cancel := context.WithCancel(context.Background())

	out, err := q.Consume(ctx)
	require.NoError(t, err)

	cancel()
	select {
	case _, open := <-out:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("consume channel did not close after cancel")
	}
}
