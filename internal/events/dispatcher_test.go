package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryDispatcher_PublishRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var calls []string
	d.Subscribe(EventOrderCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.OrderID)
		return errors.New("boom")
	})
	d.Subscribe(EventOrderCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.OrderID)
		return nil
	})
	d.Subscribe(EventOrderUpdated, func(_ context.Context, _ Event) error {
		calls = append(calls, "unrelated")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventOrderCreated, OrderID: "os-1"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, []string{"first:os-1", "second:os-1"}, calls)
}

func TestInMemoryDispatcher_NoListeners(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventOrderUpdated}))
}

func TestInMemoryDispatcher_JoinsEveryFailure(t *testing.T) {
	d := NewInMemoryDispatcher()
	first := errors.New("history write failed")
	second := errors.New("cache invalidation failed")
	d.Subscribe(EventOrderUpdated, func(context.Context, Event) error { return first })
	d.Subscribe(EventOrderUpdated, func(context.Context, Event) error { return second })

	err := d.Publish(context.Background(), Event{Type: EventOrderUpdated})
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
}

func TestInMemoryDispatcher_SubscribeFromHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	late := 0
	d.Subscribe(EventOrderCreated, func(context.Context, Event) error {
		d.Subscribe(EventOrderCreated, func(context.Context, Event) error {
			late++
			return nil
		})
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventOrderCreated}))
	assert.Equal(t, 0, late)
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventOrderCreated}))
	assert.Equal(t, 1, late)
}
