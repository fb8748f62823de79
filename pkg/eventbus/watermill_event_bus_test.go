package eventbus

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/operion-kerio/pkg/channels/gochannel"
	"github.com/dukex/operion-kerio/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NewSlogLogger(slog.Default()))
	require.NoError(t, err)

	bus := NewWatermillEventBus(pub, sub)
	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan *events.OperationFailed, 1)
	require.NoError(t, bus.Handle(events.OperationFailedEvent, func(ctx context.Context, event any) error {
		received <- event.(*events.OperationFailed)

		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	published := events.OperationFailed{
		BaseEvent: events.NewBaseEvent(events.OperationFailedEvent, "wf-1"),
		Operation: events.Operation{Resource: "folder", Operation: "getFolders", Method: "Folders.get"},
		Error:     "Session expired.",
		Kind:      "api_error",
		Code:      -32001,
	}
	require.NoError(t, bus.Publish(ctx, "kerio-1", published))

	select {
	case got := <-received:
		assert.Equal(t, published.ID, got.ID)
		assert.Equal(t, "Folders.get", got.Method)
		assert.Equal(t, -32001, got.Code)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestWatermillEventBus_IgnoresUnhandledTypes(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan any, 1)
	require.NoError(t, bus.Handle(events.OperationFailedEvent, func(ctx context.Context, event any) error {
		received <- event

		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	executed := events.OperationExecuted{
		BaseEvent: events.NewBaseEvent(events.OperationExecutedEvent, ""),
		Operation: events.Operation{Resource: "misc", Operation: "getQuota"},
	}
	require.NoError(t, bus.Publish(ctx, "k", executed))

	select {
	case event := <-received:
		t.Fatalf("unexpected event delivered: %v", event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	bus := newTestBus(t)

	assert.NotEqual(t, bus.GenerateID(), bus.GenerateID())
}
