//go:build integration

package kafka_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	kafkachannel "github.com/dukex/operion-kerio/pkg/channels/kafka"
	"github.com/dukex/operion-kerio/pkg/eventbus"
	"github.com/dukex/operion-kerio/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkaTc "github.com/testcontainers/testcontainers-go/modules/kafka"
)

var brokers string

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := kafkaTc.Run(ctx, "confluentinc/confluent-local:7.7.0", testcontainers.WithEnv(map[string]string{
		"KAFKA_AUTO_CREATE_TOPICS_ENABLE": "true",
	}))
	if err != nil {
		panic("Failed to start Kafka container: " + err.Error())
	}

	kafkaBrokers, err := container.Brokers(ctx)
	if err != nil {
		panic("Failed to get Kafka brokers: " + err.Error())
	}

	brokers = kafkaBrokers[0]

	code := m.Run()

	if err := container.Terminate(ctx); err != nil {
		panic("Failed to terminate Kafka container: " + err.Error())
	}

	os.Exit(code)
}

func TestKafkaEventBus_RoundTrip(t *testing.T) {
	logger := watermill.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))

	pub, sub, err := kafkachannel.CreateChannel(logger, kafkachannel.ParseBrokers(brokers), "operion-kerio-test")
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() { _ = bus.Close() })

	received := make(chan *events.OperationExecuted, 1)
	require.NoError(t, bus.Handle(events.OperationExecutedEvent, func(ctx context.Context, event any) error {
		received <- event.(*events.OperationExecuted)

		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	published := events.OperationExecuted{
		BaseEvent: events.NewBaseEvent(events.OperationExecutedEvent, "wf-1"),
		Operation: events.Operation{Resource: "notes", Operation: "getNotes", Method: "Notes.get"},
		Duration:  15 * time.Millisecond,
	}
	require.NoError(t, bus.Publish(ctx, "kerio-1", published))

	select {
	case got := <-received:
		assert.Equal(t, published.ID, got.ID)
		assert.Equal(t, "Notes.get", got.Method)
	case <-time.After(30 * time.Second):
		t.Fatal("event not delivered through Kafka")
	}
}
