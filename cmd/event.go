package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/fintrack/internal/broker"
	"github.com/frahmantamala/fintrack/internal/core/events"
	"github.com/frahmantamala/fintrack/pkg/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Publish test events to the broker and consume the obligation queue.`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event",
	Long:  `Publish a test event to the configured exchange for testing and debugging`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(args[0])
	},
}

var consumeEventCmd = &cobra.Command{
	Use:   "consume",
	Short: "Consume events from the broker",
	Long:  `Replay every message on the configured queue onto a local bus that logs it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return consumeEvents()
	},
}

var eventData string

func dialBroker(ctx context.Context) (*broker.Client, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if !cfg.Broker.Enabled {
		return nil, fmt.Errorf("broker is disabled; set broker.enabled to true")
	}

	dialCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return broker.Dial(dialCtx, cfg.Broker, logger.LoggerWrapper())
}

func publishTestEvent(eventType string) error {
	lg := logger.LoggerWrapper()
	ctx := context.Background()

	client, err := dialBroker(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	testEvent := events.BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"message": eventData,
			"source":  "cli-command",
		},
	}

	bus := events.NewEventBus(lg)
	bus.Subscribe(events.AllEvents, broker.NewForwarder(client, lg).Handle)

	lg.Info("publishing test event", "event_type", eventType, "event_id", testEvent.ID)
	if err := bus.PublishSync(ctx, testEvent); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	lg.Info("test event published successfully")
	return nil
}

func consumeEvents() error {
	lg := logger.LoggerWrapper()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := dialBroker(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	bus := events.NewEventBus(lg)
	bus.Subscribe(events.AllEvents, func(ctx context.Context, event events.Event) error {
		lg.Info("received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"occurred_at", event.OccurredAt(),
			"payload", event.Payload())
		return nil
	})

	lg.Info("event consumer is running. Press Ctrl+C to stop.")
	if err := client.Consume(ctx, broker.Replay(bus)); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Event data message")

	eventCmd.AddCommand(publishEventCmd)
	eventCmd.AddCommand(consumeEventCmd)

	rootCmd.AddCommand(eventCmd)
}
