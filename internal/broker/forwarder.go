package broker

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/fintrack/internal/core/events"
)

// Sender is the publishing half of Client.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// Forwarder relays bus events to the broker. Subscribe Handle under events.AllEvents.
type Forwarder struct {
	sender Sender
	types  map[string]bool
	logger *slog.Logger
}

// NewForwarder relays only the listed event types, or every type when none are given.
func NewForwarder(sender Sender, logger *slog.Logger, eventTypes ...string) *Forwarder {
	types := make(map[string]bool, len(eventTypes))
	for _, t := range eventTypes {
		types[t] = true
	}
	return &Forwarder{sender: sender, types: types, logger: logger}
}

func (f *Forwarder) Handle(ctx context.Context, e events.Event) error {
	if len(f.types) > 0 && !f.types[e.EventType()] {
		return nil
	}
	if err := f.sender.Send(ctx, MessageFromEvent(e)); err != nil {
		f.logger.Error("failed to forward event", "error", err, "event_id", e.EventID(), "event_type", e.EventType())
		return err
	}
	return nil
}

// Replay publishes consumed messages onto a local bus.
func Replay(bus *events.EventBus) func(context.Context, *Message) error {
	return func(ctx context.Context, msg *Message) error {
		return bus.PublishSync(ctx, msg.Event())
	}
}
