package messaging

import (
	"context"
	"log/slog"
	"sync"

	contractsv1 "practicedesk/contracts/gen/events/v1"
)

const subscriberBuffer = 1024

type busHandler func(context.Context, contractsv1.Envelope) error

type subscription struct {
	group   string
	inbox   chan contractsv1.Envelope
	handler busHandler
}

// Bus is the in-process change feed. Every subscriber of a topic receives
// every envelope published on it, in publish order, unless its inbox is full.
// Envelopes that do not fit are reported through the gap hook so consumers
// can recover by reloading.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]*subscription
	onGap       func(topic string)
	logger      *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subscribers: make(map[string][]*subscription),
		logger:      logger,
	}
}

// OnGap registers fn to run whenever an envelope could not be handed to a
// subscriber. It replaces any earlier hook.
func (b *Bus) OnGap(fn func(topic string)) {
	b.mu.Lock()
	b.onGap = fn
	b.mu.Unlock()
}

func (b *Bus) Publish(ctx context.Context, topic string, event contractsv1.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	targets := append([]*subscription(nil), b.subscribers[topic]...)
	gap := b.onGap
	b.mu.RUnlock()

	missed := 0
	for _, target := range targets {
		select {
		case target.inbox <- event:
		default:
			missed++
			b.logger.Warn("subscriber inbox full, envelope skipped",
				"event", "bus_publish_gap",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
				"consumer_group", target.group,
				"event_id", event.EventID,
			)
		}
	}
	if missed > 0 && gap != nil {
		gap(topic)
	}

	b.logger.Debug("event published",
		"event", "bus_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"subscribers", len(targets)-missed,
	)
	return nil
}

func (b *Bus) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, contractsv1.Envelope) error,
) error {
	sub := &subscription{
		group:   consumerGroup,
		inbox:   make(chan contractsv1.Envelope, subscriberBuffer),
		handler: handler,
	}
	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], sub)
	b.mu.Unlock()

	go b.drain(ctx, topic, sub)
	return nil
}

func (b *Bus) drain(ctx context.Context, topic string, sub *subscription) {
	defer b.unsubscribe(topic, sub)
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-sub.inbox:
			if err := sub.handler(ctx, event); err != nil {
				b.logger.Error("consumer handler failed",
					"event", "bus_consume_failed",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"topic", topic,
					"consumer_group", sub.group,
					"event_id", event.EventID,
					"event_type", event.EventType,
					"error", err.Error(),
				)
			}
		}
	}
}

func (b *Bus) unsubscribe(topic string, sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.subscribers[topic]
	kept := current[:0:0]
	for _, item := range current {
		if item != sub {
			kept = append(kept, item)
		}
	}
	if len(kept) == 0 {
		delete(b.subscribers, topic)
		return
	}
	b.subscribers[topic] = kept
}
