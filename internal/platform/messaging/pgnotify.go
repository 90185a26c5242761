package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	contractsv1 "practicedesk/contracts/gen/events/v1"
)

const (
	NotifyChannel = "practicedesk_changes"

	// Postgres rejects NOTIFY payloads of 8000 bytes or more.
	maxNotifyPayload = 7999
	relistenBackoff  = 2 * time.Second
)

// PGNotify carries change envelopes between processes over LISTEN/NOTIFY.
// Publish sends on the shared channel; Listen delivers each received envelope
// to the handlers subscribed to its collection topic.
type PGNotify struct {
	pool    *pgxpool.Pool
	channel string
	logger  *slog.Logger

	mu       sync.RWMutex
	handlers map[string][]func(context.Context, contractsv1.Envelope) error
	onGap    func(topic string)
	listens  int
}

func NewPGNotify(ctx context.Context, dsn string, logger *slog.Logger) (*PGNotify, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open pgx pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PGNotify{
		pool:     pool,
		channel:  NotifyChannel,
		logger:   logger,
		handlers: make(map[string][]func(context.Context, contractsv1.Envelope) error),
	}, nil
}

func (p *PGNotify) Publish(ctx context.Context, topic string, event contractsv1.Envelope) error {
	payload, err := encodeNotification(event)
	if err != nil {
		return err
	}
	if _, err := p.pool.Exec(ctx, "SELECT pg_notify($1, $2)", p.channel, payload); err != nil {
		return fmt.Errorf("pg_notify %s: %w", topic, err)
	}
	return nil
}

// Subscribe registers a handler. Delivery starts once Listen runs.
func (p *PGNotify) Subscribe(
	_ context.Context,
	topic string,
	_ string,
	handler func(context.Context, contractsv1.Envelope) error,
) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[topic] = append(p.handlers[topic], handler)
	return nil
}

// OnGap registers fn to run after every re-LISTEN that follows a lost
// connection. Notifications sent while the listener was down are gone, so fn
// receives an empty topic meaning every collection.
func (p *PGNotify) OnGap(fn func(topic string)) {
	p.mu.Lock()
	p.onGap = fn
	p.mu.Unlock()
}

// Listen blocks until ctx ends, re-listening after connection failures.
func (p *PGNotify) Listen(ctx context.Context) error {
	for {
		err := p.listenOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}
		p.logger.Warn("change feed listener interrupted",
			"event", "pgnotify_listen_interrupted",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"channel", p.channel,
			"error", err.Error(),
		)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(relistenBackoff):
		}
	}
}

func (p *PGNotify) listenOnce(ctx context.Context) error {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+p.channel); err != nil {
		return fmt.Errorf("listen %s: %w", p.channel, err)
	}
	p.listening()
	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		p.deliver(ctx, notification.Payload)
	}
}

// listening records a successful LISTEN and reports a gap for every one after
// the first.
func (p *PGNotify) listening() {
	p.mu.Lock()
	p.listens++
	relisten := p.listens > 1
	gap := p.onGap
	p.mu.Unlock()

	p.logger.Info("change feed listening",
		"event", "pgnotify_listening",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"channel", p.channel,
		"relisten", relisten,
	)
	if relisten && gap != nil {
		gap("")
	}
}

func (p *PGNotify) deliver(ctx context.Context, payload string) {
	event, err := decodeNotification(payload)
	if err != nil {
		p.logger.Warn("change notification undecodable",
			"event", "pgnotify_decode_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"error", err.Error(),
		)
		return
	}
	topic := contractsv1.Topic(event.Collection)
	p.mu.RLock()
	handlers := append([]func(context.Context, contractsv1.Envelope) error(nil), p.handlers[topic]...)
	p.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			p.logger.Error("consumer handler failed",
				"event", "pgnotify_consume_failed",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
				"event_id", event.EventID,
				"event_type", event.EventType,
				"error", err.Error(),
			)
		}
	}
}

func (p *PGNotify) Close() {
	if p != nil && p.pool != nil {
		p.pool.Close()
	}
}

// encodeNotification drops the row data when the envelope would not fit in a
// NOTIFY payload. Subscribers then match on collection and row id only.
func encodeNotification(event contractsv1.Envelope) (string, error) {
	raw, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("encode change envelope: %w", err)
	}
	if len(raw) <= maxNotifyPayload {
		return string(raw), nil
	}
	event.Data = nil
	raw, err = json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("encode change envelope: %w", err)
	}
	if len(raw) > maxNotifyPayload {
		return "", fmt.Errorf("change envelope for %s/%s exceeds notify payload limit", event.Collection, event.RowID)
	}
	return string(raw), nil
}

func decodeNotification(payload string) (contractsv1.Envelope, error) {
	var event contractsv1.Envelope
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return contractsv1.Envelope{}, fmt.Errorf("decode change envelope: %w", err)
	}
	if event.Collection == "" {
		return contractsv1.Envelope{}, errors.New("change envelope missing collection")
	}
	return event, nil
}
