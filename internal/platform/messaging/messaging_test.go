package messaging

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	contractsv1 "practicedesk/contracts/gen/events/v1"
)

func TestBusDeliversToEverySubscriberOfTopic(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := make(chan contractsv1.Envelope, 1)
	second := make(chan contractsv1.Envelope, 1)
	other := make(chan contractsv1.Envelope, 1)
	subscribe := func(topic string, sink chan contractsv1.Envelope) {
		err := bus.Subscribe(ctx, topic, "test-cg", func(_ context.Context, event contractsv1.Envelope) error {
			sink <- event
			return nil
		})
		if err != nil {
			t.Fatalf("subscribe %s: %v", topic, err)
		}
	}
	subscribe(contractsv1.Topic("tasks"), first)
	subscribe(contractsv1.Topic("tasks"), second)
	subscribe(contractsv1.Topic("invoices"), other)

	event := contractsv1.Envelope{EventID: "evt-1", Collection: "tasks", ChangeKind: contractsv1.ChangeUpdate, RowID: "task-1"}
	if err := bus.Publish(ctx, contractsv1.Topic("tasks"), event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	for _, sink := range []chan contractsv1.Envelope{first, second} {
		select {
		case got := <-sink:
			if got.EventID != "evt-1" {
				t.Fatalf("unexpected event %+v", got)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber did not receive event")
		}
	}
	select {
	case got := <-other:
		t.Fatalf("other topic should not receive %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBusStopsDeliveringAfterCancel(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	received := make(chan struct{}, 1)
	if err := bus.Subscribe(ctx, "changes.tasks", "test-cg", func(context.Context, contractsv1.Envelope) error {
		received <- struct{}{}
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	cancel()

	deadline := time.Now().Add(time.Second)
	for {
		bus.mu.RLock()
		remaining := len(bus.subscribers["changes.tasks"])
		bus.mu.RUnlock()
		if remaining == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("subscriber was not removed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := bus.Publish(context.Background(), "changes.tasks", contractsv1.Envelope{EventID: "late"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case <-received:
		t.Fatalf("cancelled subscriber should not receive")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBusReportsGapWhenInboxFull(t *testing.T) {
	bus := NewBus(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	release := make(chan struct{})
	defer close(release)
	if err := bus.Subscribe(ctx, "changes.tasks", "slow-cg", func(context.Context, contractsv1.Envelope) error {
		<-release
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	gaps := make([]string, 0)
	bus.OnGap(func(topic string) {
		gaps = append(gaps, topic)
	})

	for i := 0; i < subscriberBuffer+8; i++ {
		if err := bus.Publish(context.Background(), "changes.tasks", contractsv1.Envelope{EventID: "evt"}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	if len(gaps) == 0 || gaps[0] != "changes.tasks" {
		t.Fatalf("expected gap reports for changes.tasks, got %v", gaps)
	}
}

func TestBusPublishHonoursCancelledContext(t *testing.T) {
	bus := NewBus(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := bus.Publish(ctx, "changes.tasks", contractsv1.Envelope{EventID: "evt"}); err == nil {
		t.Fatalf("expected cancelled publish to fail")
	}
}

func TestNotificationPayloadDropsOversizedData(t *testing.T) {
	data, err := json.Marshal(map[string]string{"notes": strings.Repeat("x", 9000)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	event := contractsv1.Envelope{
		EventID:    "evt-1",
		Collection: "clients",
		ChangeKind: contractsv1.ChangeUpdate,
		RowID:      "client-1",
		Data:       data,
	}
	payload, err := encodeNotification(event)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(payload) > maxNotifyPayload {
		t.Fatalf("payload too large: %d", len(payload))
	}
	decoded, err := decodeNotification(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.RowID != "client-1" || len(decoded.Data) != 0 {
		t.Fatalf("expected row id without data, got %+v", decoded)
	}
}

func TestNotificationRejectsMissingCollection(t *testing.T) {
	if _, err := decodeNotification(`{"event_id":"evt-1"}`); err == nil {
		t.Fatalf("expected missing collection error")
	}
	if _, err := decodeNotification("not json"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestPGNotifyRoutesByCollectionTopic(t *testing.T) {
	feed := &PGNotify{
		logger:   testLogger(),
		handlers: make(map[string][]func(context.Context, contractsv1.Envelope) error),
	}
	got := make([]string, 0)
	if err := feed.Subscribe(context.Background(), contractsv1.Topic("payments"), "cg", func(_ context.Context, event contractsv1.Envelope) error {
		got = append(got, event.RowID)
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	payload, err := encodeNotification(contractsv1.Envelope{EventID: "evt-1", Collection: "payments", RowID: "pay-1"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	feed.deliver(context.Background(), payload)
	other, err := encodeNotification(contractsv1.Envelope{EventID: "evt-2", Collection: "tasks", RowID: "task-1"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	feed.deliver(context.Background(), other)

	if len(got) != 1 || got[0] != "pay-1" {
		t.Fatalf("unexpected deliveries: %v", got)
	}
}

func TestPGNotifyReportsGapOnlyAfterRelisten(t *testing.T) {
	feed := &PGNotify{
		channel:  NotifyChannel,
		logger:   testLogger(),
		handlers: make(map[string][]func(context.Context, contractsv1.Envelope) error),
	}
	gaps := make([]string, 0)
	feed.OnGap(func(topic string) {
		gaps = append(gaps, topic)
	})

	feed.listening()
	if len(gaps) != 0 {
		t.Fatalf("first listen must not report a gap, got %v", gaps)
	}
	feed.listening()
	feed.listening()
	if len(gaps) != 2 || gaps[0] != "" {
		t.Fatalf("expected an all-collections gap per relisten, got %q", gaps)
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
