package syncservice

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"practicedesk/contexts/realtime/sync-service/application"
	"practicedesk/contexts/realtime/sync-service/domain/entities"
	domainerrors "practicedesk/contexts/realtime/sync-service/domain/errors"
	"practicedesk/contexts/realtime/sync-service/ports"
	contractsv1 "practicedesk/contracts/gen/events/v1"
)

type topicSubscriber struct {
	mu       sync.Mutex
	handlers map[string]func(context.Context, ports.EventEnvelope) error
	gap      func(topic string)
}

func (s *topicSubscriber) OnGap(fn func(topic string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gap = fn
}

func (s *topicSubscriber) reportGap(t *testing.T, topic string) {
	t.Helper()
	s.mu.Lock()
	gap := s.gap
	s.mu.Unlock()
	if gap == nil {
		t.Fatalf("consumer did not register a gap hook")
	}
	gap(topic)
}

func (s *topicSubscriber) Subscribe(
	_ context.Context,
	topic string,
	_ string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handlers == nil {
		s.handlers = make(map[string]func(context.Context, ports.EventEnvelope) error)
	}
	s.handlers[topic] = handler
	return nil
}

func (s *topicSubscriber) deliver(t *testing.T, collection string, kind string, rowID string, data map[string]any) {
	t.Helper()
	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	s.mu.Lock()
	handler := s.handlers[contractsv1.Topic(collection)]
	s.mu.Unlock()
	if handler == nil {
		t.Fatalf("no handler for %s", collection)
	}
	err = handler(context.Background(), ports.EventEnvelope{
		EventID:    "evt-" + rowID,
		EventType:  contractsv1.EventType(collection, kind),
		Collection: collection,
		ChangeKind: kind,
		RowID:      rowID,
		OccurredAt: time.Now().UTC(),
		Data:       payload,
	})
	if err != nil {
		t.Fatalf("deliver %s/%s: %v", collection, rowID, err)
	}
}

func newStartedModule(t *testing.T, buffer int) (Module, *topicSubscriber) {
	t.Helper()
	subscriber := &topicSubscriber{}
	module := NewModule(Dependencies{Subscriber: subscriber, SessionBuffer: buffer})
	if err := module.Consumer.Start(context.Background()); err != nil {
		t.Fatalf("start consumer: %v", err)
	}
	return module, subscriber
}

func connect(t *testing.T, module Module, sessionID string, subscriptions ...string) *application.Session {
	t.Helper()
	session, err := module.Handler.ConnectHandler(context.Background(), sessionID, subscriptions)
	if err != nil {
		t.Fatalf("connect %s: %v", sessionID, err)
	}
	return session
}

func drain(t *testing.T, session *application.Session) []entities.Invalidation {
	t.Helper()
	items := session.Pending()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for range items {
		if _, err := session.Next(ctx); err != nil {
			t.Fatalf("drain: %v", err)
		}
	}
	return items
}

func TestConnectStartsWithResyncPerCollection(t *testing.T) {
	module, _ := newStartedModule(t, 0)
	session := connect(t, module, "tab-1", "tasks", "tasks:update", "invoices")

	items := drain(t, session)
	if len(items) != 2 {
		t.Fatalf("expected one resync per collection, got %+v", items)
	}
	for _, item := range items {
		if item.Reason != entities.ReasonResync || item.RowID != "" {
			t.Fatalf("expected collection-wide resync, got %+v", item)
		}
	}
}

func TestConnectRejectsBadSubscriptions(t *testing.T) {
	module, _ := newStartedModule(t, 0)
	if _, err := module.Handler.ConnectHandler(context.Background(), "tab-1", []string{"campaigns"}); !errors.Is(err, domainerrors.ErrUnknownCollection) {
		t.Fatalf("expected unknown collection, got %v", err)
	}
	if _, err := module.Handler.ConnectHandler(context.Background(), "tab-1", nil); !errors.Is(err, domainerrors.ErrInvalidSubscription) {
		t.Fatalf("expected invalid subscription, got %v", err)
	}
	if _, err := module.Handler.ConnectHandler(context.Background(), " ", []string{"tasks"}); !errors.Is(err, domainerrors.ErrMissingSessionID) {
		t.Fatalf("expected missing session id, got %v", err)
	}
}

func TestWriterSessionReceivesItsOwnChange(t *testing.T) {
	module, subscriber := newStartedModule(t, 0)
	writer := connect(t, module, "writer", "tasks")
	other := connect(t, module, "other", "tasks:*:assignee_id=eq.emp-1")
	drain(t, writer)
	drain(t, other)

	subscriber.deliver(t, "tasks", contractsv1.ChangeUpdate, "task-1", map[string]any{
		"id":          "task-1",
		"assignee_id": "emp-2",
		"status":      "completed",
	})

	writerItems := drain(t, writer)
	if len(writerItems) != 1 || writerItems[0].RowID != "task-1" || writerItems[0].Reason != entities.ReasonChange {
		t.Fatalf("writer should be invalidated, got %+v", writerItems)
	}
	if items := other.Pending(); len(items) != 0 {
		t.Fatalf("filtered session should not be invalidated, got %+v", items)
	}
}

func TestPendingInvalidationsCoalescePerRow(t *testing.T) {
	module, subscriber := newStartedModule(t, 0)
	session := connect(t, module, "tab-1", "tasks")
	drain(t, session)

	for range 3 {
		subscriber.deliver(t, "tasks", contractsv1.ChangeUpdate, "task-1", map[string]any{"id": "task-1"})
	}
	subscriber.deliver(t, "tasks", contractsv1.ChangeUpdate, "task-2", map[string]any{"id": "task-2"})

	items := drain(t, session)
	if len(items) != 2 {
		t.Fatalf("expected two coalesced invalidations, got %+v", items)
	}

	subscriber.deliver(t, "tasks", contractsv1.ChangeDelete, "task-1", map[string]any{"id": "task-1"})
	if items := drain(t, session); len(items) != 1 {
		t.Fatalf("expected a fresh invalidation after the previous one was read, got %+v", items)
	}
}

func TestFullBufferDropsAndResyncs(t *testing.T) {
	module, subscriber := newStartedModule(t, 8)
	session := connect(t, module, "tab-1", "tasks", "payments")
	drain(t, session)

	for i := range 9 {
		rowID := "task-" + string(rune('a'+i))
		subscriber.deliver(t, "tasks", contractsv1.ChangeInsert, rowID, map[string]any{"id": rowID})
	}

	if session.Dropped() != 1 {
		t.Fatalf("expected one dropped change, got %d", session.Dropped())
	}
	items := drain(t, session)
	if len(items) != 2 {
		t.Fatalf("expected resync of both collections, got %+v", items)
	}
	for _, item := range items {
		if item.Reason != entities.ReasonResync {
			t.Fatalf("expected resync after overflow, got %+v", item)
		}
	}
}

func TestReconnectReplacesSessionAndResyncs(t *testing.T) {
	module, subscriber := newStartedModule(t, 0)
	first := connect(t, module, "tab-1", "invoices")
	drain(t, first)

	second := connect(t, module, "tab-1", "invoices")
	select {
	case <-first.Done():
	default:
		t.Fatalf("previous session should be closed on reconnect")
	}
	if _, err := first.Next(context.Background()); !errors.Is(err, domainerrors.ErrSessionClosed) {
		t.Fatalf("expected closed session, got %v", err)
	}
	if module.Hub.SessionCount() != 1 {
		t.Fatalf("expected one registered session, got %d", module.Hub.SessionCount())
	}

	items := drain(t, second)
	if len(items) != 1 || items[0].Reason != entities.ReasonResync {
		t.Fatalf("reconnect should start with resync, got %+v", items)
	}

	module.Handler.DisconnectHandler(first)
	if module.Hub.SessionCount() != 1 {
		t.Fatalf("stale disconnect must not remove the new session")
	}
	subscriber.deliver(t, "invoices", contractsv1.ChangeInsert, "inv-1", map[string]any{"id": "inv-1", "status": "draft"})
	if items := drain(t, second); len(items) != 1 {
		t.Fatalf("expected invoice invalidation, got %+v", items)
	}
}

func TestRefresherReloadsUntilDisconnect(t *testing.T) {
	module, subscriber := newStartedModule(t, 0)
	session := connect(t, module, "tab-1", "payments:*:invoice_id=eq.inv-1")

	var mu sync.Mutex
	reloaded := make([]entities.Invalidation, 0)
	seen := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- module.Refresher.Run(context.Background(), session, func(_ context.Context, item entities.Invalidation) error {
			mu.Lock()
			reloaded = append(reloaded, item)
			mu.Unlock()
			seen <- struct{}{}
			if item.Reason == entities.ReasonResync {
				return errors.New("transient read failure")
			}
			return nil
		})
	}()

	waitFor := func() {
		select {
		case <-seen:
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for reload")
		}
	}
	waitFor()
	subscriber.deliver(t, "payments", contractsv1.ChangeInsert, "pay-1", map[string]any{"id": "pay-1", "invoice_id": "inv-1"})
	waitFor()

	module.Handler.DisconnectHandler(session)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("refresher returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("refresher did not stop after disconnect")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(reloaded) != 2 || reloaded[1].RowID != "pay-1" {
		t.Fatalf("unexpected reloads: %+v", reloaded)
	}
}

func TestConsumerRejectsUnknownCollection(t *testing.T) {
	module, subscriber := newStartedModule(t, 0)
	subscriber.mu.Lock()
	handler := subscriber.handlers[contractsv1.Topic("tasks")]
	subscriber.mu.Unlock()

	err := handler(context.Background(), ports.EventEnvelope{Collection: "campaigns", ChangeKind: "insert", RowID: "x"})
	if err == nil {
		t.Fatalf("expected unknown collection to be rejected")
	}
	if module.Hub.SessionCount() != 0 {
		t.Fatalf("no sessions expected")
	}
}

func TestFeedGapResyncsAffectedSessions(t *testing.T) {
	module, subscriber := newStartedModule(t, 0)
	tasks := connect(t, module, "tab-tasks", "tasks:update:assignee_id=eq.emp-asha")
	invoices := connect(t, module, "tab-invoices", "invoices")
	drain(t, tasks)
	drain(t, invoices)

	subscriber.reportGap(t, contractsv1.Topic("tasks"))
	pending := tasks.Pending()
	if len(pending) != 1 || pending[0].Reason != entities.ReasonResync || pending[0].Collection != entities.CollectionTasks {
		t.Fatalf("expected tasks resync, got %+v", pending)
	}
	if got := invoices.Pending(); len(got) != 0 {
		t.Fatalf("invoice session should be untouched, got %+v", got)
	}

	drain(t, tasks)
	subscriber.reportGap(t, "")
	if len(tasks.Pending()) != 1 || len(invoices.Pending()) != 1 {
		t.Fatalf("expected every session to resync after a full gap")
	}
}

func TestFilterValueMayContainComma(t *testing.T) {
	module, subscriber := newStartedModule(t, 0)
	session := connect(t, module, "tab-1", "clients:update:name=eq.Acme, Inc")
	drain(t, session)

	subscriber.deliver(t, "clients", "update", "client-2", map[string]any{"id": "client-2", "name": "Acme"})
	subscriber.deliver(t, "clients", "update", "client-1", map[string]any{"id": "client-1", "name": "Acme, Inc"})
	pending := session.Pending()
	if len(pending) != 1 || pending[0].RowID != "client-1" {
		t.Fatalf("expected only the exact comma value to match, got %+v", pending)
	}
}
