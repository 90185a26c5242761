package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "practicedesk/contexts/realtime/sync-service/application"
	"practicedesk/contexts/realtime/sync-service/domain/entities"
	"practicedesk/contexts/realtime/sync-service/ports"
	contractsv1 "practicedesk/contracts/gen/events/v1"
)

const defaultChangeFeedConsumerGroup = "sync-service-change-feed-cg"

// ChangeFeedConsumer subscribes to every collection topic and dispatches the
// notifications into the hub.
type ChangeFeedConsumer struct {
	Subscriber    ports.EventSubscriber
	Hub           *application.Hub
	ConsumerGroup string
	Disabled      bool
	Logger        *slog.Logger
}

func (c ChangeFeedConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	if c.Disabled {
		logger.Info("change feed consumer disabled by feature flag",
			"event", "realtime_change_feed_disabled",
			"module", "realtime/sync-service",
			"layer", "worker",
		)
		return nil
	}
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultChangeFeedConsumerGroup
	}
	for _, collection := range entities.Collections() {
		topic := contractsv1.Topic(string(collection))
		if err := c.Subscriber.Subscribe(ctx, topic, group, c.handleChange); err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}
	if reporter, ok := c.Subscriber.(ports.GapReporter); ok {
		reporter.OnGap(c.handleGap)
	}
	logger.Info("change feed consumer started",
		"event", "realtime_change_feed_started",
		"module", "realtime/sync-service",
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

func (c ChangeFeedConsumer) handleChange(_ context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	change, err := ChangeFromEnvelope(event)
	if err != nil {
		logger.Warn("change notification rejected",
			"event", "realtime_change_rejected",
			"module", "realtime/sync-service",
			"layer", "worker",
			"event_id", event.EventID,
			"event_type", event.EventType,
			"error", err.Error(),
		)
		return err
	}
	delivered := c.Hub.Dispatch(change)
	logger.Debug("change notification dispatched",
		"event", "realtime_change_dispatched",
		"module", "realtime/sync-service",
		"layer", "worker",
		"event_id", event.EventID,
		"collection", string(change.Collection),
		"row_id", change.RowID,
		"sessions", delivered,
	)
	return nil
}

// handleGap maps a lost-notification report to a hub resync. Topics outside
// the change feed resync every session.
func (c ChangeFeedConsumer) handleGap(topic string) {
	collection, _ := entities.ParseCollection(contractsv1.CollectionOf(topic))
	c.Hub.Resync(collection)
}

// ChangeFromEnvelope decodes a change notification. Row values are flattened
// to strings so row filters compare by their textual form.
func ChangeFromEnvelope(event ports.EventEnvelope) (entities.Change, error) {
	collection, ok := entities.ParseCollection(event.Collection)
	if !ok {
		return entities.Change{}, fmt.Errorf("unknown collection %q", event.Collection)
	}
	kind, ok := entities.ParseEventKind(event.ChangeKind)
	if !ok || kind == entities.EventAll {
		return entities.Change{}, fmt.Errorf("unknown change kind %q", event.ChangeKind)
	}

	row := make(map[string]string)
	if len(event.Data) > 0 {
		var fields map[string]any
		if err := json.Unmarshal(event.Data, &fields); err != nil {
			return entities.Change{}, fmt.Errorf("decode change payload: %w", err)
		}
		for key, value := range fields {
			switch typed := value.(type) {
			case nil:
			case string:
				row[key] = typed
			default:
				row[key] = fmt.Sprint(typed)
			}
		}
	}

	rowID := strings.TrimSpace(event.RowID)
	if rowID == "" {
		rowID = row["id"]
	}
	occurredAt := event.OccurredAt.UTC()
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	return entities.Change{
		Collection: collection,
		Kind:       kind,
		RowID:      rowID,
		Row:        row,
		ActorID:    event.ActorID,
		OccurredAt: occurredAt,
	}, nil
}
