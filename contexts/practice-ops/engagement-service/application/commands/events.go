package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "practicedesk/contexts/practice-ops/engagement-service/application"
	"practicedesk/contexts/practice-ops/engagement-service/ports"
	contractsv1 "practicedesk/contracts/gen/events/v1"
)

const (
	collectionTasks     = "tasks"
	collectionDocuments = "documents"
	collectionClients   = "clients"
	collectionEmployees = "employees"
)

type changeNotifier struct {
	publisher ports.EventPublisher
	idGen     ports.IDGenerator
	logger    *slog.Logger
}

// notify publishes a change notification for one row after the write is
// durable. A failed publish is logged; the write it describes stands.
func (n changeNotifier) notify(
	ctx context.Context,
	collection string,
	kind string,
	rowID string,
	actorID string,
	occurredAt time.Time,
	data map[string]any,
) {
	if n.publisher == nil {
		return
	}
	if err := n.publish(ctx, collection, kind, rowID, actorID, occurredAt, data); err != nil {
		application.ResolveLogger(n.logger).Warn("change notification not published",
			"event", "engagement_change_publish_failed",
			"module", "practice-ops/engagement-service",
			"layer", "application",
			"collection", collection,
			"change_kind", kind,
			"row_id", rowID,
			"error", err.Error(),
		)
	}
}

func (n changeNotifier) publish(
	ctx context.Context,
	collection string,
	kind string,
	rowID string,
	actorID string,
	occurredAt time.Time,
	data map[string]any,
) error {
	eventID, err := n.idGen.NewID(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	envelope := ports.EventEnvelope{
		EventID:       eventID,
		EventType:     contractsv1.EventType(collection, kind),
		Collection:    collection,
		ChangeKind:    kind,
		RowID:         rowID,
		ActorID:       actorID,
		OccurredAt:    occurredAt.UTC(),
		SourceService: "engagement-service",
		SchemaVersion: 1,
		Data:          payload,
	}
	return n.publisher.Publish(ctx, contractsv1.Topic(collection), envelope)
}

func taskChangeData(taskID string, clientID string, assigneeID string, status string) map[string]any {
	return map[string]any{
		"id":          taskID,
		"client_id":   clientID,
		"assignee_id": assigneeID,
		"status":      status,
	}
}
