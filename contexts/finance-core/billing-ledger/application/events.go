package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"practicedesk/contexts/finance-core/billing-ledger/domain/entities"
	"practicedesk/contexts/finance-core/billing-ledger/ports"
	contractsv1 "practicedesk/contracts/gen/events/v1"
)

const (
	CollectionInvoices = "invoices"
	CollectionPayments = "payments"
)

// Notifier publishes change notifications after a write is durable. A failed
// publish is logged and never undoes or blocks the write it describes.
type Notifier struct {
	Publisher ports.EventPublisher
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (n Notifier) Notify(
	ctx context.Context,
	collection string,
	kind string,
	rowID string,
	actorID string,
	occurredAt time.Time,
	data map[string]any,
) {
	if n.Publisher == nil {
		return
	}
	if err := n.publish(ctx, collection, kind, rowID, actorID, occurredAt, data); err != nil {
		ResolveLogger(n.Logger).Warn("change notification not published",
			"event", "billing_change_publish_failed",
			"module", "finance-core/billing-ledger",
			"layer", "application",
			"collection", collection,
			"change_kind", kind,
			"row_id", rowID,
			"error", err.Error(),
		)
	}
}

func (n Notifier) publish(
	ctx context.Context,
	collection string,
	kind string,
	rowID string,
	actorID string,
	occurredAt time.Time,
	data map[string]any,
) error {
	eventID, err := n.IDGen.NewID(ctx)
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
		SourceService: "billing-ledger",
		SchemaVersion: 1,
		Data:          payload,
	}
	return n.Publisher.Publish(ctx, contractsv1.Topic(collection), envelope)
}

func InvoiceChangeData(invoice entities.Invoice) map[string]any {
	return map[string]any{
		"id":        invoice.InvoiceID,
		"client_id": invoice.ClientID,
		"task_id":   invoice.TaskID,
		"status":    string(invoice.Status),
	}
}

func PaymentChangeData(payment entities.Payment) map[string]any {
	return map[string]any{
		"id":         payment.PaymentID,
		"invoice_id": payment.InvoiceID,
	}
}
