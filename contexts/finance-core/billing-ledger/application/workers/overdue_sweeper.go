package workers

import (
	"context"
	"log/slog"
	"time"

	application "practicedesk/contexts/finance-core/billing-ledger/application"
	"practicedesk/contexts/finance-core/billing-ledger/domain/entities"
	"practicedesk/contexts/finance-core/billing-ledger/domain/services"
	"practicedesk/contexts/finance-core/billing-ledger/ports"
	contractsv1 "practicedesk/contracts/gen/events/v1"
)

const sweeperActorID = "system:invoice-overdue-sweep"

// OverdueSweeper marks sent invoices whose due day has ended as overdue.
type OverdueSweeper struct {
	Invoices  ports.InvoiceRepository
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Publisher ports.EventPublisher
	Location  *time.Location
	Logger    *slog.Logger
}

func (j OverdueSweeper) RunOnce(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(j.Logger)
	now := time.Now().UTC()
	if j.Clock != nil {
		now = j.Clock.Now().UTC()
	}

	sent, err := j.Invoices.ListInvoices(ctx, ports.InvoiceFilter{Status: entities.InvoiceStatusSent})
	if err != nil {
		logger.Error("invoice overdue sweep failed",
			"event", "billing_overdue_sweep_failed",
			"module", "finance-core/billing-ledger",
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, application.StoreFailure(err)
	}

	notifier := application.Notifier{Publisher: j.Publisher, IDGen: j.IDGen, Logger: j.Logger}
	marked := 0
	for _, invoice := range sent {
		if !services.PastDue(invoice.DueDate, now, j.Location) {
			continue
		}
		invoice = invoice.WithStatus(entities.InvoiceStatusOverdue)
		invoice.UpdatedAt = now
		if err := j.Invoices.UpdateInvoice(ctx, invoice); err != nil {
			return marked, application.StoreFailure(err)
		}
		notifier.Notify(ctx, application.CollectionInvoices, contractsv1.ChangeUpdate, invoice.InvoiceID,
			sweeperActorID, now, application.InvoiceChangeData(invoice))
		marked++
	}
	if marked > 0 {
		logger.Info("invoice overdue sweep completed",
			"event", "billing_overdue_sweep_completed",
			"module", "finance-core/billing-ledger",
			"layer", "worker",
			"marked_count", marked,
		)
	}
	return marked, nil
}
