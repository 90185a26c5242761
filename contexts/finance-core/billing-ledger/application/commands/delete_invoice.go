package commands

import (
	"context"
	"log/slog"
	"strings"

	application "practicedesk/contexts/finance-core/billing-ledger/application"
	"practicedesk/contexts/finance-core/billing-ledger/ports"
	contractsv1 "practicedesk/contracts/gen/events/v1"
)

type DeleteInvoiceCommand struct {
	Actor     ports.Actor
	InvoiceID string
}

// DeleteInvoiceUseCase removes the invoice row only; its payments remain.
type DeleteInvoiceUseCase struct {
	Invoices  ports.InvoiceRepository
	Policy    ports.AccessPolicy
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Publisher ports.EventPublisher
	Logger    *slog.Logger
}

func (uc DeleteInvoiceUseCase) Execute(ctx context.Context, cmd DeleteInvoiceCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	if err := application.RequireBilling(uc.Policy, cmd.Actor); err != nil {
		return err
	}
	invoice, err := uc.Invoices.GetInvoice(ctx, strings.TrimSpace(cmd.InvoiceID))
	if err != nil {
		return application.StoreFailure(err)
	}
	if err := uc.Invoices.DeleteInvoice(ctx, invoice.InvoiceID); err != nil {
		return application.StoreFailure(err)
	}
	notifier := application.Notifier{Publisher: uc.Publisher, IDGen: uc.IDGen, Logger: uc.Logger}
	notifier.Notify(ctx, application.CollectionInvoices, contractsv1.ChangeDelete, invoice.InvoiceID,
		cmd.Actor.ActorID, uc.Clock.Now().UTC(), application.InvoiceChangeData(invoice))
	logger.Info("invoice deleted",
		"event", "billing_invoice_deleted",
		"module", "finance-core/billing-ledger",
		"layer", "application",
		"invoice_id", invoice.InvoiceID,
	)
	return nil
}
