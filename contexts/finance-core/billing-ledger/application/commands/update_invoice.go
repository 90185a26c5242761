package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "practicedesk/contexts/finance-core/billing-ledger/application"
	"practicedesk/contexts/finance-core/billing-ledger/domain/entities"
	domainerrors "practicedesk/contexts/finance-core/billing-ledger/domain/errors"
	"practicedesk/contexts/finance-core/billing-ledger/ports"
	contractsv1 "practicedesk/contracts/gen/events/v1"
)

// UpdateInvoiceCommand is a free-form patch. Any status may be set; the paid
// date only moves through RecordPayment.
type UpdateInvoiceCommand struct {
	Actor       ports.Actor
	InvoiceID   string
	ClientID    *string
	TaskID      *string
	Amount      *float64
	Status      *string
	IssueDate   *time.Time
	DueDate     *time.Time
	Description *string
	Notes       *string
}

type UpdateInvoiceUseCase struct {
	Invoices  ports.InvoiceRepository
	Clients   ports.ClientDirectory
	Policy    ports.AccessPolicy
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Publisher ports.EventPublisher
	Logger    *slog.Logger
}

func (uc UpdateInvoiceUseCase) Execute(ctx context.Context, cmd UpdateInvoiceCommand) (entities.Invoice, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := application.RequireBilling(uc.Policy, cmd.Actor); err != nil {
		return entities.Invoice{}, err
	}
	invoice, err := uc.Invoices.GetInvoice(ctx, strings.TrimSpace(cmd.InvoiceID))
	if err != nil {
		return entities.Invoice{}, application.StoreFailure(err)
	}

	if cmd.ClientID != nil {
		clientID := strings.TrimSpace(*cmd.ClientID)
		exists, err := uc.Clients.ClientExists(ctx, clientID)
		if err != nil {
			return entities.Invoice{}, application.StoreFailure(err)
		}
		if clientID == "" || !exists {
			return entities.Invoice{}, domainerrors.ErrClientNotFound
		}
		invoice.ClientID = clientID
	}
	if cmd.TaskID != nil {
		invoice.TaskID = strings.TrimSpace(*cmd.TaskID)
	}
	if cmd.Amount != nil {
		if *cmd.Amount <= 0 {
			return entities.Invoice{}, domainerrors.ErrInvalidInvoiceInput
		}
		invoice.Amount = *cmd.Amount
	}
	if cmd.Status != nil {
		status, ok := entities.ParseInvoiceStatus(*cmd.Status)
		if !ok {
			return entities.Invoice{}, domainerrors.ErrInvalidInvoiceStatus
		}
		invoice = invoice.WithStatus(status)
	}
	if cmd.IssueDate != nil {
		invoice.IssueDate = *cmd.IssueDate
	}
	if cmd.DueDate != nil {
		if cmd.DueDate.IsZero() {
			return entities.Invoice{}, domainerrors.ErrInvalidInvoiceInput
		}
		invoice.DueDate = *cmd.DueDate
	}
	if cmd.Description != nil {
		invoice.Description = strings.TrimSpace(*cmd.Description)
	}
	if cmd.Notes != nil {
		invoice.Notes = strings.TrimSpace(*cmd.Notes)
	}

	now := uc.Clock.Now().UTC()
	invoice.UpdatedAt = now
	if err := uc.Invoices.UpdateInvoice(ctx, invoice); err != nil {
		return entities.Invoice{}, application.StoreFailure(err)
	}
	notifier := application.Notifier{Publisher: uc.Publisher, IDGen: uc.IDGen, Logger: uc.Logger}
	notifier.Notify(ctx, application.CollectionInvoices, contractsv1.ChangeUpdate, invoice.InvoiceID,
		cmd.Actor.ActorID, now, application.InvoiceChangeData(invoice))
	logger.Info("invoice updated",
		"event", "billing_invoice_updated",
		"module", "finance-core/billing-ledger",
		"layer", "application",
		"invoice_id", invoice.InvoiceID,
		"status", string(invoice.Status),
	)
	return invoice, nil
}
