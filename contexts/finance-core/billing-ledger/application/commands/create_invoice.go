package commands

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	application "practicedesk/contexts/finance-core/billing-ledger/application"
	"practicedesk/contexts/finance-core/billing-ledger/domain/entities"
	domainerrors "practicedesk/contexts/finance-core/billing-ledger/domain/errors"
	"practicedesk/contexts/finance-core/billing-ledger/domain/services"
	"practicedesk/contexts/finance-core/billing-ledger/ports"
	contractsv1 "practicedesk/contracts/gen/events/v1"
)

const maxNumberAttempts = 5

type CreateInvoiceCommand struct {
	Actor       ports.Actor
	ClientID    string
	TaskID      string
	Amount      float64
	Status      string
	IssueDate   *time.Time
	DueDate     time.Time
	Description string
	Notes       string
}

type CreateInvoiceUseCase struct {
	Invoices  ports.InvoiceRepository
	Clients   ports.ClientDirectory
	Policy    ports.AccessPolicy
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Suffixes  ports.SuffixSource
	Publisher ports.EventPublisher
	Logger    *slog.Logger
}

func (uc CreateInvoiceUseCase) Execute(ctx context.Context, cmd CreateInvoiceCommand) (entities.Invoice, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := application.RequireBilling(uc.Policy, cmd.Actor); err != nil {
		return entities.Invoice{}, err
	}
	clientID := strings.TrimSpace(cmd.ClientID)
	if clientID == "" || cmd.Amount <= 0 || cmd.DueDate.IsZero() {
		return entities.Invoice{}, domainerrors.ErrInvalidInvoiceInput
	}
	status := entities.InvoiceStatusDraft
	if strings.TrimSpace(cmd.Status) != "" {
		parsed, ok := entities.ParseInvoiceStatus(cmd.Status)
		if !ok || parsed == entities.InvoiceStatusPaid {
			return entities.Invoice{}, domainerrors.ErrInvalidInvoiceStatus
		}
		status = parsed
	}
	exists, err := uc.Clients.ClientExists(ctx, clientID)
	if err != nil {
		return entities.Invoice{}, application.StoreFailure(err)
	}
	if !exists {
		return entities.Invoice{}, domainerrors.ErrClientNotFound
	}

	now := uc.Clock.Now().UTC()
	issueDate := now
	if cmd.IssueDate != nil && !cmd.IssueDate.IsZero() {
		issueDate = *cmd.IssueDate
	}
	invoiceID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Invoice{}, application.StoreFailure(err)
	}
	invoice := entities.Invoice{
		InvoiceID:   invoiceID,
		ClientID:    clientID,
		TaskID:      strings.TrimSpace(cmd.TaskID),
		Amount:      cmd.Amount,
		Status:      status,
		IssueDate:   issueDate,
		DueDate:     cmd.DueDate,
		Description: strings.TrimSpace(cmd.Description),
		Notes:       strings.TrimSpace(cmd.Notes),
		CreatedBy:   cmd.Actor.ActorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created := false
	for attempt := 1; attempt <= maxNumberAttempts && !created; attempt++ {
		invoice.Number = services.InvoiceNumber(now, uc.nextSuffix())
		taken, err := uc.Invoices.InvoiceNumberExists(ctx, invoice.Number)
		if err != nil {
			return entities.Invoice{}, application.StoreFailure(err)
		}
		if taken {
			logger.Warn("invoice number collision, regenerating",
				"event", "billing_invoice_number_collision",
				"module", "finance-core/billing-ledger",
				"layer", "application",
				"invoice_number", invoice.Number,
				"attempt", attempt,
			)
			continue
		}
		err = uc.Invoices.CreateInvoice(ctx, invoice)
		switch {
		case err == nil:
			created = true
		case errors.Is(err, domainerrors.ErrDuplicateInvoiceNumber):
			continue
		default:
			return entities.Invoice{}, application.StoreFailure(err)
		}
	}
	if !created {
		return entities.Invoice{}, domainerrors.ErrInvoiceNumberExhausted
	}

	notifier := application.Notifier{Publisher: uc.Publisher, IDGen: uc.IDGen, Logger: uc.Logger}
	notifier.Notify(ctx, application.CollectionInvoices, contractsv1.ChangeInsert, invoice.InvoiceID,
		cmd.Actor.ActorID, now, application.InvoiceChangeData(invoice))
	logger.Info("invoice created",
		"event", "billing_invoice_created",
		"module", "finance-core/billing-ledger",
		"layer", "application",
		"invoice_id", invoice.InvoiceID,
		"invoice_number", invoice.Number,
		"client_id", invoice.ClientID,
	)
	return invoice, nil
}

func (uc CreateInvoiceUseCase) nextSuffix() int {
	if uc.Suffixes != nil {
		return uc.Suffixes.NextSuffix()
	}
	return rand.IntN(1000)
}
