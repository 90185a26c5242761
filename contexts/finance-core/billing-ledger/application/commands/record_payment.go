package commands

import (
	"context"
	"log/slog"
	"strings"

	application "practicedesk/contexts/finance-core/billing-ledger/application"
	"practicedesk/contexts/finance-core/billing-ledger/domain/entities"
	domainerrors "practicedesk/contexts/finance-core/billing-ledger/domain/errors"
	"practicedesk/contexts/finance-core/billing-ledger/domain/services"
	"practicedesk/contexts/finance-core/billing-ledger/ports"
	contractsv1 "practicedesk/contracts/gen/events/v1"
)

type RecordPaymentCommand struct {
	Actor     ports.Actor
	InvoiceID string
	Amount    float64
	Method    string
	Reference string
	Notes     string
}

// RecordPaymentResult reports the invoice after closing it together with the
// running total of payments, so a partial payment is visible to the caller.
type RecordPaymentResult struct {
	Payment   entities.Payment
	Invoice   entities.Invoice
	TotalPaid float64
	Shortfall float64
}

type RecordPaymentUseCase struct {
	Invoices  ports.InvoiceRepository
	Payments  ports.PaymentRepository
	Policy    ports.AccessPolicy
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Publisher ports.EventPublisher
	Logger    *slog.Logger
}

// Execute inserts the payment and then marks the invoice paid. The two writes
// are not atomic: when the second fails the payment stays recorded, the
// invoice keeps its previous status and a store failure is returned.
// Notifications go out only once both writes are done.
func (uc RecordPaymentUseCase) Execute(ctx context.Context, cmd RecordPaymentCommand) (RecordPaymentResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := application.RequireBilling(uc.Policy, cmd.Actor); err != nil {
		return RecordPaymentResult{}, err
	}
	if cmd.Amount <= 0 {
		return RecordPaymentResult{}, domainerrors.ErrInvalidPaymentInput
	}
	invoice, err := uc.Invoices.GetInvoice(ctx, strings.TrimSpace(cmd.InvoiceID))
	if err != nil {
		return RecordPaymentResult{}, application.StoreFailure(err)
	}

	paymentID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return RecordPaymentResult{}, application.StoreFailure(err)
	}
	now := uc.Clock.Now().UTC()
	payment := entities.Payment{
		PaymentID:   paymentID,
		InvoiceID:   invoice.InvoiceID,
		Amount:      cmd.Amount,
		PaymentDate: now,
		Method:      strings.TrimSpace(cmd.Method),
		Reference:   strings.TrimSpace(cmd.Reference),
		Notes:       strings.TrimSpace(cmd.Notes),
		CreatedBy:   cmd.Actor.ActorID,
		CreatedAt:   now,
	}
	if err := uc.Payments.AddPayment(ctx, payment); err != nil {
		return RecordPaymentResult{}, application.StoreFailure(err)
	}
	notifier := application.Notifier{Publisher: uc.Publisher, IDGen: uc.IDGen, Logger: uc.Logger}
	previous := invoice.Status
	invoice = invoice.MarkPaid(now)
	if err := uc.Invoices.UpdateInvoice(ctx, invoice); err != nil {
		notifier.Notify(ctx, application.CollectionPayments, contractsv1.ChangeInsert, payment.PaymentID,
			cmd.Actor.ActorID, now, application.PaymentChangeData(payment))
		logger.Error("payment recorded but invoice not closed",
			"event", "billing_invoice_close_failed",
			"module", "finance-core/billing-ledger",
			"layer", "application",
			"invoice_id", invoice.InvoiceID,
			"payment_id", payment.PaymentID,
			"error", err.Error(),
		)
		return RecordPaymentResult{}, application.StoreFailure(err)
	}
	notifier.Notify(ctx, application.CollectionPayments, contractsv1.ChangeInsert, payment.PaymentID,
		cmd.Actor.ActorID, now, application.PaymentChangeData(payment))
	notifier.Notify(ctx, application.CollectionInvoices, contractsv1.ChangeUpdate, invoice.InvoiceID,
		cmd.Actor.ActorID, now, application.InvoiceChangeData(invoice))

	payments, err := uc.Payments.ListPayments(ctx, invoice.InvoiceID)
	if err != nil {
		return RecordPaymentResult{}, application.StoreFailure(err)
	}
	totalPaid, shortfall := services.Settlement(invoice.Amount, payments)
	if shortfall > 0 {
		logger.Warn("invoice closed with a partial payment",
			"event", "billing_invoice_partially_paid",
			"module", "finance-core/billing-ledger",
			"layer", "application",
			"invoice_id", invoice.InvoiceID,
			"invoice_amount", invoice.Amount,
			"total_paid", totalPaid,
			"shortfall", shortfall,
		)
	}
	logger.Info("payment recorded",
		"event", "billing_payment_recorded",
		"module", "finance-core/billing-ledger",
		"layer", "application",
		"invoice_id", invoice.InvoiceID,
		"payment_id", payment.PaymentID,
		"from_status", string(previous),
		"amount", payment.Amount,
	)
	return RecordPaymentResult{
		Payment:   payment,
		Invoice:   invoice,
		TotalPaid: totalPaid,
		Shortfall: shortfall,
	}, nil
}
