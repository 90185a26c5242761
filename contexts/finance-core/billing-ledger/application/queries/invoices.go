package queries

import (
	"context"
	"strings"

	application "practicedesk/contexts/finance-core/billing-ledger/application"
	"practicedesk/contexts/finance-core/billing-ledger/domain/entities"
	domainerrors "practicedesk/contexts/finance-core/billing-ledger/domain/errors"
	"practicedesk/contexts/finance-core/billing-ledger/domain/services"
	"practicedesk/contexts/finance-core/billing-ledger/ports"
)

type InvoiceView struct {
	Invoice    entities.Invoice
	ClientName string
}

type InvoiceDetail struct {
	InvoiceView
	Payments  []entities.Payment
	TotalPaid float64
	Shortfall float64
}

type ListInvoicesQuery struct {
	Actor    ports.Actor
	Status   string
	ClientID string
}

type ListInvoicesUseCase struct {
	Invoices ports.InvoiceRepository
	Clients  ports.ClientDirectory
	Policy   ports.AccessPolicy
}

func (uc ListInvoicesUseCase) Execute(ctx context.Context, query ListInvoicesQuery) ([]InvoiceView, error) {
	if err := application.RequireBilling(uc.Policy, query.Actor); err != nil {
		return nil, err
	}
	filter := ports.InvoiceFilter{ClientID: strings.TrimSpace(query.ClientID)}
	if strings.TrimSpace(query.Status) != "" {
		status, ok := entities.ParseInvoiceStatus(query.Status)
		if !ok {
			return nil, domainerrors.ErrInvalidInvoiceStatus
		}
		filter.Status = status
	}
	invoices, err := uc.Invoices.ListInvoices(ctx, filter)
	if err != nil {
		return nil, application.StoreFailure(err)
	}

	names := map[string]string{}
	items := make([]InvoiceView, 0, len(invoices))
	for _, invoice := range invoices {
		name, cached := names[invoice.ClientID]
		if !cached && invoice.ClientID != "" && uc.Clients != nil {
			name, _ = uc.Clients.ClientName(ctx, invoice.ClientID)
			names[invoice.ClientID] = name
		}
		items = append(items, InvoiceView{Invoice: invoice, ClientName: name})
	}
	return items, nil
}

type GetInvoiceUseCase struct {
	Invoices ports.InvoiceRepository
	Payments ports.PaymentRepository
	Clients  ports.ClientDirectory
	Policy   ports.AccessPolicy
}

func (uc GetInvoiceUseCase) Execute(ctx context.Context, actor ports.Actor, invoiceID string) (InvoiceDetail, error) {
	if err := application.RequireBilling(uc.Policy, actor); err != nil {
		return InvoiceDetail{}, err
	}
	invoice, err := uc.Invoices.GetInvoice(ctx, strings.TrimSpace(invoiceID))
	if err != nil {
		return InvoiceDetail{}, application.StoreFailure(err)
	}
	payments, err := uc.Payments.ListPayments(ctx, invoice.InvoiceID)
	if err != nil {
		return InvoiceDetail{}, application.StoreFailure(err)
	}
	detail := InvoiceDetail{InvoiceView: InvoiceView{Invoice: invoice}, Payments: payments}
	if invoice.ClientID != "" && uc.Clients != nil {
		detail.ClientName, _ = uc.Clients.ClientName(ctx, invoice.ClientID)
	}
	detail.TotalPaid, detail.Shortfall = services.Settlement(invoice.Amount, payments)
	return detail, nil
}

type ListPaymentsUseCase struct {
	Payments ports.PaymentRepository
	Policy   ports.AccessPolicy
}

// Execute lists payments for one invoice, or all payments when invoiceID is empty.
func (uc ListPaymentsUseCase) Execute(ctx context.Context, actor ports.Actor, invoiceID string) ([]entities.Payment, error) {
	if err := application.RequireBilling(uc.Policy, actor); err != nil {
		return nil, err
	}
	items, err := uc.Payments.ListPayments(ctx, strings.TrimSpace(invoiceID))
	if err != nil {
		return nil, application.StoreFailure(err)
	}
	return items, nil
}

type InvoiceStats struct {
	TotalInvoices int
	TotalPaid     float64
	TotalPending  float64
	TotalOverdue  float64
}

type InvoiceStatsUseCase struct {
	Invoices ports.InvoiceRepository
	Policy   ports.AccessPolicy
}

// Execute sums invoice amounts by status. Pending covers draft and sent.
func (uc InvoiceStatsUseCase) Execute(ctx context.Context, actor ports.Actor) (InvoiceStats, error) {
	if err := application.RequireBilling(uc.Policy, actor); err != nil {
		return InvoiceStats{}, err
	}
	invoices, err := uc.Invoices.ListInvoices(ctx, ports.InvoiceFilter{})
	if err != nil {
		return InvoiceStats{}, application.StoreFailure(err)
	}
	stats := InvoiceStats{TotalInvoices: len(invoices)}
	for _, invoice := range invoices {
		switch {
		case invoice.Status == entities.InvoiceStatusPaid:
			stats.TotalPaid += invoice.Amount
		case invoice.Status.Pending():
			stats.TotalPending += invoice.Amount
		case invoice.Status == entities.InvoiceStatusOverdue:
			stats.TotalOverdue += invoice.Amount
		}
	}
	return stats, nil
}
