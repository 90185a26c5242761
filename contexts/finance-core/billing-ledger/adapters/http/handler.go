package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"practicedesk/contexts/finance-core/billing-ledger/application/commands"
	"practicedesk/contexts/finance-core/billing-ledger/application/queries"
	"practicedesk/contexts/finance-core/billing-ledger/domain/entities"
	domainerrors "practicedesk/contexts/finance-core/billing-ledger/domain/errors"
	"practicedesk/contexts/finance-core/billing-ledger/ports"
	httptransport "practicedesk/contexts/finance-core/billing-ledger/transport/http"
)

const dateLayout = "2006-01-02"

type Handler struct {
	CreateInvoice commands.CreateInvoiceUseCase
	UpdateInvoice commands.UpdateInvoiceUseCase
	RecordPayment commands.RecordPaymentUseCase
	DeleteInvoice commands.DeleteInvoiceUseCase
	ListInvoices  queries.ListInvoicesUseCase
	GetInvoice    queries.GetInvoiceUseCase
	ListPayments  queries.ListPaymentsUseCase
	InvoiceStats  queries.InvoiceStatsUseCase
	Logger        *slog.Logger
}

func (h Handler) CreateInvoiceHandler(
	ctx context.Context,
	actor ports.Actor,
	req httptransport.CreateInvoiceRequest,
) (httptransport.InvoiceResponse, error) {
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		return httptransport.InvoiceResponse{}, domainerrors.ErrInvalidInvoiceInput
	}
	var issueDate *time.Time
	if strings.TrimSpace(req.IssueDate) != "" {
		parsed, err := parseDate(req.IssueDate)
		if err != nil {
			return httptransport.InvoiceResponse{}, domainerrors.ErrInvalidInvoiceInput
		}
		issueDate = &parsed
	}
	invoice, err := h.CreateInvoice.Execute(ctx, commands.CreateInvoiceCommand{
		Actor:       actor,
		ClientID:    req.ClientID,
		TaskID:      req.TaskID,
		Amount:      req.Amount,
		Status:      req.Status,
		IssueDate:   issueDate,
		DueDate:     dueDate,
		Description: req.Description,
		Notes:       req.Notes,
	})
	if err != nil {
		return httptransport.InvoiceResponse{}, err
	}
	return httptransport.InvoiceResponse{Invoice: mapInvoice(queries.InvoiceView{Invoice: invoice})}, nil
}

func (h Handler) UpdateInvoiceHandler(
	ctx context.Context,
	actor ports.Actor,
	invoiceID string,
	req httptransport.UpdateInvoiceRequest,
) (httptransport.InvoiceResponse, error) {
	issueDate, err := parseOptionalDate(req.IssueDate)
	if err != nil {
		return httptransport.InvoiceResponse{}, domainerrors.ErrInvalidInvoiceInput
	}
	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		return httptransport.InvoiceResponse{}, domainerrors.ErrInvalidInvoiceInput
	}
	invoice, err := h.UpdateInvoice.Execute(ctx, commands.UpdateInvoiceCommand{
		Actor:       actor,
		InvoiceID:   invoiceID,
		ClientID:    req.ClientID,
		TaskID:      req.TaskID,
		Amount:      req.Amount,
		Status:      req.Status,
		IssueDate:   issueDate,
		DueDate:     dueDate,
		Description: req.Description,
		Notes:       req.Notes,
	})
	if err != nil {
		return httptransport.InvoiceResponse{}, err
	}
	return httptransport.InvoiceResponse{Invoice: mapInvoice(queries.InvoiceView{Invoice: invoice})}, nil
}

func (h Handler) RecordPaymentHandler(
	ctx context.Context,
	actor ports.Actor,
	invoiceID string,
	req httptransport.RecordPaymentRequest,
) (httptransport.RecordPaymentResponse, error) {
	result, err := h.RecordPayment.Execute(ctx, commands.RecordPaymentCommand{
		Actor:     actor,
		InvoiceID: invoiceID,
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
		Notes:     req.Notes,
	})
	if err != nil {
		return httptransport.RecordPaymentResponse{}, err
	}
	return httptransport.RecordPaymentResponse{
		Payment:   mapPayment(result.Payment),
		Invoice:   mapInvoice(queries.InvoiceView{Invoice: result.Invoice}),
		TotalPaid: result.TotalPaid,
		Shortfall: result.Shortfall,
	}, nil
}

func (h Handler) DeleteInvoiceHandler(ctx context.Context, actor ports.Actor, invoiceID string) error {
	return h.DeleteInvoice.Execute(ctx, commands.DeleteInvoiceCommand{Actor: actor, InvoiceID: invoiceID})
}

func (h Handler) ListInvoicesHandler(
	ctx context.Context,
	actor ports.Actor,
	status string,
	clientID string,
) (httptransport.ListInvoicesResponse, error) {
	items, err := h.ListInvoices.Execute(ctx, queries.ListInvoicesQuery{Actor: actor, Status: status, ClientID: clientID})
	if err != nil {
		return httptransport.ListInvoicesResponse{}, err
	}
	result := make([]httptransport.InvoiceDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapInvoice(item))
	}
	return httptransport.ListInvoicesResponse{Items: result}, nil
}

func (h Handler) GetInvoiceHandler(ctx context.Context, actor ports.Actor, invoiceID string) (httptransport.InvoiceDetailResponse, error) {
	detail, err := h.GetInvoice.Execute(ctx, actor, invoiceID)
	if err != nil {
		return httptransport.InvoiceDetailResponse{}, err
	}
	payments := make([]httptransport.PaymentDTO, 0, len(detail.Payments))
	for _, payment := range detail.Payments {
		payments = append(payments, mapPayment(payment))
	}
	return httptransport.InvoiceDetailResponse{
		Invoice:   mapInvoice(detail.InvoiceView),
		Payments:  payments,
		TotalPaid: detail.TotalPaid,
		Shortfall: detail.Shortfall,
	}, nil
}

func (h Handler) ListPaymentsHandler(ctx context.Context, actor ports.Actor, invoiceID string) (httptransport.ListPaymentsResponse, error) {
	items, err := h.ListPayments.Execute(ctx, actor, invoiceID)
	if err != nil {
		return httptransport.ListPaymentsResponse{}, err
	}
	result := make([]httptransport.PaymentDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapPayment(item))
	}
	return httptransport.ListPaymentsResponse{Items: result}, nil
}

func (h Handler) InvoiceStatsHandler(ctx context.Context, actor ports.Actor) (httptransport.InvoiceStatsResponse, error) {
	stats, err := h.InvoiceStats.Execute(ctx, actor)
	if err != nil {
		return httptransport.InvoiceStatsResponse{}, err
	}
	return httptransport.InvoiceStatsResponse{
		TotalInvoices: stats.TotalInvoices,
		TotalPaid:     stats.TotalPaid,
		TotalPending:  stats.TotalPending,
		TotalOverdue:  stats.TotalOverdue,
	}, nil
}

func mapInvoice(view queries.InvoiceView) httptransport.InvoiceDTO {
	item := view.Invoice
	var paidDate *string
	if item.PaidDate != nil {
		formatted := item.PaidDate.Format(dateLayout)
		paidDate = &formatted
	}
	return httptransport.InvoiceDTO{
		InvoiceID:   item.InvoiceID,
		Number:      item.Number,
		ClientID:    item.ClientID,
		ClientName:  view.ClientName,
		TaskID:      item.TaskID,
		Amount:      item.Amount,
		Status:      string(item.Status),
		IssueDate:   item.IssueDate.Format(dateLayout),
		DueDate:     item.DueDate.Format(dateLayout),
		PaidDate:    paidDate,
		Description: item.Description,
		Notes:       item.Notes,
		CreatedBy:   item.CreatedBy,
		CreatedAt:   item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func mapPayment(item entities.Payment) httptransport.PaymentDTO {
	return httptransport.PaymentDTO{
		PaymentID:   item.PaymentID,
		InvoiceID:   item.InvoiceID,
		Amount:      item.Amount,
		PaymentDate: item.PaymentDate.Format(dateLayout),
		Method:      item.Method,
		Reference:   item.Reference,
		Notes:       item.Notes,
		CreatedBy:   item.CreatedBy,
	}
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse(dateLayout, strings.TrimSpace(raw))
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	parsed, err := parseDate(*raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
