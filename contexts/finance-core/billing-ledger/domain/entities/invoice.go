package entities

import (
	"strings"
	"time"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

func ParseInvoiceStatus(raw string) (InvoiceStatus, bool) {
	switch InvoiceStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case InvoiceStatusDraft:
		return InvoiceStatusDraft, true
	case InvoiceStatusSent:
		return InvoiceStatusSent, true
	case InvoiceStatusPaid:
		return InvoiceStatusPaid, true
	case InvoiceStatusOverdue:
		return InvoiceStatusOverdue, true
	case InvoiceStatusCancelled:
		return InvoiceStatusCancelled, true
	default:
		return "", false
	}
}

// Pending invoices count towards outstanding billing.
func (s InvoiceStatus) Pending() bool {
	return s == InvoiceStatusDraft || s == InvoiceStatusSent
}

type Invoice struct {
	InvoiceID   string
	Number      string
	ClientID    string
	TaskID      string
	Amount      float64
	Status      InvoiceStatus
	IssueDate   time.Time
	DueDate     time.Time
	PaidDate    *time.Time
	Description string
	Notes       string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MarkPaid closes the invoice regardless of how much has been paid.
func (i Invoice) MarkPaid(now time.Time) Invoice {
	paidAt := now.UTC()
	i.Status = InvoiceStatusPaid
	i.PaidDate = &paidAt
	i.UpdatedAt = paidAt
	return i
}

// WithStatus moves the invoice to status. Leaving paid clears the paid date.
func (i Invoice) WithStatus(status InvoiceStatus) Invoice {
	i.Status = status
	if status != InvoiceStatusPaid {
		i.PaidDate = nil
	}
	return i
}

type Payment struct {
	PaymentID   string
	InvoiceID   string
	Amount      float64
	PaymentDate time.Time
	Method      string
	Reference   string
	Notes       string
	CreatedBy   string
	CreatedAt   time.Time
}
