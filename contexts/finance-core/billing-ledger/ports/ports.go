package ports

import (
	"context"
	"time"

	"practicedesk/contexts/finance-core/billing-ledger/domain/entities"
	contractsv1 "practicedesk/contracts/gen/events/v1"
	identityv1 "practicedesk/contracts/gen/identity/v1"
)

type Actor = identityv1.Actor
type Capabilities = identityv1.Capabilities

type AccessPolicy interface {
	CapabilitiesOf(actor Actor) (Capabilities, error)
}

type InvoiceFilter struct {
	ClientID string
	Status   entities.InvoiceStatus
}

type InvoiceRepository interface {
	CreateInvoice(ctx context.Context, invoice entities.Invoice) error
	UpdateInvoice(ctx context.Context, invoice entities.Invoice) error
	GetInvoice(ctx context.Context, invoiceID string) (entities.Invoice, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]entities.Invoice, error)
	DeleteInvoice(ctx context.Context, invoiceID string) error
	InvoiceNumberExists(ctx context.Context, number string) (bool, error)
}

type PaymentRepository interface {
	AddPayment(ctx context.Context, payment entities.Payment) error
	// ListPayments returns every payment when invoiceID is empty.
	ListPayments(ctx context.Context, invoiceID string) ([]entities.Payment, error)
}

// ClientDirectory resolves clients owned by the engagement records.
type ClientDirectory interface {
	ClientExists(ctx context.Context, clientID string) (bool, error)
	ClientName(ctx context.Context, clientID string) (string, error)
}

// SuffixSource yields the random part of invoice numbers.
type SuffixSource interface {
	NextSuffix() int
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = contractsv1.Envelope

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
