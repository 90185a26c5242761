package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"practicedesk/contexts/finance-core/billing-ledger/domain/entities"
	domainerrors "practicedesk/contexts/finance-core/billing-ledger/domain/errors"
	"practicedesk/contexts/finance-core/billing-ledger/ports"

	"github.com/google/uuid"
)

var ErrInjectedFailure = errors.New("injected store failure")

type Store struct {
	mu sync.RWMutex

	invoices map[string]entities.Invoice
	payments []entities.Payment
	clients  map[string]string

	published []ports.EventEnvelope
	now       func() time.Time

	failInvoiceUpdates bool
}

// NewStore seeds invoices and the client directory (client id to name).
func NewStore(seed []entities.Invoice, clients map[string]string) *Store {
	store := &Store{
		invoices:  make(map[string]entities.Invoice, len(seed)),
		payments:  make([]entities.Payment, 0),
		clients:   make(map[string]string, len(clients)),
		published: make([]ports.EventEnvelope, 0),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, item := range seed {
		store.invoices[item.InvoiceID] = item
	}
	for clientID, name := range clients {
		store.clients[clientID] = name
	}
	return store
}

func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = func() time.Time { return now }
}

// FailInvoiceUpdates makes UpdateInvoice fail, simulating a lost second write.
func (s *Store) FailInvoiceUpdates(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failInvoiceUpdates = fail
}

func (s *Store) CreateInvoice(_ context.Context, invoice entities.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[invoice.InvoiceID]; exists {
		return domainerrors.ErrDuplicateRecord
	}
	for _, existing := range s.invoices {
		if existing.Number == invoice.Number {
			return domainerrors.ErrDuplicateInvoiceNumber
		}
	}
	s.invoices[invoice.InvoiceID] = invoice
	return nil
}

func (s *Store) UpdateInvoice(_ context.Context, invoice entities.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failInvoiceUpdates {
		return ErrInjectedFailure
	}
	if _, exists := s.invoices[invoice.InvoiceID]; !exists {
		return domainerrors.ErrInvoiceNotFound
	}
	s.invoices[invoice.InvoiceID] = invoice
	return nil
}

func (s *Store) GetInvoice(_ context.Context, invoiceID string) (entities.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.invoices[strings.TrimSpace(invoiceID)]
	if !exists {
		return entities.Invoice{}, domainerrors.ErrInvoiceNotFound
	}
	return item, nil
}

func (s *Store) ListInvoices(_ context.Context, filter ports.InvoiceFilter) ([]entities.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Invoice, 0, len(s.invoices))
	for _, item := range s.invoices {
		if filter.ClientID != "" && item.ClientID != filter.ClientID {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) DeleteInvoice(_ context.Context, invoiceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[invoiceID]; !exists {
		return domainerrors.ErrInvoiceNotFound
	}
	delete(s.invoices, invoiceID)
	return nil
}

func (s *Store) InvoiceNumberExists(_ context.Context, number string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.invoices {
		if item.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) AddPayment(_ context.Context, payment entities.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.payments = append(s.payments, payment)
	return nil
}

func (s *Store) ListPayments(_ context.Context, invoiceID string) ([]entities.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Payment, 0)
	for _, item := range s.payments {
		if invoiceID != "" && item.InvoiceID != invoiceID {
			continue
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PaymentDate.After(items[j].PaymentDate)
	})
	return items, nil
}

func (s *Store) ClientExists(_ context.Context, clientID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.clients[clientID]
	return exists, nil
}

func (s *Store) ClientName(_ context.Context, clientID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.clients[clientID], nil
}

func (s *Store) Publish(_ context.Context, _ string, event ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.published = append(s.published, event)
	return nil
}

func (s *Store) PublishedEvents() []ports.EventEnvelope {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]ports.EventEnvelope, len(s.published))
	copy(items, s.published)
	return items
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
