package billingledger

import (
	"log/slog"
	"time"

	httpadapter "practicedesk/contexts/finance-core/billing-ledger/adapters/http"
	"practicedesk/contexts/finance-core/billing-ledger/adapters/memory"
	"practicedesk/contexts/finance-core/billing-ledger/application/commands"
	"practicedesk/contexts/finance-core/billing-ledger/application/queries"
	"practicedesk/contexts/finance-core/billing-ledger/application/workers"
	"practicedesk/contexts/finance-core/billing-ledger/domain/entities"
	"practicedesk/contexts/finance-core/billing-ledger/ports"
)

type Module struct {
	Handler        httpadapter.Handler
	OverdueSweeper workers.OverdueSweeper
	Store          *memory.Store
}

type Dependencies struct {
	Invoices    ports.InvoiceRepository
	Payments    ports.PaymentRepository
	Clients     ports.ClientDirectory
	Policy      ports.AccessPolicy
	Publisher   ports.EventPublisher
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Suffixes    ports.SuffixSource
	Location    *time.Location
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			CreateInvoice: commands.CreateInvoiceUseCase{
				Invoices:  deps.Invoices,
				Clients:   deps.Clients,
				Policy:    deps.Policy,
				Clock:     deps.Clock,
				IDGen:     deps.IDGenerator,
				Suffixes:  deps.Suffixes,
				Publisher: deps.Publisher,
				Logger:    deps.Logger,
			},
			UpdateInvoice: commands.UpdateInvoiceUseCase{
				Invoices:  deps.Invoices,
				Clients:   deps.Clients,
				Policy:    deps.Policy,
				Clock:     deps.Clock,
				IDGen:     deps.IDGenerator,
				Publisher: deps.Publisher,
				Logger:    deps.Logger,
			},
			RecordPayment: commands.RecordPaymentUseCase{
				Invoices:  deps.Invoices,
				Payments:  deps.Payments,
				Policy:    deps.Policy,
				Clock:     deps.Clock,
				IDGen:     deps.IDGenerator,
				Publisher: deps.Publisher,
				Logger:    deps.Logger,
			},
			DeleteInvoice: commands.DeleteInvoiceUseCase{
				Invoices:  deps.Invoices,
				Policy:    deps.Policy,
				Clock:     deps.Clock,
				IDGen:     deps.IDGenerator,
				Publisher: deps.Publisher,
				Logger:    deps.Logger,
			},
			ListInvoices: queries.ListInvoicesUseCase{
				Invoices: deps.Invoices,
				Clients:  deps.Clients,
				Policy:   deps.Policy,
			},
			GetInvoice: queries.GetInvoiceUseCase{
				Invoices: deps.Invoices,
				Payments: deps.Payments,
				Clients:  deps.Clients,
				Policy:   deps.Policy,
			},
			ListPayments: queries.ListPaymentsUseCase{Payments: deps.Payments, Policy: deps.Policy},
			InvoiceStats: queries.InvoiceStatsUseCase{Invoices: deps.Invoices, Policy: deps.Policy},
			Logger:       deps.Logger,
		},
		OverdueSweeper: workers.OverdueSweeper{
			Invoices:  deps.Invoices,
			Clock:     deps.Clock,
			IDGen:     deps.IDGenerator,
			Publisher: deps.Publisher,
			Location:  deps.Location,
			Logger:    deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module against the in-memory store. clients
// maps client ids to names for the client directory; publisher may be nil.
func NewInMemoryModule(
	seed []entities.Invoice,
	clients map[string]string,
	policy ports.AccessPolicy,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) Module {
	store := memory.NewStore(seed, clients)
	if publisher == nil {
		publisher = store
	}
	module := NewModule(Dependencies{
		Invoices:    store,
		Payments:    store,
		Clients:     store,
		Policy:      policy,
		Publisher:   publisher,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
