package engagementservice

import (
	"log/slog"
	"time"

	httpadapter "practicedesk/contexts/practice-ops/engagement-service/adapters/http"
	"practicedesk/contexts/practice-ops/engagement-service/adapters/memory"
	"practicedesk/contexts/practice-ops/engagement-service/adapters/storage"
	"practicedesk/contexts/practice-ops/engagement-service/application/commands"
	"practicedesk/contexts/practice-ops/engagement-service/application/queries"
	"practicedesk/contexts/practice-ops/engagement-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
	Objects *storage.Memory
}

type Dependencies struct {
	Tasks         ports.TaskRepository
	Documents     ports.DocumentRepository
	Clients       ports.ClientRepository
	Employees     ports.EmployeeRepository
	Storage       ports.ObjectStorage
	Policy        ports.AccessPolicy
	Publisher     ports.EventPublisher
	Clock         ports.Clock
	IDGenerator   ports.IDGenerator
	Location      *time.Location
	SignedLinkTTL time.Duration
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	location := deps.Location
	if location == nil {
		location = time.UTC
	}
	linkTTL := deps.SignedLinkTTL
	if linkTTL <= 0 {
		linkTTL = queries.DefaultSignedLinkTTL
	}

	return Module{
		Handler: httpadapter.Handler{
			CreateTask: commands.CreateTaskUseCase{
				Tasks:     deps.Tasks,
				Clients:   deps.Clients,
				Employees: deps.Employees,
				Policy:    deps.Policy,
				Clock:     deps.Clock,
				IDGen:     deps.IDGenerator,
				Publisher: deps.Publisher,
				Logger:    deps.Logger,
			},
			UpdateTask: commands.UpdateTaskUseCase{
				Tasks:     deps.Tasks,
				Clients:   deps.Clients,
				Employees: deps.Employees,
				Policy:    deps.Policy,
				Clock:     deps.Clock,
				IDGen:     deps.IDGenerator,
				Publisher: deps.Publisher,
				Logger:    deps.Logger,
			},
			SetTaskStatus: commands.SetTaskStatusUseCase{
				Tasks:     deps.Tasks,
				Employees: deps.Employees,
				Policy:    deps.Policy,
				Clock:     deps.Clock,
				IDGen:     deps.IDGenerator,
				Publisher: deps.Publisher,
				Location:  location,
				Logger:    deps.Logger,
			},
			DeleteTask: commands.DeleteTaskUseCase{
				Tasks:     deps.Tasks,
				Documents: deps.Documents,
				Storage:   deps.Storage,
				Policy:    deps.Policy,
				Clock:     deps.Clock,
				IDGen:     deps.IDGenerator,
				Publisher: deps.Publisher,
				Logger:    deps.Logger,
			},
			UploadDocument: commands.UploadDocumentUseCase{
				Tasks:     deps.Tasks,
				Documents: deps.Documents,
				Clients:   deps.Clients,
				Employees: deps.Employees,
				Storage:   deps.Storage,
				Policy:    deps.Policy,
				Clock:     deps.Clock,
				IDGen:     deps.IDGenerator,
				Publisher: deps.Publisher,
				Logger:    deps.Logger,
			},
			DeleteDocument: commands.DeleteDocumentUseCase{
				Documents: deps.Documents,
				Storage:   deps.Storage,
				Policy:    deps.Policy,
				Clock:     deps.Clock,
				IDGen:     deps.IDGenerator,
				Publisher: deps.Publisher,
				Logger:    deps.Logger,
			},
			SaveClient: commands.SaveClientUseCase{
				Clients:   deps.Clients,
				Policy:    deps.Policy,
				Clock:     deps.Clock,
				IDGen:     deps.IDGenerator,
				Publisher: deps.Publisher,
				Logger:    deps.Logger,
			},
			DeleteClient: commands.DeleteClientUseCase{
				Clients:   deps.Clients,
				Policy:    deps.Policy,
				Clock:     deps.Clock,
				IDGen:     deps.IDGenerator,
				Publisher: deps.Publisher,
				Logger:    deps.Logger,
			},
			SaveEmployee: commands.SaveEmployeeUseCase{
				Employees: deps.Employees,
				Policy:    deps.Policy,
				Clock:     deps.Clock,
				IDGen:     deps.IDGenerator,
				Publisher: deps.Publisher,
				Logger:    deps.Logger,
			},
			DeleteEmployee: commands.DeleteEmployeeUseCase{
				Employees: deps.Employees,
				Policy:    deps.Policy,
				Clock:     deps.Clock,
				IDGen:     deps.IDGenerator,
				Publisher: deps.Publisher,
				Logger:    deps.Logger,
			},
			ListTasks: queries.ListTasksUseCase{
				Tasks:     deps.Tasks,
				Clients:   deps.Clients,
				Employees: deps.Employees,
				Policy:    deps.Policy,
				Clock:     deps.Clock,
				Location:  location,
			},
			GetTask: queries.GetTaskUseCase{
				Tasks:     deps.Tasks,
				Clients:   deps.Clients,
				Employees: deps.Employees,
				Policy:    deps.Policy,
				Clock:     deps.Clock,
				Location:  location,
			},
			DashboardStats: queries.DashboardStatsUseCase{
				Tasks:     deps.Tasks,
				Clients:   deps.Clients,
				Employees: deps.Employees,
				Policy:    deps.Policy,
				Clock:     deps.Clock,
				Location:  location,
			},
			ListDocuments: queries.ListDocumentsUseCase{
				Tasks:     deps.Tasks,
				Documents: deps.Documents,
				Policy:    deps.Policy,
			},
			DocumentLink: queries.DocumentLinkUseCase{
				Documents: deps.Documents,
				Storage:   deps.Storage,
				Policy:    deps.Policy,
				Clock:     deps.Clock,
				TTL:       linkTTL,
				Logger:    deps.Logger,
			},
			ListClients:   queries.ListClientsUseCase{Clients: deps.Clients, Policy: deps.Policy},
			GetClient:     queries.GetClientUseCase{Clients: deps.Clients, Policy: deps.Policy},
			ListEmployees: queries.ListEmployeesUseCase{Employees: deps.Employees, Policy: deps.Policy},
			GetEmployee:   queries.GetEmployeeUseCase{Employees: deps.Employees, Policy: deps.Policy},
			Logger:        deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module against the in-memory store and object
// storage. publisher may be nil, in which case the store records notifications.
func NewInMemoryModule(
	seed memory.Seed,
	policy ports.AccessPolicy,
	publisher ports.EventPublisher,
	location *time.Location,
	logger *slog.Logger,
) Module {
	store := memory.NewStore(seed)
	objects := storage.NewMemory()
	if publisher == nil {
		publisher = store
	}
	module := NewModule(Dependencies{
		Tasks:       store,
		Documents:   store,
		Clients:     store,
		Employees:   store,
		Storage:     objects,
		Policy:      policy,
		Publisher:   publisher,
		Clock:       store,
		IDGenerator: store,
		Location:    location,
		Logger:      logger,
	})
	module.Store = store
	module.Objects = objects
	return module
}
