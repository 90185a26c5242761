package ports

import (
	"context"
	"io"
	"time"

	"practicedesk/contexts/practice-ops/engagement-service/domain/entities"
	contractsv1 "practicedesk/contracts/gen/events/v1"
	identityv1 "practicedesk/contracts/gen/identity/v1"
)

type Actor = identityv1.Actor
type Capabilities = identityv1.Capabilities

// AccessPolicy answers capability questions for an authenticated actor.
type AccessPolicy interface {
	CapabilitiesOf(actor Actor) (Capabilities, error)
}

type TaskFilter struct {
	ClientID   string
	AssigneeID string
	Status     entities.TaskStatus
	Search     string
}

type TaskRepository interface {
	CreateTask(ctx context.Context, task entities.Task) error
	UpdateTask(ctx context.Context, task entities.Task) error
	GetTask(ctx context.Context, taskID string) (entities.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]entities.Task, error)
	DeleteTask(ctx context.Context, taskID string) error
}

type DocumentRepository interface {
	AddDocument(ctx context.Context, document entities.Document) error
	GetDocument(ctx context.Context, documentID string) (entities.Document, error)
	ListDocumentsByTask(ctx context.Context, taskID string) ([]entities.Document, error)
	DeleteDocument(ctx context.Context, documentID string) error
	DeleteDocumentsByTask(ctx context.Context, taskID string) error
	// ObjectPathInUse reports whether any document still points at objectPath.
	ObjectPathInUse(ctx context.Context, objectPath string) (bool, error)
}

type ClientFilter struct {
	Status entities.ClientStatus
	Search string
}

type ClientRepository interface {
	CreateClient(ctx context.Context, client entities.Client) error
	UpdateClient(ctx context.Context, client entities.Client) error
	GetClient(ctx context.Context, clientID string) (entities.Client, error)
	ListClients(ctx context.Context, filter ClientFilter) ([]entities.Client, error)
	DeleteClient(ctx context.Context, clientID string) error
}

type EmployeeRepository interface {
	CreateEmployee(ctx context.Context, employee entities.Employee) error
	UpdateEmployee(ctx context.Context, employee entities.Employee) error
	GetEmployee(ctx context.Context, employeeID string) (entities.Employee, error)
	GetEmployeeByUserID(ctx context.Context, userID string) (entities.Employee, error)
	ListEmployees(ctx context.Context, activeOnly bool) ([]entities.Employee, error)
	DeleteEmployee(ctx context.Context, employeeID string) error
}

// ObjectStorage keeps uploaded files. Upload returns a direct reference to the
// stored object; SignedURL returns a time-limited link that downloads the
// object under downloadName.
type ObjectStorage interface {
	Upload(ctx context.Context, objectPath string, content io.Reader, contentType string) (string, error)
	SignedURL(ctx context.Context, objectPath string, downloadName string, ttl time.Duration) (string, error)
	Remove(ctx context.Context, objectPath string) error
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
