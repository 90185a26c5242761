package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"practicedesk/contexts/practice-ops/engagement-service/domain/entities"
	domainerrors "practicedesk/contexts/practice-ops/engagement-service/domain/errors"
	"practicedesk/contexts/practice-ops/engagement-service/ports"

	"github.com/google/uuid"
)

type Seed struct {
	Clients   []entities.Client
	Employees []entities.Employee
	Tasks     []entities.Task
}

type Store struct {
	mu sync.RWMutex

	tasks     map[string]entities.Task
	documents map[string]entities.Document
	clients   map[string]entities.Client
	employees map[string]entities.Employee

	published []ports.EventEnvelope
	now       func() time.Time
}

func NewStore(seed Seed) *Store {
	store := &Store{
		tasks:     make(map[string]entities.Task, len(seed.Tasks)),
		documents: make(map[string]entities.Document),
		clients:   make(map[string]entities.Client, len(seed.Clients)),
		employees: make(map[string]entities.Employee, len(seed.Employees)),
		published: make([]ports.EventEnvelope, 0),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, item := range seed.Clients {
		store.clients[item.ClientID] = item
	}
	for _, item := range seed.Employees {
		store.employees[item.EmployeeID] = item
	}
	for _, item := range seed.Tasks {
		store.tasks[item.TaskID] = item
	}
	return store
}

// SetNow pins the store clock.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = func() time.Time { return now }
}

func (s *Store) CreateTask(_ context.Context, task entities.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.TaskID]; exists {
		return domainerrors.ErrDuplicateRecord
	}
	s.tasks[task.TaskID] = task
	return nil
}

func (s *Store) UpdateTask(_ context.Context, task entities.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.TaskID]; !exists {
		return domainerrors.ErrTaskNotFound
	}
	s.tasks[task.TaskID] = task
	return nil
}

func (s *Store) GetTask(_ context.Context, taskID string) (entities.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.tasks[strings.TrimSpace(taskID)]
	if !exists {
		return entities.Task{}, domainerrors.ErrTaskNotFound
	}
	return item, nil
}

func (s *Store) ListTasks(_ context.Context, filter ports.TaskFilter) ([]entities.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	items := make([]entities.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		if filter.ClientID != "" && task.ClientID != filter.ClientID {
			continue
		}
		if filter.AssigneeID != "" && task.AssigneeID != filter.AssigneeID {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(task.Title), search) &&
			!strings.Contains(strings.ToLower(task.Description), search) {
			continue
		}
		items = append(items, task)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].DueDate.Equal(items[j].DueDate) {
			return items[i].TaskID < items[j].TaskID
		}
		return items[i].DueDate.Before(items[j].DueDate)
	})
	return items, nil
}

func (s *Store) DeleteTask(_ context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[taskID]; !exists {
		return domainerrors.ErrTaskNotFound
	}
	delete(s.tasks, taskID)
	return nil
}

func (s *Store) AddDocument(_ context.Context, document entities.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[document.TaskID]; !exists {
		return domainerrors.ErrTaskNotFound
	}
	if _, exists := s.documents[document.DocumentID]; exists {
		return domainerrors.ErrDuplicateRecord
	}
	s.documents[document.DocumentID] = document
	return nil
}

func (s *Store) GetDocument(_ context.Context, documentID string) (entities.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.documents[strings.TrimSpace(documentID)]
	if !exists {
		return entities.Document{}, domainerrors.ErrDocumentNotFound
	}
	return item, nil
}

func (s *Store) ListDocumentsByTask(_ context.Context, taskID string) ([]entities.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Document, 0)
	for _, item := range s.documents {
		if item.TaskID == taskID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].UploadedAt.After(items[j].UploadedAt)
	})
	return items, nil
}

func (s *Store) DeleteDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.documents[documentID]; !exists {
		return domainerrors.ErrDocumentNotFound
	}
	delete(s.documents, documentID)
	return nil
}

func (s *Store) DeleteDocumentsByTask(_ context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for documentID, item := range s.documents {
		if item.TaskID == taskID {
			delete(s.documents, documentID)
		}
	}
	return nil
}

func (s *Store) ObjectPathInUse(_ context.Context, objectPath string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.documents {
		if item.ObjectPath == objectPath {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateClient(_ context.Context, client entities.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.clients[client.ClientID]; exists {
		return domainerrors.ErrDuplicateRecord
	}
	s.clients[client.ClientID] = client
	return nil
}

func (s *Store) UpdateClient(_ context.Context, client entities.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.clients[client.ClientID]; !exists {
		return domainerrors.ErrClientNotFound
	}
	s.clients[client.ClientID] = client
	return nil
}

func (s *Store) GetClient(_ context.Context, clientID string) (entities.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.clients[strings.TrimSpace(clientID)]
	if !exists {
		return entities.Client{}, domainerrors.ErrClientNotFound
	}
	return item, nil
}

func (s *Store) ListClients(_ context.Context, filter ports.ClientFilter) ([]entities.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	items := make([]entities.Client, 0, len(s.clients))
	for _, client := range s.clients {
		if filter.Status != "" && client.Status != filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(client.Name), search) &&
			!strings.Contains(strings.ToLower(client.ClientCode), search) {
			continue
		}
		items = append(items, client)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (s *Store) DeleteClient(_ context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.clients[clientID]; !exists {
		return domainerrors.ErrClientNotFound
	}
	delete(s.clients, clientID)
	return nil
}

func (s *Store) CreateEmployee(_ context.Context, employee entities.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.employees[employee.EmployeeID]; exists {
		return domainerrors.ErrDuplicateRecord
	}
	s.employees[employee.EmployeeID] = employee
	return nil
}

func (s *Store) UpdateEmployee(_ context.Context, employee entities.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.employees[employee.EmployeeID]; !exists {
		return domainerrors.ErrEmployeeNotFound
	}
	s.employees[employee.EmployeeID] = employee
	return nil
}

func (s *Store) GetEmployee(_ context.Context, employeeID string) (entities.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.employees[strings.TrimSpace(employeeID)]
	if !exists {
		return entities.Employee{}, domainerrors.ErrEmployeeNotFound
	}
	return item, nil
}

func (s *Store) GetEmployeeByUserID(_ context.Context, userID string) (entities.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entities.Employee{}, domainerrors.ErrEmployeeNotFound
	}
	for _, item := range s.employees {
		if item.UserID == userID {
			return item, nil
		}
	}
	return entities.Employee{}, domainerrors.ErrEmployeeNotFound
}

func (s *Store) ListEmployees(_ context.Context, activeOnly bool) ([]entities.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Employee, 0, len(s.employees))
	for _, item := range s.employees {
		if activeOnly && !item.Active {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].FullName < items[j].FullName
	})
	return items, nil
}

func (s *Store) DeleteEmployee(_ context.Context, employeeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.employees[employeeID]; !exists {
		return domainerrors.ErrEmployeeNotFound
	}
	delete(s.employees, employeeID)
	return nil
}

// Publish records change notifications for inspection in tests.
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
