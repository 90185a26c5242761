package queries

import (
	"context"
	"strings"
	"time"

	application "practicedesk/contexts/practice-ops/engagement-service/application"
	"practicedesk/contexts/practice-ops/engagement-service/domain/entities"
	domainerrors "practicedesk/contexts/practice-ops/engagement-service/domain/errors"
	"practicedesk/contexts/practice-ops/engagement-service/domain/services"
	"practicedesk/contexts/practice-ops/engagement-service/ports"
)

// TaskView is a task joined with the names a task list displays.
type TaskView struct {
	Task         entities.Task
	ClientName   string
	AssigneeName string
	Overdue      bool
}

type ListTasksQuery struct {
	Actor    ports.Actor
	Status   string
	ClientID string
	Search   string
}

type ListTasksUseCase struct {
	Tasks     ports.TaskRepository
	Clients   ports.ClientRepository
	Employees ports.EmployeeRepository
	Policy    ports.AccessPolicy
	Clock     ports.Clock
	Location  *time.Location
}

// Execute lists tasks visible to the actor. Actors without CanEditAnyTask
// only see tasks assigned to them; with no employee record they see none.
func (uc ListTasksUseCase) Execute(ctx context.Context, query ListTasksQuery) ([]TaskView, error) {
	caps, err := application.Capabilities(uc.Policy, query.Actor)
	if err != nil {
		return nil, err
	}
	filter := ports.TaskFilter{
		ClientID: strings.TrimSpace(query.ClientID),
		Search:   strings.TrimSpace(query.Search),
	}
	if strings.TrimSpace(query.Status) != "" {
		status, ok := entities.ParseTaskStatus(query.Status)
		if !ok {
			return nil, domainerrors.ErrInvalidTaskStatus
		}
		filter.Status = status
	}
	if !caps.CanEditAnyTask {
		employeeID, err := application.EmployeeIDOf(ctx, uc.Employees, query.Actor)
		if err != nil {
			return nil, err
		}
		if employeeID == "" {
			return []TaskView{}, nil
		}
		filter.AssigneeID = employeeID
	}

	tasks, err := uc.Tasks.ListTasks(ctx, filter)
	if err != nil {
		return nil, application.StoreFailure(err)
	}
	names, err := loadNames(ctx, uc.Clients, uc.Employees)
	if err != nil {
		return nil, err
	}
	now := uc.Clock.Now()
	items := make([]TaskView, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, names.view(task, now, uc.Location))
	}
	return items, nil
}

type GetTaskQuery struct {
	Actor  ports.Actor
	TaskID string
}

type GetTaskUseCase struct {
	Tasks     ports.TaskRepository
	Clients   ports.ClientRepository
	Employees ports.EmployeeRepository
	Policy    ports.AccessPolicy
	Clock     ports.Clock
	Location  *time.Location
}

// Execute reads one task. Overdue tasks stay readable for everyone.
func (uc GetTaskUseCase) Execute(ctx context.Context, query GetTaskQuery) (TaskView, error) {
	if _, err := application.Capabilities(uc.Policy, query.Actor); err != nil {
		return TaskView{}, err
	}
	task, err := uc.Tasks.GetTask(ctx, strings.TrimSpace(query.TaskID))
	if err != nil {
		return TaskView{}, application.StoreFailure(err)
	}
	names, err := loadNames(ctx, uc.Clients, uc.Employees)
	if err != nil {
		return TaskView{}, err
	}
	return names.view(task, uc.Clock.Now(), uc.Location), nil
}

type nameIndex struct {
	clients   map[string]string
	employees map[string]string
}

func loadNames(ctx context.Context, clients ports.ClientRepository, employees ports.EmployeeRepository) (nameIndex, error) {
	index := nameIndex{clients: map[string]string{}, employees: map[string]string{}}
	clientRows, err := clients.ListClients(ctx, ports.ClientFilter{})
	if err != nil {
		return nameIndex{}, application.StoreFailure(err)
	}
	for _, client := range clientRows {
		index.clients[client.ClientID] = client.Name
	}
	employeeRows, err := employees.ListEmployees(ctx, false)
	if err != nil {
		return nameIndex{}, application.StoreFailure(err)
	}
	for _, employee := range employeeRows {
		index.employees[employee.EmployeeID] = employee.FullName
	}
	return index, nil
}

func (n nameIndex) view(task entities.Task, now time.Time, loc *time.Location) TaskView {
	return TaskView{
		Task:         task,
		ClientName:   n.clients[task.ClientID],
		AssigneeName: n.employees[task.AssigneeID],
		Overdue:      task.Status != entities.TaskStatusCompleted && services.IsOverdue(task.DueDate, now, loc),
	}
}
