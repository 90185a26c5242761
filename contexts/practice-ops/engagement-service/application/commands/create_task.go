package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "practicedesk/contexts/practice-ops/engagement-service/application"
	"practicedesk/contexts/practice-ops/engagement-service/domain/entities"
	domainerrors "practicedesk/contexts/practice-ops/engagement-service/domain/errors"
	"practicedesk/contexts/practice-ops/engagement-service/ports"
	contractsv1 "practicedesk/contracts/gen/events/v1"
)

type CreateTaskCommand struct {
	Actor       ports.Actor
	ClientID    string
	AssigneeID  string
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     time.Time
}

type CreateTaskUseCase struct {
	Tasks     ports.TaskRepository
	Clients   ports.ClientRepository
	Employees ports.EmployeeRepository
	Policy    ports.AccessPolicy
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Publisher ports.EventPublisher
	Logger    *slog.Logger
}

func (uc CreateTaskUseCase) Execute(ctx context.Context, cmd CreateTaskCommand) (entities.Task, error) {
	logger := application.ResolveLogger(uc.Logger)
	caps, err := application.Capabilities(uc.Policy, cmd.Actor)
	if err != nil {
		return entities.Task{}, err
	}
	if !caps.CanAssignTasks {
		return entities.Task{}, domainerrors.ErrForbidden
	}

	title := strings.TrimSpace(cmd.Title)
	clientID := strings.TrimSpace(cmd.ClientID)
	if title == "" || clientID == "" || cmd.DueDate.IsZero() {
		return entities.Task{}, domainerrors.ErrInvalidTaskInput
	}
	status := entities.TaskStatusNotStarted
	if strings.TrimSpace(cmd.Status) != "" {
		parsed, ok := entities.ParseTaskStatus(cmd.Status)
		if !ok {
			return entities.Task{}, domainerrors.ErrInvalidTaskStatus
		}
		status = parsed
	}
	priority, ok := entities.ParsePriority(cmd.Priority)
	if !ok {
		return entities.Task{}, domainerrors.ErrInvalidTaskInput
	}
	assigneeID := strings.TrimSpace(cmd.AssigneeID)
	if err := ensureReferences(ctx, uc.Clients, uc.Employees, clientID, assigneeID); err != nil {
		return entities.Task{}, err
	}

	taskID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Task{}, application.StoreFailure(err)
	}
	now := uc.Clock.Now().UTC()
	task := entities.Task{
		TaskID:      taskID,
		ClientID:    clientID,
		AssigneeID:  assigneeID,
		Title:       title,
		Description: strings.TrimSpace(cmd.Description),
		Priority:    priority,
		DueDate:     cmd.DueDate,
		CreatedAt:   now,
	}.WithStatus(status, now)
	if err := uc.Tasks.CreateTask(ctx, task); err != nil {
		return entities.Task{}, application.StoreFailure(err)
	}

	notifier := changeNotifier{publisher: uc.Publisher, idGen: uc.IDGen, logger: uc.Logger}
	notifier.notify(ctx, collectionTasks, contractsv1.ChangeInsert, task.TaskID, cmd.Actor.ActorID, now,
		taskChangeData(task.TaskID, task.ClientID, task.AssigneeID, string(task.Status)))

	logger.Info("task created",
		"event", "engagement_task_created",
		"module", "practice-ops/engagement-service",
		"layer", "application",
		"task_id", task.TaskID,
		"client_id", task.ClientID,
		"actor_id", cmd.Actor.ActorID,
	)
	return task, nil
}

func ensureReferences(
	ctx context.Context,
	clients ports.ClientRepository,
	employees ports.EmployeeRepository,
	clientID string,
	assigneeID string,
) error {
	if clientID != "" {
		if _, err := clients.GetClient(ctx, clientID); err != nil {
			return application.StoreFailure(err)
		}
	}
	if assigneeID != "" {
		if _, err := employees.GetEmployee(ctx, assigneeID); err != nil {
			return application.StoreFailure(err)
		}
	}
	return nil
}
