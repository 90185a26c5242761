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

// UpdateTaskCommand is a patch; nil fields are left unchanged. An empty
// AssigneeID clears the assignment.
type UpdateTaskCommand struct {
	Actor       ports.Actor
	TaskID      string
	ClientID    *string
	AssigneeID  *string
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
}

type UpdateTaskUseCase struct {
	Tasks     ports.TaskRepository
	Clients   ports.ClientRepository
	Employees ports.EmployeeRepository
	Policy    ports.AccessPolicy
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Publisher ports.EventPublisher
	Logger    *slog.Logger
}

func (uc UpdateTaskUseCase) Execute(ctx context.Context, cmd UpdateTaskCommand) (entities.Task, error) {
	logger := application.ResolveLogger(uc.Logger)
	caps, err := application.Capabilities(uc.Policy, cmd.Actor)
	if err != nil {
		return entities.Task{}, err
	}
	if !caps.CanEditAnyTask {
		return entities.Task{}, domainerrors.ErrForbidden
	}
	task, err := uc.Tasks.GetTask(ctx, strings.TrimSpace(cmd.TaskID))
	if err != nil {
		return entities.Task{}, application.StoreFailure(err)
	}

	var clientID, assigneeID string
	if cmd.ClientID != nil {
		clientID = strings.TrimSpace(*cmd.ClientID)
		if clientID == "" {
			return entities.Task{}, domainerrors.ErrInvalidTaskInput
		}
		task.ClientID = clientID
	}
	if cmd.AssigneeID != nil {
		if !caps.CanAssignTasks {
			return entities.Task{}, domainerrors.ErrForbidden
		}
		assigneeID = strings.TrimSpace(*cmd.AssigneeID)
		task.AssigneeID = assigneeID
	}
	if err := ensureReferences(ctx, uc.Clients, uc.Employees, clientID, assigneeID); err != nil {
		return entities.Task{}, err
	}
	if cmd.Title != nil {
		title := strings.TrimSpace(*cmd.Title)
		if title == "" {
			return entities.Task{}, domainerrors.ErrInvalidTaskInput
		}
		task.Title = title
	}
	if cmd.Description != nil {
		task.Description = strings.TrimSpace(*cmd.Description)
	}
	if cmd.Priority != nil {
		priority, ok := entities.ParsePriority(*cmd.Priority)
		if !ok {
			return entities.Task{}, domainerrors.ErrInvalidTaskInput
		}
		task.Priority = priority
	}
	if cmd.DueDate != nil {
		if cmd.DueDate.IsZero() {
			return entities.Task{}, domainerrors.ErrInvalidTaskInput
		}
		task.DueDate = *cmd.DueDate
	}

	now := uc.Clock.Now().UTC()
	if cmd.Status != nil {
		status, ok := entities.ParseTaskStatus(*cmd.Status)
		if !ok {
			return entities.Task{}, domainerrors.ErrInvalidTaskStatus
		}
		if status != task.Status {
			task = task.WithStatus(status, now)
		}
	}
	task.UpdatedAt = now

	if err := uc.Tasks.UpdateTask(ctx, task); err != nil {
		return entities.Task{}, application.StoreFailure(err)
	}
	notifier := changeNotifier{publisher: uc.Publisher, idGen: uc.IDGen, logger: uc.Logger}
	notifier.notify(ctx, collectionTasks, contractsv1.ChangeUpdate, task.TaskID, cmd.Actor.ActorID, now,
		taskChangeData(task.TaskID, task.ClientID, task.AssigneeID, string(task.Status)))

	logger.Info("task updated",
		"event", "engagement_task_updated",
		"module", "practice-ops/engagement-service",
		"layer", "application",
		"task_id", task.TaskID,
		"actor_id", cmd.Actor.ActorID,
	)
	return task, nil
}
