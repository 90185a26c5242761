package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "practicedesk/contexts/practice-ops/engagement-service/application"
	"practicedesk/contexts/practice-ops/engagement-service/domain/entities"
	domainerrors "practicedesk/contexts/practice-ops/engagement-service/domain/errors"
	"practicedesk/contexts/practice-ops/engagement-service/domain/services"
	"practicedesk/contexts/practice-ops/engagement-service/ports"
	contractsv1 "practicedesk/contracts/gen/events/v1"
)

type SetTaskStatusCommand struct {
	Actor  ports.Actor
	TaskID string
	Status string
}

// SetTaskStatusUseCase is the single entry point for status transitions made
// from a task view. Authorization is checked before the temporal lock, so a
// non-assignee always sees Forbidden regardless of the due date.
type SetTaskStatusUseCase struct {
	Tasks     ports.TaskRepository
	Employees ports.EmployeeRepository
	Policy    ports.AccessPolicy
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Publisher ports.EventPublisher
	Location  *time.Location
	Logger    *slog.Logger
}

func (uc SetTaskStatusUseCase) Execute(ctx context.Context, cmd SetTaskStatusCommand) (entities.Task, error) {
	logger := application.ResolveLogger(uc.Logger)
	status, ok := entities.ParseTaskStatus(cmd.Status)
	if !ok {
		return entities.Task{}, domainerrors.ErrInvalidTaskStatus
	}
	caps, err := application.Capabilities(uc.Policy, cmd.Actor)
	if err != nil {
		return entities.Task{}, err
	}
	task, err := uc.Tasks.GetTask(ctx, strings.TrimSpace(cmd.TaskID))
	if err != nil {
		return entities.Task{}, application.StoreFailure(err)
	}

	if !caps.CanEditAnyTask {
		employeeID, err := application.EmployeeIDOf(ctx, uc.Employees, cmd.Actor)
		if err != nil {
			return entities.Task{}, err
		}
		if !caps.CanEditOwnAssignedTaskStatus || !task.AssignedTo(employeeID) {
			return entities.Task{}, domainerrors.ErrNotAssignee
		}
	}

	now := uc.Clock.Now()
	if services.IsLocked(task.DueDate, now, uc.Location, caps.CanEditAnyTask) {
		logger.Warn("status change rejected for overdue task",
			"event", "engagement_task_overdue_locked",
			"module", "practice-ops/engagement-service",
			"layer", "application",
			"task_id", task.TaskID,
			"actor_id", cmd.Actor.ActorID,
		)
		return entities.Task{}, domainerrors.ErrOverdueLocked
	}

	from := task.Status
	task = task.WithStatus(status, now)
	if err := uc.Tasks.UpdateTask(ctx, task); err != nil {
		return entities.Task{}, application.StoreFailure(err)
	}

	notifier := changeNotifier{publisher: uc.Publisher, idGen: uc.IDGen, logger: uc.Logger}
	notifier.notify(ctx, collectionTasks, contractsv1.ChangeUpdate, task.TaskID, cmd.Actor.ActorID, now,
		taskChangeData(task.TaskID, task.ClientID, task.AssigneeID, string(task.Status)))

	logger.Info("task status changed",
		"event", "engagement_task_status_changed",
		"module", "practice-ops/engagement-service",
		"layer", "application",
		"task_id", task.TaskID,
		"from_status", string(from),
		"to_status", string(task.Status),
		"actor_id", cmd.Actor.ActorID,
	)
	return task, nil
}
