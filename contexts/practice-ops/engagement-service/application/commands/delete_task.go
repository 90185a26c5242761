package commands

import (
	"context"
	"log/slog"
	"strings"

	application "practicedesk/contexts/practice-ops/engagement-service/application"
	domainerrors "practicedesk/contexts/practice-ops/engagement-service/domain/errors"
	"practicedesk/contexts/practice-ops/engagement-service/ports"
	contractsv1 "practicedesk/contracts/gen/events/v1"
)

type DeleteTaskCommand struct {
	Actor  ports.Actor
	TaskID string
}

// DeleteTaskUseCase removes a task and every document attached to it.
// Documents go first so no document ever outlives its task.
type DeleteTaskUseCase struct {
	Tasks     ports.TaskRepository
	Documents ports.DocumentRepository
	Storage   ports.ObjectStorage
	Policy    ports.AccessPolicy
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Publisher ports.EventPublisher
	Logger    *slog.Logger
}

func (uc DeleteTaskUseCase) Execute(ctx context.Context, cmd DeleteTaskCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	caps, err := application.Capabilities(uc.Policy, cmd.Actor)
	if err != nil {
		return err
	}
	if !caps.CanEditAnyTask {
		return domainerrors.ErrForbidden
	}
	task, err := uc.Tasks.GetTask(ctx, strings.TrimSpace(cmd.TaskID))
	if err != nil {
		return application.StoreFailure(err)
	}

	documents, err := uc.Documents.ListDocumentsByTask(ctx, task.TaskID)
	if err != nil {
		return application.StoreFailure(err)
	}
	if err := uc.Documents.DeleteDocumentsByTask(ctx, task.TaskID); err != nil {
		return application.StoreFailure(err)
	}
	if err := uc.Tasks.DeleteTask(ctx, task.TaskID); err != nil {
		return application.StoreFailure(err)
	}

	now := uc.Clock.Now().UTC()
	notifier := changeNotifier{publisher: uc.Publisher, idGen: uc.IDGen, logger: uc.Logger}
	released := make(map[string]struct{}, len(documents))
	for _, document := range documents {
		if _, done := released[document.ObjectPath]; !done {
			released[document.ObjectPath] = struct{}{}
			releaseObject(ctx, uc.Documents, uc.Storage, document, uc.Logger)
		}
		notifier.notify(ctx, collectionDocuments, contractsv1.ChangeDelete, document.DocumentID, cmd.Actor.ActorID, now,
			map[string]any{"id": document.DocumentID, "task_id": document.TaskID, "client_id": document.ClientID})
	}
	notifier.notify(ctx, collectionTasks, contractsv1.ChangeDelete, task.TaskID, cmd.Actor.ActorID, now,
		taskChangeData(task.TaskID, task.ClientID, task.AssigneeID, string(task.Status)))

	logger.Info("task deleted",
		"event", "engagement_task_deleted",
		"module", "practice-ops/engagement-service",
		"layer", "application",
		"task_id", task.TaskID,
		"documents_removed", len(documents),
		"actor_id", cmd.Actor.ActorID,
	)
	return nil
}
