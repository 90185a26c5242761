package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	application "practicedesk/contexts/practice-ops/engagement-service/application"
	"practicedesk/contexts/practice-ops/engagement-service/domain/entities"
	domainerrors "practicedesk/contexts/practice-ops/engagement-service/domain/errors"
	"practicedesk/contexts/practice-ops/engagement-service/domain/services"
	"practicedesk/contexts/practice-ops/engagement-service/ports"
	contractsv1 "practicedesk/contracts/gen/events/v1"
)

type UploadDocumentCommand struct {
	Actor       ports.Actor
	TaskID      string
	FileName    string
	ContentType string
	Content     io.Reader
}

type UploadDocumentUseCase struct {
	Tasks     ports.TaskRepository
	Documents ports.DocumentRepository
	Clients   ports.ClientRepository
	Employees ports.EmployeeRepository
	Storage   ports.ObjectStorage
	Policy    ports.AccessPolicy
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Publisher ports.EventPublisher
	Logger    *slog.Logger
}

func (uc UploadDocumentUseCase) Execute(ctx context.Context, cmd UploadDocumentCommand) (entities.Document, error) {
	logger := application.ResolveLogger(uc.Logger)
	fileName := strings.TrimSpace(cmd.FileName)
	if fileName == "" || cmd.Content == nil {
		return entities.Document{}, domainerrors.ErrInvalidDocumentInput
	}
	caps, err := application.Capabilities(uc.Policy, cmd.Actor)
	if err != nil {
		return entities.Document{}, err
	}
	task, err := uc.Tasks.GetTask(ctx, strings.TrimSpace(cmd.TaskID))
	if err != nil {
		return entities.Document{}, application.StoreFailure(err)
	}
	if !caps.CanEditAnyTask {
		employeeID, err := application.EmployeeIDOf(ctx, uc.Employees, cmd.Actor)
		if err != nil {
			return entities.Document{}, err
		}
		if !task.AssignedTo(employeeID) {
			return entities.Document{}, domainerrors.ErrNotAssignee
		}
	}
	client, err := uc.Clients.GetClient(ctx, task.ClientID)
	if err != nil {
		return entities.Document{}, application.StoreFailure(err)
	}

	objectPath := services.DocumentObjectPath(client.Name, task.Title, fileName)
	contentType := strings.TrimSpace(cmd.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	locationRef, err := uc.Storage.Upload(ctx, objectPath, cmd.Content, contentType)
	if err != nil {
		return entities.Document{}, fmt.Errorf("%w: %w", domainerrors.ErrStorageFailure, err)
	}

	documentID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Document{}, application.StoreFailure(err)
	}
	now := uc.Clock.Now().UTC()
	document := entities.Document{
		DocumentID:  documentID,
		TaskID:      task.TaskID,
		ClientID:    task.ClientID,
		UploadedBy:  cmd.Actor.ActorID,
		FileName:    fileName,
		FileType:    fileType(fileName, contentType),
		ObjectPath:  objectPath,
		LocationRef: locationRef,
		UploadedAt:  now,
	}
	if err := uc.Documents.AddDocument(ctx, document); err != nil {
		return entities.Document{}, application.StoreFailure(err)
	}

	notifier := changeNotifier{publisher: uc.Publisher, idGen: uc.IDGen, logger: uc.Logger}
	notifier.notify(ctx, collectionDocuments, contractsv1.ChangeInsert, document.DocumentID, cmd.Actor.ActorID, now,
		map[string]any{"id": document.DocumentID, "task_id": document.TaskID, "client_id": document.ClientID})

	logger.Info("document uploaded",
		"event", "engagement_document_uploaded",
		"module", "practice-ops/engagement-service",
		"layer", "application",
		"document_id", document.DocumentID,
		"task_id", document.TaskID,
		"object_path", objectPath,
	)
	return document, nil
}

func fileType(fileName string, contentType string) string {
	if ext := strings.TrimPrefix(strings.ToLower(path.Ext(fileName)), "."); ext != "" {
		return ext
	}
	return contentType
}
