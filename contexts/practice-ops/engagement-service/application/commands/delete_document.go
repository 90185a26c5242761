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

type DeleteDocumentCommand struct {
	Actor      ports.Actor
	DocumentID string
}

type DeleteDocumentUseCase struct {
	Documents ports.DocumentRepository
	Storage   ports.ObjectStorage
	Policy    ports.AccessPolicy
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Publisher ports.EventPublisher
	Logger    *slog.Logger
}

// Execute removes a document. Managers may remove any document; everyone else
// only the ones they uploaded.
func (uc DeleteDocumentUseCase) Execute(ctx context.Context, cmd DeleteDocumentCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	caps, err := application.Capabilities(uc.Policy, cmd.Actor)
	if err != nil {
		return err
	}
	document, err := uc.Documents.GetDocument(ctx, strings.TrimSpace(cmd.DocumentID))
	if err != nil {
		return application.StoreFailure(err)
	}
	if !caps.CanEditAnyTask && document.UploadedBy != cmd.Actor.ActorID {
		return domainerrors.ErrForbidden
	}

	if err := uc.Documents.DeleteDocument(ctx, document.DocumentID); err != nil {
		return application.StoreFailure(err)
	}
	releaseObject(ctx, uc.Documents, uc.Storage, document, uc.Logger)

	notifier := changeNotifier{publisher: uc.Publisher, idGen: uc.IDGen, logger: uc.Logger}
	notifier.notify(ctx, collectionDocuments, contractsv1.ChangeDelete, document.DocumentID, cmd.Actor.ActorID,
		uc.Clock.Now().UTC(), map[string]any{"id": document.DocumentID, "task_id": document.TaskID, "client_id": document.ClientID})

	logger.Info("document deleted",
		"event", "engagement_document_deleted",
		"module", "practice-ops/engagement-service",
		"layer", "application",
		"document_id", document.DocumentID,
		"task_id", document.TaskID,
		"actor_id", cmd.Actor.ActorID,
	)
	return nil
}
