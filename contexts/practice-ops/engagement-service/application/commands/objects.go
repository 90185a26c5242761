package commands

import (
	"context"
	"log/slog"

	application "practicedesk/contexts/practice-ops/engagement-service/application"
	"practicedesk/contexts/practice-ops/engagement-service/domain/entities"
	"practicedesk/contexts/practice-ops/engagement-service/ports"
)

// releaseObject removes the stored object behind a deleted document unless
// another document row still shares its path. Same-name uploads under one
// task overwrite a single object, so rows can outnumber objects.
func releaseObject(
	ctx context.Context,
	documents ports.DocumentRepository,
	storage ports.ObjectStorage,
	document entities.Document,
	logger *slog.Logger,
) {
	if storage == nil {
		return
	}
	logger = application.ResolveLogger(logger)
	inUse, err := documents.ObjectPathInUse(ctx, document.ObjectPath)
	if err != nil {
		logger.Warn("document object kept, reference check failed",
			"event", "engagement_document_object_check_failed",
			"module", "practice-ops/engagement-service",
			"layer", "application",
			"document_id", document.DocumentID,
			"error", err.Error(),
		)
		return
	}
	if inUse {
		return
	}
	if err := storage.Remove(ctx, document.ObjectPath); err != nil {
		logger.Warn("document object not removed",
			"event", "engagement_document_object_orphaned",
			"module", "practice-ops/engagement-service",
			"layer", "application",
			"document_id", document.DocumentID,
			"error", err.Error(),
		)
	}
}
