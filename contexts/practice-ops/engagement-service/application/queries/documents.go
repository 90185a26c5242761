package queries

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "practicedesk/contexts/practice-ops/engagement-service/application"
	"practicedesk/contexts/practice-ops/engagement-service/domain/entities"
	"practicedesk/contexts/practice-ops/engagement-service/ports"
)

const DefaultSignedLinkTTL = 60 * time.Second

type ListDocumentsUseCase struct {
	Tasks     ports.TaskRepository
	Documents ports.DocumentRepository
	Policy    ports.AccessPolicy
}

func (uc ListDocumentsUseCase) Execute(ctx context.Context, actor ports.Actor, taskID string) ([]entities.Document, error) {
	if _, err := application.Capabilities(uc.Policy, actor); err != nil {
		return nil, err
	}
	task, err := uc.Tasks.GetTask(ctx, strings.TrimSpace(taskID))
	if err != nil {
		return nil, application.StoreFailure(err)
	}
	items, err := uc.Documents.ListDocumentsByTask(ctx, task.TaskID)
	if err != nil {
		return nil, application.StoreFailure(err)
	}
	return items, nil
}

type DocumentLink struct {
	DocumentID string
	FileName   string
	URL        string
	ExpiresAt  *time.Time
	Degraded   bool
}

type DocumentLinkUseCase struct {
	Documents ports.DocumentRepository
	Storage   ports.ObjectStorage
	Policy    ports.AccessPolicy
	Clock     ports.Clock
	TTL       time.Duration
	Logger    *slog.Logger
}

// Execute issues a short-lived download link. When signing fails the stored
// direct reference is returned with Degraded set instead of an error.
func (uc DocumentLinkUseCase) Execute(ctx context.Context, actor ports.Actor, documentID string) (DocumentLink, error) {
	logger := application.ResolveLogger(uc.Logger)
	if _, err := application.Capabilities(uc.Policy, actor); err != nil {
		return DocumentLink{}, err
	}
	document, err := uc.Documents.GetDocument(ctx, strings.TrimSpace(documentID))
	if err != nil {
		return DocumentLink{}, application.StoreFailure(err)
	}

	ttl := uc.TTL
	if ttl <= 0 {
		ttl = DefaultSignedLinkTTL
	}
	link := DocumentLink{DocumentID: document.DocumentID, FileName: document.FileName}
	url, err := uc.Storage.SignedURL(ctx, document.ObjectPath, document.FileName, ttl)
	if err != nil {
		logger.Warn("signed link unavailable, falling back to direct reference",
			"event", "engagement_document_link_degraded",
			"module", "practice-ops/engagement-service",
			"layer", "application",
			"document_id", document.DocumentID,
			"error", err.Error(),
		)
		link.URL = document.LocationRef
		link.Degraded = true
		return link, nil
	}
	expiresAt := uc.Clock.Now().UTC().Add(ttl)
	link.URL = url
	link.ExpiresAt = &expiresAt
	return link, nil
}
