package commands

import (
	"context"
	"log/slog"
	"strings"

	application "practicedesk/contexts/practice-ops/engagement-service/application"
	"practicedesk/contexts/practice-ops/engagement-service/domain/entities"
	domainerrors "practicedesk/contexts/practice-ops/engagement-service/domain/errors"
	"practicedesk/contexts/practice-ops/engagement-service/ports"
	contractsv1 "practicedesk/contracts/gen/events/v1"
)

type ClientFields struct {
	Name          string
	ClientCode    string
	ContactPerson string
	ContactPhone  string
	ContactEmail  string
	PANNumber     string
	GSTNumber     string
	Status        string
	Notes         string
}

type SaveClientCommand struct {
	Actor    ports.Actor
	ClientID string
	Fields   ClientFields
}

// SaveClientUseCase creates a client when ClientID is empty, otherwise replaces
// the stored fields.
type SaveClientUseCase struct {
	Clients   ports.ClientRepository
	Policy    ports.AccessPolicy
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Publisher ports.EventPublisher
	Logger    *slog.Logger
}

func (uc SaveClientUseCase) Execute(ctx context.Context, cmd SaveClientCommand) (entities.Client, error) {
	logger := application.ResolveLogger(uc.Logger)
	caps, err := application.Capabilities(uc.Policy, cmd.Actor)
	if err != nil {
		return entities.Client{}, err
	}
	if !caps.CanManageClients {
		return entities.Client{}, domainerrors.ErrForbidden
	}
	name := strings.TrimSpace(cmd.Fields.Name)
	if name == "" {
		return entities.Client{}, domainerrors.ErrInvalidClientInput
	}
	status, ok := entities.ParseClientStatus(cmd.Fields.Status)
	if !ok {
		return entities.Client{}, domainerrors.ErrInvalidClientInput
	}

	now := uc.Clock.Now().UTC()
	client := entities.Client{
		ClientID:      strings.TrimSpace(cmd.ClientID),
		Name:          name,
		ClientCode:    strings.TrimSpace(cmd.Fields.ClientCode),
		ContactPerson: strings.TrimSpace(cmd.Fields.ContactPerson),
		ContactPhone:  strings.TrimSpace(cmd.Fields.ContactPhone),
		ContactEmail:  strings.TrimSpace(cmd.Fields.ContactEmail),
		PANNumber:     strings.ToUpper(strings.TrimSpace(cmd.Fields.PANNumber)),
		GSTNumber:     strings.ToUpper(strings.TrimSpace(cmd.Fields.GSTNumber)),
		Status:        status,
		Notes:         strings.TrimSpace(cmd.Fields.Notes),
		UpdatedAt:     now,
	}

	kind := contractsv1.ChangeUpdate
	if client.ClientID == "" {
		kind = contractsv1.ChangeInsert
		clientID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.Client{}, application.StoreFailure(err)
		}
		client.ClientID = clientID
		client.CreatedAt = now
		if err := uc.Clients.CreateClient(ctx, client); err != nil {
			return entities.Client{}, application.StoreFailure(err)
		}
	} else {
		existing, err := uc.Clients.GetClient(ctx, client.ClientID)
		if err != nil {
			return entities.Client{}, application.StoreFailure(err)
		}
		client.CreatedAt = existing.CreatedAt
		if err := uc.Clients.UpdateClient(ctx, client); err != nil {
			return entities.Client{}, application.StoreFailure(err)
		}
	}

	notifier := changeNotifier{publisher: uc.Publisher, idGen: uc.IDGen, logger: uc.Logger}
	notifier.notify(ctx, collectionClients, kind, client.ClientID, cmd.Actor.ActorID, now,
		map[string]any{"id": client.ClientID, "status": string(client.Status)})
	logger.Info("client saved",
		"event", "engagement_client_saved",
		"module", "practice-ops/engagement-service",
		"layer", "application",
		"client_id", client.ClientID,
		"change_kind", kind,
	)
	return client, nil
}

type DeleteClientCommand struct {
	Actor    ports.Actor
	ClientID string
}

type DeleteClientUseCase struct {
	Clients   ports.ClientRepository
	Policy    ports.AccessPolicy
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Publisher ports.EventPublisher
	Logger    *slog.Logger
}

func (uc DeleteClientUseCase) Execute(ctx context.Context, cmd DeleteClientCommand) error {
	caps, err := application.Capabilities(uc.Policy, cmd.Actor)
	if err != nil {
		return err
	}
	if !caps.CanManageClients {
		return domainerrors.ErrForbidden
	}
	clientID := strings.TrimSpace(cmd.ClientID)
	if err := uc.Clients.DeleteClient(ctx, clientID); err != nil {
		return application.StoreFailure(err)
	}
	notifier := changeNotifier{publisher: uc.Publisher, idGen: uc.IDGen, logger: uc.Logger}
	notifier.notify(ctx, collectionClients, contractsv1.ChangeDelete, clientID, cmd.Actor.ActorID,
		uc.Clock.Now().UTC(), map[string]any{"id": clientID})
	return nil
}
