package httpadapter

import (
	"context"
	"strings"

	application "practicedesk/contexts/realtime/sync-service/application"
	"practicedesk/contexts/realtime/sync-service/domain/entities"
	domainerrors "practicedesk/contexts/realtime/sync-service/domain/errors"
	"practicedesk/contexts/realtime/sync-service/domain/services"
	httptransport "practicedesk/contexts/realtime/sync-service/transport/http"
)

type Handler struct {
	Hub *application.Hub
}

// ConnectHandler opens a session from "collection[:kind[:column=eq.value]]"
// subscription strings, one per value. Filter values are taken verbatim, so
// they may contain commas.
func (h Handler) ConnectHandler(
	_ context.Context,
	sessionID string,
	rawSubscriptions []string,
) (*application.Session, error) {
	subscriptions := make([]entities.Subscription, 0, len(rawSubscriptions))
	for _, raw := range rawSubscriptions {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		subscription, err := services.ParseSubscription(raw)
		if err != nil {
			return nil, err
		}
		subscriptions = append(subscriptions, subscription)
	}
	if len(subscriptions) == 0 {
		return nil, domainerrors.ErrInvalidSubscription
	}
	return h.Hub.Connect(sessionID, subscriptions)
}

func (h Handler) DisconnectHandler(session *application.Session) {
	h.Hub.Disconnect(session)
}

// NextHandler waits for the session's next invalidation.
func (h Handler) NextHandler(ctx context.Context, session *application.Session) (httptransport.InvalidationDTO, error) {
	item, err := session.Next(ctx)
	if err != nil {
		return httptransport.InvalidationDTO{}, err
	}
	return httptransport.InvalidationDTO{
		Collection: string(item.Collection),
		Kind:       string(item.Kind),
		RowID:      item.RowID,
		Reason:     item.Reason,
	}, nil
}
