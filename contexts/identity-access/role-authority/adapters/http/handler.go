package httpadapter

import (
	"context"

	"practicedesk/contexts/identity-access/role-authority/application"
	httptransport "practicedesk/contexts/identity-access/role-authority/transport/http"
	identityv1 "practicedesk/contracts/gen/identity/v1"
)

type Handler struct {
	ResolveActor application.ResolveActorUseCase
	Policy       application.Policy
}

// AuthenticateHandler resolves the request actor from the Authorization header.
func (h Handler) AuthenticateHandler(ctx context.Context, authorization string) (identityv1.Actor, error) {
	return h.ResolveActor.Execute(ctx, authorization)
}

func (h Handler) MeHandler(ctx context.Context, authorization string) (httptransport.MeResponse, error) {
	actor, err := h.ResolveActor.Execute(ctx, authorization)
	if err != nil {
		return httptransport.MeResponse{}, err
	}
	caps, err := h.Policy.CapabilitiesOf(actor)
	if err != nil {
		return httptransport.MeResponse{}, err
	}
	return httptransport.MeResponse{Actor: actor, Capabilities: caps}, nil
}
