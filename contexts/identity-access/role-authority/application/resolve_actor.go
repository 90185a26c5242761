package application

import (
	"context"
	"log/slog"
	"strings"

	"practicedesk/contexts/identity-access/role-authority/domain/entities"
	domainerrors "practicedesk/contexts/identity-access/role-authority/domain/errors"
	"practicedesk/contexts/identity-access/role-authority/ports"
	identityv1 "practicedesk/contracts/gen/identity/v1"
)

type ResolveActorUseCase struct {
	Verifier ports.TokenVerifier
	Logger   *slog.Logger
}

// Execute turns an "Authorization" header value into the session actor.
func (uc ResolveActorUseCase) Execute(ctx context.Context, authorization string) (identityv1.Actor, error) {
	logger := ResolveLogger(uc.Logger)
	token := bearerToken(authorization)
	if token == "" {
		return identityv1.Actor{}, domainerrors.ErrUnauthenticated
	}

	claims, err := uc.Verifier.Verify(ctx, token)
	if err != nil {
		logger.Warn("access token rejected",
			"event", "role_authority_token_rejected",
			"module", "identity-access/role-authority",
			"layer", "application",
			"error", err.Error(),
		)
		return identityv1.Actor{}, err
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return identityv1.Actor{}, domainerrors.ErrMissingActorSubject
	}
	role, err := entities.ParseRole(claims.Role)
	if err != nil {
		return identityv1.Actor{}, err
	}

	return identityv1.Actor{
		ActorID:     strings.TrimSpace(claims.Subject),
		Role:        string(role),
		DisplayName: strings.TrimSpace(claims.DisplayName),
		EmployeeID:  strings.TrimSpace(claims.EmployeeID),
	}, nil
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
