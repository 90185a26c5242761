package roleauthority

import (
	"log/slog"

	httpadapter "practicedesk/contexts/identity-access/role-authority/adapters/http"
	jwtadapter "practicedesk/contexts/identity-access/role-authority/adapters/jwt"
	"practicedesk/contexts/identity-access/role-authority/application"
	"practicedesk/contexts/identity-access/role-authority/ports"
)

type Module struct {
	Policy       application.Policy
	ResolveActor application.ResolveActorUseCase
	Handler      httpadapter.Handler
}

type Dependencies struct {
	Verifier ports.TokenVerifier
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	resolve := application.ResolveActorUseCase{
		Verifier: deps.Verifier,
		Logger:   deps.Logger,
	}
	return Module{
		Policy:       application.Policy{},
		ResolveActor: resolve,
		Handler:      httpadapter.Handler{ResolveActor: resolve},
	}
}

// NewHMACModule wires the module against HS256 session tokens.
func NewHMACModule(secret string, issuer string, logger *slog.Logger) (Module, error) {
	verifier, err := jwtadapter.NewHMACVerifier(secret, issuer)
	if err != nil {
		return Module{}, err
	}
	return NewModule(Dependencies{Verifier: verifier, Logger: logger}), nil
}
