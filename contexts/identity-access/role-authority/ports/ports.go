package ports

import (
	"context"
	"time"
)

// TokenClaims are the raw session facts carried by a verified access token.
type TokenClaims struct {
	Subject     string
	Role        string
	DisplayName string
	EmployeeID  string
	ExpiresAt   time.Time
}

// TokenVerifier validates a bearer token issued by the external identity provider.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (TokenClaims, error)
}
