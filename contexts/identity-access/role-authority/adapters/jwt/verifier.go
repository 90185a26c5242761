package jwtadapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainerrors "practicedesk/contexts/identity-access/role-authority/domain/errors"
	"practicedesk/contexts/identity-access/role-authority/ports"
	identityv1 "practicedesk/contracts/gen/identity/v1"

	"github.com/golang-jwt/jwt/v5"
)

// sessionClaims is the token payload issued by the identity provider.
type sessionClaims struct {
	Role        string `json:"role"`
	DisplayName string `json:"name,omitempty"`
	EmployeeID  string `json:"employee_id,omitempty"`
	jwt.RegisteredClaims
}

// HMACVerifier validates HS256 access tokens.
type HMACVerifier struct {
	secret []byte
	issuer string
	leeway time.Duration
}

func NewHMACVerifier(secret string, issuer string) (*HMACVerifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &HMACVerifier{
		secret: []byte(secret),
		issuer: strings.TrimSpace(issuer),
		leeway: 30 * time.Second,
	}, nil
}

func (v *HMACVerifier) Verify(_ context.Context, token string) (ports.TokenClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		options = append(options, jwt.WithIssuer(v.issuer))
	}

	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, options...)
	if err != nil {
		return ports.TokenClaims{}, fmt.Errorf("%w: %v", domainerrors.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return ports.TokenClaims{}, domainerrors.ErrInvalidToken
	}

	result := ports.TokenClaims{
		Subject:     claims.Subject,
		Role:        claims.Role,
		DisplayName: claims.DisplayName,
		EmployeeID:  claims.EmployeeID,
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return result, nil
}

// Issuer signs session tokens for local development and tests.
type Issuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewIssuer(secret string, issuer string) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		issuer: strings.TrimSpace(issuer),
		now:    time.Now,
	}
}

func (i *Issuer) Issue(actor identityv1.Actor, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := i.now().UTC()
	claims := sessionClaims{
		Role:        actor.Role,
		DisplayName: actor.DisplayName,
		EmployeeID:  actor.EmployeeID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ActorID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}
