package jwtadapter

import (
	"context"
	"errors"
	"testing"
	"time"

	domainerrors "practicedesk/contexts/identity-access/role-authority/domain/errors"
	identityv1 "practicedesk/contracts/gen/identity/v1"
)

func TestIssuedTokenRoundTrip(t *testing.T) {
	verifier, err := NewHMACVerifier("test-secret", "practicedesk")
	if err != nil {
		t.Fatalf("new verifier failed: %v", err)
	}
	issuer := NewIssuer("test-secret", "practicedesk")

	token, err := issuer.Issue(identityv1.Actor{
		ActorID:     "user-7",
		Role:        identityv1.RoleStaff,
		DisplayName: "Asha",
		EmployeeID:  "emp-7",
	}, time.Hour)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}

	claims, err := verifier.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.Subject != "user-7" || claims.Role != "staff" || claims.EmployeeID != "emp-7" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	verifier, err := NewHMACVerifier("test-secret", "")
	if err != nil {
		t.Fatalf("new verifier failed: %v", err)
	}
	token, err := NewIssuer("other-secret", "").Issue(identityv1.Actor{ActorID: "u", Role: "admin"}, time.Hour)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}

	_, err = verifier.Verify(context.Background(), token)
	if !errors.Is(err, domainerrors.ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	verifier, _ := NewHMACVerifier("test-secret", "")
	issuer := NewIssuer("test-secret", "")
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := issuer.Issue(identityv1.Actor{ActorID: "u", Role: "manager"}, time.Hour)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}
	if _, err := verifier.Verify(context.Background(), token); !errors.Is(err, domainerrors.ErrInvalidToken) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}
