package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestLocalSignedLinkRoundTrip(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "http://desk.local", "link-secret")
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}
	ctx := context.Background()
	objectPath := "Acme/Audit/ledger.pdf"

	ref, err := store.Upload(ctx, objectPath, strings.NewReader("payload"), "application/pdf")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if ref != "http://desk.local/v1/files/Acme/Audit/ledger.pdf" {
		t.Fatalf("unexpected direct reference %q", ref)
	}

	link, err := store.SignedURL(ctx, objectPath, "ledger.pdf", time.Minute)
	if err != nil {
		t.Fatalf("signed url: %v", err)
	}
	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	name, err := store.VerifyLink(objectPath, parsed.Query().Get("token"))
	if err != nil {
		t.Fatalf("verify link: %v", err)
	}
	if name != "ledger.pdf" {
		t.Fatalf("expected download name ledger.pdf, got %q", name)
	}
	if _, err := store.VerifyLink("Acme/Audit/other.pdf", parsed.Query().Get("token")); !errors.Is(err, ErrInvalidLink) {
		t.Fatalf("expected token to be bound to its object, got %v", err)
	}
}

func TestLocalSignedLinkExpires(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "", "link-secret")
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}
	issuedAt := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return issuedAt }
	if _, err := store.Upload(context.Background(), "a/b/c.txt", strings.NewReader("x"), "text/plain"); err != nil {
		t.Fatalf("upload: %v", err)
	}
	link, err := store.SignedURL(context.Background(), "a/b/c.txt", "c.txt", 60*time.Second)
	if err != nil {
		t.Fatalf("signed url: %v", err)
	}
	token := link[strings.Index(link, "token=")+len("token="):]
	token, _ = url.QueryUnescape(token)

	store.now = func() time.Time { return issuedAt.Add(61 * time.Second) }
	if _, err := store.VerifyLink("a/b/c.txt", token); !errors.Is(err, ErrInvalidLink) {
		t.Fatalf("expected expired link to be rejected, got %v", err)
	}
}

func TestLocalRejectsTraversal(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "", "")
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}
	if _, err := store.Upload(context.Background(), "../escape.txt", strings.NewReader("x"), ""); !errors.Is(err, ErrInvalidObjectPath) {
		t.Fatalf("expected traversal to be rejected, got %v", err)
	}
	if _, err := store.SignedURL(context.Background(), "a/b.txt", "b.txt", time.Minute); !errors.Is(err, ErrSigningDisabled) {
		t.Fatalf("expected signing to be disabled without a key, got %v", err)
	}
}
