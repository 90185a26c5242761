package services

import (
	"errors"
	"testing"

	"practicedesk/contexts/realtime/sync-service/domain/entities"
	domainerrors "practicedesk/contexts/realtime/sync-service/domain/errors"
)

func TestParseSubscriptionForms(t *testing.T) {
	subscription, err := ParseSubscription("tasks")
	if err != nil {
		t.Fatalf("parse bare collection: %v", err)
	}
	if subscription.Collection != entities.CollectionTasks || subscription.Kind != entities.EventAll || subscription.Filter != nil {
		t.Fatalf("unexpected subscription: %+v", subscription)
	}

	subscription, err = ParseSubscription("documents:insert:task_id=eq.task-7")
	if err != nil {
		t.Fatalf("parse filtered subscription: %v", err)
	}
	if subscription.Kind != entities.EventInsert {
		t.Fatalf("expected insert kind, got %s", subscription.Kind)
	}
	if subscription.Filter == nil || subscription.Filter.Column != "task_id" || subscription.Filter.Value != "task-7" {
		t.Fatalf("unexpected filter: %+v", subscription.Filter)
	}
}

func TestParseSubscriptionRejectsUnknownInput(t *testing.T) {
	if _, err := ParseSubscription("campaigns"); !errors.Is(err, domainerrors.ErrUnknownCollection) {
		t.Fatalf("expected unknown collection, got %v", err)
	}
	if _, err := ParseSubscription("tasks:upsert"); !errors.Is(err, domainerrors.ErrInvalidSubscription) {
		t.Fatalf("expected invalid kind, got %v", err)
	}
	if _, err := ParseSubscription("tasks:*:status=neq.done"); !errors.Is(err, domainerrors.ErrValidationFailed) {
		t.Fatalf("expected invalid filter, got %v", err)
	}
}

func TestMatchesAppliesKindAndRowFilter(t *testing.T) {
	change := entities.Change{
		Collection: entities.CollectionDocuments,
		Kind:       entities.EventInsert,
		RowID:      "doc-1",
		Row:        map[string]string{"task_id": "task-7"},
	}
	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{name: "any kind", raw: "documents", want: true},
		{name: "same kind", raw: "documents:insert", want: true},
		{name: "other kind", raw: "documents:delete", want: false},
		{name: "other collection", raw: "tasks", want: false},
		{name: "filter hit", raw: "documents:*:task_id=eq.task-7", want: true},
		{name: "filter miss", raw: "documents:*:task_id=eq.task-8", want: false},
		{name: "missing column", raw: "documents:*:client_id=eq.c-1", want: false},
		{name: "id falls back to row id", raw: "documents:*:id=eq.doc-1", want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			subscription, err := ParseSubscription(tc.raw)
			if err != nil {
				t.Fatalf("parse %q: %v", tc.raw, err)
			}
			if got := Matches(subscription, change); got != tc.want {
				t.Fatalf("Matches(%q) = %v, want %v", tc.raw, got, tc.want)
			}
		})
	}
}
