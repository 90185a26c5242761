package services

import (
	"strings"

	"practicedesk/contexts/realtime/sync-service/domain/entities"
	domainerrors "practicedesk/contexts/realtime/sync-service/domain/errors"
)

// Matches reports whether a change is relevant to a subscription.
func Matches(subscription entities.Subscription, change entities.Change) bool {
	if subscription.Collection != change.Collection {
		return false
	}
	if subscription.Kind != entities.EventAll && subscription.Kind != change.Kind {
		return false
	}
	if subscription.Filter == nil {
		return true
	}
	value, ok := change.Row[subscription.Filter.Column]
	if !ok && subscription.Filter.Column == "id" {
		value, ok = change.RowID, true
	}
	return ok && value == subscription.Filter.Value
}

// ParseSubscription reads "collection[:kind[:column=eq.value]]".
func ParseSubscription(raw string) (entities.Subscription, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 3)
	collection, ok := entities.ParseCollection(parts[0])
	if !ok {
		return entities.Subscription{}, domainerrors.ErrUnknownCollection
	}
	subscription := entities.Subscription{Collection: collection, Kind: entities.EventAll}
	if len(parts) > 1 {
		kind, ok := entities.ParseEventKind(parts[1])
		if !ok {
			return entities.Subscription{}, domainerrors.ErrInvalidSubscription
		}
		subscription.Kind = kind
	}
	if len(parts) > 2 {
		filter, err := ParseRowFilter(parts[2])
		if err != nil {
			return entities.Subscription{}, err
		}
		subscription.Filter = &filter
	}
	return subscription, nil
}

// ParseRowFilter reads "column=eq.value". Equality is the only operator.
func ParseRowFilter(raw string) (entities.RowFilter, error) {
	column, rest, found := strings.Cut(strings.TrimSpace(raw), "=")
	if !found {
		return entities.RowFilter{}, domainerrors.ErrInvalidSubscription
	}
	value, found := strings.CutPrefix(rest, "eq.")
	column = strings.TrimSpace(column)
	if !found || column == "" || value == "" {
		return entities.RowFilter{}, domainerrors.ErrInvalidSubscription
	}
	return entities.RowFilter{Column: column, Value: value}, nil
}
