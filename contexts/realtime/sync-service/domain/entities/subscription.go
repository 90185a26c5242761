package entities

import (
	"strings"
	"time"
)

type Collection string
type EventKind string

const (
	CollectionTasks     Collection = "tasks"
	CollectionClients   Collection = "clients"
	CollectionEmployees Collection = "employees"
	CollectionInvoices  Collection = "invoices"
	CollectionPayments  Collection = "payments"
	CollectionDocuments Collection = "documents"

	EventInsert EventKind = "insert"
	EventUpdate EventKind = "update"
	EventDelete EventKind = "delete"
	EventAll    EventKind = "*"
)

// Collections lists every collection that publishes change notifications.
func Collections() []Collection {
	return []Collection{
		CollectionTasks,
		CollectionClients,
		CollectionEmployees,
		CollectionInvoices,
		CollectionPayments,
		CollectionDocuments,
	}
}

func ParseCollection(raw string) (Collection, bool) {
	value := Collection(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Collections() {
		if value == known {
			return value, true
		}
	}
	return "", false
}

func ParseEventKind(raw string) (EventKind, bool) {
	switch EventKind(strings.ToLower(strings.TrimSpace(raw))) {
	case "", EventAll:
		return EventAll, true
	case EventInsert:
		return EventInsert, true
	case EventUpdate:
		return EventUpdate, true
	case EventDelete:
		return EventDelete, true
	default:
		return "", false
	}
}

// RowFilter narrows a subscription to rows whose Column equals Value.
type RowFilter struct {
	Column string
	Value  string
}

type Subscription struct {
	Collection Collection
	Kind       EventKind
	Filter     *RowFilter
}

// Change is one row write as seen by the synchronizer.
type Change struct {
	Collection Collection
	Kind       EventKind
	RowID      string
	Row        map[string]string
	ActorID    string
	OccurredAt time.Time
}

const (
	ReasonChange = "change"
	ReasonResync = "resync"
)

// Invalidation tells a view to re-read. An empty RowID means the whole collection.
type Invalidation struct {
	Collection Collection
	Kind       EventKind
	RowID      string
	Reason     string
}

func (i Invalidation) Key() string {
	if i.RowID == "" {
		return string(i.Collection) + "/*"
	}
	return string(i.Collection) + "/" + i.RowID
}
