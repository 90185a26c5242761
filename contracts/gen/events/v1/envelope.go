package v1

import (
	"encoding/json"
	"strings"
	"time"
)

const topicPrefix = "changes."

// Change kinds carried by Envelope.ChangeKind.
const (
	ChangeInsert = "insert"
	ChangeUpdate = "update"
	ChangeDelete = "delete"
)

// Envelope is the canonical change-notification shape shared by every context.
// One envelope describes one row write on one collection. Data holds the row's
// scalar columns so subscribers can evaluate row filters without a lookup.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Collection    string          `json:"collection"`
	ChangeKind    string          `json:"change_kind"`
	RowID         string          `json:"row_id"`
	ActorID       string          `json:"actor_id,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
	SourceService string          `json:"source_service"`
	SchemaVersion int             `json:"schema_version"`
	Data          json.RawMessage `json:"data,omitempty"`
}

// Topic returns the bus topic for a collection.
func Topic(collection string) string {
	return topicPrefix + collection
}

// CollectionOf reverses Topic. It returns "" for topics outside the feed.
func CollectionOf(topic string) string {
	collection, ok := strings.CutPrefix(topic, topicPrefix)
	if !ok {
		return ""
	}
	return collection
}

// EventType builds "<collection>.<kind>".
func EventType(collection string, kind string) string {
	return collection + "." + kind
}
