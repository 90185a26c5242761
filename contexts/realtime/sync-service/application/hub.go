package application

import (
	"log/slog"
	"strings"
	"sync"

	"practicedesk/contexts/realtime/sync-service/domain/entities"
	domainerrors "practicedesk/contexts/realtime/sync-service/domain/errors"
)

// Hub fans change notifications out to connected sessions.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	buffer   int
	logger   *slog.Logger
}

func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultSessionBuffer
	}
	return &Hub{
		sessions: make(map[string]*Session),
		buffer:   buffer,
		logger:   ResolveLogger(logger),
	}
}

// Connect registers a session. Reconnecting with the same id replaces the
// previous session; the new one always starts with a resync of every
// subscribed collection.
func (h *Hub) Connect(sessionID string, subscriptions []entities.Subscription) (*Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, domainerrors.ErrMissingSessionID
	}
	if len(subscriptions) == 0 {
		return nil, domainerrors.ErrInvalidSubscription
	}
	for _, subscription := range subscriptions {
		if _, ok := entities.ParseCollection(string(subscription.Collection)); !ok {
			return nil, domainerrors.ErrUnknownCollection
		}
	}

	session := newSession(sessionID, subscriptions, h.buffer)

	h.mu.Lock()
	previous := h.sessions[sessionID]
	h.sessions[sessionID] = session
	h.mu.Unlock()

	if previous != nil {
		previous.close()
	}
	h.logger.Info("realtime session connected",
		"event", "realtime_session_connected",
		"module", "realtime/sync-service",
		"layer", "application",
		"session_id", sessionID,
		"subscriptions", len(subscriptions),
		"reconnect", previous != nil,
	)
	return session, nil
}

// Disconnect removes the session only if it is still the registered one.
func (h *Hub) Disconnect(session *Session) {
	if session == nil {
		return
	}
	h.mu.Lock()
	if current, exists := h.sessions[session.id]; exists && current == session {
		delete(h.sessions, session.id)
	}
	h.mu.Unlock()
	session.close()

	h.logger.Info("realtime session disconnected",
		"event", "realtime_session_disconnected",
		"module", "realtime/sync-service",
		"layer", "application",
		"session_id", session.id,
	)
}

func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Resync resets every session following collection to a full reload. An empty
// collection resets every session. It is the recovery path for notifications
// the change feed could not deliver.
func (h *Hub) Resync(collection entities.Collection) int {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, session := range h.sessions {
		sessions = append(sessions, session)
	}
	h.mu.RUnlock()

	reset := 0
	for _, session := range sessions {
		if session.resync(collection) {
			reset++
		}
	}
	h.logger.Warn("realtime sessions resynced after feed gap",
		"event", "realtime_feed_gap_resync",
		"module", "realtime/sync-service",
		"layer", "application",
		"collection", string(collection),
		"sessions", reset,
	)
	return reset
}

// Dispatch queues an invalidation on every session with a matching
// subscription, the writer's own session included. It returns the number of
// sessions notified.
func (h *Hub) Dispatch(change entities.Change) int {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, session := range h.sessions {
		sessions = append(sessions, session)
	}
	h.mu.RUnlock()

	item := entities.Invalidation{
		Collection: change.Collection,
		Kind:       change.Kind,
		RowID:      change.RowID,
		Reason:     entities.ReasonChange,
	}
	delivered := 0
	for _, session := range sessions {
		if !session.wants(change) {
			continue
		}
		if session.enqueue(item) {
			delivered++
			continue
		}
		h.logger.Warn("realtime session buffer full, resync scheduled",
			"event", "realtime_session_overflow",
			"module", "realtime/sync-service",
			"layer", "application",
			"session_id", session.id,
			"collection", string(change.Collection),
			"row_id", change.RowID,
		)
	}
	return delivered
}
