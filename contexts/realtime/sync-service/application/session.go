package application

import (
	"context"
	"sync"

	"practicedesk/contexts/realtime/sync-service/domain/entities"
	domainerrors "practicedesk/contexts/realtime/sync-service/domain/errors"
	"practicedesk/contexts/realtime/sync-service/domain/services"
)

const (
	DefaultSessionBuffer = 64
	minSessionBuffer     = 8
)

// Session is one connected view. Pending invalidations are coalesced per
// (collection,row); once the buffer is full further changes are dropped and
// the session is reset to a resync of every subscribed collection.
type Session struct {
	id            string
	subscriptions []entities.Subscription
	capacity      int

	mu      sync.Mutex
	queue   []entities.Invalidation
	pending map[string]struct{}
	dropped int
	closed  bool

	signal chan struct{}
	done   chan struct{}
}

func newSession(id string, subscriptions []entities.Subscription, capacity int) *Session {
	if capacity < minSessionBuffer {
		capacity = minSessionBuffer
	}
	session := &Session{
		id:            id,
		subscriptions: append([]entities.Subscription(nil), subscriptions...),
		capacity:      capacity,
		pending:       make(map[string]struct{}),
		signal:        make(chan struct{}, 1),
		done:          make(chan struct{}),
	}
	session.mu.Lock()
	session.resetToResyncLocked()
	session.mu.Unlock()
	return session
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Subscriptions() []entities.Subscription {
	return append([]entities.Subscription(nil), s.subscriptions...)
}

// Dropped counts changes discarded because the buffer was full.
func (s *Session) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Pending returns a copy of the queued invalidations.
func (s *Session) Pending() []entities.Invalidation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.Invalidation(nil), s.queue...)
}

// Next blocks until an invalidation is available, the session closes or ctx ends.
func (s *Session) Next(ctx context.Context) (entities.Invalidation, error) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			item := s.queue[0]
			s.queue = s.queue[1:]
			delete(s.pending, item.Key())
			s.mu.Unlock()
			return item, nil
		}
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return entities.Invalidation{}, domainerrors.ErrSessionClosed
		}

		select {
		case <-ctx.Done():
			return entities.Invalidation{}, ctx.Err()
		case <-s.done:
		case <-s.signal:
		}
	}
}

// Done is closed when the session disconnects or is replaced by a reconnect.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) wants(change entities.Change) bool {
	for _, subscription := range s.subscriptions {
		if services.Matches(subscription, change) {
			return true
		}
	}
	return false
}

func (s *Session) enqueue(item entities.Invalidation) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	key := item.Key()
	if _, exists := s.pending[key]; exists {
		s.mu.Unlock()
		return true
	}
	// A pending collection-wide resync already covers every row.
	if _, exists := s.pending[string(item.Collection)+"/*"]; exists {
		s.mu.Unlock()
		return true
	}
	if len(s.queue) >= s.capacity {
		s.dropped++
		s.resetToResyncLocked()
		s.mu.Unlock()
		s.wake()
		return false
	}
	s.queue = append(s.queue, item)
	s.pending[key] = struct{}{}
	s.mu.Unlock()
	s.wake()
	return true
}

// resync replaces pending work with a full reload when the session follows
// collection, or any collection when collection is empty.
func (s *Session) resync(collection entities.Collection) bool {
	if collection != "" && !s.follows(collection) {
		return false
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.resetToResyncLocked()
	s.mu.Unlock()
	s.wake()
	return true
}

func (s *Session) follows(collection entities.Collection) bool {
	for _, subscription := range s.subscriptions {
		if subscription.Collection == collection {
			return true
		}
	}
	return false
}

func (s *Session) resetToResyncLocked() {
	s.queue = s.queue[:0]
	clear(s.pending)
	seen := make(map[entities.Collection]struct{}, len(s.subscriptions))
	for _, subscription := range s.subscriptions {
		if _, exists := seen[subscription.Collection]; exists {
			continue
		}
		seen[subscription.Collection] = struct{}{}
		item := entities.Invalidation{
			Collection: subscription.Collection,
			Kind:       entities.EventAll,
			Reason:     entities.ReasonResync,
		}
		s.queue = append(s.queue, item)
		s.pending[item.Key()] = struct{}{}
	}
}

func (s *Session) wake() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
}
