package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	realtimeerrors "practicedesk/contexts/realtime/sync-service/domain/errors"
	realtimehttp "practicedesk/contexts/realtime/sync-service/transport/http"
)

const streamHeartbeat = 25 * time.Second

func (s *Server) registerRealtimeRoutes() {
	s.mux.HandleFunc("GET /v1/realtime/stream", s.handleRealtimeStream)
}

// handleRealtimeStream holds a server-sent event stream of invalidations.
// Browsers cannot set headers on EventSource, so access_token is accepted as
// a query parameter as well.
func (s *Server) handleRealtimeStream(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") == "" {
		if token := strings.TrimSpace(r.URL.Query().Get("access_token")); token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
	}
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeRealtimeError(w, http.StatusInternalServerError, "streaming_unsupported", "response does not support streaming")
		return
	}

	// Session ids are scoped to the caller so a reconnect can only replace
	// the caller's own stream.
	query := r.URL.Query()
	sessionID := strings.TrimSpace(query.Get("session_id"))
	if sessionID == "" {
		sessionID = r.RemoteAddr
	}
	sessionID = actor.ActorID + ":" + sessionID
	session, err := s.realtime.Handler.ConnectHandler(r.Context(), sessionID, query["sub"])
	if err != nil {
		writeRealtimeDomainError(w, err)
		return
	}
	defer s.realtime.Handler.DisconnectHandler(session)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := make(chan realtimehttp.InvalidationDTO)
	go func() {
		defer close(events)
		for {
			item, err := s.realtime.Handler.NextHandler(r.Context(), session)
			if err != nil {
				return
			}
			select {
			case events <- item:
			case <-r.Context().Done():
				return
			}
		}
	}()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case item, open := <-events:
			if !open {
				return
			}
			payload, err := json.Marshal(item)
			if err != nil {
				return
			}
			if _, err := fmt.Fprintf(w, "event: invalidate\ndata: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeRealtimeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, realtimeerrors.ErrValidationFailed):
		writeRealtimeError(w, http.StatusBadRequest, "invalid_subscription", err.Error())
	default:
		writeRealtimeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeRealtimeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, realtimehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
