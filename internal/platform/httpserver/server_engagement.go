package httpserver

import (
	"errors"
	"net/http"

	engagementerrors "practicedesk/contexts/practice-ops/engagement-service/domain/errors"
	engagementhttp "practicedesk/contexts/practice-ops/engagement-service/transport/http"
)

func (s *Server) registerTaskRoutes() {
	s.mux.HandleFunc("GET /v1/dashboard", s.handleDashboardStats)
	s.mux.HandleFunc("GET /v1/tasks", s.handleListTasks)
	s.mux.HandleFunc("POST /v1/tasks", s.handleCreateTask)
	s.mux.HandleFunc("GET /v1/tasks/{task_id}", s.handleGetTask)
	s.mux.HandleFunc("PATCH /v1/tasks/{task_id}", s.handleUpdateTask)
	s.mux.HandleFunc("DELETE /v1/tasks/{task_id}", s.handleDeleteTask)
	s.mux.HandleFunc("POST /v1/tasks/{task_id}/status", s.handleSetTaskStatus)
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.engagement.Handler.DashboardStatsHandler(r.Context(), actor)
	if err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	resp, err := s.engagement.Handler.ListTasksHandler(
		r.Context(),
		actor,
		query.Get("status"),
		query.Get("client_id"),
		query.Get("search"),
	)
	if err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req engagementhttp.CreateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeEngagementError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.engagement.Handler.CreateTaskHandler(r.Context(), actor, req)
	if err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.engagement.Handler.GetTaskHandler(r.Context(), actor, r.PathValue("task_id"))
	if err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req engagementhttp.UpdateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeEngagementError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.engagement.Handler.UpdateTaskHandler(r.Context(), actor, r.PathValue("task_id"), req)
	if err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	if err := s.engagement.Handler.DeleteTaskHandler(r.Context(), actor, r.PathValue("task_id")); err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetTaskStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req engagementhttp.SetTaskStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeEngagementError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.engagement.Handler.SetTaskStatusHandler(r.Context(), actor, r.PathValue("task_id"), req)
	if err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeEngagementDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engagementerrors.ErrForbidden):
		writeEngagementError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, engagementerrors.ErrOverdueLocked):
		writeEngagementError(w, http.StatusLocked, "overdue_locked", err.Error())
	case errors.Is(err, engagementerrors.ErrTaskNotFound),
		errors.Is(err, engagementerrors.ErrClientNotFound),
		errors.Is(err, engagementerrors.ErrEmployeeNotFound),
		errors.Is(err, engagementerrors.ErrDocumentNotFound):
		writeEngagementError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, engagementerrors.ErrDuplicateRecord):
		writeEngagementError(w, http.StatusConflict, "duplicate_record", err.Error())
	case errors.Is(err, engagementerrors.ErrValidationFailed):
		writeEngagementError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, engagementerrors.ErrStorageFailure):
		writeEngagementError(w, http.StatusBadGateway, "storage_failure", "object storage is unavailable")
	case errors.Is(err, engagementerrors.ErrStoreFailure):
		writeEngagementError(w, http.StatusServiceUnavailable, "store_failure", "data store is unavailable")
	default:
		writeEngagementError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeEngagementError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, engagementhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
