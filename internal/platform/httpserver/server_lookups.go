package httpserver

import (
	"net/http"

	engagementhttp "practicedesk/contexts/practice-ops/engagement-service/transport/http"
)

func (s *Server) registerLookupRoutes() {
	s.mux.HandleFunc("GET /v1/clients", s.handleListClients)
	s.mux.HandleFunc("POST /v1/clients", s.handleCreateClient)
	s.mux.HandleFunc("GET /v1/clients/{client_id}", s.handleGetClient)
	s.mux.HandleFunc("PUT /v1/clients/{client_id}", s.handleSaveClient)
	s.mux.HandleFunc("DELETE /v1/clients/{client_id}", s.handleDeleteClient)

	s.mux.HandleFunc("GET /v1/employees", s.handleListEmployees)
	s.mux.HandleFunc("POST /v1/employees", s.handleCreateEmployee)
	s.mux.HandleFunc("GET /v1/employees/{employee_id}", s.handleGetEmployee)
	s.mux.HandleFunc("PUT /v1/employees/{employee_id}", s.handleSaveEmployee)
	s.mux.HandleFunc("DELETE /v1/employees/{employee_id}", s.handleDeleteEmployee)
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	resp, err := s.engagement.Handler.ListClientsHandler(r.Context(), actor, query.Get("status"), query.Get("search"))
	if err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.engagement.Handler.GetClientHandler(r.Context(), actor, r.PathValue("client_id"))
	if err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	s.saveClient(w, r, "", http.StatusCreated)
}

func (s *Server) handleSaveClient(w http.ResponseWriter, r *http.Request) {
	s.saveClient(w, r, r.PathValue("client_id"), http.StatusOK)
}

func (s *Server) saveClient(w http.ResponseWriter, r *http.Request, clientID string, status int) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req engagementhttp.SaveClientRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeEngagementError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.engagement.Handler.SaveClientHandler(r.Context(), actor, clientID, req)
	if err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	if err := s.engagement.Handler.DeleteClientHandler(r.Context(), actor, r.PathValue("client_id")); err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.engagement.Handler.ListEmployeesHandler(r.Context(), actor, queryBool(r, "active"))
	if err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.engagement.Handler.GetEmployeeHandler(r.Context(), actor, r.PathValue("employee_id"))
	if err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	s.saveEmployee(w, r, "", http.StatusCreated)
}

func (s *Server) handleSaveEmployee(w http.ResponseWriter, r *http.Request) {
	s.saveEmployee(w, r, r.PathValue("employee_id"), http.StatusOK)
}

func (s *Server) saveEmployee(w http.ResponseWriter, r *http.Request, employeeID string, status int) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req engagementhttp.SaveEmployeeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeEngagementError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.engagement.Handler.SaveEmployeeHandler(r.Context(), actor, employeeID, req)
	if err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	if err := s.engagement.Handler.DeleteEmployeeHandler(r.Context(), actor, r.PathValue("employee_id")); err != nil {
		writeEngagementDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
