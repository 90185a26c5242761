package httpserver

import (
	"errors"
	"net/http"

	billingerrors "practicedesk/contexts/finance-core/billing-ledger/domain/errors"
	billinghttp "practicedesk/contexts/finance-core/billing-ledger/transport/http"
)

func (s *Server) registerBillingRoutes() {
	s.mux.HandleFunc("GET /v1/invoices", s.handleListInvoices)
	s.mux.HandleFunc("POST /v1/invoices", s.handleCreateInvoice)
	s.mux.HandleFunc("GET /v1/invoices/stats", s.handleInvoiceStats)
	s.mux.HandleFunc("GET /v1/invoices/{invoice_id}", s.handleGetInvoice)
	s.mux.HandleFunc("PATCH /v1/invoices/{invoice_id}", s.handleUpdateInvoice)
	s.mux.HandleFunc("DELETE /v1/invoices/{invoice_id}", s.handleDeleteInvoice)
	s.mux.HandleFunc("POST /v1/invoices/{invoice_id}/payments", s.handleRecordPayment)
	s.mux.HandleFunc("GET /v1/payments", s.handleListPayments)
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	resp, err := s.billing.Handler.ListInvoicesHandler(r.Context(), actor, query.Get("status"), query.Get("client_id"))
	if err != nil {
		writeBillingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req billinghttp.CreateInvoiceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBillingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.billing.Handler.CreateInvoiceHandler(r.Context(), actor, req)
	if err != nil {
		writeBillingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleInvoiceStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.billing.Handler.InvoiceStatsHandler(r.Context(), actor)
	if err != nil {
		writeBillingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.billing.Handler.GetInvoiceHandler(r.Context(), actor, r.PathValue("invoice_id"))
	if err != nil {
		writeBillingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req billinghttp.UpdateInvoiceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBillingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.billing.Handler.UpdateInvoiceHandler(r.Context(), actor, r.PathValue("invoice_id"), req)
	if err != nil {
		writeBillingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	if err := s.billing.Handler.DeleteInvoiceHandler(r.Context(), actor, r.PathValue("invoice_id")); err != nil {
		writeBillingDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req billinghttp.RecordPaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBillingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.billing.Handler.RecordPaymentHandler(r.Context(), actor, r.PathValue("invoice_id"), req)
	if err != nil {
		writeBillingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.billing.Handler.ListPaymentsHandler(r.Context(), actor, r.URL.Query().Get("invoice_id"))
	if err != nil {
		writeBillingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeBillingDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, billingerrors.ErrForbidden):
		writeBillingError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, billingerrors.ErrInvoiceNotFound),
		errors.Is(err, billingerrors.ErrClientNotFound):
		writeBillingError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, billingerrors.ErrDuplicateInvoiceNumber),
		errors.Is(err, billingerrors.ErrDuplicateRecord):
		writeBillingError(w, http.StatusConflict, "duplicate_record", err.Error())
	case errors.Is(err, billingerrors.ErrValidationFailed):
		writeBillingError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, billingerrors.ErrStoreFailure):
		writeBillingError(w, http.StatusServiceUnavailable, "store_failure", "data store is unavailable")
	default:
		writeBillingError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeBillingError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, billinghttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
