package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	roleauthority "practicedesk/contexts/identity-access/role-authority"
	identityerrors "practicedesk/contexts/identity-access/role-authority/domain/errors"
	identityhttp "practicedesk/contexts/identity-access/role-authority/transport/http"
	billingledger "practicedesk/contexts/finance-core/billing-ledger"
	engagementservice "practicedesk/contexts/practice-ops/engagement-service"
	syncservice "practicedesk/contexts/realtime/sync-service"
	identityv1 "practicedesk/contracts/gen/identity/v1"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "practicedesk/internal/platform/httpserver/docs"
)

// FileStore serves stored document objects behind /v1/files/.
type FileStore interface {
	VerifyLink(objectPath string, token string) (string, error)
	Open(objectPath string) (*os.File, error)
}

type Modules struct {
	Identity   roleauthority.Module
	Engagement engagementservice.Module
	Billing    billingledger.Module
	Realtime   syncservice.Module
	Files      FileStore
}

type Server struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	addr       string
	identity   roleauthority.Module
	engagement engagementservice.Module
	billing    billingledger.Module
	realtime   syncservice.Module
	files      FileStore
}

func New(modules Modules, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		identity:   modules.Identity,
		engagement: modules.Engagement,
		billing:    modules.Billing,
		realtime:   modules.Realtime,
		files:      modules.Files,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves until ctx ends, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting",
			"event", "http_server_starting",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"addr", s.addr,
		)
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /v1/me", s.handleMe)

	s.registerTaskRoutes()
	s.registerDocumentRoutes()
	s.registerLookupRoutes()
	s.registerBillingRoutes()
	s.registerRealtimeRoutes()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	resp, err := s.identity.Handler.MeHandler(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// authenticate resolves the session actor or writes a 401.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (identityv1.Actor, bool) {
	actor, err := s.identity.Handler.AuthenticateHandler(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		writeIdentityDomainError(w, err)
		return identityv1.Actor{}, false
	}
	return actor, true
}

func writeIdentityDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identityerrors.ErrUnauthenticated):
		writeIdentityError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
	case errors.Is(err, identityerrors.ErrInvalidToken),
		errors.Is(err, identityerrors.ErrMissingActorSubject):
		writeIdentityError(w, http.StatusUnauthorized, "invalid_token", err.Error())
	case errors.Is(err, identityerrors.ErrUnknownRole):
		writeIdentityError(w, http.StatusForbidden, "unknown_role", err.Error())
	default:
		writeIdentityError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeIdentityError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, identityhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func queryBool(r *http.Request, name string) bool {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get(name))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
