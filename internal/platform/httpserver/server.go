package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	formsservice "github.com/ieth0/forms/contexts/forms-core/forms-service"
	responsesservice "github.com/ieth0/forms/contexts/forms-core/responses-service"
	accountsservice "github.com/ieth0/forms/contexts/identity-access/accounts-service"
	emailservice "github.com/ieth0/forms/contexts/notifications/email-service"
	"github.com/ieth0/forms/internal/platform/filestore"
	_ "github.com/ieth0/forms/internal/platform/httpserver/docs"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux       *http.ServeMux
	handler   http.Handler
	httpsrv   *http.Server
	logger    *slog.Logger
	responses responsesservice.Module
	forms     formsservice.Module
	accounts  accountsservice.Module
	mail      emailservice.Module
	uploads   *filestore.Store
}

// Options carries everything the server needs; security values are
// plain configuration, applied declaratively by the middleware chain.
type Options struct {
	Responses responsesservice.Module
	Forms     formsservice.Module
	Accounts  accountsservice.Module
	Mail      emailservice.Module
	Uploads   *filestore.Store
	Logger    *slog.Logger
	Addr      string

	ContentSecurityPolicy string
	TrustedOrigins        []string
	CORSOrigins           []string
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	addr := opts.Addr
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		responses: opts.Responses,
		forms:     opts.Forms,
		accounts:  opts.Accounts,
		mail:      opts.Mail,
		uploads:   opts.Uploads,
	}
	s.registerRoutes()

	corsOrigins := opts.CORSOrigins
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler

	s.handler = chain(s.mux,
		withRecover(logger),
		withRequestLogging(logger),
		withSecurityHeaders(opts.ContentSecurityPolicy),
		Middleware(corsHandler),
		withOriginCheck(opts.TrustedOrigins, logger),
	)
	s.httpsrv = &http.Server{Addr: addr, Handler: s.handler}
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.httpsrv.Addr,
	)
	return s.httpsrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpsrv.Shutdown(ctx)
}

// Handler exposes the full middleware chain for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /f/{form_key}", s.handleIntakeSubmission)

	s.mux.HandleFunc("POST /api/v1/accounts", s.handleRegisterAccount)
	s.mux.HandleFunc("POST /api/v1/sessions", s.handleLogin)
	s.mux.HandleFunc("GET /api/v1/account", s.handleGetAccount)
	s.mux.HandleFunc("PATCH /api/v1/account", s.handleUpdateProfile)
	s.mux.HandleFunc("PUT /api/v1/account/smtp", s.handleUpdateSMTP)
	s.mux.HandleFunc("POST /api/v1/account/smtp/test", s.handleSendTestMail)

	s.mux.HandleFunc("POST /api/v1/forms", s.handleCreateForm)
	s.mux.HandleFunc("GET /api/v1/forms", s.handleListForms)
	s.mux.HandleFunc("GET /api/v1/forms/{form_id}", s.handleGetForm)
	s.mux.HandleFunc("PATCH /api/v1/forms/{form_id}", s.handleUpdateForm)
	s.mux.HandleFunc("DELETE /api/v1/forms/{form_id}", s.handleDeleteForm)
	s.mux.HandleFunc("GET /api/v1/forms/{form_id}/responses", s.handleListResponses)
	s.mux.HandleFunc("GET /api/v1/forms/{form_id}/responses/counts", s.handleCountResponses)

	s.mux.HandleFunc("GET /api/v1/responses/{response_id}", s.handleGetResponse)
	s.mux.HandleFunc("POST /api/v1/responses/flags", s.handleUpdateResponseFlags)
	s.mux.HandleFunc("POST /api/v1/responses/delete", s.handleDeleteResponses)
	s.mux.HandleFunc("POST /api/v1/responses/restore", s.handleRestoreResponses)
	s.mux.HandleFunc("PUT /api/v1/responses/{response_id}/labels", s.handleSetResponseLabels)
	s.mux.HandleFunc("POST /api/v1/responses/{response_id}/notes", s.handleAddResponseNote)
	s.mux.HandleFunc("GET /api/v1/responses/{response_id}/notes", s.handleListResponseNotes)
	s.mux.HandleFunc("GET /api/v1/responses/{response_id}/files", s.handleListResponseFiles)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// errorBody is the platform-level error shape used by middleware and
// helpers that sit outside any single context.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorWriter lets shared helpers reply with the calling context's
// error DTO.
type errorWriter func(w http.ResponseWriter, status int, code string, message string)

// requireAccount resolves the dashboard session from the bearer token.
func (s *Server) requireAccount(w http.ResponseWriter, r *http.Request, writeError errorWriter) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Authorization bearer token is required")
		return "", false
	}
	accountID, err := s.accounts.Handler.VerifyTokenHandler(strings.TrimSpace(parts[1]))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_session", "session token is invalid or expired")
		return "", false
	}
	return accountID, true
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any, writeError errorWriter) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
