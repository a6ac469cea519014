// Package httpserver exposes the triage chat and the patient records
// over a REST API.
package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/medassist-ai/medassist/internal/domain/patients"
	"github.com/medassist-ai/medassist/store"
	"github.com/medassist-ai/medassist/triage"
)

var logger = xlog.NewPackageLogger("github.com/medassist-ai/medassist", "httpserver")

var validate = validator.New()

// Config is the HTTP server configuration.
type Config struct {
	// Addr is the listen address, default ":8080".
	Addr string `json:"addr" yaml:"addr"`
	// DefaultTenant is used when the request carries no tenant header.
	DefaultTenant string `json:"default_tenant" yaml:"default_tenant"`
	// ReadTimeout for requests, default 30s.
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout"`
	// WriteTimeout for responses, default 5m: agentic runs are slow.
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

// Server serves the REST API.
type Server struct {
	cfg     Config
	triage  *triage.Router
	store   store.MessageStoreManager
	records *patients.Service

	httpServer *http.Server
}

// New creates the server. The store and records service may be nil,
// the related endpoints then return 404.
func New(cfg Config, triageRouter *triage.Router, storeMgr store.MessageStoreManager, records *patients.Service) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.DefaultTenant == "" {
		cfg.DefaultTenant = "default"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 5 * time.Minute
	}

	s := &Server{
		cfg:     cfg,
		triage:  triageRouter,
		store:   storeMgr,
		records: records,
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(s.tenantContext)
	r.Use(requestLogger)

	r.Get("/healthz", s.handleHealthz)

	r.Route("/v1", func(v1 chi.Router) {
		v1.Route("/chats", func(cr chi.Router) {
			cr.Get("/", s.handleListChats)
			cr.Post("/{chatID}/messages", s.handlePostMessage)
			cr.Get("/{chatID}/messages", s.handleGetMessages)
		})
		v1.Route("/patients", func(pr chi.Router) {
			pr.Get("/", s.handleListPatients)
			pr.Get("/{patientID}", s.handleGetPatient)
			pr.Get("/{patientID}/history", s.handleGetPatientHistory)
		})
	})

	return r
}

// ListenAndServe blocks until the context is canceled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.KV(xlog.INFO, "status", "listening", "addr", s.cfg.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "failed to shut down HTTP server")
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "HTTP server failed")
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
