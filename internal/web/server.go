// Package web provides the HTTP surface: the chat API, the static landing
// page, and the image asset directory.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"tagarela/internal/config"
	"tagarela/internal/conversation"
	"tagarela/internal/image"
)

const (
	// DefaultAddr is the default address the server listens on.
	DefaultAddr = "localhost:8080"

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration before timing out writes.
	// Model calls can take most of a minute, so this is generous.
	WriteTimeout = 120 * time.Second

	// IdleTimeout is the maximum amount of time to wait for the next request.
	IdleTimeout = 60 * time.Second

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 30 * time.Second

	// MaxRequestBodySize is the maximum size of POST request bodies (15MB).
	// Base64-encoded images inflate by a third, so this admits images up
	// to the decoded 10MB cap with headroom for the rest of the payload.
	MaxRequestBodySize = 15 * 1024 * 1024

	// MaxTextLength is the maximum length of a chat message (10KB).
	MaxTextLength = 10 * 1024
)

// Generator invokes the generative model. It is implemented by
// gemini.Client and by fakes in tests.
type Generator interface {
	// GenerateText runs a stateful text exchange with prior turns as context.
	GenerateText(ctx context.Context, history conversation.History, prompt string) (string, error)

	// DescribeImage runs a stateless one-shot image prompt.
	DescribeImage(ctx context.Context, img *image.Payload, prompt string) (string, error)
}

// Server provides HTTP serving for the chat API and static assets.
//
// Either dependency may be nil when its credential was missing at startup;
// the server still runs, and /chat answers 503 until both are available.
type Server struct {
	addr   string
	server *http.Server
	logger zerolog.Logger

	generator Generator
	sessions  *conversation.Manager

	templatesDir    string
	imagesDir       string
	defaultLanguage string
}

// NewServer creates a new Server with injected dependencies.
// If addr is empty, DefaultAddr is used.
// generator and sessions may be nil; /chat then reports 503 (degraded mode).
// If cfg is nil, default paths and language are used.
func NewServer(addr string, generator Generator, sessions *conversation.Manager, cfg *config.Config, logger zerolog.Logger) *Server {
	if addr == "" {
		addr = DefaultAddr
	}

	templatesDir := "templates"
	imagesDir := "images"
	defaultLanguage := "Português (Brasil)"
	if cfg != nil {
		templatesDir = cfg.TemplatesDir
		imagesDir = cfg.ImagesDir
		defaultLanguage = cfg.DefaultLanguage
	}

	s := &Server{
		addr:            addr,
		logger:          logger,
		generator:       generator,
		sessions:        sessions,
		templatesDir:    templatesDir,
		imagesDir:       imagesDir,
		defaultLanguage: defaultLanguage,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}

	return s
}

// Handler returns the server's HTTP handler. Used by tests with httptest.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Landing page
	mux.HandleFunc("GET /{$}", s.handleIndex)

	// Static image assets
	mux.Handle("GET /images/",
		http.StripPrefix("/images/", http.FileServer(http.Dir(s.imagesDir))))

	// Chat API
	mux.HandleFunc("POST /chat", s.handleChat)

	// Readiness probe; also reports degraded dependencies
	mux.HandleFunc("GET /ready", s.handleReady)
}

// ListenAndServe starts the HTTP server and blocks until the context is
// cancelled. Returns an error if the server fails to start or encounters a
// non-graceful shutdown error.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("starting web server")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info().Msg("shutting down web server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "server shutdown")
		}

		s.logger.Info().Msg("web server stopped")
		return nil

	case err := <-errCh:
		return errors.Wrap(err, "server error")
	}
}

// handleIndex serves the landing page from the templates directory.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	indexPath := filepath.Join(s.templatesDir, "index.html")
	if _, err := os.Stat(indexPath); os.IsNotExist(err) {
		s.logger.Error().Str("path", indexPath).Msg("landing page not found")
		writeJSON(w, http.StatusOK, map[string]string{
			"error": fmt.Sprintf("file %q not found", indexPath),
		})
		return
	}
	http.ServeFile(w, r, indexPath)
}

// readyResponse is the body of GET /ready.
type readyResponse struct {
	Status       string `json:"status"`
	Model        bool   `json:"model"`
	SessionStore bool   `json:"session_store"`
}

// handleReady reports liveness plus the availability of the two external
// dependencies. Always answers 200; degraded state is in the body.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	resp := readyResponse{
		Status:       "ok",
		Model:        s.generator != nil,
		SessionStore: s.sessions != nil,
	}
	if !resp.Model || !resp.SessionStore {
		resp.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeJSON writes v as a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail writes the error body shape shared by every failure response.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
