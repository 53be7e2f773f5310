// Package startup wires configuration, external dependencies, and the web
// server together.
//
// Dependency failures at startup are deliberately non-fatal: a missing or
// unreachable Redis or a missing Gemini key leaves the corresponding
// component nil, the server still comes up, and /chat answers 503 until the
// dependency is available. This mirrors how the service is operated: the
// landing page and asset serving keep working while credentials are fixed.
package startup

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"tagarela/internal/config"
	"tagarela/internal/conversation"
	"tagarela/internal/gemini"
	"tagarela/internal/persistence"
	"tagarela/internal/web"
)

// Components holds all initialized application components.
// Store, Model, and Sessions are nil when their dependency failed to
// initialize (degraded mode).
type Components struct {
	Store     *persistence.RedisStore
	Model     *gemini.Client
	Sessions  *conversation.Manager
	WebServer *web.Server
	Logger    zerolog.Logger
}

// InitializeAll builds all components from configuration.
// It never returns an error for missing credentials or unreachable
// dependencies; those are logged and the resulting degraded Components are
// still usable.
func InitializeAll(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *Components {
	c := &Components{Logger: logger}

	// Session store (Redis)
	if cfg.RedisURL == "" {
		logger.Error().
			Str("env", config.EnvRedisURL).
			Msg("redis url not set; session service disabled")
	} else {
		store, err := persistence.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error().Err(err).Msg("could not connect to redis; session service disabled")
		} else {
			logger.Info().Msg("redis connection established")
			c.Store = store
			c.Sessions = conversation.NewManager(store, logger)
		}
	}

	// Generative model (Gemini)
	if cfg.GeminiAPIKey == "" {
		logger.Error().
			Str("env", config.EnvGeminiAPIKey).
			Msg("gemini api key not set; AI service disabled")
	} else {
		model, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.Model, logger)
		if err != nil {
			logger.Error().Err(err).Msg("could not initialize gemini client; AI service disabled")
		} else {
			logger.Info().Str("model", model.Model()).Msg("gemini model initialized")
			c.Model = model
		}
	}

	addr := fmt.Sprintf("localhost:%d", cfg.Port)

	// The web server tolerates nil dependencies; it reports them via /ready
	// and answers 503 on /chat.
	var generator web.Generator
	if c.Model != nil {
		generator = c.Model
	}
	c.WebServer = web.NewServer(addr, generator, c.Sessions, cfg, logger)

	return c
}

// Run starts the web server and blocks until a termination signal arrives
// or the server fails. Shutdown is graceful: in-flight requests get
// web.ShutdownTimeout to finish.
func Run(ctx context.Context, c *Components) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return c.WebServer.ListenAndServe(egCtx)
	})

	if err := eg.Wait(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Cleanup releases external connections. Safe to call on degraded
// Components.
func Cleanup(c *Components) {
	if c.Model != nil {
		if err := c.Model.Close(); err != nil {
			c.Logger.Warn().Err(err).Msg("closing gemini client")
		}
	}
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			c.Logger.Warn().Err(err).Msg("closing redis store")
		}
	}
}
