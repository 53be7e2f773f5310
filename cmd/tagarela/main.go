package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"tagarela/internal/config"
	"tagarela/internal/logging"
	"tagarela/internal/startup"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Parse configuration from CLI flags and environment
	cfg, err := config.Parse(os.Args[1:], os.Getenv, os.Stderr)
	if errors.Is(err, config.ErrShowHelp) || errors.Is(err, config.ErrShowVersion) {
		// Help or version was shown, exit successfully
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger := logging.New(cfg.LogLevel, os.Stderr)

	logger.Info().Str("version", config.Version).Msg("starting tagarela")
	logger.Debug().
		Int("port", cfg.Port).
		Str("model", cfg.Model).
		Str("default_language", cfg.DefaultLanguage).
		Str("templates", cfg.TemplatesDir).
		Str("images", cfg.ImagesDir).
		Msg("configuration")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Missing credentials degrade /chat to 503 instead of failing startup,
	// so this never returns an error.
	components := startup.InitializeAll(ctx, cfg, logger)
	defer startup.Cleanup(components)

	logger.Info().Msgf("listening on http://localhost:%d", cfg.Port)

	if err := startup.Run(ctx, components); err != nil {
		logger.Error().Err(err).Msg("server error")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}
