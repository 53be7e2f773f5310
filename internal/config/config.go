// Package config provides configuration management for the tagarela
// application.
//
// Settings are parsed from CLI flags with sensible defaults. The two
// credentials the service depends on (the Redis connection URL and the
// Gemini API key) come from the environment. A missing credential is not a
// parse error: the service starts degraded and /chat answers 503, so the
// absence is visible without crashing at startup.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
)

const (
	// Version is the tagarela application version
	Version = "0.1.0"

	// EnvRedisURL is the environment variable holding the Redis connection URL.
	EnvRedisURL = "REDIS_URL"
	// EnvGeminiAPIKey is the environment variable holding the Gemini API key.
	EnvGeminiAPIKey = "GEMINI_API_KEY"

	// Default values for CLI flags
	defaultPort         = 8080
	defaultModel        = "gemini-1.5-flash-latest"
	defaultLanguage     = "Português (Brasil)"
	defaultTemplatesDir = "templates"
	defaultImagesDir    = "images"
	defaultLogLevel     = "info"

	// Validation constraints
	minPort = 1024
	maxPort = 65535
)

var (
	// ErrInvalidPort is returned when port is out of valid range
	ErrInvalidPort = errors.New("port must be between 1024 and 65535")
	// ErrEmptyModel is returned when the model name is empty
	ErrEmptyModel = errors.New("model must not be empty")
	// ErrEmptyLanguage is returned when the default language is empty
	ErrEmptyLanguage = errors.New("default-language must not be empty")
	// ErrInvalidLogLevel is returned when log level is not recognized
	ErrInvalidLogLevel = errors.New("log-level must be one of: debug, info, warn, error")
	// ErrShowHelp is returned when --help flag is requested
	ErrShowHelp = errors.New("help requested")
	// ErrShowVersion is returned when --version flag is requested
	ErrShowVersion = errors.New("version requested")
)

// Config holds all configuration values for the tagarela application.
// Flag values have defaults applied; env values may be empty, leaving the
// corresponding dependency uninitialized (degraded mode).
type Config struct {
	// Server configuration
	Port         int
	TemplatesDir string
	ImagesDir    string

	// Model configuration
	Model           string
	DefaultLanguage string

	// Credentials from the environment
	RedisURL     string
	GeminiAPIKey string

	// Logging configuration
	LogLevel string

	// Internal flags
	showHelp    bool
	showVersion bool
}

// Parse parses CLI flags and environment variables into a Config.
// getenv abstracts os.Getenv for testability.
// Returns the parsed Config or an error if validation fails.
func Parse(args []string, getenv func(string) string, output io.Writer) (*Config, error) {
	c := &Config{}

	fs := flag.NewFlagSet("tagarela", flag.ContinueOnError)
	fs.SetOutput(output)

	// Server flags
	fs.IntVar(&c.Port, "port", defaultPort, "HTTP server port")
	fs.StringVar(&c.TemplatesDir, "templates", defaultTemplatesDir, "Directory containing index.html")
	fs.StringVar(&c.ImagesDir, "images", defaultImagesDir, "Static image asset directory")

	// Model flags
	fs.StringVar(&c.Model, "model", defaultModel, "Gemini model name")
	fs.StringVar(&c.DefaultLanguage, "default-language", defaultLanguage, "Language the model answers in when the request has none")

	// Logging flags
	fs.StringVar(&c.LogLevel, "log-level", defaultLogLevel, "Log level (debug, info, warn, error)")

	// Special flags
	fs.BoolVar(&c.showHelp, "help", false, "Show help message")
	fs.BoolVar(&c.showVersion, "version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Handle --help
	if c.showHelp {
		printHelp(output)
		return nil, ErrShowHelp
	}

	// Handle --version
	if c.showVersion {
		fmt.Fprintf(output, "tagarela %s\n", Version)
		return nil, ErrShowVersion
	}

	// Credentials: absence is tolerated here and handled as degraded mode
	// at startup, never as a crash.
	c.RedisURL = getenv(EnvRedisURL)
	c.GeminiAPIKey = getenv(EnvGeminiAPIKey)

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// validate checks that all configuration values are within valid ranges
func (c *Config) validate() error {
	if c.Port < minPort || c.Port > maxPort {
		return ErrInvalidPort
	}

	if c.Model == "" {
		return ErrEmptyModel
	}

	if c.DefaultLanguage == "" {
		return ErrEmptyLanguage
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		return ErrInvalidLogLevel
	}

	return nil
}

// printHelp prints usage information
func printHelp(w io.Writer) {
	fmt.Fprintf(w, `tagarela - chat backend for the Gemini generative-language API

USAGE:
    tagarela [FLAGS]

FLAGS:
    --port <PORT>               HTTP server port (default: %d)
    --model <MODEL>             Gemini model name (default: %s)
    --default-language <LANG>   Response language when the request has none (default: %s)
    --templates <DIR>           Directory containing index.html (default: %s)
    --images <DIR>              Static image asset directory (default: %s)
    --log-level <LEVEL>         Log level: debug, info, warn, error (default: %s)
    --help                      Show this help message
    --version                   Show version information

ENVIRONMENT:
    %s      Redis connection URL (e.g. redis://localhost:6379/0)
    %s  Gemini API key

Both environment variables are required for /chat to work. When either is
missing the server still starts, but /chat answers 503 until it is set.
`,
		defaultPort, defaultModel, defaultLanguage, defaultTemplatesDir,
		defaultImagesDir, defaultLogLevel, EnvRedisURL, EnvGeminiAPIKey)
}
