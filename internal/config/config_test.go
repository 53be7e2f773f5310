package config

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// fakeEnv returns a getenv function backed by a map.
func fakeEnv(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

var emptyEnv = fakeEnv(nil)

func TestParse_Defaults(t *testing.T) {
	var out bytes.Buffer
	cfg, err := Parse([]string{}, emptyEnv, &out)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Model != "gemini-1.5-flash-latest" {
		t.Errorf("Model = %q, want gemini-1.5-flash-latest", cfg.Model)
	}
	if cfg.DefaultLanguage != "Português (Brasil)" {
		t.Errorf("DefaultLanguage = %q", cfg.DefaultLanguage)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.RedisURL != "" || cfg.GeminiAPIKey != "" {
		t.Errorf("credentials should be empty with an empty environment")
	}
}

func TestParse_Flags(t *testing.T) {
	var out bytes.Buffer
	cfg, err := Parse([]string{
		"--port", "3000",
		"--model", "gemini-1.5-pro",
		"--default-language", "English",
		"--log-level", "debug",
	}, emptyEnv, &out)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.Model != "gemini-1.5-pro" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.DefaultLanguage != "English" {
		t.Errorf("DefaultLanguage = %q", cfg.DefaultLanguage)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestParse_Environment(t *testing.T) {
	env := fakeEnv(map[string]string{
		EnvRedisURL:     "redis://localhost:6379/0",
		EnvGeminiAPIKey: "test-key",
	})

	var out bytes.Buffer
	cfg, err := Parse([]string{}, env, &out)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.GeminiAPIKey != "test-key" {
		t.Errorf("GeminiAPIKey = %q", cfg.GeminiAPIKey)
	}
}

func TestParse_MissingCredentialsIsNotAnError(t *testing.T) {
	// Absent credentials degrade the service at runtime; they must never
	// fail configuration parsing.
	var out bytes.Buffer
	if _, err := Parse([]string{}, emptyEnv, &out); err != nil {
		t.Fatalf("Parse() error = %v, want nil", err)
	}
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{
			name:    "port too low",
			args:    []string{"--port", "80"},
			wantErr: ErrInvalidPort,
		},
		{
			name:    "port too high",
			args:    []string{"--port", "70000"},
			wantErr: ErrInvalidPort,
		},
		{
			name:    "empty model",
			args:    []string{"--model", ""},
			wantErr: ErrEmptyModel,
		},
		{
			name:    "empty language",
			args:    []string{"--default-language", ""},
			wantErr: ErrEmptyLanguage,
		},
		{
			name:    "bad log level",
			args:    []string{"--log-level", "verbose"},
			wantErr: ErrInvalidLogLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			_, err := Parse(tt.args, emptyEnv, &out)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParse_Help(t *testing.T) {
	var out bytes.Buffer
	_, err := Parse([]string{"--help"}, emptyEnv, &out)
	if !errors.Is(err, ErrShowHelp) {
		t.Fatalf("Parse() error = %v, want ErrShowHelp", err)
	}
	if !strings.Contains(out.String(), "USAGE") {
		t.Errorf("help output missing usage section")
	}
	if !strings.Contains(out.String(), EnvRedisURL) {
		t.Errorf("help output should document %s", EnvRedisURL)
	}
}

func TestParse_Version(t *testing.T) {
	var out bytes.Buffer
	_, err := Parse([]string{"--version"}, emptyEnv, &out)
	if !errors.Is(err, ErrShowVersion) {
		t.Fatalf("Parse() error = %v, want ErrShowVersion", err)
	}
	if !strings.Contains(out.String(), Version) {
		t.Errorf("version output = %q, want to contain %q", out.String(), Version)
	}
}
