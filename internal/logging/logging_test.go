package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{in: "debug", want: zerolog.DebugLevel},
		{in: "info", want: zerolog.InfoLevel},
		{in: "warn", want: zerolog.WarnLevel},
		{in: "error", want: zerolog.ErrorLevel},
		{in: "DEBUG", want: zerolog.DebugLevel},
		{in: "unknown", want: zerolog.InfoLevel},
		{in: "", want: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("warn", &buf)

	logger.Info().Msg("should be discarded")
	require.Empty(t, buf.String())

	logger.Warn().Msg("should be written")
	require.Contains(t, buf.String(), "should be written")
}

func TestNew_WritesConfiguredLevelAndAbove(t *testing.T) {
	var buf bytes.Buffer
	logger := New("debug", &buf)

	logger.Debug().Msg("debug line")
	logger.Error().Msg("error line")

	out := buf.String()
	require.Contains(t, out, "debug line")
	require.Contains(t, out, "error line")
}
