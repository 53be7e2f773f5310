package conversation

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeHistory_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		history History
	}{
		{
			name:    "empty history",
			history: History{},
		},
		{
			name: "single exchange",
			history: History{
				{Role: RoleUser, Text: "Responda em Português (Brasil). olá"},
				{Role: RoleModel, Text: "Olá! Como posso ajudar?"},
			},
		},
		{
			name: "multi turn with unicode",
			history: History{
				{Role: RoleUser, Text: "qual é a capital do Japão?"},
				{Role: RoleModel, Text: "Tóquio."},
				{Role: RoleUser, Text: "e a população? 🗼"},
				{Role: RoleModel, Text: "Cerca de 14 milhões na cidade."},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeHistory(tt.history)
			require.NoError(t, err)

			got, err := DecodeHistory(data)
			require.NoError(t, err)
			require.Equal(t, tt.history, got)
		})
	}
}

func TestDecodeHistory_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{
			name: "not json",
			data: []byte("\x80\x00pickled-something"),
		},
		{
			name: "empty input",
			data: []byte(""),
		},
		{
			name: "wrong json shape",
			data: []byte(`["user", "hello"]`),
		},
		{
			name: "future version",
			data: []byte(`{"version": 2, "turns": []}`),
		},
		{
			name: "missing version",
			data: []byte(`{"turns": [{"role": "user", "text": "hi"}]}`),
		},
		{
			name: "unknown role",
			data: []byte(`{"version": 1, "turns": [{"role": "assistant", "text": "hi"}]}`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeHistory(tt.data)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrCodec), "expected ErrCodec, got %v", err)
		})
	}
}

func TestDecodeHistory_NullTurns(t *testing.T) {
	// A record written from a nil slice decodes to a valid empty history.
	got, err := DecodeHistory([]byte(`{"version": 1, "turns": null}`))
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestHistoryAppend_DoesNotMutateReceiver(t *testing.T) {
	base := History{{Role: RoleUser, Text: "first"}}

	updated := base.Append(
		Turn{Role: RoleModel, Text: "second"},
		Turn{Role: RoleUser, Text: "third"},
	)

	require.Len(t, base, 1)
	require.Len(t, updated, 3)
	require.Equal(t, "first", updated[0].Text)
	require.Equal(t, "third", updated[2].Text)
}
