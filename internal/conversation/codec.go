package conversation

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// codecVersion is the current on-the-wire format version for stored
// histories. Bump this when the envelope layout changes; records written
// with a different version fail to decode with ErrCodec and are treated
// as missing by the Manager.
const codecVersion = 1

// ErrCodec is returned when stored history bytes are malformed or were
// written with an incompatible format version.
var ErrCodec = errors.New("conversation: malformed history record")

// historyEnvelope is the JSON representation of a stored history.
// This struct defines the exact format written to the session store.
type historyEnvelope struct {
	Version int    `json:"version"`
	Turns   []Turn `json:"turns"`
}

// EncodeHistory serializes a history to bytes suitable for the session store.
// The empty history encodes successfully.
func EncodeHistory(h History) ([]byte, error) {
	env := historyEnvelope{
		Version: codecVersion,
		Turns:   h,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, errors.Wrap(err, "encode history")
	}
	return data, nil
}

// DecodeHistory deserializes bytes produced by EncodeHistory.
// Returns ErrCodec (wrapped) if the bytes are not valid JSON, do not match
// the envelope layout, or carry an unknown format version.
func DecodeHistory(data []byte) (History, error) {
	var env historyEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrapf(ErrCodec, "parse: %v", err)
	}
	if env.Version != codecVersion {
		return nil, errors.Wrapf(ErrCodec, "unsupported version %d", env.Version)
	}
	for _, t := range env.Turns {
		if t.Role != RoleUser && t.Role != RoleModel {
			return nil, errors.Wrapf(ErrCodec, "unknown role %q", t.Role)
		}
	}
	if env.Turns == nil {
		return History{}, nil
	}
	return History(env.Turns), nil
}
