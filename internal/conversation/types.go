// Package conversation provides state management for multi-turn chat sessions.
// It tracks per-session chat history, serializes it for storage, and resolves
// inbound session identifiers to histories.
//
// # Design Overview
//
// The conversation package is the stateful core of tagarela. The key design
// decisions are:
//
// 1. History is Plain Data
//
// A history is an ordered slice of Turn values (role + text). It deliberately
// carries no model-client state: any chat object the Gemini SDK needs is
// rebuilt fresh on every request from this plain data. Storing plain data
// instead of a serialized client object decouples stored sessions from SDK
// internals and survives SDK upgrades.
//
// 2. History Lives in the Session Store Between Requests
//
// Between requests the only copy of a history is the encoded record in the
// session store. During a request the Manager owns a decoded copy
// transiently. Updates are read-modify-write-replace: the stored record is
// never mutated in place.
//
// 3. Image Turns are Never Persisted
//
// The image-describe flow is stateless. Image payloads are never appended to
// a stored history, so Turn only needs a text field.
//
// # Concurrency
//
// Two concurrent requests for the same session identifier race on the
// read-modify-write cycle; the last commit wins. The store is the single
// source of truth, so this loses at most the slower request's turn pair.
// There is no optimistic-concurrency guard; see DESIGN.md.
package conversation

// Role constants for conversation turns. These mirror the roles the Gemini
// API uses for chat history.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is a single message within a conversation history.
type Turn struct {
	// Role is the author of the turn: RoleUser or RoleModel.
	Role string `json:"role"`

	// Text is the message content. For user turns this is the full prompt
	// sent to the model, including the language instruction prefix.
	Text string `json:"text"`
}

// History is an ordered, append-only sequence of turns.
// An empty history is a valid initial state.
type History []Turn

// Append returns a new history with the given turns appended.
// The receiver is not modified.
func (h History) Append(turns ...Turn) History {
	out := make(History, 0, len(h)+len(turns))
	out = append(out, h...)
	out = append(out, turns...)
	return out
}
