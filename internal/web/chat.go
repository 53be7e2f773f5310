package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"tagarela/internal/conversation"
	"tagarela/internal/gemini"
	"tagarela/internal/image"
	"tagarela/internal/persistence"
)

// defaultImageInstruction is the prompt used when an image arrives without
// accompanying text.
const defaultImageInstruction = "Descreva esta imagem."

// chatRequest is the JSON body of POST /chat.
type chatRequest struct {
	Text        string `json:"text"`
	ImageBase64 string `json:"image_base64"`
	Language    string `json:"language"`
	SessionID   string `json:"session_id"`
}

// chatResponse is the JSON body of a successful POST /chat.
type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// handleChat validates the inbound payload and branches into the stateless
// image-describe flow or the stateful text-chat flow.
//
// Error mapping:
//   - 400: neither text nor image, oversized text, bad image payload
//   - 500: model produced no usable text, codec failure on commit
//   - 503: model or session store uninitialized, unreachable, or timed out
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.generator == nil || s.sessions == nil {
		s.logger.Error().
			Bool("model_ok", s.generator != nil).
			Bool("store_ok", s.sessions != nil).
			Msg("chat called but an essential service is not initialized")
		writeDetail(w, http.StatusServiceUnavailable,
			"the AI service or the session service is not available")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" && req.ImageBase64 == "" {
		writeDetail(w, http.StatusBadRequest, "either text or an image is required")
		return
	}

	if utf8.RuneCountInString(req.Text) > MaxTextLength {
		writeDetail(w, http.StatusRequestEntityTooLarge, "message is too long")
		return
	}

	language := req.Language
	if language == "" {
		language = s.defaultLanguage
	}

	if req.ImageBase64 != "" {
		s.handleImageChat(w, r, req, language)
		return
	}
	s.handleTextChat(w, r, req, language)
}

// handleImageChat runs the stateless image-describe flow. It never reads or
// writes the session store: image turns must not pollute stored text
// history, and a store outage must not block image requests.
func (s *Server) handleImageChat(w http.ResponseWriter, r *http.Request, req chatRequest, language string) {
	payload, err := image.DecodePayload(req.ImageBase64)
	if err != nil {
		s.logger.Warn().Err(err).Msg("rejecting image payload")
		writeDetail(w, http.StatusBadRequest, "invalid or corrupted image payload")
		return
	}

	// The response still carries a session identifier so the client can
	// keep threading its text conversation; an unknown client gets a fresh
	// one that is never persisted.
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	text := req.Text
	if text == "" {
		text = defaultImageInstruction
	}
	prompt := instruction(language, text)

	s.logger.Info().
		Str("session_id", sessionID).
		Str("format", payload.Format).
		Msg("sending image prompt (stateless)")

	reply, err := s.generator.DescribeImage(r.Context(), payload, prompt)
	if err != nil {
		s.logger.Error().Str("session_id", sessionID).Err(err).Msg("image describe failed")
		s.writeModelError(w, err)
		return
	}
	if reply == "" {
		writeDetail(w, http.StatusInternalServerError,
			"the API did not return a valid text response")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: reply, SessionID: sessionID})
}

// handleTextChat runs the stateful text flow: resolve the session, invoke
// the model with prior history, append both turns, and commit.
func (s *Server) handleTextChat(w http.ResponseWriter, r *http.Request, req chatRequest, language string) {
	ctx := r.Context()

	sessionID, history, err := s.sessions.Resolve(ctx, req.SessionID)
	if err != nil {
		// A store failure is not a miss: starting a silently empty session
		// here would mask data loss.
		s.logger.Error().Str("session_id", req.SessionID).Err(err).Msg("session resolve failed")
		writeDetail(w, http.StatusServiceUnavailable, "could not reach the session service")
		return
	}

	prompt := instruction(language, req.Text)

	s.logger.Info().
		Str("session_id", sessionID).
		Int("history_turns", len(history)).
		Msg("sending text prompt (stateful)")

	reply, err := s.generator.GenerateText(ctx, history, prompt)
	if err != nil {
		s.logger.Error().Str("session_id", sessionID).Err(err).Msg("model call failed")
		s.writeModelError(w, err)
		return
	}
	if reply == "" {
		writeDetail(w, http.StatusInternalServerError,
			"the API did not return a valid text response")
		return
	}

	updated := history.Append(
		conversation.Turn{Role: conversation.RoleUser, Text: prompt},
		conversation.Turn{Role: conversation.RoleModel, Text: reply},
	)
	if err := s.sessions.Commit(ctx, sessionID, updated); err != nil {
		s.logger.Error().Str("session_id", sessionID).Err(err).Msg("session commit failed")
		switch {
		case errors.Is(err, persistence.ErrUnavailable):
			writeDetail(w, http.StatusServiceUnavailable, "could not reach the session service")
		default:
			writeDetail(w, http.StatusInternalServerError,
				"an error occurred while saving the conversation state")
		}
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: reply, SessionID: sessionID})
}

// writeModelError maps a model invocation failure to a response.
// Transport-level failures and timeouts are retryable, so they map to 503;
// anything else is an unexpected internal error.
func (s *Server) writeModelError(w http.ResponseWriter, err error) {
	if errors.Is(err, gemini.ErrUnavailable) {
		writeDetail(w, http.StatusServiceUnavailable, "the AI service is unavailable")
		return
	}
	writeDetail(w, http.StatusInternalServerError,
		"an unexpected internal error occurred")
}

// instruction builds the prompt sent to the model: a language directive
// followed by the user's text.
func instruction(language, text string) string {
	return fmt.Sprintf("Responda em %s. %s", language, text)
}
