// Package gemini wraps the Gemini generative-language SDK behind the two
// operations tagarela needs: a stateful text exchange seeded with prior
// conversation turns, and a stateless one-shot image description.
package gemini

import (
	"context"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"tagarela/internal/conversation"
	"tagarela/internal/image"
)

const (
	// DefaultModel is the Gemini model used when none is configured.
	DefaultModel = "gemini-1.5-flash-latest"

	// callTimeout bounds every model invocation. A model call that exceeds
	// it surfaces as ErrUnavailable rather than hanging the request.
	callTimeout = 60 * time.Second
)

// ErrUnavailable indicates the Gemini API could not be reached or rejected
// the call at the transport level.
var ErrUnavailable = errors.New("gemini: model API unavailable")

// Client invokes the Gemini API. It is a shared stateless handle: history
// is passed explicitly on every call, so a single Client serves all
// concurrent requests.
type Client struct {
	client *genai.Client
	model  string
	logger zerolog.Logger
}

// NewClient creates a Client authenticated with the given API key.
// If model is empty, DefaultModel is used.
func NewClient(ctx context.Context, apiKey, model string, logger zerolog.Logger) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}

	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, errors.Wrap(err, "create gemini client")
	}

	return &Client{
		client: c,
		model:  model,
		logger: logger,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Close releases the underlying API connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// GenerateText sends a prompt with prior conversation turns as context and
// returns the model's text. A fresh chat session is built from the plain
// history on every call; no SDK state survives between requests.
//
// An empty return with a nil error means the model produced no usable text
// (refused or filtered); the caller decides how to surface that.
func (c *Client) GenerateText(ctx context.Context, history conversation.History, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	model := c.client.GenerativeModel(c.model)
	chat := model.StartChat()
	chat.History = toContents(history)

	resp, err := chat.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", errors.Wrapf(ErrUnavailable, "send message: %v", err)
	}

	return c.responseText(resp), nil
}

// DescribeImage sends an image plus instruction as a one-shot prompt with no
// conversation context.
func (c *Client) DescribeImage(ctx context.Context, img *image.Payload, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	model := c.client.GenerativeModel(c.model)

	resp, err := model.GenerateContent(ctx,
		genai.ImageData(img.Format, img.Data),
		genai.Text(prompt),
	)
	if err != nil {
		return "", errors.Wrapf(ErrUnavailable, "generate content: %v", err)
	}

	return c.responseText(resp), nil
}

// responseText concatenates the text parts of the first candidate.
// Logs the prompt feedback when the model returned nothing, since that is
// the only clue to why a prompt was refused or filtered.
func (c *Client) responseText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		break // first candidate only
	}

	text := sb.String()
	if text == "" {
		c.logger.Warn().
			Interface("prompt_feedback", resp.PromptFeedback).
			Msg("model returned no text")
	}
	return text
}

// toContents converts a plain history into the SDK's chat history form.
func toContents(history conversation.History) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		contents = append(contents, &genai.Content{
			Role:  turn.Role,
			Parts: []genai.Part{genai.Text(turn.Text)},
		})
	}
	return contents
}
