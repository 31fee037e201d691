package flashtutor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultBackendTimeout bounds a single model call when the configuration
// does not say otherwise.
const DefaultBackendTimeout = 30 * time.Second

// DefaultBackendModel is used when OPENAI_MODEL is not set.
const DefaultBackendModel = "gpt-4o-mini"

// GenerativeBackend is the capability the generation pipeline depends on:
// given a prompt, return raw text that is supposed to contain structured
// card data. Implementations must respect ctx and may fail with a
// *BackendError. Tests inject deterministic stubs.
type GenerativeBackend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OpenAIBackend implements GenerativeBackend over the OpenAI chat
// completions API. Every call gets its own timeout, so the repair call of a
// generation run does not share a budget with the initial call.
type OpenAIBackend struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIBackend creates a backend for the given API key. Empty model or
// non-positive timeout fall back to the defaults.
func NewOpenAIBackend(apiKey, model string, timeout time.Duration) *OpenAIBackend {
	if model == "" {
		model = DefaultBackendModel
	}
	if timeout <= 0 {
		timeout = DefaultBackendTimeout
	}
	return &OpenAIBackend{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
	}
}

// Complete sends the prompt and returns the raw completion text. The card
// schema is enforced later by the validator, not here; the prompt already
// mandates JSON-only output.
func (b *OpenAIBackend) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	resp, err := b.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: b.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an expert flashcard author. You always reply with a single JSON array and nothing else.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		},
	)
	if err != nil {
		return "", classifyBackendError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &BackendError{
			Kind:  BackendKindTransport,
			Cause: fmt.Errorf("model returned no choices"),
		}
	}

	return resp.Choices[0].Message.Content, nil
}

// classifyBackendError maps transport-level failures onto the four
// BackendError kinds so nothing rawer leaks past this file.
func classifyBackendError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &BackendError{Kind: BackendKindTimeout, Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &BackendError{Kind: BackendKindTransport, Cause: err}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &BackendError{Kind: BackendKindAuth, Cause: err}
		case http.StatusTooManyRequests:
			return &BackendError{Kind: BackendKindQuota, Cause: err}
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return &BackendError{Kind: BackendKindTimeout, Cause: err}
		}
	}

	return &BackendError{Kind: BackendKindTransport, Cause: err}
}
