// Package llm wraps an OpenAI-compatible chat completion endpoint. Pointing
// the base URL at a local model server (Ollama exposes /v1) gives the same
// contract without a hosted key.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	log "github.com/sirupsen/logrus"

	"todochat-api/domain"
)

// StatusError carries the HTTP status of a failed upstream completion call.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("completion request failed with status %d: %s", e.StatusCode, e.Message)
}

// UpstreamStatus returns the upstream HTTP status code.
func (e *StatusError) UpstreamStatus() int { return e.StatusCode }

// EmptyError reports a completion that carried no usable text.
type EmptyError struct {
	Reason         string
	ReasoningSpent int64
}

func (e *EmptyError) Error() string {
	return fmt.Sprintf("empty completion, finish reason: %s", e.Reason)
}

// FinishReason returns the upstream finish reason, "unknown" when absent.
func (e *EmptyError) FinishReason() string {
	if e.Reason == "" {
		return "unknown"
	}
	return e.Reason
}

// ReasoningTokens returns how many reasoning tokens the model spent before
// producing nothing visible.
func (e *EmptyError) ReasoningTokens() int64 { return e.ReasoningSpent }

// Client calls a chat completion endpoint with a fixed model.
type Client struct {
	oai   openai.Client
	model string
	log   *log.Logger
}

// New creates a Client. An empty baseURL targets the hosted OpenAI API.
func New(apiKey, baseURL, model string, logger *log.Logger) *Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Client{oai: openai.NewClient(opts...), model: model, log: logger}
}

// Complete sends the system prompt and conversation history and returns the
// assistant text. Empty or truncated completions surface as *EmptyError,
// upstream HTTP failures as *StatusError.
func (c *Client) Complete(ctx context.Context, system string, history []domain.ChatMessage) (string, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	msgs = append(msgs, openai.SystemMessage(system))
	for _, m := range history {
		switch m.Role {
		case "assistant":
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: msgs,
	}
	applySampling(&params, c.model)

	c.log.WithFields(log.Fields{"model": c.model, "messages": len(msgs)}).Debug("llm: sending completion request")

	completion, err := c.oai.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &StatusError{StatusCode: apiErr.StatusCode, Message: apiErr.Message}
		}
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", &EmptyError{}
	}

	choice := completion.Choices[0]
	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		return "", &EmptyError{
			Reason:         choice.FinishReason,
			ReasoningSpent: completion.Usage.CompletionTokensDetails.ReasoningTokens,
		}
	}
	return content, nil
}

// applySampling mirrors the per-model parameter quirks of the completion
// API: gpt-5/gpt-4o families reject max_tokens in favor of
// max_completion_tokens, and their nano variants need headroom for
// reasoning tokens.
func applySampling(params *openai.ChatCompletionNewParams, model string) {
	switch {
	case strings.Contains(model, "gpt-5") || strings.Contains(model, "gpt-4o"):
		if strings.Contains(model, "nano") {
			params.MaxCompletionTokens = openai.Int(2000)
		} else {
			params.MaxCompletionTokens = openai.Int(500)
			params.Temperature = openai.Float(0.7)
		}
	default:
		params.MaxTokens = openai.Int(500)
		params.Temperature = openai.Float(0.7)
	}
}
