package api

import (
	"context"

	"todochat-api/domain"
)

// Store abstracts persistence for handlers.
type Store interface {
	ListTodos(ctx context.Context) ([]domain.Todo, error)
	GetTodo(ctx context.Context, id string) (domain.Todo, error)
	CreateTodo(ctx context.Context, n domain.NewTodo) (domain.Todo, error)
	UpdateTodo(ctx context.Context, id string, patch domain.TodoPatch) (domain.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
}

// Extractor classifies a chat message against the caller's todo snapshot,
// executing any recognized intent against the store as a side effect.
type Extractor interface {
	Process(ctx context.Context, message string, todos []domain.Todo) domain.Action
}

// Completer produces an assistant reply for the given conversation.
type Completer interface {
	Complete(ctx context.Context, system string, history []domain.ChatMessage) (string, error)
}

// UpstreamStatusError is implemented by completion errors that carry the
// upstream HTTP status.
type UpstreamStatusError interface {
	error
	UpstreamStatus() int
}

// EmptyCompletionError is implemented by errors reporting an empty or
// truncated completion.
type EmptyCompletionError interface {
	error
	FinishReason() string
	ReasoningTokens() int64
}
