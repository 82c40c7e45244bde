package api

import "todochat-api/domain"

// Request bodies on every POST/PUT route are read through a limit reader.
const maxBodySize = 64 * 1024 // 64 KiB

// POST /api/chat request body. Either a single message or a full history;
// the snapshot gives the extractor and the system prompt their context.
type chatRequest struct {
	Message  string               `json:"message"`
	Messages []domain.ChatMessage `json:"messages"`
	Todos    []domain.Todo        `json:"todos"`
}

type chatAction struct {
	Type domain.ActionType `json:"type"`
	Data any               `json:"data,omitempty"`
}

// POST /api/chat response body. Action is null when the message went down
// the conversational path.
type chatResponse struct {
	Message string      `json:"message"`
	Action  *chatAction `json:"action"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Status  int    `json:"status,omitempty"`
}

type createTodoRequest struct {
	Item        string   `json:"item"`
	Quantity    *float64 `json:"quantity"`
	Description *string  `json:"description"`
	Checked     *bool    `json:"checked"`
}

type deleteTodoResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
