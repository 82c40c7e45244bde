package domain

// ChatMessage is a single turn of the conversation. Messages live only in
// the client session and are never persisted.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ActionType classifies the purpose of a user utterance.
type ActionType string

const (
	ActionCreate ActionType = "create"
	ActionUpdate ActionType = "update"
	ActionDelete ActionType = "delete"
	ActionList   ActionType = "list"
	ActionGet    ActionType = "get"
	ActionNone   ActionType = "none"
)

// Action is the result of running the intent extractor over one utterance.
// Data holds the created/updated record, the deleted reference or the list
// snapshot, depending on the type.
type Action struct {
	Type    ActionType `json:"type"`
	Data    any        `json:"data,omitempty"`
	Message string     `json:"message,omitempty"`
}

// DeletedTodo is the payload of a delete action.
type DeletedTodo struct {
	ID string `json:"id"`
}
