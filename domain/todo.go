package domain

import (
	"errors"
	"strconv"
	"time"
)

// ErrNotFound is returned by the store when no todo matches the given id.
var ErrNotFound = errors.New("todo not found")

// Todo represents a single list item in the read model.
type Todo struct {
	ID          string    `json:"id"`
	Item        string    `json:"item"`
	Quantity    float64   `json:"quantity"`
	Description string    `json:"description"`
	Checked     bool      `json:"checked"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewTodo carries the fields of a todo about to be inserted. The store
// assigns the id and creation timestamp.
type NewTodo struct {
	Item        string  `json:"item"`
	Quantity    float64 `json:"quantity"`
	Description string  `json:"description"`
	Checked     bool    `json:"checked"`
}

// TodoPatch is a partial update; only non-nil fields are applied.
type TodoPatch struct {
	Item        *string  `json:"item"`
	Quantity    *float64 `json:"quantity"`
	Description *string  `json:"description"`
	Checked     *bool    `json:"checked"`
}

// IsZero reports whether the patch carries no fields at all.
func (p TodoPatch) IsZero() bool {
	return p.Item == nil && p.Quantity == nil && p.Description == nil && p.Checked == nil
}

// Apply returns a copy of t with the patch fields applied.
func (p TodoPatch) Apply(t Todo) Todo {
	if p.Item != nil {
		t.Item = *p.Item
	}
	if p.Quantity != nil {
		t.Quantity = *p.Quantity
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Checked != nil {
		t.Checked = *p.Checked
	}
	return t
}

// FormatQuantity renders a quantity the way it appears in user-facing
// messages: "5" for whole numbers, "2.5" for fractional ones.
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
