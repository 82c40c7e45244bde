// Package intent classifies user utterances into todo actions by running
// ordered regular-expression templates over the raw message and the caller's
// current todo snapshot.
package intent

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"todochat-api/domain"
)

// Store is the mutation surface the extractor needs. Recognized intents
// mutate the store as a side effect of extraction.
type Store interface {
	CreateTodo(ctx context.Context, t domain.NewTodo) (domain.Todo, error)
	UpdateTodo(ctx context.Context, id string, patch domain.TodoPatch) (domain.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
}

// Extractor resolves utterances against a snapshot and executes recognized
// intents. It never returns an error: store failures inside a recognized
// intent are downgraded to a "none" action carrying an explanation so the
// conversational flow continues.
type Extractor struct {
	store Store
	log   *log.Logger
}

// NewExtractor creates an Extractor backed by the given store.
func NewExtractor(store Store, logger *log.Logger) *Extractor {
	if store == nil {
		panic("intent.NewExtractor: store is nil")
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Extractor{store: store, log: logger}
}

// Process classifies one utterance. Intents are tried in fixed priority
// order: create, update, delete, list, get, none. A message matching several
// keyword sets is resolved by this order, not by confidence.
func (e *Extractor) Process(ctx context.Context, message string, todos []domain.Todo) domain.Action {
	lower := strings.ToLower(strings.TrimSpace(message))
	e.log.WithFields(log.Fields{"todos": len(todos)}).Debug("intent: processing message")

	if createKeyword.MatchString(lower) && todoKeyword.MatchString(lower) {
		return e.create(ctx, message)
	}
	if updateKeyword.MatchString(lower) && todoKeyword.MatchString(lower) {
		return e.update(ctx, lower, message, todos)
	}
	if deleteKeyword.MatchString(lower) && todoKeyword.MatchString(lower) {
		return e.delete(ctx, lower, message, todos)
	}
	if matchesAny(listPatterns, lower) {
		return listAction(todos)
	}
	if m := getPattern.FindStringSubmatch(lower); m != nil {
		if t, ok := findByID(todos, m[1]); ok {
			return domain.Action{
				Type:    domain.ActionGet,
				Data:    t,
				Message: fmt.Sprintf("Todo encontrado: %q (Quantidade: %s%s)", t.Item, domain.FormatQuantity(t.Quantity), descriptionSuffix(t.Description)),
			}
		}
	}
	return domain.Action{Type: domain.ActionNone}
}

func (e *Extractor) create(ctx context.Context, message string) domain.Action {
	quantity := 1.0
	if m := quantityPattern.FindStringSubmatch(message); m != nil {
		quantity = parseNumber(firstGroup(m))
	}
	description := ""
	if m := descriptionPattern.FindStringSubmatch(message); m != nil {
		description = strings.TrimSpace(firstGroup(m))
	}

	clean := message
	for _, re := range stripPatterns {
		clean = re.ReplaceAllString(clean, "")
	}
	clean = strings.TrimSpace(clean)

	item := ""
	for _, re := range createItemPatterns {
		if item != "" && utf8.RuneCountInString(item) >= 2 {
			break
		}
		if m := re.FindStringSubmatch(clean); m != nil {
			item = strings.TrimSpace(m[1])
		}
	}
	item = strings.TrimSpace(leadingPreposition.ReplaceAllString(item, ""))

	if utf8.RuneCountInString(item) < 2 {
		return domain.Action{
			Type:    domain.ActionNone,
			Message: `Preciso do nome do item para criar um todo. Por exemplo: "Crie um todo para comprar leite" ou "Adicione um todo: Comprar leite"`,
		}
	}

	created, err := e.store.CreateTodo(ctx, domain.NewTodo{Item: item, Quantity: quantity, Description: description})
	if err != nil {
		e.log.WithFields(log.Fields{"item": item, "error": err.Error()}).Error("intent: create failed")
		return domain.Action{Type: domain.ActionNone, Message: "Erro ao criar todo: " + err.Error()}
	}
	e.log.WithFields(log.Fields{"id": created.ID, "item": created.Item}).Debug("intent: todo created")
	return domain.Action{
		Type:    domain.ActionCreate,
		Data:    created,
		Message: fmt.Sprintf("✅ Todo criado: %q (Quantidade: %s%s)", created.Item, domain.FormatQuantity(created.Quantity), descriptionSuffix(created.Description)),
	}
}

func (e *Extractor) update(ctx context.Context, lower, message string, todos []domain.Todo) domain.Action {
	target, ok := resolveTarget(lower, message, todos, updateTargetPatterns)
	if !ok {
		return domain.Action{
			Type:    domain.ActionNone,
			Message: "Não encontrei o todo para atualizar. " + snapshotHint(todos),
		}
	}

	var patch domain.TodoPatch
	for _, re := range updateQuantityPatterns {
		if m := re.FindStringSubmatch(message); m != nil {
			q := parseNumber(m[1])
			patch.Quantity = &q
			break
		}
	}
	if m := updateDescriptionPattern.FindStringSubmatch(message); m != nil {
		d := strings.TrimSpace(m[1])
		patch.Description = &d
	}
	if m := updateItemPattern.FindStringSubmatch(message); m != nil {
		it := strings.TrimSpace(m[1])
		patch.Item = &it
	}

	if patch.IsZero() {
		return domain.Action{
			Type:    domain.ActionNone,
			Message: `Preciso saber o que atualizar. Exemplo: "Atualize o todo de comprar leite para quantidade 5" ou "Altere o todo comprar leite com descrição: leite integral"`,
		}
	}

	updated, err := e.store.UpdateTodo(ctx, target.ID, patch)
	if err != nil {
		e.log.WithFields(log.Fields{"id": target.ID, "error": err.Error()}).Error("intent: update failed")
		return domain.Action{Type: domain.ActionNone, Message: "Erro ao atualizar todo: " + err.Error()}
	}
	return domain.Action{
		Type:    domain.ActionUpdate,
		Data:    updated,
		Message: fmt.Sprintf("✅ Todo atualizado: %q (Quantidade: %s%s)", updated.Item, domain.FormatQuantity(updated.Quantity), descriptionSuffix(updated.Description)),
	}
}

func (e *Extractor) delete(ctx context.Context, lower, message string, todos []domain.Todo) domain.Action {
	target, ok := resolveTarget(lower, message, todos, deleteTargetPatterns)
	if !ok {
		return domain.Action{
			Type:    domain.ActionNone,
			Message: "Não encontrei o todo para deletar. " + snapshotHint(todos),
		}
	}

	if err := e.store.DeleteTodo(ctx, target.ID); err != nil {
		e.log.WithFields(log.Fields{"id": target.ID, "error": err.Error()}).Error("intent: delete failed")
		return domain.Action{Type: domain.ActionNone, Message: "Erro ao deletar todo: " + err.Error()}
	}
	return domain.Action{
		Type:    domain.ActionDelete,
		Data:    domain.DeletedTodo{ID: target.ID},
		Message: fmt.Sprintf("✅ Todo deletado: %q", target.Item),
	}
}

// resolveTarget finds the todo an update/delete refers to: an explicit id
// reference first, then the ordered name templates. The captured fragment is
// stripped of a leading preposition and matched by case-insensitive
// substring containment; the first todo that contains it wins.
func resolveTarget(lower, message string, todos []domain.Todo, patterns []*regexp.Regexp) (domain.Todo, bool) {
	if m := idPattern.FindStringSubmatch(lower); m != nil {
		return findByID(todos, m[1])
	}
	for _, re := range patterns {
		m := re.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		term := strings.ToLower(strings.TrimSpace(leadingPreposition.ReplaceAllString(strings.TrimSpace(m[1]), "")))
		if term == "" {
			continue
		}
		for _, t := range todos {
			if strings.Contains(strings.ToLower(t.Item), term) {
				return t, true
			}
		}
	}
	return domain.Todo{}, false
}

func listAction(todos []domain.Todo) domain.Action {
	if len(todos) == 0 {
		return domain.Action{
			Type:    domain.ActionList,
			Data:    []domain.Todo{},
			Message: "Você não tem todos ainda. Que tal criar um?",
		}
	}
	var b strings.Builder
	for i, t := range todos {
		fmt.Fprintf(&b, "%d. %s (Qty: %s", i+1, t.Item, domain.FormatQuantity(t.Quantity))
		if t.Description != "" {
			b.WriteString(", " + t.Description)
		}
		b.WriteString(")")
		if i < len(todos)-1 {
			b.WriteString("\n")
		}
	}
	unit := "todos"
	if len(todos) == 1 {
		unit = "todo"
	}
	return domain.Action{
		Type:    domain.ActionList,
		Data:    todos,
		Message: fmt.Sprintf("Você tem %d %s:\n\n%s", len(todos), unit, b.String()),
	}
}

// snapshotHint lists up to three current item names so the user can restate
// the target.
func snapshotHint(todos []domain.Todo) string {
	names := make([]string, 0, 3)
	for i, t := range todos {
		if i == 3 {
			break
		}
		names = append(names, t.Item)
	}
	suffix := ""
	if len(todos) > 3 {
		suffix = "..."
	}
	return fmt.Sprintf("Você tem %d todos: %s%s", len(todos), strings.Join(names, ", "), suffix)
}

func findByID(todos []domain.Todo, id string) (domain.Todo, bool) {
	for _, t := range todos {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Todo{}, false
}

func descriptionSuffix(description string) string {
	if description == "" {
		return ""
	}
	return ", Descrição: " + description
}

func firstGroup(m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

func parseNumber(s string) float64 {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 1
	}
	return n
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
