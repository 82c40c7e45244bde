package intent

import "regexp"

// The extractor is an ordered list of (pattern, field-extractor) attempts per
// intent, evaluated in fixed priority: create > update > delete > list > get >
// none. Verb alternations include both the Portuguese infinitive and the
// imperative, so "Crie um todo" classifies the same as "Criar um todo".

const (
	createVerbs = `criar|crie|adicionar|adicione|fazer|faça|create|add|make`
	updateVerbs = `atualizar|atualize|alterar|altere|modificar|modifique|update|change`
	deleteVerbs = `deletar|delete|remover|remova|remove`
)

var (
	createKeyword = regexp.MustCompile(`(?i)(?:` + createVerbs + `|new)`)
	updateKeyword = regexp.MustCompile(`(?i)(?:` + updateVerbs + `|modify|edit)`)
	deleteKeyword = regexp.MustCompile(`(?i)(?:` + deleteVerbs + `)`)
	todoKeyword   = regexp.MustCompile(`(?i)todo`)
)

// Quantity and description are extracted first and stripped from the
// candidate text before the item templates run.
var (
	quantityPattern    = regexp.MustCompile(`(?i)(?:com\s+)?quantidade:?\s*(\d+(?:\.\d+)?)|quantity:?\s*(\d+(?:\.\d+)?)`)
	descriptionPattern = regexp.MustCompile(`(?i)descrição:?\s*(.+?)(?:\s+quantidade|\s+quantity|$)|description:?\s*(.+?)(?:\s+quantity|$)`)

	stripPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:com\s+)?quantidade:?\s*\d+(?:\.\d+)?`),
		regexp.MustCompile(`(?i)quantity:?\s*\d+(?:\.\d+)?`),
		regexp.MustCompile(`(?i)descrição:?.+?(?:\s+quantidade|\s+quantity|$)`),
		regexp.MustCompile(`(?i)description:?.+?(?:\s+quantity|$)`),
	}

	leadingPreposition = regexp.MustCompile(`(?i)^(?:para|for|de|of|a|an|o)\s+`)
)

// Item name templates for create, in decreasing specificity. The first
// template whose trimmed capture survives the preposition strip with two or
// more characters wins.
var createItemPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:` + createVerbs + `).*todo.*(?:para|for|:)\s+(.+)`),
	regexp.MustCompile(`(?i)(?:` + createVerbs + `).*um?\s*todo.*(?:para|for|:)\s+(.+)`),
	regexp.MustCompile(`(?i)todo.*(?:para|for|:)\s+(.+)`),
	regexp.MustCompile(`(?i)(?:` + createVerbs + `).*todo.*(?:de|of)\s+(.+)`),
	regexp.MustCompile(`(?i)(?:` + createVerbs + `).*todo\s+(.+)`),
	regexp.MustCompile(`(?i)todo\s+(.+)`),
}

// Explicit identifier reference, tried before any name matching.
var idPattern = regexp.MustCompile(`(?i)(?:id|com\s+id)\s+([a-f0-9-]+)`)

// Target name templates for update. The captured fragment is matched by
// case-insensitive substring containment against the snapshot; the first
// todo that contains it wins, with no ranking or disambiguation.
// The scan up to the separator is lazy so the first "de"/"para" after "todo"
// wins; a greedy scan would latch onto the "de" inside a trailing
// "quantidade" and capture the number as the target name.
var updateTargetPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)todo.*?(?:de|para|for|:)\s+(.+?)(?:\s+para|\s+com|\s+quantity|\s+quantidade|\s+com\s+quantidade|$)`),
	regexp.MustCompile(`(?i)todo\s+(.+?)(?:\s+para|\s+com|\s+quantity|\s+quantidade|$)`),
	regexp.MustCompile(`(?i)(?:` + updateVerbs + `).*?todo.*?(?:de|para|for|:)\s+(.+?)(?:\s+para|\s+com|\s+quantity|\s+quantidade|$)`),
	regexp.MustCompile(`(?i)(?:` + updateVerbs + `)\s+(.+?)(?:\s+para|\s+com|\s+quantity|\s+quantidade|$)`),
	regexp.MustCompile(`(?i)(?:` + updateVerbs + `).*todo\s+(.+?)(?:\s+para|\s+com|\s+quantity|\s+quantidade|$)`),
	regexp.MustCompile(`(?i)o\s+todo\s+(.+?)(?:\s+para|\s+com|\s+quantity|\s+quantidade|$)`),
}

// Field templates for update, tried in order; the first numeric match sets
// the quantity. Decimals are accepted.
var updateQuantityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:quantity|quantidade|qtd):?\s*(\d+(?:\.\d+)?)`),
	regexp.MustCompile(`(?i)(?:para|to|com)\s+(\d+(?:\.\d+)?)\s*(?:unidades?|units?)?`),
	regexp.MustCompile(`(?i)quantidade\s+(\d+(?:\.\d+)?)`),
	regexp.MustCompile(`(?i)qtd\s+(\d+(?:\.\d+)?)`),
}

var (
	updateDescriptionPattern = regexp.MustCompile(`(?i)(?:description|descrição|desc):?\s*(.+?)(?:\s+quantity|\s+quantidade|$)`)
	updateItemPattern        = regexp.MustCompile(`(?i)(?:item|nome|name):?\s*(.+?)(?:\s+quantity|\s+description|\s+quantidade|\s+descrição|$)`)
)

// Target name templates for delete. No field extraction follows.
var deleteTargetPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)todo.*?(?:de|para|for|:)\s+(.+?)(?:\s+para|\s+com|$)`),
	regexp.MustCompile(`(?i)todo\s+(.+?)(?:\s+para|\s+com|$)`),
	regexp.MustCompile(`(?i)(?:` + deleteVerbs + `).*?todo.*?(?:de|para|for|:)\s+(.+)`),
	regexp.MustCompile(`(?i)(?:` + deleteVerbs + `)\s+(.+)`),
	regexp.MustCompile(`(?i)(?:` + deleteVerbs + `)\s+o\s+todo\s+(.+)`),
	regexp.MustCompile(`(?i)o\s+todo\s+(.+?)(?:\s+para|\s+com|$)`),
	regexp.MustCompile(`(?i)(?:` + deleteVerbs + `).*todo\s+(.+)`),
}

var listPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:list|show|get|display|fetch|liste|mostre|obter|exibir).*?(?:all|my|the|todos|meus|os)?.*?todo`),
	regexp.MustCompile(`(?i)^(?:quais|quantos).*todo`),
}

// getPattern captures a trailing identifier so "show todo <id>" resolves the
// full id rather than its last character.
var getPattern = regexp.MustCompile(`(?i)(?:get|show|find|fetch|obter|mostrar|mostre|encontrar).*?todo.*?(?:with\s+id\s+|com\s+id\s+)?([a-f0-9-]+)\s*$`)
