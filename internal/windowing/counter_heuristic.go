package windowing

import (
	"unicode/utf8"

	"github.com/petasbytes/rpg-agent/conversation"
)

// TokenCounter estimates the prompt cost of messages or groups.
type TokenCounter interface {
	CountMessage(m conversation.Message) int
	CountGroup(g Group, all []conversation.Message) int
}

// HeuristicCounter counts content runes plus a fixed per-message overhead for
// the "role: " prefix and line break.
type HeuristicCounter struct{}

// Fixed per-message overhead for deterministic counts; changing this requires updating the guard test.
const messageOverhead = 4

func (HeuristicCounter) CountMessage(m conversation.Message) int {
	return utf8.RuneCountInString(m.Content) + messageOverhead
}

func (h HeuristicCounter) CountGroup(g Group, all []conversation.Message) int {
	total := 0
	for i := g.Start; i < g.End && i < len(all); i++ {
		total += h.CountMessage(all[i])
	}
	return total
}
