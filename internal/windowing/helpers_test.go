package windowing_test

import (
	"github.com/petasbytes/rpg-agent/conversation"
	"github.com/petasbytes/rpg-agent/internal/windowing"
)

// User message constructor
func User(text string) conversation.Message { return conversation.UserMessage(text) }

// Assistant message constructor
func Asst(text string) conversation.Message { return conversation.AssistantMessage(text) }

// groupsEqual is a small utility used by grouping tests.
func groupsEqual(got, want []windowing.Group) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i].Kind != want[i].Kind || got[i].Start != want[i].Start || got[i].End != want[i].End {
			return false
		}
	}
	return true
}
