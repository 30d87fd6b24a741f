package conversation

import "strings"

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Label is the human-readable speaker name used in exports and transcripts.
func (r Role) Label() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "AI"
	default:
		return string(r)
	}
}

// Message is one chat turn. Ordering in the history is the only ordering key.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserMessage is shorthand for a user-authored message.
func UserMessage(text string) Message { return Message{Role: RoleUser, Content: text} }

// AssistantMessage is shorthand for an assistant-authored message.
func AssistantMessage(text string) Message { return Message{Role: RoleAssistant, Content: text} }

// FormatText renders msgs as "Label: content" blocks separated by a blank line.
func FormatText(msgs []Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, m.Role.Label()+": "+m.Content)
	}
	return strings.Join(parts, "\n\n")
}
