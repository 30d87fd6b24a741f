// Package instructions assembles the hosted assistant's system instructions
// from the world description, the character, the memory artifacts and the
// reference material.
package instructions

import "strings"

// DefaultWorld describes the game world when no other description is given.
const DefaultWorld = "You find yourself in a sprawling realm full of adventure and danger. " +
	"Chat with the AI to explore and interact with this world."

// Parts are the inputs to Build. Empty parts are left out.
type Parts struct {
	World        string
	Instructions string
	Rating       string
	Summary      string
	Preferences  string
	Reference    string
}

// Build joins the non-empty parts into titled sections separated by blank lines.
func Build(p Parts) string {
	world := p.World
	if world == "" {
		world = DefaultWorld
	}
	sections := []string{world}
	add := func(title, body string) {
		body = strings.TrimSpace(body)
		if body == "" {
			return
		}
		sections = append(sections, "## "+title+"\n"+body)
	}
	add("Character", p.Instructions)
	if r := strings.TrimSpace(p.Rating); r != "" {
		sections = append(sections, "## Content rating\nKeep every response within a "+r+" rating.")
	}
	add("Conversation summary", p.Summary)
	add("User preferences", p.Preferences)
	add("Reference material", p.Reference)
	return strings.Join(sections, "\n\n")
}
