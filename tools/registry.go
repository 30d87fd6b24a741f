package tools

import "github.com/petasbytes/rpg-agent/internal/fsops"

// Registry returns the function tools offered to the assistant, bound to the
// reference sandbox.
func Registry(sb *fsops.Sandbox) []ToolDefinition {
	return []ToolDefinition{ReadReferenceDefinition(sb), ListReferenceDefinition(sb)}
}
