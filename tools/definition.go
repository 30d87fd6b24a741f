package tools

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// ToolDefinition describes a function tool offered to the hosted assistant.
type ToolDefinition struct {
	Name        string
	Description string
	// InputSchema is a JSON Schema object for the function arguments.
	InputSchema map[string]any
	Function    func(input json.RawMessage) (string, error)
}

// GenerateSchema derives a closed JSON Schema object from T.
func GenerateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)

	b, err := json.Marshal(schema)
	if err != nil {
		panic(err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		panic(err)
	}
	delete(out, "$schema")
	delete(out, "$id")
	return out
}
