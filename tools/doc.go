// Package tools defines the function tools the hosted assistant may call
// while a run is in requires_action.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - Reference tools: read_reference, list_reference (non-recursive), both
//     read-only over the fsops sandbox.
package tools
