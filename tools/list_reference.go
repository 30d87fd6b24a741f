package tools

import (
	"encoding/json"

	"github.com/petasbytes/rpg-agent/internal/fsops"
)

type ListReferenceInput struct {
	Path     string `json:"path,omitempty" jsonschema_description:"Optional directory relative to the reference directory (defaults to its root)."`
	Page     int    `json:"page,omitempty" jsonschema_description:"1-based page number (default 1)."`
	PageSize int    `json:"page_size,omitempty" jsonschema_description:"Page size (default 200)."`
}

// defaultListPageSize is the fallback page size when page_size <= 0.
const defaultListPageSize = 200

// ListReferenceDefinition returns the list_reference tool bound to sb.
func ListReferenceDefinition(sb *fsops.Sandbox) ToolDefinition {
	return ToolDefinition{
		Name:        "list_reference",
		Description: "List the reference files and subdirectories of a directory in the reference material (non-recursive, sorted). Directories end with '/'.",
		InputSchema: ListReferenceInputSchema,
		Function: func(input json.RawMessage) (string, error) {
			return ListReference(sb, input)
		},
	}
}

var ListReferenceInputSchema = GenerateSchema[ListReferenceInput]()

// ListReference returns one page of a reference directory listing as a JSON
// array. page defaults to 1 and page_size to 200; a page past the end is "[]".
func ListReference(sb *fsops.Sandbox, input json.RawMessage) (string, error) {
	var in ListReferenceInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", err
	}
	page := max(in.Page, 1)
	pageSize := in.PageSize
	if pageSize <= 0 {
		pageSize = defaultListPageSize
	}

	names, err := sb.ListFiles(in.Path)
	if err != nil {
		return "", err
	}

	// Compare page numbers rather than offsets so huge page or page_size
	// values cannot overflow.
	if len(names) == 0 || page-1 > (len(names)-1)/pageSize {
		return "[]", nil
	}
	start := (page - 1) * pageSize
	end := start + min(pageSize, len(names)-start)

	b, err := json.Marshal(names[start:end])
	if err != nil {
		return "", err
	}
	return string(b), nil
}
