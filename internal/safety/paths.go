// Package safety confines reference-file access to a read-only sandbox root.
package safety

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ToolError is a machine-readable error body for surfacing back to the agent as JSON.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error returns a compact, single-line JSON string to keep tool_result payloads small.
func (e ToolError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// InitSandboxRoot resolves an absolute, symlink-free sandbox root. An empty
// root means the current directory.
func InitSandboxRoot(root string) (string, error) {
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		root = cwd
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("abs(root): %w", err)
	}

	// If EvalSymlinks fails (e.g., non-existent), keep the absolute path as-is.
	if r, err := filepath.EvalSymlinks(abs); err == nil {
		abs = r
	}
	return abs, nil
}

// ValidateRelPath resolves relPath against absRoot and returns the absolute
// path when it stays inside the sandbox and outside the denied directories.
// Violations are returned as a ToolError.
func ValidateRelPath(absRoot, relPath string) (string, error) {
	if filepath.IsAbs(relPath) {
		return "", ToolError{Code: "ERR_PATH_OUTSIDE_SANDBOX", Message: "absolute paths are not allowed"}
	}
	candidate := filepath.Join(absRoot, filepath.Clean(relPath))

	// Resolve symlinks on the target, or on its parent when the target does
	// not exist yet, so a linked directory cannot point outside the root.
	if resolved, err := filepath.EvalSymlinks(candidate); err == nil {
		candidate = resolved
	} else if parent, err := filepath.EvalSymlinks(filepath.Dir(candidate)); err == nil {
		candidate = filepath.Join(parent, filepath.Base(candidate))
	}

	rel, err := filepath.Rel(absRoot, candidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", ToolError{Code: "ERR_PATH_OUTSIDE_SANDBOX", Message: "requested path resolves outside the sandbox root"}
	}

	if Denied(rel) {
		return "", ToolError{Code: "ERR_DENIED_READ", Message: "reads under .git/ or .agent/ are not allowed"}
	}

	return candidate, nil
}

// Denied reports whether a root-relative path falls under .git/ or .agent/.
func Denied(rel string) bool {
	relClean := filepath.ToSlash(rel)
	for _, dir := range []string{".git", ".agent"} {
		if relClean == dir || strings.HasPrefix(relClean, dir+"/") {
			return true
		}
	}
	return false
}
