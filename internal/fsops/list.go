package fsops

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/petasbytes/rpg-agent/internal/safety"
)

// ListFiles returns the sorted entries of a directory under the sandbox.
// Only reference files and directories are shown; directories end with "/".
// Denied entries such as .git are hidden.
func (s *Sandbox) ListFiles(relDir string) ([]string, error) {
	if relDir == "" {
		relDir = "."
	}
	absDir, err := safety.ValidateRelPath(s.root, relDir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		rel, err := filepath.Rel(s.root, filepath.Join(absDir, e.Name()))
		if err != nil || safety.Denied(rel) {
			continue
		}
		switch {
		case e.IsDir():
			names = append(names, e.Name()+"/")
		case IsSource(e.Name()):
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}
