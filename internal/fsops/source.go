package fsops

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/petasbytes/rpg-agent/internal/safety"
)

// SourceExtensions are the reference file types loaded into the prompt and
// uploaded for retrieval.
var SourceExtensions = []string{".txt", ".cs", ".pdf"}

// IsSource reports whether path has a supported reference extension.
func IsSource(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SourceExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// SourceFiles walks the sandbox recursively and returns the relative,
// slash-separated paths of all reference files in lexical order. A missing
// root yields no files.
func (s *Sandbox) SourceFiles() ([]string, error) {
	var out []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.root && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if rel != "." && safety.Denied(rel) {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && IsSource(path) {
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	return out, err
}

// Abs returns the absolute path of a relative path produced by SourceFiles.
func (s *Sandbox) Abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// LoadText returns the combined text of every reference file under root, each
// headed by "### File: <relative path>" and separated by a blank line. A
// missing root yields "". Files that cannot be read are skipped with a warning.
func LoadText(root string) (string, error) {
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	sb, err := New(root)
	if err != nil {
		return "", err
	}
	files, err := sb.SourceFiles()
	if err != nil {
		return "", err
	}

	texts := make([]string, 0, len(files))
	for _, rel := range files {
		content, err := readText(sb.Abs(rel))
		if err != nil {
			slog.Warn("skipping reference file", "path", rel, "error", err)
			continue
		}
		if content == "" {
			continue
		}
		texts = append(texts, "### File: "+rel+"\n"+content)
	}
	return strings.Join(texts, "\n\n"), nil
}
