package fsops

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/petasbytes/rpg-agent/internal/safety"
)

// ReadFile returns the text of a reference file addressed relative to the
// sandbox root. PDFs come back as extracted plain text. Policy violations and
// non-reference files are reported as a safety.ToolError.
func (s *Sandbox) ReadFile(relPath string) (string, error) {
	absPath, err := safety.ValidateRelPath(s.root, relPath)
	if err != nil {
		return "", err
	}

	fi, err := os.Stat(absPath)
	if err != nil {
		return "", err
	}
	if fi.IsDir() {
		return "", safety.ToolError{Code: "ERR_NOT_A_FILE", Message: "path is a directory"}
	}
	if !IsSource(absPath) {
		return "", safety.ToolError{Code: "ERR_NOT_REFERENCE", Message: "only " + strings.Join(SourceExtensions, ", ") + " files can be read"}
	}
	return readText(absPath)
}

func readText(absPath string) (string, error) {
	if strings.EqualFold(filepath.Ext(absPath), ".pdf") {
		return readPDF(absPath)
	}
	b, err := os.ReadFile(absPath)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
