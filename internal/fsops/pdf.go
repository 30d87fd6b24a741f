package fsops

import (
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// readPDF concatenates the plain text of every page. The pdf package panics
// on malformed object graphs; those come back as errors.
func readPDF(absPath string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("extract pdf text: %v", r)
		}
	}()

	f, r, err := pdf.Open(absPath)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return string(b), nil
}
