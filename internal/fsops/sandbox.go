// Package fsops reads the reference material (lore, scripts, rulebooks) that
// grounds the assistant. All access goes through a Sandbox rooted at the
// configured source directory and is read-only.
package fsops

import (
	"github.com/petasbytes/rpg-agent/internal/safety"
)

// Sandbox confines reads to a single root directory.
type Sandbox struct {
	root string
}

// New resolves root and returns a Sandbox over it. The directory need not
// exist; reads then fail with the usual not-exist errors.
func New(root string) (*Sandbox, error) {
	abs, err := safety.InitSandboxRoot(root)
	if err != nil {
		return nil, err
	}
	return &Sandbox{root: abs}, nil
}

// Root returns the absolute sandbox root.
func (s *Sandbox) Root() string { return s.root }
