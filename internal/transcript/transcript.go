// Package transcript mirrors accepted exchanges to a plain-text session log.
// Each session (and each Clear) starts a new file; lines are never rewritten.
package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/petasbytes/rpg-agent/conversation"
)

// Log is an append-only transcript file.
type Log struct {
	mu   sync.Mutex
	dir  string
	f    *os.File
	path string
	now  func() time.Time
}

// Open creates dir if needed and starts a new session file in it.
func Open(dir string) (*Log, error) {
	l := &Log{dir: dir, now: time.Now}
	if err := l.Rotate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Path returns the current session file.
func (l *Log) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// Rotate closes the current file and starts a new one named
// session_<YYYYMMDD_HHMMSS>_<id>.log.
func (l *Log) Rotate() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("transcript dir: %w", err)
	}
	name := fmt.Sprintf("session_%s_%s.log", l.now().Format("20060102_150405"), uuid.NewString()[:8])
	path := filepath.Join(l.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open transcript: %w", err)
	}
	if l.f != nil {
		_ = l.f.Close()
	}
	l.f, l.path = f, path
	return nil
}

// Append writes one line per message: "<RFC3339 time> <label>: <content>".
// Newlines inside content are indented so each entry stays readable.
func (l *Log) Append(msgs ...conversation.Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return os.ErrClosed
	}

	var b strings.Builder
	ts := l.now().Format(time.RFC3339)
	for _, m := range msgs {
		content := strings.ReplaceAll(m.Content, "\n", "\n    ")
		fmt.Fprintf(&b, "%s %s: %s\n", ts, m.Role.Label(), content)
	}
	_, err := l.f.WriteString(b.String())
	return err
}

// Close closes the current file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
