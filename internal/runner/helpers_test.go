package runner_test

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/petasbytes/rpg-agent/conversation"
	"github.com/petasbytes/rpg-agent/internal/completion"
	"github.com/petasbytes/rpg-agent/internal/telemetry"
)

// scriptedRemote returns runs from a fixed script: CreateRun yields the first
// entry and each GetRun or SubmitToolOutputs the next one.
type scriptedRemote struct {
	mu        sync.Mutex
	script    []completion.Run
	pos       int
	gets      int
	submitted [][]completion.ToolOutput
	messages  []conversation.Message

	createErr error
	getErr    error
	listErr   error
}

func (s *scriptedRemote) next() completion.Run {
	if s.pos >= len(s.script) {
		return s.script[len(s.script)-1]
	}
	r := s.script[s.pos]
	s.pos++
	return r
}

func (s *scriptedRemote) CreateRun(context.Context, string) (completion.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return completion.Run{}, s.createErr
	}
	return s.next(), nil
}

func (s *scriptedRemote) GetRun(context.Context, string, string) (completion.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.getErr != nil {
		return completion.Run{}, s.getErr
	}
	return s.next(), nil
}

func (s *scriptedRemote) SubmitToolOutputs(_ context.Context, _, _ string, outs []completion.ToolOutput) (completion.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted = append(s.submitted, outs)
	return s.next(), nil
}

func (s *scriptedRemote) ListMessages(context.Context, string, int) ([]conversation.Message, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.messages, nil
}

func run(status completion.RunStatus) completion.Run {
	return completion.Run{ID: "run_1", Status: status}
}

// chdirTemp moves the test into a fresh directory so .agent/ output is isolated.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdirForTest(t, dir)
	return dir
}

// readEventLines returns the JSONL lines written so far (none if the file is absent).
func readEventLines(t *testing.T) []string {
	t.Helper()
	f, err := os.Open(filepath.Join(telemetry.Dir, "events.jsonl"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		t.Fatalf("open events: %v", err)
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan events: %v", err)
	}
	return lines
}

// chdirForTest mirrors testing.T.Chdir (Go 1.24+): it changes the working
// directory for the duration of the test and restores it during cleanup.
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
