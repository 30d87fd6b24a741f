// Package thread reconciles the local conversation with the hosted,
// append-only thread. The remote API has no edit or delete primitive, so any
// retroactive change is handled by discarding the thread and replaying the
// local history into a fresh one.
package thread

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/petasbytes/rpg-agent/conversation"
	"github.com/petasbytes/rpg-agent/internal/telemetry"
)

// ErrNoSession is returned by Append before any thread has been created.
var ErrNoSession = errors.New("no remote thread")

// Remote is the subset of the completion service used for thread upkeep.
type Remote interface {
	CreateSession(ctx context.Context) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error
	AppendMessage(ctx context.Context, sessionID string, msg conversation.Message) error
}

// Synchronizer owns the current remote thread ID. It starts dirty, so the
// first remote call builds a thread.
type Synchronizer struct {
	remote Remote
	log    *slog.Logger

	id    string
	dirty bool
}

// New returns a Synchronizer with no remote thread yet.
func New(remote Remote, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{remote: remote, log: logger, dirty: true}
}

// SessionID returns the current remote thread ID.
func (s *Synchronizer) SessionID() string { return s.id }

// Dirty reports whether the remote thread may differ from the local history.
func (s *Synchronizer) Dirty() bool { return s.dirty }

// MarkDirty forces the next caller to rebuild.
func (s *Synchronizer) MarkDirty() { s.dirty = true }

// Rebuild discards the current thread (best-effort) and replays history, in
// order, into a new one. On error the synchronizer stays dirty.
func (s *Synchronizer) Rebuild(ctx context.Context, history []conversation.Message) error {
	start := time.Now()
	s.dirty = true
	s.discard(ctx)

	id, err := s.remote.CreateSession(ctx)
	if err != nil {
		return fmt.Errorf("create thread: %w", err)
	}
	s.id = id

	for i, m := range history {
		if err := s.remote.AppendMessage(ctx, id, m); err != nil {
			return fmt.Errorf("replay message %d: %w", i, err)
		}
	}
	s.dirty = false

	turnID, _ := telemetry.TurnIDFromContext(ctx)
	telemetry.Emit("thread_rebuilt", map[string]any{
		"turn_id":     turnID,
		"session_id":  id,
		"messages":    len(history),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

// Append adds msg to the current thread. The caller must rebuild first when
// Dirty reports true.
func (s *Synchronizer) Append(ctx context.Context, msg conversation.Message) error {
	if s.id == "" {
		return ErrNoSession
	}
	if err := s.remote.AppendMessage(ctx, s.id, msg); err != nil {
		s.dirty = true
		return err
	}
	return nil
}

// Reset discards the current thread and creates an empty one.
func (s *Synchronizer) Reset(ctx context.Context) error {
	s.dirty = true
	s.discard(ctx)

	id, err := s.remote.CreateSession(ctx)
	if err != nil {
		return fmt.Errorf("create thread: %w", err)
	}
	s.id = id
	s.dirty = false

	telemetry.Emit("thread_reset", map[string]any{"session_id": id})
	return nil
}

// Close deletes the current thread, if any.
func (s *Synchronizer) Close(ctx context.Context) {
	s.discard(ctx)
	s.dirty = true
}

func (s *Synchronizer) discard(ctx context.Context) {
	if s.id == "" {
		return
	}
	old := s.id
	s.id = ""
	// An orphaned thread is harmless; it is never referenced again.
	if err := s.remote.DeleteSession(ctx, old); err != nil {
		s.log.Warn("delete thread failed", "session_id", old, "error", err)
	}
}
