package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/petasbytes/rpg-agent/internal/telemetry"
)

// DefaultPreferenceEvery is the interaction cadence of preference updates.
const DefaultPreferenceEvery = 10

// Synchronizer keeps the remote thread a replay of the local history.
type Synchronizer interface {
	// SessionID returns the current remote thread ID ("" before the first rebuild).
	SessionID() string
	// Dirty reports whether the remote thread may no longer match the history.
	Dirty() bool
	// MarkDirty forces a rebuild before the next remote call.
	MarkDirty()
	// Rebuild discards the remote thread and replays history into a fresh one.
	Rebuild(ctx context.Context, history []Message) error
	// Append adds one message to the current remote thread.
	Append(ctx context.Context, msg Message) error
	// Reset discards the remote thread and allocates an empty one.
	Reset(ctx context.Context) error
}

// Executor drives one remote run to a terminal state and returns the reply.
type Executor interface {
	Execute(ctx context.Context, sessionID string) (string, error)
}

// MemoryUpdater refreshes the durable memory artifacts. Errors are reported
// for logging only.
type MemoryUpdater interface {
	UpdateSummary(ctx context.Context, history []Message) error
	UpdatePreferences(ctx context.Context, history []Message) error
}

// Transcript mirrors accepted exchanges to an append-only log.
type Transcript interface {
	Append(msgs ...Message) error
	Rotate() error
}

// Options configures a Store. Sync and Executor are required.
type Options struct {
	Sync       Synchronizer
	Executor   Executor
	Memory     MemoryUpdater
	Transcript Transcript
	// PreferenceEvery is the interaction cadence for preference updates
	// (DefaultPreferenceEvery when <= 0).
	PreferenceEvery int
	Logger          *slog.Logger
}

// Store is the ordered, mutable conversation history.
type Store struct {
	sync       Synchronizer
	exec       Executor
	memory     MemoryUpdater
	transcript Transcript
	every      int
	log        *slog.Logger

	history      []Message
	interactions int
}

// NewStore returns an empty Store.
func NewStore(opts Options) *Store {
	every := opts.PreferenceEvery
	if every <= 0 {
		every = DefaultPreferenceEvery
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		sync:       opts.Sync,
		exec:       opts.Executor,
		memory:     opts.Memory,
		transcript: opts.Transcript,
		every:      every,
		log:        logger,
	}
}

// History returns a copy of the conversation.
func (s *Store) History() []Message {
	return slices.Clone(s.history)
}

// Len returns the number of messages in the history.
func (s *Store) Len() int { return len(s.history) }

// Interactions returns the number of completed send/edit cycles.
func (s *Store) Interactions() int { return s.interactions }

// Send appends a user message, runs one remote turn and appends the reply.
// Blank text is rejected with ErrEmptyInput before anything changes. On a
// remote failure the user message stays in the history so it can be retried
// or edited.
func (s *Store) Send(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}
	ctx, _ = telemetry.EnsureTurnID(ctx)

	prefix := s.History()
	user := UserMessage(text)
	s.history = append(s.history, user)

	if s.sync.Dirty() {
		if err := s.sync.Rebuild(ctx, prefix); err != nil {
			return "", fmt.Errorf("rebuild thread: %w", err)
		}
	}
	if err := s.sync.Append(ctx, user); err != nil {
		return "", fmt.Errorf("append message: %w", err)
	}

	reply, err := s.complete(ctx)
	if err != nil {
		return "", err
	}
	s.accept(ctx, "send", user, reply)
	return reply, nil
}

// Remove deletes the message at index and reports whether anything changed.
// Out-of-range indexes are ignored. The remote thread is rebuilt lazily before
// the next remote call.
func (s *Store) Remove(index int) bool {
	if index < 0 || index >= len(s.history) {
		return false
	}
	s.history = slices.Delete(s.history, index, index+1)
	s.sync.MarkDirty()
	return true
}

// EditAndResend replaces the user message at index, drops everything after it,
// rebuilds the remote thread from the edited prefix and runs one remote turn.
func (s *Store) EditAndResend(ctx context.Context, index int, text string) (string, error) {
	if index < 0 || index >= len(s.history) {
		return "", fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	if role := s.history[index].Role; role != RoleUser {
		return "", &InvalidRoleError{Index: index, Role: role}
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}
	ctx, _ = telemetry.EnsureTurnID(ctx)

	s.history[index].Content = text
	s.history = s.history[:index+1]
	s.sync.MarkDirty()

	if err := s.sync.Rebuild(ctx, s.History()); err != nil {
		return "", fmt.Errorf("rebuild thread: %w", err)
	}
	reply, err := s.complete(ctx)
	if err != nil {
		return "", err
	}
	s.accept(ctx, "edit", s.history[index], reply)
	return reply, nil
}

// RegenerateLast replaces the trailing assistant reply with a fresh one. It is
// a no-op returning "" unless the history has at least two messages and the
// last one is from the assistant.
func (s *Store) RegenerateLast(ctx context.Context) (string, error) {
	n := len(s.history)
	if n < 2 || s.history[n-1].Role != RoleAssistant {
		return "", nil
	}
	ctx, _ = telemetry.EnsureTurnID(ctx)

	s.history = s.history[:n-1]
	s.sync.MarkDirty()

	if err := s.sync.Rebuild(ctx, s.History()); err != nil {
		return "", fmt.Errorf("rebuild thread: %w", err)
	}
	reply, err := s.complete(ctx)
	if err != nil {
		return "", err
	}
	s.history = append(s.history, AssistantMessage(reply))
	s.logTranscript(AssistantMessage(reply))
	telemetry.EmitExchange(ctx, "regenerate", "", reply)
	return reply, nil
}

// Clear empties the history, replaces the remote thread and starts a new
// transcript. The interaction counter and memory artifacts are kept.
func (s *Store) Clear(ctx context.Context) error {
	s.history = nil
	if s.transcript != nil {
		if err := s.transcript.Rotate(); err != nil {
			s.log.Warn("transcript rotate failed", "error", err)
		}
	}
	if err := s.sync.Reset(ctx); err != nil {
		return fmt.Errorf("reset thread: %w", err)
	}
	return nil
}

// Restore replaces the history with msgs and rebuilds the remote thread.
func (s *Store) Restore(ctx context.Context, msgs []Message) error {
	s.history = slices.Clone(msgs)
	s.sync.MarkDirty()
	if err := s.sync.Rebuild(ctx, s.History()); err != nil {
		return fmt.Errorf("rebuild thread: %w", err)
	}
	return nil
}

// ExportText renders the full history for saving. It has no side effects.
func (s *Store) ExportText() string {
	return FormatText(s.history)
}

func (s *Store) complete(ctx context.Context) (string, error) {
	reply, err := s.exec.Execute(ctx, s.sync.SessionID())
	if err != nil {
		// The run may have left partial output on the thread.
		s.sync.MarkDirty()
		return "", err
	}
	return reply, nil
}

// accept records a successful send or edit: append the reply, mirror the
// exchange, bump the interaction counter and refresh memory.
func (s *Store) accept(ctx context.Context, op string, user Message, reply string) {
	s.history = append(s.history, AssistantMessage(reply))
	s.logTranscript(user, AssistantMessage(reply))
	telemetry.EmitExchange(ctx, op, user.Content, reply)

	s.interactions++
	if s.memory == nil {
		return
	}
	history := s.History()
	if err := s.memory.UpdateSummary(ctx, history); err != nil {
		s.log.Warn("summary update skipped", "error", err, "interactions", s.interactions)
	}
	if s.interactions%s.every == 0 {
		if err := s.memory.UpdatePreferences(ctx, history); err != nil {
			s.log.Warn("preferences update skipped", "error", err, "interactions", s.interactions)
		}
	}
}

func (s *Store) logTranscript(msgs ...Message) {
	if s.transcript == nil {
		return
	}
	if err := s.transcript.Append(msgs...); err != nil {
		s.log.Warn("transcript append failed", "error", err)
	}
}
