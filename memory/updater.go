package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/petasbytes/rpg-agent/conversation"
	"github.com/petasbytes/rpg-agent/internal/telemetry"
	"github.com/petasbytes/rpg-agent/internal/windowing"
)

// Summarizer turns a prompt into replacement artifact text.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

const (
	DefaultSummaryKey     = "conversation_summary.txt"
	DefaultPreferencesKey = "user_preferences.txt"
)

// Config names the artifacts and bounds the prompt.
type Config struct {
	SummaryKey     string
	PreferencesKey string
	// PromptBudget caps the estimated size of the conversation excerpt
	// (runes). Zero or less sends the whole history.
	PromptBudget int
}

// Updater refreshes the memory artifacts. It satisfies
// conversation.MemoryUpdater.
type Updater struct {
	store Store
	sum   Summarizer
	cfg   Config
}

func NewUpdater(store Store, sum Summarizer, cfg Config) *Updater {
	if cfg.SummaryKey == "" {
		cfg.SummaryKey = DefaultSummaryKey
	}
	if cfg.PreferencesKey == "" {
		cfg.PreferencesKey = DefaultPreferencesKey
	}
	return &Updater{store: store, sum: sum, cfg: cfg}
}

// UpdateSummary rewrites the running conversation summary.
func (u *Updater) UpdateSummary(ctx context.Context, history []conversation.Message) error {
	return u.update(ctx, "summary", u.cfg.SummaryKey, history, summaryPrompt)
}

// UpdatePreferences rewrites the preference and persona record.
func (u *Updater) UpdatePreferences(ctx context.Context, history []conversation.Message) error {
	return u.update(ctx, "preferences", u.cfg.PreferencesKey, history, preferencesPrompt)
}

// Summary returns the stored summary, or "" when none exists.
func (u *Updater) Summary(ctx context.Context) (string, error) {
	return u.read(ctx, u.cfg.SummaryKey)
}

// Preferences returns the stored preference record, or "" when none exists.
func (u *Updater) Preferences(ctx context.Context) (string, error) {
	return u.read(ctx, u.cfg.PreferencesKey)
}

// Reset deletes both artifacts.
func (u *Updater) Reset(ctx context.Context) error {
	return errors.Join(
		u.store.Delete(ctx, u.cfg.SummaryKey),
		u.store.Delete(ctx, u.cfg.PreferencesKey),
	)
}

func (u *Updater) read(ctx context.Context, key string) (string, error) {
	b, err := u.store.Load(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (u *Updater) update(ctx context.Context, kind, key string, history []conversation.Message, prompt func(existing, convo string) string) error {
	start := time.Now()
	turnID, _ := telemetry.TurnIDFromContext(ctx)
	skip := func(reason string, err error) error {
		telemetry.Emit("memory_skipped", map[string]any{
			"turn_id": turnID,
			"kind":    kind,
			"reason":  reason,
		})
		return fmt.Errorf("%s update: %w", kind, err)
	}

	existing, err := u.read(ctx, key)
	if err != nil {
		return skip("load", err)
	}

	out, err := u.sum.Summarize(ctx, prompt(existing, render(u.excerpt(history))))
	if err != nil {
		return skip("summarizer", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return skip("empty", ErrEmptyResult)
	}

	if err := u.store.Save(ctx, key, []byte(out)); err != nil {
		return skip("save", err)
	}
	telemetry.Emit("memory_updated", map[string]any{
		"turn_id":     turnID,
		"kind":        kind,
		"changed":     out != existing,
		"size":        len(out),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

// excerpt applies the prompt budget, falling back to the newest exchange
// when even that exceeds it.
func (u *Updater) excerpt(history []conversation.Message) []conversation.Message {
	if u.cfg.PromptBudget <= 0 {
		return history
	}
	window, stats := windowing.PrepareWindow(history, u.cfg.PromptBudget, windowing.HeuristicCounter{})
	if stats.OverBudgetNewest {
		return windowing.Newest(history)
	}
	return window
}

func render(history []conversation.Message) string {
	lines := make([]string, 0, len(history))
	for _, m := range history {
		lines = append(lines, string(m.Role)+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

func summaryPrompt(existing, convo string) string {
	return "You maintain a short running summary of a conversation for future context. " +
		"Existing summary:\n" + existing + "\n\n" +
		"Conversation so far:\n" + convo + "\n\n" +
		"Provide an updated summary. If the existing summary is still accurate, " +
		"return it unchanged."
}

func preferencesPrompt(existing, convo string) string {
	return "Extract user preferences, AI personality traits, likes and dislikes from " +
		"the conversation. Existing record:\n" + existing + "\n\n" +
		"Conversation:\n" + convo + "\n\n" +
		"Return an updated record. If nothing new was learned, repeat the " +
		"existing record unchanged."
}
