package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/petasbytes/rpg-agent/conversation"
	"github.com/petasbytes/rpg-agent/internal/completion"
	"github.com/petasbytes/rpg-agent/internal/config"
	"github.com/petasbytes/rpg-agent/internal/fsops"
	"github.com/petasbytes/rpg-agent/internal/instructions"
	"github.com/petasbytes/rpg-agent/internal/provider"
	"github.com/petasbytes/rpg-agent/internal/runner"
	"github.com/petasbytes/rpg-agent/internal/thread"
	"github.com/petasbytes/rpg-agent/internal/transcript"
	"github.com/petasbytes/rpg-agent/memory"
	"github.com/petasbytes/rpg-agent/tools"
)

const assistantName = "RPG Narrator"

// session owns every remote and local resource of one chat.
type session struct {
	store      *conversation.Store
	remote     *completion.OpenAI
	sync       *thread.Synchronizer
	transcript *transcript.Log
	fileIDs    []string
}

// newMemory builds the artifact updater with the configured summarizer.
func newMemory(cfg *config.Config, openaiKey string) (*memory.Updater, error) {
	var sum memory.Summarizer
	switch cfg.Summarizer {
	case config.SummarizerAnthropic:
		sum = &completion.AnthropicSummarizer{
			Client: provider.NewAnthropicClient(""),
			Model:  anthropic.Model(cfg.AnthropicModel),
		}
	case config.SummarizerOpenAI:
		sum = &completion.OpenAISummarizer{
			Client: provider.NewOpenAIClient(openaiKey),
			Model:  cfg.SummaryModel,
		}
	default:
		return nil, fmt.Errorf("unknown summarizer %q", cfg.Summarizer)
	}
	return memory.NewUpdater(memory.NewFileStore(cfg.DataDir), sum, memory.Config{
		SummaryKey:     cfg.SummaryFile,
		PreferencesKey: cfg.PreferencesFile,
		PromptBudget:   cfg.SummaryPromptBudget,
	}), nil
}

// openSession creates the hosted assistant and wires the conversation store.
func openSession(ctx context.Context, cfg *config.Config, out io.Writer) (*session, error) {
	apiKey, err := config.ResolveAPIKey("OPENAI_API_KEY", cfg.KeyDir)
	if err != nil {
		return nil, err
	}
	mem, err := newMemory(cfg, apiKey)
	if err != nil {
		return nil, err
	}
	summary, err := mem.Summary(ctx)
	if err != nil {
		slog.Warn("summary unreadable", "error", err)
	}
	prefs, err := mem.Preferences(ctx)
	if err != nil {
		slog.Warn("preferences unreadable", "error", err)
	}

	character := config.LoadCharacter(cfg.CharacterDir)
	reference, err := fsops.LoadText(cfg.SourceDir)
	if err != nil {
		slog.Warn("reference material unreadable", "dir", cfg.SourceDir, "error", err)
	}
	sb, err := fsops.New(cfg.SourceDir)
	if err != nil {
		return nil, err
	}
	toolDefs := tools.Registry(sb)

	remote := completion.NewOpenAI(provider.NewOpenAIClient(apiKey))
	s := &session{remote: remote}

	degraded := false
	if cfg.FileSearchEnabled() {
		s.fileIDs, degraded = uploadReference(ctx, remote, sb)
	}

	_, retrievalDegraded, err := remote.CreateAssistant(ctx, completion.AssistantSpec{
		Name:  assistantName,
		Model: cfg.Model,
		Instructions: instructions.Build(instructions.Parts{
			Instructions: character.Instructions,
			Rating:       character.Rating,
			Summary:      summary,
			Preferences:  prefs,
			Reference:    reference,
		}),
		Tools:   toolDefs,
		FileIDs: s.fileIDs,
	})
	if err != nil {
		s.cleanup()
		return nil, err
	}
	if degraded || retrievalDegraded {
		fmt.Fprintln(out, "warning: reference retrieval is unavailable; continuing with the reference text in the instructions")
	}

	s.sync = thread.New(remote, slog.Default())
	r := runner.New(remote, toolDefs)
	r.Interval = cfg.PollInterval
	r.MaxPolls = cfg.MaxPolls

	s.transcript, err = transcript.Open(cfg.TranscriptPath())
	if err != nil {
		slog.Warn("transcript disabled", "error", err)
	}
	opts := conversation.Options{
		Sync:            s.sync,
		Executor:        r,
		Memory:          mem,
		PreferenceEvery: cfg.PreferenceEvery,
	}
	if s.transcript != nil {
		opts.Transcript = s.transcript
	}
	s.store = conversation.NewStore(opts)
	return s, nil
}

// uploadReference uploads the reference files for retrieval. Any failure
// drops retrieval for the session and reports degraded.
func uploadReference(ctx context.Context, remote *completion.OpenAI, sb *fsops.Sandbox) (ids []string, degraded bool) {
	files, err := sb.SourceFiles()
	if err != nil {
		slog.Warn("reference scan failed", "error", err)
		return nil, true
	}
	if len(files) == 0 {
		return nil, false
	}
	paths := make([]string, 0, len(files))
	for _, rel := range files {
		paths = append(paths, sb.Abs(rel))
	}
	ids, err = remote.UploadFiles(ctx, paths)
	if err != nil {
		slog.Warn("reference upload failed", "error", err, "uploaded", len(ids))
		if derr := remote.DeleteFiles(ctx, ids); derr != nil {
			slog.Warn("reference cleanup failed", "error", derr)
		}
		return nil, true
	}
	slog.Info("reference uploaded", "files", len(ids))
	return ids, false
}

// cleanup removes the remote thread, assistant and files. It uses its own
// deadline since the chat context is usually cancelled by now.
func (s *session) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if s.sync != nil {
		s.sync.Close(ctx)
	}
	if err := s.remote.DeleteAssistant(ctx); err != nil {
		slog.Warn("delete assistant failed", "error", err)
	}
	if err := s.remote.DeleteFiles(ctx, s.fileIDs); err != nil {
		slog.Warn("delete reference files failed", "error", err)
	}
	if s.transcript != nil {
		_ = s.transcript.Close()
	}
}
