package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/petasbytes/rpg-agent/conversation"
)

// chatStore is the part of conversation.Store the REPL drives.
type chatStore interface {
	Send(ctx context.Context, text string) (string, error)
	Remove(index int) bool
	EditAndResend(ctx context.Context, index int, text string) (string, error)
	RegenerateLast(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
	Restore(ctx context.Context, msgs []conversation.Message) error
	ExportText() string
	History() []conversation.Message
}

type repl struct {
	store chatStore
	out   io.Writer
}

func newREPL(store chatStore, out io.Writer) *repl {
	return &repl{store: store, out: out}
}

const helpText = `Commands:
  /history          show the conversation with message numbers
  /delete N         remove message N
  /edit N text      replace user message N and resend from there
  /regen            regenerate the last reply
  /clear            start over (memory is kept)
  /export PATH      save the conversation (.json or text)
  /import PATH      load a conversation saved with /export as .json
  /quit             leave`

// handle processes one input line and reports whether the REPL should exit.
// Message numbers shown to the user are 1-based.
func (r *repl) handle(ctx context.Context, line string) (quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		reply, err := r.store.Send(ctx, line)
		r.reply(reply, err)
		return false
	}

	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	switch cmd {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprintln(r.out, helpText)
	case "/history":
		r.history()
	case "/delete":
		n, err := parseIndex(rest)
		if err != nil {
			r.fail(err)
			return false
		}
		if !r.store.Remove(n) {
			r.fail(fmt.Errorf("no message %d", n+1))
			return false
		}
		fmt.Fprintf(r.out, "Deleted message %d.\n", n+1)
	case "/edit":
		num, text, _ := strings.Cut(rest, " ")
		n, err := parseIndex(num)
		if err != nil {
			r.fail(err)
			return false
		}
		reply, err := r.store.EditAndResend(ctx, n, strings.TrimSpace(text))
		r.reply(reply, err)
	case "/regen":
		reply, err := r.store.RegenerateLast(ctx)
		if err == nil && reply == "" {
			fmt.Fprintln(r.out, "Nothing to regenerate.")
			return false
		}
		r.reply(reply, err)
	case "/clear":
		if err := r.store.Clear(ctx); err != nil {
			r.fail(err)
			return false
		}
		fmt.Fprintln(r.out, "Conversation cleared.")
	case "/export":
		if err := r.export(rest); err != nil {
			r.fail(err)
			return false
		}
		fmt.Fprintf(r.out, "Saved to %s.\n", rest)
	case "/import":
		if err := r.importJSON(ctx, rest); err != nil {
			r.fail(err)
			return false
		}
		fmt.Fprintf(r.out, "Loaded %d messages.\n", len(r.store.History()))
	default:
		r.fail(fmt.Errorf("unknown command %s (try /help)", cmd))
	}
	return false
}

func (r *repl) history() {
	msgs := r.store.History()
	if len(msgs) == 0 {
		fmt.Fprintln(r.out, "(empty)")
		return
	}
	for i, m := range msgs {
		fmt.Fprintf(r.out, "%d. %s: %s\n", i+1, m.Role.Label(), m.Content)
	}
}

func (r *repl) export(path string) error {
	if path == "" {
		return errors.New("usage: /export PATH")
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return conversation.SaveJSON(path, r.store.History())
	}
	return os.WriteFile(path, []byte(r.store.ExportText()), 0o644)
}

func (r *repl) importJSON(ctx context.Context, path string) error {
	if path == "" {
		return errors.New("usage: /import PATH")
	}
	msgs, err := conversation.LoadJSON(path)
	if err != nil {
		return err
	}
	if msgs == nil {
		return fmt.Errorf("%s: no such file", path)
	}
	return r.store.Restore(ctx, msgs)
}

func (r *repl) reply(reply string, err error) {
	if err != nil {
		r.fail(err)
		return
	}
	fmt.Fprintf(r.out, "%s%s\n", replyPrefix, reply)
}

func (r *repl) fail(err error) {
	fmt.Fprintf(r.out, "error: %v\n", err)
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid message number %q", s)
	}
	return n - 1, nil
}
