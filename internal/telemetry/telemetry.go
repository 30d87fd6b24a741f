// Package telemetry records run, thread and memory events as JSON lines and
// mirrors them to the process logger.
package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Dir is the directory (relative to the working directory) holding events.jsonl.
const Dir = ".agent"

// Emit writes a single JSON line to .agent/events.jsonl when RPG_OBSERVE_JSON=1.
// It augments fields with RFC3339Nano time and the event name. Every event is
// also logged at debug level, whether or not the JSONL sink is enabled.
func Emit(name string, fields map[string]any) {
	logEvent(name, fields)

	if !ObserveEnabled() {
		return
	}

	// Make a shallow copy so callers' maps aren't mutated.
	m := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		m[k] = v
	}
	m["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	m["event"] = name

	b, err := json.Marshal(m)
	if err != nil {
		slog.Warn("telemetry: marshal", "event", name, "error", err)
		return
	}

	if err := os.MkdirAll(Dir, 0o755); err != nil {
		slog.Warn("telemetry: mkdir", "dir", Dir, "error", err)
		return
	}

	path := filepath.Join(Dir, "events.jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.Warn("telemetry: open", "path", path, "error", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		slog.Warn("telemetry: write", "path", path, "error", err)
	}
}

func logEvent(name string, fields map[string]any) {
	logger := slog.Default()
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	attrs := make([]slog.Attr, 0, len(fields))
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	logger.LogAttrs(context.Background(), slog.LevelDebug, name, attrs...)
}
