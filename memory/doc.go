// Package memory maintains the two durable artifacts that carry context
// across sessions: a running conversation summary and a record of user
// preferences and persona traits.
//
// Update model:
//   - Artifacts are plain text, rewritten whole by a Summarizer.
//   - Updates fail open: a summarizer error or an empty result leaves the
//     stored artifact unchanged.
//   - Writes are atomic (temp file + rename) so a crash never truncates an artifact.
package memory
