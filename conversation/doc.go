// Package conversation owns the local, mutable chat history and keeps the
// hosted assistant thread in step with it.
//
// Invariants:
//   - History is the single source of truth; the remote thread is a replay of it.
//   - Any mutation other than a pure append (remove, edit, regenerate) marks the
//     remote thread stale, and it is rebuilt before the next remote call.
//   - Memory updates are fail-open: their errors are logged, never returned.
//
// A Store is not safe for concurrent use; callers serialize operations.
package conversation
