package conversation_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/rpg-agent/conversation"
)

// fakeRemote models an append-only remote thread.
type fakeRemote struct {
	sessions   int
	id         string
	messages   []conversation.Message
	dirty      bool
	rebuilds   [][]conversation.Message
	appendErr  error
	rebuildErr error
}

func newFakeRemote() *fakeRemote { return &fakeRemote{dirty: true} }

func (f *fakeRemote) SessionID() string { return f.id }
func (f *fakeRemote) Dirty() bool       { return f.dirty }
func (f *fakeRemote) MarkDirty()        { f.dirty = true }

func (f *fakeRemote) Rebuild(_ context.Context, history []conversation.Message) error {
	if f.rebuildErr != nil {
		f.dirty = true
		return f.rebuildErr
	}
	f.sessions++
	f.id = fmt.Sprintf("thread_%d", f.sessions)
	f.messages = slices.Clone(history)
	f.rebuilds = append(f.rebuilds, slices.Clone(history))
	f.dirty = false
	return nil
}

func (f *fakeRemote) Append(_ context.Context, msg conversation.Message) error {
	if f.appendErr != nil {
		f.dirty = true
		return f.appendErr
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeRemote) Reset(context.Context) error {
	f.sessions++
	f.id = fmt.Sprintf("thread_%d", f.sessions)
	f.messages = nil
	f.dirty = false
	return nil
}

// fakeExecutor replies with "reply N" and appends it to the remote thread.
type fakeExecutor struct {
	remote *fakeRemote
	calls  int
	seen   [][]conversation.Message
	err    error
}

func (e *fakeExecutor) Execute(_ context.Context, sessionID string) (string, error) {
	e.seen = append(e.seen, slices.Clone(e.remote.messages))
	if e.err != nil {
		return "", e.err
	}
	if sessionID != e.remote.id {
		return "", fmt.Errorf("run against stale session %q (current %q)", sessionID, e.remote.id)
	}
	e.calls++
	reply := fmt.Sprintf("reply %d", e.calls)
	e.remote.messages = append(e.remote.messages, conversation.AssistantMessage(reply))
	return reply, nil
}

type fakeMemory struct {
	summaries int
	prefsAt   []int
	err       error
}

func (m *fakeMemory) UpdateSummary(context.Context, []conversation.Message) error {
	m.summaries++
	return m.err
}

func (m *fakeMemory) UpdatePreferences(context.Context, []conversation.Message) error {
	m.prefsAt = append(m.prefsAt, m.summaries)
	return m.err
}

type fakeTranscript struct {
	lines     []conversation.Message
	rotations int
}

func (t *fakeTranscript) Append(msgs ...conversation.Message) error {
	t.lines = append(t.lines, msgs...)
	return nil
}

func (t *fakeTranscript) Rotate() error {
	t.rotations++
	return nil
}

type harness struct {
	store      *conversation.Store
	remote     *fakeRemote
	exec       *fakeExecutor
	memory     *fakeMemory
	transcript *fakeTranscript
}

func newHarness(t *testing.T, every int) *harness {
	t.Helper()
	remote := newFakeRemote()
	h := &harness{
		remote:     remote,
		exec:       &fakeExecutor{remote: remote},
		memory:     &fakeMemory{},
		transcript: &fakeTranscript{},
	}
	h.store = conversation.NewStore(conversation.Options{
		Sync:            h.remote,
		Executor:        h.exec,
		Memory:          h.memory,
		Transcript:      h.transcript,
		PreferenceEvery: every,
	})
	return h
}

func msgs(pairs ...string) []conversation.Message {
	out := make([]conversation.Message, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, conversation.Message{Role: conversation.Role(pairs[i]), Content: pairs[i+1]})
	}
	return out
}

func TestSend_FirstExchange(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	reply, err := h.store.Send(ctx, "Hello")
	require.NoError(t, err)
	assert.Equal(t, "reply 1", reply)

	assert.Equal(t, msgs("user", "Hello", "assistant", "reply 1"), h.store.History())
	assert.Equal(t, 1, h.store.Interactions())
	assert.Equal(t, 1, h.memory.summaries)
	assert.Empty(t, h.memory.prefsAt)

	// Remote was created from the empty prefix, then the user message appended.
	require.Len(t, h.remote.rebuilds, 1)
	assert.Empty(t, h.remote.rebuilds[0])
	assert.Equal(t, [][]conversation.Message{msgs("user", "Hello")}, h.exec.seen)
	assert.Equal(t, msgs("user", "Hello", "assistant", "reply 1"), h.transcript.lines)
}

func TestSend_PreferenceCadence(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	for i := 1; i <= 9; i++ {
		_, err := h.store.Send(ctx, fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
	}
	assert.Empty(t, h.memory.prefsAt, "no preference update before the 10th interaction")

	_, err := h.store.Send(ctx, "msg 10")
	require.NoError(t, err)
	assert.Equal(t, []int{10}, h.memory.prefsAt)

	for i := 11; i <= 30; i++ {
		_, err := h.store.Send(ctx, fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
	}
	assert.Equal(t, []int{10, 20, 30}, h.memory.prefsAt)
	assert.Equal(t, 30, h.memory.summaries)
	assert.Equal(t, 30, h.store.Interactions())
	// Pure appends never force a rebuild after the first.
	assert.Len(t, h.remote.rebuilds, 1)
}

func TestSend_CustomCadence(t *testing.T) {
	h := newHarness(t, 3)
	for i := 0; i < 7; i++ {
		_, err := h.store.Send(context.Background(), "x")
		require.NoError(t, err)
	}
	assert.Equal(t, []int{3, 6}, h.memory.prefsAt)
}

func TestSend_BlankRejected(t *testing.T) {
	h := newHarness(t, 0)
	for _, in := range []string{"", "   ", "\n\t"} {
		_, err := h.store.Send(context.Background(), in)
		require.ErrorIs(t, err, conversation.ErrEmptyInput)
	}
	assert.Empty(t, h.store.History())
	assert.Empty(t, h.remote.rebuilds)
	assert.Zero(t, h.exec.calls)
}

func TestSend_RunFailureKeepsUserMessage(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	_, err := h.store.Send(ctx, "first")
	require.NoError(t, err)

	boom := errors.New("run failed")
	h.exec.err = boom
	_, err = h.store.Send(ctx, "second")
	require.ErrorIs(t, err, boom)

	assert.Equal(t, msgs("user", "first", "assistant", "reply 1", "user", "second"), h.store.History())
	assert.True(t, h.remote.Dirty(), "failed run must force a rebuild")
	assert.Equal(t, 1, h.store.Interactions())
	assert.Equal(t, 1, h.memory.summaries)

	// Retry rebuilds from exactly the local prefix, orphan user message included.
	h.exec.err = nil
	_, err = h.store.Send(ctx, "third")
	require.NoError(t, err)
	assert.Equal(t, msgs("user", "first", "assistant", "reply 1", "user", "second"), h.remote.rebuilds[len(h.remote.rebuilds)-1])
	assert.Equal(t, msgs("user", "first", "assistant", "reply 1", "user", "second", "user", "third"), h.exec.seen[len(h.exec.seen)-1])
}

func TestSend_AppendFailureKeepsUserMessage(t *testing.T) {
	h := newHarness(t, 0)
	h.remote.appendErr = errors.New("network down")

	_, err := h.store.Send(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, msgs("user", "hi"), h.store.History())
	assert.Zero(t, h.exec.calls)
	assert.True(t, h.remote.Dirty())
}

func TestSend_MemoryFailureIsIgnored(t *testing.T) {
	h := newHarness(t, 1)
	h.memory.err = errors.New("summarizer offline")

	reply, err := h.store.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "reply 1", reply)
	assert.Equal(t, 1, h.memory.summaries)
	assert.Equal(t, []int{1}, h.memory.prefsAt)
}

func TestEditAndResend_TruncatesAndRebuilds(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	require.NoError(t, h.store.Restore(ctx, msgs("user", "u1", "assistant", "a1", "user", "u2", "assistant", "a2")))

	reply, err := h.store.EditAndResend(ctx, 2, "u2'")
	require.NoError(t, err)
	assert.Equal(t, "reply 1", reply)

	assert.Equal(t, msgs("user", "u1", "assistant", "a1", "user", "u2'", "assistant", "reply 1"), h.store.History())
	// The run saw a remote thread of exactly the edited prefix.
	assert.Equal(t, msgs("user", "u1", "assistant", "a1", "user", "u2'"), h.exec.seen[0])
	assert.Equal(t, msgs("user", "u1", "assistant", "a1", "user", "u2'"), h.remote.rebuilds[len(h.remote.rebuilds)-1])
	assert.Equal(t, 1, h.store.Interactions())
	assert.Equal(t, 1, h.memory.summaries)
}

func TestEditAndResend_RejectsAssistantTarget(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	before := msgs("user", "u1", "assistant", "a1")
	require.NoError(t, h.store.Restore(ctx, before))

	_, err := h.store.EditAndResend(ctx, 1, "nope")
	var re *conversation.InvalidRoleError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 1, re.Index)
	assert.Equal(t, conversation.RoleAssistant, re.Role)
	assert.Equal(t, before, h.store.History())
	assert.Zero(t, h.exec.calls)
}

func TestEditAndResend_RejectsOutOfRange(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	require.NoError(t, h.store.Restore(ctx, msgs("user", "u1")))

	for _, idx := range []int{-1, 1, 5} {
		_, err := h.store.EditAndResend(ctx, idx, "x")
		require.ErrorIs(t, err, conversation.ErrIndexOutOfRange)
	}
	assert.Equal(t, msgs("user", "u1"), h.store.History())
}

func TestRegenerateLast_NoOpGuard(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	reply, err := h.store.RegenerateLast(ctx)
	require.NoError(t, err)
	assert.Empty(t, reply)

	require.NoError(t, h.store.Restore(ctx, msgs("user", "u1")))
	rebuilds := len(h.remote.rebuilds)
	reply, err = h.store.RegenerateLast(ctx)
	require.NoError(t, err)
	assert.Empty(t, reply)
	assert.Equal(t, msgs("user", "u1"), h.store.History())
	assert.Len(t, h.remote.rebuilds, rebuilds)
	assert.Zero(t, h.exec.calls)

	require.NoError(t, h.store.Restore(ctx, msgs("user", "u1", "assistant", "a1", "user", "u2")))
	reply, err = h.store.RegenerateLast(ctx)
	require.NoError(t, err)
	assert.Empty(t, reply, "last message from user is not regenerable")
}

func TestRegenerateLast_ReplacesReply(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	require.NoError(t, h.store.Restore(ctx, msgs("user", "u1", "assistant", "a1")))

	reply, err := h.store.RegenerateLast(ctx)
	require.NoError(t, err)
	assert.Equal(t, "reply 1", reply)
	assert.Equal(t, msgs("user", "u1", "assistant", "reply 1"), h.store.History())
	assert.Equal(t, msgs("user", "u1"), h.exec.seen[0])
	// Regeneration is not a send/edit cycle.
	assert.Zero(t, h.store.Interactions())
	assert.Zero(t, h.memory.summaries)
	assert.Equal(t, msgs("assistant", "reply 1"), h.transcript.lines)
}

func TestRemove_ThenSendRebuildsFromRemainingPrefix(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	require.NoError(t, h.store.Restore(ctx, msgs("user", "u1", "assistant", "a1", "user", "u2", "assistant", "a2")))

	require.True(t, h.store.Remove(0))
	assert.Equal(t, msgs("assistant", "a1", "user", "u2", "assistant", "a2"), h.store.History())
	assert.True(t, h.remote.Dirty())

	_, err := h.store.Send(ctx, "u3")
	require.NoError(t, err)
	assert.Equal(t, msgs("assistant", "a1", "user", "u2", "assistant", "a2"), h.remote.rebuilds[len(h.remote.rebuilds)-1])
	assert.Equal(t, msgs("assistant", "a1", "user", "u2", "assistant", "a2", "user", "u3"), h.exec.seen[0])
}

func TestRemove_OutOfRangeIsNoOp(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	require.NoError(t, h.store.Restore(ctx, msgs("user", "u1", "assistant", "a1")))

	assert.False(t, h.store.Remove(-1))
	assert.False(t, h.store.Remove(2))
	assert.False(t, h.remote.Dirty())
	assert.Equal(t, msgs("user", "u1", "assistant", "a1"), h.store.History())
}

func TestClear_ResetsHistoryAndSession(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	_, err := h.store.Send(ctx, "Hello")
	require.NoError(t, err)
	oldID := h.remote.SessionID()

	require.NoError(t, h.store.Clear(ctx))
	assert.Empty(t, h.store.History())
	assert.Empty(t, h.remote.messages)
	assert.NotEqual(t, oldID, h.remote.SessionID())
	assert.Equal(t, 1, h.transcript.rotations)
	assert.Equal(t, 1, h.store.Interactions(), "counter lives for the store's lifetime")

	_, err = h.store.Send(ctx, "again")
	require.NoError(t, err)
	assert.Equal(t, msgs("user", "again"), h.exec.seen[len(h.exec.seen)-1])
}

func TestExportText(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	require.NoError(t, h.store.Restore(ctx, msgs("user", "Hello", "assistant", "Hi there")))

	want := "You: Hello\n\nAI: Hi there"
	assert.Equal(t, want, h.store.ExportText())
	assert.Equal(t, want, h.store.ExportText(), "export is deterministic")
	assert.Empty(t, conversation.NewStore(conversation.Options{Sync: newFakeRemote()}).ExportText())
}

func TestHistory_ReturnsCopy(t *testing.T) {
	h := newHarness(t, 0)
	_, err := h.store.Send(context.Background(), "Hello")
	require.NoError(t, err)

	got := h.store.History()
	got[0].Content = "mutated"
	assert.Equal(t, "Hello", h.store.History()[0].Content)
}
