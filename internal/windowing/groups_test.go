package windowing_test

import (
	"testing"

	"github.com/petasbytes/rpg-agent/conversation"
	"github.com/petasbytes/rpg-agent/internal/windowing"
)

func TestGroupExchanges_PairsUserThenAssistant(t *testing.T) {
	msgs := []conversation.Message{
		User("u1"), Asst("a1"),
		User("u2"), Asst("a2"),
	}
	want := []windowing.Group{
		{Kind: windowing.GroupExchange, Start: 0, End: 2},
		{Kind: windowing.GroupExchange, Start: 2, End: 4},
	}
	if got := windowing.GroupExchanges(msgs); !groupsEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestGroupExchanges_Singletons(t *testing.T) {
	// Leading assistant (left by a deletion), two users in a row, trailing user.
	msgs := []conversation.Message{
		Asst("orphan"),
		User("u1"),
		User("u2"), Asst("a2"),
		User("pending"),
	}
	want := []windowing.Group{
		{Kind: windowing.GroupSingleton, Start: 0, End: 1},
		{Kind: windowing.GroupSingleton, Start: 1, End: 2},
		{Kind: windowing.GroupExchange, Start: 2, End: 4},
		{Kind: windowing.GroupSingleton, Start: 4, End: 5},
	}
	if got := windowing.GroupExchanges(msgs); !groupsEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestGroupExchanges_Empty(t *testing.T) {
	if got := windowing.GroupExchanges(nil); len(got) != 0 {
		t.Fatalf("expected no groups, got %+v", got)
	}
}

func TestHeuristicCounter_CountsRunesPlusOverhead(t *testing.T) {
	h := windowing.HeuristicCounter{}
	overhead := h.CountMessage(User(""))
	if overhead != 4 {
		t.Fatalf("overhead guard: got %d want 4", overhead)
	}
	// "héllo" = 5 runes, 6 bytes
	if got := h.CountMessage(User("héllo")); got != 5+overhead {
		t.Fatalf("got %d want %d", got, 5+overhead)
	}

	msgs := []conversation.Message{User("ab"), Asst("cde")}
	g := windowing.Group{Kind: windowing.GroupExchange, Start: 0, End: 2}
	if got := h.CountGroup(g, msgs); got != (2+4)+(3+4) {
		t.Fatalf("group cost: got %d", got)
	}
}
