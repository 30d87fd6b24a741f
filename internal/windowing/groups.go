// Package windowing selects the newest whole exchanges of a conversation that
// fit an estimated size budget. The memory summarizer uses it to keep its
// prompt bounded on long sessions.
package windowing

import (
	"context"
	"log/slog"
	"os"

	"github.com/petasbytes/rpg-agent/conversation"
)

// GroupKind denotes the atomic unit type when preparing a window.
type GroupKind int

const (
	GroupSingleton GroupKind = iota
	GroupExchange
)

// Group describes a contiguous span of messages [Start, End) in the original slice.
type Group struct {
	Kind  GroupKind
	Start int // inclusive index into msgs
	End   int // exclusive index into msgs
}

// GroupExchanges groups messages into atomic units. A user message directly
// followed by an assistant message forms an exchange; anything else (a user
// message awaiting its reply, an assistant message left behind by a
// deletion) is a singleton.
func GroupExchanges(msgs []conversation.Message) []Group {
	groups := make([]Group, 0, len(msgs))
	for i := 0; i < len(msgs); {
		if msgs[i].Role == conversation.RoleUser && i+1 < len(msgs) && msgs[i+1].Role == conversation.RoleAssistant {
			groups = append(groups, Group{Kind: GroupExchange, Start: i, End: i + 2})
			i += 2
			continue
		}
		groups = append(groups, Group{Kind: GroupSingleton, Start: i, End: i + 1})
		i++
	}
	return groups
}

// verbose raises windowing logs from debug to info when RPG_VERBOSE_WINDOW_LOGS=1.
var verbose = os.Getenv("RPG_VERBOSE_WINDOW_LOGS") == "1"

func vlog(msg string, args ...any) {
	level := slog.LevelDebug
	if verbose {
		level = slog.LevelInfo
	}
	slog.Default().Log(context.Background(), level, "windowing: "+msg, args...)
}
