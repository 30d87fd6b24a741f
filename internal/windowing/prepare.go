package windowing

import "github.com/petasbytes/rpg-agent/conversation"

// Stats describes a prepared window. Total counts included groups only;
// OverBudgetNewest is set when the newest group alone does not fit.
type Stats struct {
	Total            int
	Budget           int
	IncludedGroups   int
	SkippedGroups    int
	OverBudgetNewest bool
}

// PrepareWindow returns the newest suffix of msgs made of whole exchanges whose
// cost stays within budget. Older exchanges are dropped first and the scan
// stops at the first exchange that does not fit, so the window is contiguous.
// A budget <= 0 or a newest exchange over budget yields an empty window.
func PrepareWindow(msgs []conversation.Message, budget int, c TokenCounter) ([]conversation.Message, Stats) {
	stats := Stats{Budget: budget}
	if len(msgs) == 0 {
		return nil, stats
	}
	groups := GroupExchanges(msgs)
	stats.SkippedGroups = len(groups)

	start := len(msgs)
	for gi := len(groups) - 1; gi >= 0; gi-- {
		cost := c.CountGroup(groups[gi], msgs)
		if stats.Total+cost > budget {
			break
		}
		stats.Total += cost
		stats.IncludedGroups++
		start = groups[gi].Start
	}
	stats.SkippedGroups -= stats.IncludedGroups

	if stats.IncludedGroups == 0 {
		stats.OverBudgetNewest = true
		vlog("newest exchange over budget", "budget", budget, "groups", len(groups))
		return nil, stats
	}
	vlog("window prepared", "budget", budget, "total", stats.Total,
		"groups_in", stats.IncludedGroups, "groups_skip", stats.SkippedGroups)
	return msgs[start:], stats
}

// Newest returns the newest exchange of msgs, the fallback when even that
// exchange exceeds the budget.
func Newest(msgs []conversation.Message) []conversation.Message {
	groups := GroupExchanges(msgs)
	if len(groups) == 0 {
		return nil
	}
	return msgs[groups[len(groups)-1].Start:]
}
