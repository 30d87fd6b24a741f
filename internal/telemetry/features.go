package telemetry

import (
	"context"

	"github.com/petasbytes/rpg-agent/internal/metrics"
)

// EmitExchange records local text features for one accepted exchange. op names
// the store operation that produced it (send, edit, regenerate). user is empty
// for regenerate.
func EmitExchange(ctx context.Context, op, user, reply string) {
	turnID, _ := TurnIDFromContext(ctx)
	fields := map[string]any{
		"turn_id":          turnID,
		"op":               op,
		"features_version": "2",
		"assistant":        metrics.CountFeatures(reply),
		"total":            metrics.Sum(user, reply),
	}
	if user != "" {
		fields["user"] = metrics.CountFeatures(user)
	}
	Emit("exchange", fields)
}
