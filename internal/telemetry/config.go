package telemetry

import (
	"os"
)

var observeEnabled bool

func init() {
	// Read once at process start. Mid-run environment changes have no effect
	// except the explicit "1" override honoured by ObserveEnabled.
	observeEnabled = os.Getenv("RPG_OBSERVE_JSON") == "1"
}

// ObserveEnabled reports whether JSONL emission is enabled.
func ObserveEnabled() bool {
	// Preserve startup-evaluated default, but allow tests to enable mid-run via env override.
	if os.Getenv("RPG_OBSERVE_JSON") == "1" {
		return true
	}
	return observeEnabled
}
