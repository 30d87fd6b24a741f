package telemetry_test

import (
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"
	"testing"

	"github.com/petasbytes/rpg-agent/internal/telemetry"
)

// Run TestProbe in a clean env so startup-only telemetry config is deterministic.
// Builds env with PATH + GO_WANT_HELPER_PROCESS, then applies explicit overrides.
func runWithEnv(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(os.Args[0], append([]string{"-test.run=TestProbe"}, args...)...)
	// Avoid setting empty RPG_* vars; empty still counts as "set" for LookupEnv.
	base := []string{"GO_WANT_HELPER_PROCESS=1"}
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "PATH=") {
			base = append(base, kv)
			break
		}
	}
	for k, v := range env {
		base = append(base, k+"="+v)
	}
	cmd.Env = base
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestStartupConfig_Matrix(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"baseline_off", map[string]string{}, "observe=false"},
		{"observe_on", map[string]string{"RPG_OBSERVE_JSON": "1"}, "observe=true"},
		{"observe_explicit_off", map[string]string{"RPG_OBSERVE_JSON": "0"}, "observe=false"},
		{"observe_garbage", map[string]string{"RPG_OBSERVE_JSON": "yes"}, "observe=false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runWithEnv(t, tt.env)
			if err != nil {
				t.Fatalf("subprocess error: %v\n%s", err, got)
			}
			if !containsLine(got, tt.want) {
				t.Fatalf("want line:\n%s\ngot output:\n%s", tt.want, got)
			}
		})
	}
}

// TestProbe prints the startup config for the parent process to assert on.
func TestProbe(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	fmt.Printf("observe=%v\n", telemetry.ObserveEnabled())
}

// containsLine reports whether output has a line exactly equal to want.
func containsLine(output, want string) bool {
	return slices.Contains(strings.Split(output, "\n"), want)
}
