package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoAPIKey is returned when no key is found in the environment or key directory.
var ErrNoAPIKey = errors.New("no API key found")

// ResolveAPIKey returns the value of env, or else the contents of the first
// *.key file (in name order) in keyDir.
func ResolveAPIKey(env, keyDir string) (string, error) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		return v, nil
	}
	matches, err := filepath.Glob(filepath.Join(keyDir, "*.key"))
	if err != nil {
		return "", err
	}
	sort.Strings(matches)
	for _, m := range matches {
		b, err := os.ReadFile(m)
		if err != nil {
			return "", fmt.Errorf("read key file: %w", err)
		}
		if key := strings.TrimSpace(string(b)); key != "" {
			return key, nil
		}
	}
	return "", fmt.Errorf("%w: set %s or add a .key file to %s", ErrNoAPIKey, env, keyDir)
}
