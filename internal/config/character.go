package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
)

// Character is the persona the assistant plays, read from
// <character_dir>/config.json.
type Character struct {
	Instructions string `json:"instructions"`
	Rating       string `json:"rating"`
}

// LoadCharacter reads the character definition. A missing or malformed file
// yields an empty Character.
func LoadCharacter(dir string) Character {
	path := filepath.Join(dir, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("character config unreadable", "path", path, "error", err)
		}
		return Character{}
	}
	var c Character
	if err := json.Unmarshal(data, &c); err != nil {
		slog.Warn("character config malformed", "path", path, "error", err)
		return Character{}
	}
	return c
}
