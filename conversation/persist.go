package conversation

import (
	"encoding/json"
	"errors"
	"os"
)

// LoadJSON reads a history previously written by SaveJSON. A missing file
// yields a nil history and no error.
func LoadJSON(path string) ([]Message, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var msgs []Message
	if err := json.Unmarshal(b, &msgs); err != nil {
		return nil, err
	}
	for i, m := range msgs {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			return nil, &InvalidRoleError{Index: i, Role: m.Role}
		}
	}
	return msgs, nil
}

// SaveJSON writes msgs as an indented JSON array.
func SaveJSON(path string, msgs []Message) error {
	if msgs == nil {
		msgs = []Message{}
	}
	b, err := json.MarshalIndent(msgs, "", " ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
