package conversation

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when the submitted text is blank after trimming.
	ErrEmptyInput = errors.New("empty input")
	// ErrIndexOutOfRange is returned by EditAndResend for an index outside the history.
	ErrIndexOutOfRange = errors.New("message index out of range")
)

// InvalidRoleError is returned when an edit targets a message that is not user-authored.
type InvalidRoleError struct {
	Index int
	Role  Role
}

func (e *InvalidRoleError) Error() string {
	return fmt.Sprintf("message %d has role %q; only user messages can be edited", e.Index, e.Role)
}
