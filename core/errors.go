package core

import (
	"errors"
	"fmt"
)

// ErrEmptyContent is returned when a message is constructed without content blocks.
var ErrEmptyContent = errors.New("message content must not be empty")

// ErrInvalidRole is returned for roles other than user and assistant.
var ErrInvalidRole = errors.New("invalid message role")

// UnknownBlockError reports a content block variant that cannot be encoded or decoded.
type UnknownBlockError struct {
	Type string
}

func (e *UnknownBlockError) Error() string {
	return fmt.Sprintf("unknown content block type %q", e.Type)
}
