package core

import "github.com/google/uuid"

// NewID returns a random UUID string used to correlate log lines and spans
// belonging to one request.
func NewID() string { return uuid.NewString() }
