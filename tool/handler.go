package tool

import (
	"context"

	"github.com/hupe1980/agentcore/core"
)

// Handler reacts to a model reply that requested one or more tools. It
// receives the reply and the conversation owned by the orchestrator, and is
// expected to append the tool results to it. A returned error aborts the
// orchestration unmodified.
type Handler interface {
	HandleToolUse(ctx context.Context, latest core.Message, conv *core.Conversation) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, latest core.Message, conv *core.Conversation) error

// HandleToolUse implements Handler.
func (f HandlerFunc) HandleToolUse(ctx context.Context, latest core.Message, conv *core.Conversation) error {
	return f(ctx, latest, conv)
}
