package testutil

import (
	"context"
	"sync"

	"github.com/hupe1980/agentcore/core"
)

// History builds alternating user / assistant text messages, starting with
// the user.
//
//	history := History("hi", "hello, how can I help?", "what's the weather?")
func History(turns ...string) []core.Message {
	out := make([]core.Message, 0, len(turns))
	for i, t := range turns {
		if i%2 == 0 {
			out = append(out, core.NewUserText(t))
		} else {
			out = append(out, core.NewAssistantText(t))
		}
	}
	return out
}

// RecordingHandler is a tool handler that answers every tool use with a
// fixed output and records the replies it was given.
type RecordingHandler struct {
	Output string
	Err    error

	mu      sync.Mutex
	replies []core.Message
}

// HandleToolUse appends one user message with a result per tool use, or
// returns Err when set.
func (h *RecordingHandler) HandleToolUse(_ context.Context, latest core.Message, conv *core.Conversation) error {
	h.mu.Lock()
	h.replies = append(h.replies, latest)
	h.mu.Unlock()

	if h.Err != nil {
		return h.Err
	}

	b := NewMessageBuilder().User()
	for _, tu := range latest.ToolUses() {
		b.ToolResult(tu.ID, h.Output, false)
	}
	conv.Append(b.Build())
	return nil
}

// Calls returns how many tool-bearing replies were handled.
func (h *RecordingHandler) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.replies)
}

// Replies returns the handled replies.
func (h *RecordingHandler) Replies() []core.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]core.Message, len(h.replies))
	copy(out, h.replies)
	return out
}
