package testutil

import (
	"encoding/json"
	"fmt"

	"github.com/hupe1980/agentcore/core"
)

// MessageBuilder provides a fluent helper for constructing messages in tests.
// Example:
//
//	msg := NewMessageBuilder().Assistant().Text("checking").ToolUse("t1", "weather", `{"city":"Berlin"}`).Build()
//
// The role defaults to assistant.
type MessageBuilder struct {
	role   core.Role
	blocks []core.ContentBlock
}

// NewMessageBuilder creates a builder for an assistant message.
func NewMessageBuilder() *MessageBuilder { return &MessageBuilder{role: core.RoleAssistant} }

// User switches the role to user (chainable).
func (b *MessageBuilder) User() *MessageBuilder { b.role = core.RoleUser; return b }

// Assistant switches the role to assistant (chainable).
func (b *MessageBuilder) Assistant() *MessageBuilder { b.role = core.RoleAssistant; return b }

// Text appends a text block (chainable).
func (b *MessageBuilder) Text(t string) *MessageBuilder {
	b.blocks = append(b.blocks, core.TextBlock{Text: t})
	return b
}

// ToolUse appends a tool use block with a raw JSON input (chainable).
func (b *MessageBuilder) ToolUse(id, name, input string) *MessageBuilder {
	b.blocks = append(b.blocks, core.ToolUseBlock{ID: id, Name: name, Input: json.RawMessage(input)})
	return b
}

// ToolResult appends a tool result block (chainable).
func (b *MessageBuilder) ToolResult(id, output string, isError bool) *MessageBuilder {
	b.blocks = append(b.blocks, core.ToolResultBlock{ToolUseID: id, Output: output, IsError: isError})
	return b
}

// Build returns the message. It panics when no block was added.
func (b *MessageBuilder) Build() core.Message {
	msg, err := core.NewMessage(b.role, b.blocks...)
	if err != nil {
		panic(fmt.Sprintf("testutil: %v", err))
	}
	return msg
}

// ToolUseReply is an assistant message with a single tool use.
func ToolUseReply(id, name, input string) core.Message {
	return NewMessageBuilder().ToolUse(id, name, input).Build()
}

// ToolUseReplies returns n assistant messages that each request tool name.
func ToolUseReplies(n int, name string) []core.Message {
	out := make([]core.Message, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, ToolUseReply(fmt.Sprintf("tu_%d", i+1), name, `{}`))
	}
	return out
}
