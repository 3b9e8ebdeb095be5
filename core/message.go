package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role identifies the author of a message.
type Role string

const (
	// RoleUser marks messages authored by the human (including tool results).
	RoleUser Role = "user"
	// RoleAssistant marks messages produced by the model.
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool { return r == RoleUser || r == RoleAssistant }

// Message is one turn of a conversation. The role is fixed at construction
// and the content always holds at least one block. The zero Message has
// neither; obtain messages from the constructors or JSON decoding.
type Message struct {
	role   Role
	blocks []ContentBlock
}

// NewMessage builds a message from a role and one or more content blocks.
func NewMessage(role Role, blocks ...ContentBlock) (Message, error) {
	if !role.Valid() {
		return Message{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if len(blocks) == 0 {
		return Message{}, ErrEmptyContent
	}
	content := make([]ContentBlock, len(blocks))
	copy(content, blocks)
	return Message{role: role, blocks: content}, nil
}

// NewUserText creates a user message with a single text block.
func NewUserText(text string) Message {
	return Message{role: RoleUser, blocks: []ContentBlock{TextBlock{Text: text}}}
}

// NewAssistantText creates an assistant message with a single text block.
func NewAssistantText(text string) Message {
	return Message{role: RoleAssistant, blocks: []ContentBlock{TextBlock{Text: text}}}
}

// Role returns the author role.
func (m Message) Role() Role { return m.role }

// Blocks returns a copy of the content blocks in order.
func (m Message) Blocks() []ContentBlock {
	out := make([]ContentBlock, len(m.blocks))
	copy(out, m.blocks)
	return out
}

// Text concatenates all text blocks in order.
func (m Message) Text() string {
	var sb strings.Builder
	for _, b := range m.blocks {
		if tb, ok := b.(TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}
	return sb.String()
}

// ToolUses returns the tool invocation blocks preserving their order.
func (m Message) ToolUses() []ToolUseBlock {
	var uses []ToolUseBlock
	for _, b := range m.blocks {
		if tu, ok := b.(ToolUseBlock); ok {
			uses = append(uses, tu)
		}
	}
	return uses
}

// ToolResults returns the tool result blocks preserving their order.
func (m Message) ToolResults() []ToolResultBlock {
	var results []ToolResultBlock
	for _, b := range m.blocks {
		if tr, ok := b.(ToolResultBlock); ok {
			results = append(results, tr)
		}
	}
	return results
}

// HasToolUse reports whether any block requests a tool invocation.
func (m Message) HasToolUse() bool {
	for _, b := range m.blocks {
		if _, ok := b.(ToolUseBlock); ok {
			return true
		}
	}
	return false
}

// Clone returns a copy with its own content slice.
func (m Message) Clone() Message {
	return Message{role: m.role, blocks: m.Blocks()}
}

type messageJSON struct {
	Role    Role        `json:"role"`
	Content []blockJSON `json:"content"`
}

// MarshalJSON encodes the message with tagged content blocks.
func (m Message) MarshalJSON() ([]byte, error) {
	out := messageJSON{Role: m.role, Content: make([]blockJSON, 0, len(m.blocks))}
	for _, b := range m.blocks {
		j, err := encodeBlock(b)
		if err != nil {
			return nil, err
		}
		out.Content = append(out.Content, j)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a message and enforces the role and non-empty content invariants.
func (m *Message) UnmarshalJSON(data []byte) error {
	var in messageJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	blocks := make([]ContentBlock, 0, len(in.Content))
	for _, j := range in.Content {
		b, err := decodeBlock(j)
		if err != nil {
			return err
		}
		blocks = append(blocks, b)
	}
	msg, err := NewMessage(in.Role, blocks...)
	if err != nil {
		return err
	}
	*m = msg
	return nil
}
