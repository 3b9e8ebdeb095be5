package core

import (
	"encoding/json"
	"fmt"
)

// ContentBlock is one segment of a message's content. Concrete block types
// implement the unexported isBlock marker which keeps the set closed.
type ContentBlock interface{ isBlock() }

// TextBlock is a plain text segment.
type TextBlock struct {
	Text string
}

func (TextBlock) isBlock() {}

// ToolUseBlock is a tool invocation requested by the model.
type ToolUseBlock struct {
	ID    string          // Provider assigned id, echoed back by the matching ToolResultBlock
	Name  string          // Tool name
	Input json.RawMessage // JSON encoded arguments
}

func (ToolUseBlock) isBlock() {}

// ToolResultBlock carries the outcome of a ToolUseBlock back to the model.
type ToolResultBlock struct {
	ToolUseID string
	Output    string
	IsError   bool
}

func (ToolResultBlock) isBlock() {}

// blockJSON is the wire shape shared by all block variants.
type blockJSON struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Output    string          `json:"output,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

const (
	blockTypeText       = "text"
	blockTypeToolUse    = "tool_use"
	blockTypeToolResult = "tool_result"
)

func encodeBlock(b ContentBlock) (blockJSON, error) {
	switch v := b.(type) {
	case TextBlock:
		return blockJSON{Type: blockTypeText, Text: v.Text}, nil
	case ToolUseBlock:
		return blockJSON{Type: blockTypeToolUse, ID: v.ID, Name: v.Name, Input: v.Input}, nil
	case ToolResultBlock:
		return blockJSON{Type: blockTypeToolResult, ToolUseID: v.ToolUseID, Output: v.Output, IsError: v.IsError}, nil
	default:
		return blockJSON{}, &UnknownBlockError{Type: fmt.Sprintf("%T", b)}
	}
}

func decodeBlock(j blockJSON) (ContentBlock, error) {
	switch j.Type {
	case blockTypeText:
		return TextBlock{Text: j.Text}, nil
	case blockTypeToolUse:
		return ToolUseBlock{ID: j.ID, Name: j.Name, Input: j.Input}, nil
	case blockTypeToolResult:
		return ToolResultBlock{ToolUseID: j.ToolUseID, Output: j.Output, IsError: j.IsError}, nil
	default:
		return nil, &UnknownBlockError{Type: j.Type}
	}
}
