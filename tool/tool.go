// Package tool implements the tool calling side of an agent: tool
// descriptors with schema validated arguments, the Handler boundary the
// orchestrator hands tool-bearing replies to, and a default Executor that
// runs registered tools and feeds their results back into the conversation.
package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentcore/internal/util"
)

// Tool is a capability the model can invoke.
//
// Implementations should:
//   - Provide a unique, descriptive name (snake_case recommended)
//   - Describe when to use the tool in Description, it is shown to the model
//   - Return a JSON schema from Parameters
//   - Be safe for concurrent use
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description for the model.
	Description() string

	// Parameters returns a JSON schema describing the expected input.
	Parameters() map[string]any

	// Call executes the tool with arguments decoded from the model's input.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// ValidationError reports arguments that do not match a tool's schema.
type ValidationError = util.ValidationError

// Error codes used by ToolError.
const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeExecution   = "EXECUTION_ERROR"
	CodeUnknownTool = "UNKNOWN_TOOL"
	CodeBadInput    = "INVALID_INPUT"
	CodePanic       = "PANIC"
)

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
