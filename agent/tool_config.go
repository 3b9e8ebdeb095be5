package agent

import (
	"github.com/hupe1980/agentcore/model"
	"github.com/hupe1980/agentcore/tool"
)

// ToolConfig enables the tool loop for an LLMAgent.
type ToolConfig struct {
	// Tools are advertised to the model with every request.
	Tools []model.ToolSpec
	// Handler receives every tool-bearing reply.
	Handler tool.Handler
	// MaxRecursions bounds the loop (default 20).
	MaxRecursions int
}

// NewToolConfig advertises every tool registered with exec and uses exec as
// the handler.
func NewToolConfig(exec *tool.Executor, maxRecursions int) *ToolConfig {
	return &ToolConfig{
		Tools:         exec.Specs(),
		Handler:       exec,
		MaxRecursions: maxRecursions,
	}
}
