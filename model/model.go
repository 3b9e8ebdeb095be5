package model

import (
	"context"

	"github.com/hupe1980/agentcore/core"
)

// InferenceConfig carries sampling parameters. Nil pointers and zero values
// mean "use the provider default".
type InferenceConfig struct {
	MaxTokens     int64    `json:"max_tokens,omitempty" yaml:"max_tokens"`
	Temperature   *float64 `json:"temperature,omitempty" yaml:"temperature"`
	TopP          *float64 `json:"top_p,omitempty" yaml:"top_p"`
	StopSequences []string `json:"stop_sequences,omitempty" yaml:"stop_sequences"`
}

// GuardrailConfig references a provider side guardrail policy.
type GuardrailConfig struct {
	Identifier string `json:"identifier" yaml:"identifier"`
	Version    string `json:"version" yaml:"version"`
}

// ToolSpec declaratively exposes a callable tool to the model.
// InputSchema is a JSON Schema object.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// Request is the fully populated provider request: model id, the complete
// conversation, the system prompt and inference parameters.
type Request struct {
	ModelID   string           `json:"model_id,omitempty"` // Empty selects the adapter default
	Messages  []core.Message   `json:"messages"`
	System    string           `json:"system,omitempty"`
	Inference InferenceConfig  `json:"inference"`
	Guardrail *GuardrailConfig `json:"guardrail,omitempty"`
	Tools     []ToolSpec       `json:"tools,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", ...
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the transport contract agents drive.
type Model interface {
	// Converse issues exactly one call and returns the assistant message.
	// It fails with ErrEmptyResponse when the provider returns no usable output.
	Converse(ctx context.Context, req Request) (core.Message, error)

	// ConverseStream opens one streaming call. The caller must drain or Close
	// the returned stream.
	ConverseStream(ctx context.Context, req Request) (*Stream, error)

	// Info returns information about the model implementation.
	Info() Info
}

// Float is a convenience for populating InferenceConfig pointer fields.
func Float(f float64) *float64 { return &f }
