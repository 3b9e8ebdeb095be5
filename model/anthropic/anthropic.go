// Package anthropic provides a model wrapper for the Anthropic Claude Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/logging"
	"github.com/hupe1980/agentcore/model"
)

// Options configures the Anthropic model adapter (model id, temperature, max
// tokens, API key). Request level inference settings take precedence.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
	Logger      logging.Logger
}

// Model wraps the Anthropic Messages API behind the generic model.Model interface.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// NewModel creates a new Anthropic model using the official client.
// Without an explicit APIKey the client reads ANTHROPIC_API_KEY. SDK level
// retries are disabled; callers own retry policy.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	clientOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a new Anthropic model from an existing client.
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Model{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5HaikuLatest,
		Temperature: 0.7,
		MaxTokens:   4096,
		Logger:      logging.NoOpLogger{},
	}
}

// Converse implements model.Model with one Messages.New call.
func (m *Model) Converse(ctx context.Context, req model.Request) (core.Message, error) {
	resp, err := m.client.Messages.New(ctx, m.buildParams(req))
	if err != nil {
		return core.Message{}, mapError(err)
	}

	var blocks []core.ContentBlock
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			if text := block.AsText().Text; text != "" {
				blocks = append(blocks, core.TextBlock{Text: text})
			}
		case "tool_use":
			tu := block.AsToolUse()
			blocks = append(blocks, core.ToolUseBlock{ID: tu.ID, Name: tu.Name, Input: tu.Input})
		}
	}

	if len(blocks) == 0 {
		return core.Message{}, model.ErrEmptyResponse
	}

	return core.NewMessage(core.RoleAssistant, blocks...)
}

// ConverseStream implements model.Model over the Messages streaming API.
// Only text deltas are surfaced as fragments.
func (m *Model) ConverseStream(ctx context.Context, req model.Request) (*model.Stream, error) {
	stream := m.client.Messages.NewStreaming(ctx, m.buildParams(req))
	if err := stream.Err(); err != nil {
		_ = stream.Close()
		return nil, mapError(err)
	}
	return model.NewStream(&streamSource{stream: stream}), nil
}

// Info returns metadata describing this Anthropic model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          string(m.opts.Model),
		Provider:      "anthropic",
		SupportsTools: true,
	}
}

// buildParams maps the normalized request onto MessageNewParams.
func (m *Model) buildParams(req model.Request) anthropic.MessageNewParams {
	modelID := m.opts.Model
	if req.ModelID != "" {
		modelID = anthropic.Model(req.ModelID)
	}

	maxTokens := m.opts.MaxTokens
	if req.Inference.MaxTokens > 0 {
		maxTokens = req.Inference.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     modelID,
		Messages:  buildMessages(req.Messages),
		MaxTokens: maxTokens,
	}

	if req.Inference.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Inference.Temperature)
	} else {
		params.Temperature = anthropic.Float(m.opts.Temperature)
	}

	if req.Inference.TopP != nil {
		params.TopP = anthropic.Float(*req.Inference.TopP)
	}

	if len(req.Inference.StopSequences) > 0 {
		params.StopSequences = req.Inference.StopSequences
	}

	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
	}

	if req.Guardrail != nil {
		m.opts.Logger.Warn("anthropic.guardrail.unsupported", "identifier", req.Guardrail.Identifier)
	}

	return params
}

// buildMessages converts conversation messages to Anthropic message params.
// Empty text blocks are dropped because the API rejects them.
func buildMessages(msgs []core.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))

	for _, msg := range msgs {
		var blocks []anthropic.ContentBlockParamUnion
		for _, b := range msg.Blocks() {
			switch v := b.(type) {
			case core.TextBlock:
				if v.Text != "" {
					blocks = append(blocks, anthropic.NewTextBlock(v.Text))
				}
			case core.ToolUseBlock:
				input := v.Input
				if len(input) == 0 {
					input = json.RawMessage("{}")
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(v.ID, input, v.Name))
			case core.ToolResultBlock:
				blocks = append(blocks, anthropic.NewToolResultBlock(v.ToolUseID, v.Output, v.IsError))
			}
		}

		if len(blocks) == 0 {
			continue
		}

		if msg.Role() == core.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		} else {
			out = append(out, anthropic.NewUserMessage(blocks...))
		}
	}

	return out
}

// buildTools converts tool specs to Anthropic tool params.
func buildTools(specs []model.ToolSpec) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, 0, len(specs))

	for _, spec := range specs {
		inputSchema := anthropic.ToolInputSchemaParam{}

		if spec.InputSchema != nil {
			if properties, ok := spec.InputSchema["properties"]; ok {
				inputSchema.Properties = properties
			}
			inputSchema.Required = requiredFields(spec.InputSchema["required"])
		}

		toolParam := anthropic.ToolParam{
			Name:        spec.Name,
			InputSchema: inputSchema,
		}
		if spec.Description != "" {
			toolParam.Description = anthropic.String(spec.Description)
		}

		tools = append(tools, anthropic.ToolUnionParam{OfTool: &toolParam})
	}

	return tools
}

// requiredFields accepts both []string and the []any shape produced by JSON decoding.
func requiredFields(v any) []string {
	switch req := v.(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// mapError turns SDK HTTP errors into model.TransportError.
func mapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &model.TransportError{StatusCode: apiErr.StatusCode, Err: err}
	}
	return fmt.Errorf("anthropic api error: %w", err)
}

// streamSource adapts the SDK event stream to model.StreamSource.
type streamSource struct {
	stream *ssestream.Stream[anthropic.MessageStreamEventUnion]
	cur    string
}

func (s *streamSource) Next() bool {
	for s.stream.Next() {
		ev, ok := s.stream.Current().AsAny().(anthropic.ContentBlockDeltaEvent)
		if !ok {
			continue
		}
		if delta, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
			s.cur = delta.Text
			return true
		}
	}
	s.cur = ""
	return false
}

func (s *streamSource) Fragment() string { return s.cur }

func (s *streamSource) Err() error {
	if err := s.stream.Err(); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *streamSource) Close() error { return s.stream.Close() }
