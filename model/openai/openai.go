// Package openai provides an implementation of model.Model using the OpenAI
// Chat Completions API, including streaming and function calling. It maps the
// normalized conversation onto chat messages: tool results become tool
// messages and assistant tool uses become tool calls.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/logging"
	"github.com/hupe1980/agentcore/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
)

// Options configure the OpenAI model adapter.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string
	Logger              logging.Logger
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel creates a new OpenAI model using the official client. SDK retries
// are disabled.
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

	client := openai.NewClient(clientOpts...)

	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a new OpenAI model from an existing client
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
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
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
		Logger:              logging.NoOpLogger{},
	}
}

// Converse implements model.Model with one non-streaming completion.
func (m *Model) Converse(ctx context.Context, req model.Request) (core.Message, error) {
	resp, err := m.client.Chat.Completions.New(ctx, m.buildParams(req))
	if err != nil {
		return core.Message{}, mapError(err)
	}
	if len(resp.Choices) == 0 {
		return core.Message{}, model.ErrEmptyResponse
	}

	ch0 := resp.Choices[0]
	blocks := make([]core.ContentBlock, 0, len(ch0.Message.ToolCalls)+1)
	if ch0.Message.Content != "" {
		blocks = append(blocks, core.TextBlock{Text: ch0.Message.Content})
	}
	for _, tc := range ch0.Message.ToolCalls {
		args := tc.Function.Arguments
		if args == "" {
			args = "{}"
		}
		blocks = append(blocks, core.ToolUseBlock{
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Input: json.RawMessage(args),
		})
	}

	if len(blocks) == 0 {
		return core.Message{}, model.ErrEmptyResponse
	}

	return core.NewMessage(core.RoleAssistant, blocks...)
}

// ConverseStream implements model.Model over the streaming completions API.
// Only content deltas of the first choice are surfaced.
func (m *Model) ConverseStream(ctx context.Context, req model.Request) (*model.Stream, error) {
	stream := m.client.Chat.Completions.NewStreaming(ctx, m.buildParams(req))
	if err := stream.Err(); err != nil {
		_ = stream.Close()
		return nil, mapError(err)
	}
	return model.NewStream(&streamSource{stream: stream}), nil
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      "openai",
		SupportsTools: true,
	}
}

// buildParams assembles the OpenAI request parameters including tool definitions.
func (m *Model) buildParams(req model.Request) openai.ChatCompletionNewParams {
	modelID := m.opts.Model
	if req.ModelID != "" {
		modelID = req.ModelID
	}

	maxTokens := m.opts.MaxCompletionTokens
	if req.Inference.MaxTokens > 0 {
		maxTokens = req.Inference.MaxTokens
	}

	temperature := m.opts.Temperature
	if req.Inference.Temperature != nil {
		temperature = *req.Inference.Temperature
	}

	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req.System, req.Messages),
		Model:               modelID,
		Temperature:         openai.Float(temperature),
		MaxCompletionTokens: openai.Int(maxTokens),
	}

	if req.Inference.TopP != nil {
		params.TopP = openai.Float(*req.Inference.TopP)
	}

	if len(req.Inference.StopSequences) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: req.Inference.StopSequences}
	}

	if req.Guardrail != nil {
		m.opts.Logger.Warn("openai.guardrail.unsupported", "identifier", req.Guardrail.Identifier)
	}

	if len(req.Tools) == 0 {
		return params
	}

	tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
	for i, spec := range req.Tools {
		fn := openai.FunctionDefinitionParam{
			Name:       spec.Name,
			Parameters: spec.InputSchema,
		}
		if spec.Description != "" {
			fn.Description = openai.String(spec.Description)
		}
		tools[i] = openai.ChatCompletionToolParam{Function: fn}
	}
	params.Tools = tools

	return params
}

// buildMessages converts the conversation into OpenAI chat messages. Each
// tool result block becomes its own tool message.
func buildMessages(system string, msgs []core.Message) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}

	for _, msg := range msgs {
		text := msg.Text()

		if msg.Role() == core.RoleAssistant {
			toolCalls := extractToolCalls(msg)
			if len(toolCalls) == 0 {
				if text != "" {
					messages = append(messages, openai.AssistantMessage(text))
				}
				continue
			}
			assistant := openai.ChatCompletionAssistantMessageParam{ToolCalls: toolCalls}
			if text != "" {
				assistant.Content.OfString = openai.String(text)
			}
			messages = append(messages, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
			continue
		}

		for _, tr := range msg.ToolResults() {
			messages = append(messages, openai.ToolMessage(tr.Output, tr.ToolUseID))
		}
		if text != "" {
			messages = append(messages, openai.UserMessage(text))
		}
	}

	return messages
}

// extractToolCalls converts tool use blocks into OpenAI formatted tool calls.
func extractToolCalls(msg core.Message) []openai.ChatCompletionMessageToolCallParam {
	uses := msg.ToolUses()
	if len(uses) == 0 {
		return nil
	}

	toolCalls := make([]openai.ChatCompletionMessageToolCallParam, 0, len(uses))
	for _, tu := range uses {
		args := string(tu.Input)
		if args == "" {
			args = "{}"
		}
		toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
			ID: tu.ID,
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      tu.Name,
				Arguments: args,
			},
		})
	}
	return toolCalls
}

// mapError turns SDK HTTP errors into model.TransportError.
func mapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &model.TransportError{StatusCode: apiErr.StatusCode, Err: err}
	}
	return fmt.Errorf("openai api error: %w", err)
}

// streamSource adapts the SDK chunk stream to model.StreamSource.
type streamSource struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
	cur    string
}

func (s *streamSource) Next() bool {
	for s.stream.Next() {
		chunk := s.stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if content := chunk.Choices[0].Delta.Content; content != "" {
			s.cur = content
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
