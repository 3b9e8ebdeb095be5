package agent

import (
	"context"
	"time"

	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/flow"
	"github.com/hupe1980/agentcore/logging"
	"github.com/hupe1980/agentcore/model"
	"github.com/hupe1980/agentcore/prompt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PromptTemplate is a custom system prompt with its variables.
type PromptTemplate struct {
	Template  string
	Variables prompt.Variables
}

// LLMAgentOptions configures an LLMAgent.
//
// Use functional options with NewLLMAgent to override defaults.
type LLMAgentOptions struct {
	// ModelID overrides the model configured on the adapter.
	ModelID string
	// Streaming returns a Stream instead of a Message. Ignored with tools.
	Streaming bool
	// Inference holds sampling settings forwarded with every request.
	Inference model.InferenceConfig
	// Guardrail is forwarded as is; providers without support log it.
	Guardrail *model.GuardrailConfig
	// Retriever adds context to the system prompt per request.
	Retriever prompt.Retriever
	// ToolConfig enables the tool loop.
	ToolConfig *ToolConfig
	// CustomSystemPrompt replaces the default system prompt.
	CustomSystemPrompt *PromptTemplate
	// Logger receives request events (default no-op).
	Logger logging.Logger
	// Tracer records agent and tool loop spans (default otel global).
	Tracer trace.Tracer
}

// LLMAgent answers through a model.Model. Depending on its configuration a
// request goes through the tool loop, a streaming call or a single call.
//
// LLMAgent is safe for concurrent use: every request builds its own
// conversation and budget.
type LLMAgent struct {
	BaseAgent
	llm      model.Model
	composer *prompt.Composer
	loop     *flow.ToolLoop
	opts     LLMAgentOptions
}

// NewLLMAgent creates an agent over llm. Without a custom system prompt the
// default template is rendered with the agent's name and description.
func NewLLMAgent(name, description string, llm model.Model, optFns ...func(o *LLMAgentOptions)) *LLMAgent {
	opts := LLMAgentOptions{
		Logger: logging.NoOpLogger{},
		Tracer: otel.Tracer("github.com/hupe1980/agentcore/agent"),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("github.com/hupe1980/agentcore/agent")
	}

	defaultPrompt := prompt.Render(prompt.DefaultTemplate, prompt.Variables{
		"name":        name,
		"description": description,
	})
	composer := prompt.NewComposer(defaultPrompt, nil)
	if opts.Retriever != nil {
		composer.SetRetriever(opts.Retriever)
	}
	if opts.CustomSystemPrompt != nil {
		composer.SetSystemPrompt(opts.CustomSystemPrompt.Template, opts.CustomSystemPrompt.Variables)
	}

	a := &LLMAgent{
		BaseAgent: NewBaseAgent(name, description),
		llm:       llm,
		composer:  composer,
		opts:      opts,
	}

	if tc := opts.ToolConfig; tc != nil {
		a.loop = flow.NewToolLoop(llm, tc.Handler, func(o *flow.Options) {
			o.MaxRecursions = tc.MaxRecursions
			o.Logger = opts.Logger
			o.Tracer = opts.Tracer
		})
	}

	return a
}

// SetSystemPrompt replaces the template (if non-empty) and the variables
// (if non-nil).
func (a *LLMAgent) SetSystemPrompt(template string, vars prompt.Variables) {
	a.composer.SetSystemPrompt(template, vars)
}

// SystemPrompt returns the currently rendered system prompt.
func (a *LLMAgent) SystemPrompt() string { return a.composer.CurrentPrompt() }

// ProcessRequest implements Agent.
func (a *LLMAgent) ProcessRequest(
	ctx context.Context,
	inputText, userID, sessionID string,
	history []core.Message,
	params map[string]string,
) (*Response, error) {
	invocationID := core.NewID()
	logger := logging.With(a.opts.Logger,
		"agent", a.Name(),
		"user_id", userID,
		"session_id", sessionID,
		"invocation_id", invocationID,
	)

	ctx, span := a.opts.Tracer.Start(ctx, "agent.process_request", trace.WithAttributes(
		attribute.String("agent.name", a.Name()),
		attribute.String("session.id", sessionID),
		attribute.String("invocation.id", invocationID),
	))
	defer span.End()

	logger.Info("agent.request.start",
		"history", len(history),
		"params", len(params),
		"streaming", a.opts.Streaming,
		"tools", a.loop != nil,
	)
	start := time.Now()

	resp, err := a.dispatch(ctx, inputText, history)
	if err != nil {
		logger.Error("agent.request.error", "error", err.Error(), "duration_ms", time.Since(start).Milliseconds())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	logger.Info("agent.request.completed",
		"duration_ms", time.Since(start).Milliseconds(),
		"model_calls", resp.ModelCalls,
		"exhausted", resp.Exhausted,
	)
	return resp, nil
}

func (a *LLMAgent) dispatch(ctx context.Context, inputText string, history []core.Message) (*Response, error) {
	system, err := a.composer.Compose(ctx, inputText)
	if err != nil {
		return nil, err
	}

	messages := make([]core.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, core.NewUserText(inputText))

	req := model.Request{
		ModelID:   a.opts.ModelID,
		Messages:  messages,
		System:    system,
		Inference: a.opts.Inference,
		Guardrail: a.opts.Guardrail,
	}

	switch {
	case a.loop != nil:
		req.Tools = a.opts.ToolConfig.Tools

		res, err := a.loop.Run(ctx, req)
		if err != nil {
			return nil, err
		}
		final := res.Final
		return &Response{
			Message:      &final,
			Conversation: res.Conversation,
			ModelCalls:   res.ModelCalls,
			Exhausted:    res.Exhausted,
		}, nil

	case a.opts.Streaming:
		stream, err := a.llm.ConverseStream(ctx, req)
		if err != nil {
			return nil, err
		}
		return &Response{Stream: stream}, nil

	default:
		msg, err := a.llm.Converse(ctx, req)
		if err != nil {
			return nil, err
		}
		return &Response{Message: &msg, ModelCalls: 1}, nil
	}
}
