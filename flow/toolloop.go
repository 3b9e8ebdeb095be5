package flow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/logging"
	"github.com/hupe1980/agentcore/model"
	"github.com/hupe1980/agentcore/tool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMaxRecursions bounds a tool loop when no budget is configured.
const DefaultMaxRecursions = 20

// ErrNoToolHandler is returned by Run when the loop has no handler.
var ErrNoToolHandler = errors.New("tool loop requires a tool handler")

// State is a phase of the tool loop.
type State int

const (
	// StateAwaitingModel waits for the model's reply to the conversation.
	StateAwaitingModel State = iota
	// StateInspectingResponse checks the reply for tool use blocks.
	StateInspectingResponse
	// StateInvokingTool hands the reply to the tool handler.
	StateInvokingTool
	// StateDone is terminal.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAwaitingModel:
		return "AWAITING_MODEL"
	case StateInspectingResponse:
		return "INSPECTING_RESPONSE"
	case StateInvokingTool:
		return "INVOKING_TOOL"
	case StateDone:
		return "DONE"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configure a ToolLoop.
type Options struct {
	// MaxRecursions is the number of tool hand-offs allowed (default 20).
	MaxRecursions int
	// Logger receives loop events (default no-op).
	Logger logging.Logger
	// Tracer records one span per run, model call and tool hand-off
	// (default otel.Tracer for this package).
	Tracer trace.Tracer
	// OnTransition observes state changes.
	OnTransition func(from, to State)
}

// Result is the outcome of a tool loop run.
type Result struct {
	// Final is the reply that ended the loop. When Exhausted is set it is the
	// last tool-bearing reply, its tool uses already handled.
	Final core.Message
	// Conversation is the full conversation including every reply and tool
	// result appended during the run.
	Conversation []core.Message
	// ModelCalls counts the model round trips.
	ModelCalls int
	// Exhausted reports that the budget ran out before a plain reply.
	Exhausted bool
}

// ToolLoop drives the model until it answers without requesting a tool.
// Every tool-bearing reply is handed to the handler, which appends tool
// results to the conversation, and the model is called again with the full
// conversation. The loop is strictly sequential and never retries.
//
// A ToolLoop holds no per-run state and is safe for concurrent use.
type ToolLoop struct {
	llm     model.Model
	handler tool.Handler
	opts    Options
}

// NewToolLoop creates a tool loop over llm.
func NewToolLoop(llm model.Model, handler tool.Handler, optFns ...func(o *Options)) *ToolLoop {
	opts := Options{
		MaxRecursions: DefaultMaxRecursions,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxRecursions <= 0 {
		opts.MaxRecursions = DefaultMaxRecursions
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("github.com/hupe1980/agentcore/flow")
	}
	return &ToolLoop{llm: llm, handler: handler, opts: opts}
}

// MaxRecursions returns the configured budget.
func (l *ToolLoop) MaxRecursions() int { return l.opts.MaxRecursions }

// Run executes the loop starting from req.Messages. Model and handler
// errors end the run and are returned wrapped. Running out of budget is not
// an error: the last reply is returned with Result.Exhausted set.
func (l *ToolLoop) Run(ctx context.Context, req model.Request) (*Result, error) {
	if l.handler == nil {
		return nil, ErrNoToolHandler
	}

	ctx, span := l.opts.Tracer.Start(ctx, "flow.tool_loop",
		trace.WithAttributes(attribute.Int("flow.max_recursions", l.opts.MaxRecursions)),
	)
	defer span.End()

	res, err := l.run(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("flow.model_calls", res.ModelCalls),
		attribute.Bool("flow.exhausted", res.Exhausted),
	)
	return res, nil
}

func (l *ToolLoop) run(ctx context.Context, req model.Request) (*Result, error) {
	conv := core.NewConversation(req.Messages...)
	remaining := l.opts.MaxRecursions
	calls := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req.Messages = conv.Messages()
		calls++

		reply, err := l.converse(ctx, req, calls)
		if err != nil {
			return nil, fmt.Errorf("model call %d: %w", calls, err)
		}
		conv.Append(reply)
		l.transition(StateAwaitingModel, StateInspectingResponse)

		if !reply.HasToolUse() {
			l.transition(StateInspectingResponse, StateDone)
			return &Result{Final: reply, Conversation: conv.Messages(), ModelCalls: calls}, nil
		}

		l.transition(StateInspectingResponse, StateInvokingTool)
		if err := l.handle(ctx, reply, conv); err != nil {
			return nil, fmt.Errorf("tool handler: %w", err)
		}

		remaining--
		if remaining == 0 {
			l.opts.Logger.Warn("flow.tool_loop.exhausted", "max_recursions", l.opts.MaxRecursions, "model_calls", calls)
			l.transition(StateInvokingTool, StateDone)
			return &Result{Final: reply, Conversation: conv.Messages(), ModelCalls: calls, Exhausted: true}, nil
		}

		l.transition(StateInvokingTool, StateAwaitingModel)
	}
}

func (l *ToolLoop) converse(ctx context.Context, req model.Request, call int) (core.Message, error) {
	info := l.llm.Info()

	ctx, span := l.opts.Tracer.Start(ctx, "flow.model_call", trace.WithAttributes(
		attribute.Int("flow.call", call),
		attribute.String("llm.model", info.Name),
		attribute.String("llm.provider", info.Provider),
		attribute.Int("llm.messages", len(req.Messages)),
	))
	defer span.End()

	l.opts.Logger.Debug("flow.model.call", "call", call, "messages", len(req.Messages))

	start := time.Now()
	reply, err := l.llm.Converse(ctx, req)
	logging.LogLLMCall(l.opts.Logger, info.Name, time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return core.Message{}, err
	}
	return reply, nil
}

func (l *ToolLoop) handle(ctx context.Context, reply core.Message, conv *core.Conversation) error {
	ctx, span := l.opts.Tracer.Start(ctx, "flow.tool_handler",
		trace.WithAttributes(attribute.Int("flow.tool_uses", len(reply.ToolUses()))),
	)
	defer span.End()

	if err := l.handler.HandleToolUse(ctx, reply, conv); err != nil {
		l.opts.Logger.Error("flow.tool_handler.error", "error", err.Error())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (l *ToolLoop) transition(from, to State) {
	if l.opts.OnTransition != nil {
		l.opts.OnTransition(from, to)
	}
}
