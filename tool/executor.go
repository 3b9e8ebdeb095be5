package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/logging"
	"github.com/hupe1980/agentcore/model"
)

// ExecutorOptions configure an Executor.
type ExecutorOptions struct {
	Logger logging.Logger
}

// Executor is the default Handler. It runs every tool use of the latest
// reply in order against a registry and appends one user message holding a
// ToolResultBlock per tool use. Tool failures are reported to the model as
// error results instead of aborting the loop.
type Executor struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	logger logging.Logger
}

// NewExecutor creates an executor with the given tools registered.
func NewExecutor(tools []Tool, optFns ...func(o *ExecutorOptions)) (*Executor, error) {
	opts := ExecutorOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	e := &Executor{tools: make(map[string]Tool, len(tools)), logger: opts.Logger}
	if err := e.Register(tools...); err != nil {
		return nil, err
	}
	return e, nil
}

// Register adds tools. Names must be unique.
func (e *Executor) Register(tools ...Tool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, t := range tools {
		if _, exists := e.tools[t.Name()]; exists {
			return fmt.Errorf("tool %q already registered", t.Name())
		}
		e.tools[t.Name()] = t
	}
	return nil
}

// Lookup returns the tool registered under name.
func (e *Executor) Lookup(name string) (Tool, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.tools[name]
	return t, ok
}

// Specs describes the registered tools for a model request, sorted by name.
func (e *Executor) Specs() []model.ToolSpec {
	e.mu.RLock()
	defer e.mu.RUnlock()

	specs := make([]model.ToolSpec, 0, len(e.tools))
	for _, t := range e.tools {
		specs = append(specs, model.ToolSpec{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Parameters(),
		})
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}

// HandleToolUse implements Handler.
func (e *Executor) HandleToolUse(ctx context.Context, latest core.Message, conv *core.Conversation) error {
	uses := latest.ToolUses()
	if len(uses) == 0 {
		return nil
	}

	blocks := make([]core.ContentBlock, 0, len(uses))
	for _, tu := range uses {
		if err := ctx.Err(); err != nil {
			return err
		}
		blocks = append(blocks, e.execute(ctx, tu))
	}

	msg, err := core.NewMessage(core.RoleUser, blocks...)
	if err != nil {
		return err
	}
	conv.Append(msg)

	return nil
}

func (e *Executor) execute(ctx context.Context, tu core.ToolUseBlock) core.ToolResultBlock {
	e.logger.Debug("tool.call.start", "tool", tu.Name, "tool_use_id", tu.ID)

	start := time.Now()
	result, err := e.call(ctx, tu)
	logging.LogToolCall(e.logger, tu.Name, time.Since(start), err)

	if err != nil {
		return core.ToolResultBlock{ToolUseID: tu.ID, Output: err.Error(), IsError: true}
	}

	return core.ToolResultBlock{ToolUseID: tu.ID, Output: encodeResult(result)}
}

func (e *Executor) call(ctx context.Context, tu core.ToolUseBlock) (result any, err error) {
	impl, ok := e.Lookup(tu.Name)
	if !ok {
		return nil, NewToolError(tu.Name, "tool not found", CodeUnknownTool)
	}

	args := map[string]any{}
	if len(tu.Input) > 0 {
		if err := json.Unmarshal(tu.Input, &args); err != nil {
			return nil, NewToolError(tu.Name, fmt.Sprintf("failed to unmarshal input: %v", err), CodeBadInput)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tool.call.panic", "tool", tu.Name, "recover", r, "stack", string(debug.Stack()))
			result, err = nil, NewToolError(tu.Name, fmt.Sprintf("panic: %v", r), CodePanic)
		}
	}()

	return impl.Call(ctx, args)
}

// encodeResult renders a tool result as text for the model. Strings pass
// through, everything else is JSON encoded.
func encodeResult(result any) string {
	switch v := result.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprint(result)
	}
	return string(data)
}
