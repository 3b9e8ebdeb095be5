package tool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------- Schema & Validation Tests --------------------

type sampleSchema struct {
	A string `json:"a" description:"Field A"`
	B *int   `json:"b" description:"Optional pointer field"`
	C int    `json:"c,omitempty" description:"Omit empty field"`
	d int
}

func TestCreateSchema(t *testing.T) {
	schema := CreateSchema(sampleSchema{})
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)

	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")
	assert.Contains(t, props, "c")
	assert.NotContains(t, props, "d")
	assert.Equal(t, "integer", props["b"].(map[string]any)["type"])
	assert.Equal(t, []string{"a"}, schema["required"])
}

func TestValidateParameters(t *testing.T) {
	schema, err := util.CompileSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
		},
		"required": []any{"x"},
	})
	require.NoError(t, err)

	assert.NoError(t, util.ValidateParameters(schema, map[string]any{"x": 5}))
	assert.NoError(t, util.ValidateParameters(schema, map[string]any{"x": float64(5)}))

	err = util.ValidateParameters(schema, map[string]any{})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Violations, 1)
	assert.Contains(t, vErr.Violations[0], "x")

	err = util.ValidateParameters(schema, map[string]any{"x": "not-int"})
	require.ErrorAs(t, err, &vErr)

	assert.NoError(t, util.ValidateParameters(nil, map[string]any{"anything": true}))
}

// -------------------- FunctionTool Tests --------------------

func newSumTool() *FunctionTool {
	type sumArgs struct {
		A float64 `json:"a" description:"First addend"`
		B float64 `json:"b" description:"Second addend"`
	}
	return NewFunctionToolFromStruct("sum", "Add two numbers", sumArgs{}, func(_ context.Context, args map[string]any) (any, error) {
		return args["a"].(float64) + args["b"].(float64), nil
	})
}

func TestFunctionToolSuccess(t *testing.T) {
	sum := newSumTool()
	assert.Equal(t, "sum", sum.Name())
	assert.Equal(t, "Add two numbers", sum.Description())

	got, err := sum.Call(context.Background(), map[string]any{"a": 1.5, "b": 2.0})
	require.NoError(t, err)
	assert.Equal(t, 3.5, got)
}

func TestFunctionToolValidationError(t *testing.T) {
	_, err := newSumTool().Call(context.Background(), map[string]any{"a": "one"})

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeValidation, toolErr.Code)
	assert.Equal(t, "sum", toolErr.Tool)
}

func TestFunctionToolExecutionError(t *testing.T) {
	failing := NewFunctionTool("fail", "always fails", nil, func(context.Context, map[string]any) (any, error) {
		return nil, errors.New("backend down")
	})
	_, err := failing.Call(context.Background(), nil)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeExecution, toolErr.Code)
	assert.Equal(t, "tool error [EXECUTION_ERROR] in fail: backend down", err.Error())

	custom := NewFunctionTool("custom", "custom code", nil, func(context.Context, map[string]any) (any, error) {
		return nil, NewToolError("custom", "quota", "RATE_LIMIT")
	})
	_, err = custom.Call(context.Background(), nil)
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "RATE_LIMIT", toolErr.Code)
}

// -------------------- Executor Tests --------------------

func toolUse(t *testing.T, blocks ...core.ContentBlock) core.Message {
	t.Helper()
	msg, err := core.NewMessage(core.RoleAssistant, blocks...)
	require.NoError(t, err)
	return msg
}

func TestExecutorAppendsOneResultMessage(t *testing.T) {
	echo := NewFunctionTool("echo", "echo input", nil, func(_ context.Context, args map[string]any) (any, error) {
		return args["text"], nil
	})
	exec, err := NewExecutor([]Tool{newSumTool(), echo})
	require.NoError(t, err)

	latest := toolUse(t,
		core.TextBlock{Text: "working on it"},
		core.ToolUseBlock{ID: "t1", Name: "sum", Input: json.RawMessage(`{"a":1,"b":2}`)},
		core.ToolUseBlock{ID: "t2", Name: "echo", Input: json.RawMessage(`{"text":"hi"}`)},
		core.ToolUseBlock{ID: "t3", Name: "missing"},
	)
	conv := core.NewConversation(core.NewUserText("q"), latest)

	require.NoError(t, exec.HandleToolUse(context.Background(), latest, conv))
	require.Equal(t, 3, conv.Len())

	last, _ := conv.Last()
	assert.Equal(t, core.RoleUser, last.Role())

	results := last.ToolResults()
	require.Len(t, results, 3)
	assert.Equal(t, core.ToolResultBlock{ToolUseID: "t1", Output: "3"}, results[0])
	assert.Equal(t, core.ToolResultBlock{ToolUseID: "t2", Output: "hi"}, results[1])
	assert.Equal(t, "t3", results[2].ToolUseID)
	assert.True(t, results[2].IsError)
	assert.Contains(t, results[2].Output, CodeUnknownTool)
}

func TestExecutorRecoversPanics(t *testing.T) {
	boom := NewFunctionTool("boom", "panics", nil, func(context.Context, map[string]any) (any, error) {
		panic("kaboom")
	})
	exec, err := NewExecutor([]Tool{boom})
	require.NoError(t, err)

	latest := toolUse(t, core.ToolUseBlock{ID: "t1", Name: "boom"})
	conv := core.NewConversation(latest)

	require.NoError(t, exec.HandleToolUse(context.Background(), latest, conv))

	last, _ := conv.Last()
	require.Len(t, last.ToolResults(), 1)
	assert.True(t, last.ToolResults()[0].IsError)
	assert.Contains(t, last.ToolResults()[0].Output, "kaboom")
}

func TestExecutorReportsBadInput(t *testing.T) {
	exec, err := NewExecutor([]Tool{newSumTool()})
	require.NoError(t, err)

	latest := toolUse(t, core.ToolUseBlock{ID: "t1", Name: "sum", Input: json.RawMessage(`[1,2]`)})
	conv := core.NewConversation(latest)

	require.NoError(t, exec.HandleToolUse(context.Background(), latest, conv))
	last, _ := conv.Last()
	assert.Contains(t, last.ToolResults()[0].Output, CodeBadInput)
}

func TestExecutorIgnoresPlainReplies(t *testing.T) {
	exec, err := NewExecutor(nil)
	require.NoError(t, err)

	conv := core.NewConversation()
	require.NoError(t, exec.HandleToolUse(context.Background(), core.NewAssistantText("done"), conv))
	assert.Equal(t, 0, conv.Len())
}

func TestExecutorStopsOnCancelledContext(t *testing.T) {
	exec, err := NewExecutor([]Tool{newSumTool()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	latest := toolUse(t, core.ToolUseBlock{ID: "t1", Name: "sum", Input: json.RawMessage(`{"a":1,"b":2}`)})
	err = exec.HandleToolUse(ctx, latest, core.NewConversation(latest))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecutorRegistry(t *testing.T) {
	exec, err := NewExecutor([]Tool{newSumTool()})
	require.NoError(t, err)

	assert.Error(t, exec.Register(newSumTool()))

	_, ok := exec.Lookup("sum")
	assert.True(t, ok)

	specs := exec.Specs()
	require.Len(t, specs, 1)
	assert.Equal(t, "sum", specs[0].Name)
	assert.Equal(t, "Add two numbers", specs[0].Description)
	assert.Equal(t, "object", specs[0].InputSchema["type"])

	_, err = NewExecutor([]Tool{newSumTool(), newSumTool()})
	assert.Error(t, err)
}

func TestHandlerFunc(t *testing.T) {
	var called bool
	h := HandlerFunc(func(context.Context, core.Message, *core.Conversation) error {
		called = true
		return nil
	})
	require.NoError(t, h.HandleToolUse(context.Background(), core.NewAssistantText("x"), core.NewConversation()))
	assert.True(t, called)
}
