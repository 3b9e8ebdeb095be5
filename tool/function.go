package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/agentcore/internal/util"
	"github.com/xeipuuv/gojsonschema"
)

// FunctionFunc is the signature of functions wrapped by FunctionTool.
type FunctionFunc func(ctx context.Context, args map[string]any) (any, error)

// FunctionTool exposes a plain Go function as a Tool.
//
// Arguments are validated against the parameter schema before the function
// runs. Failures are normalized to *ToolError:
//
//	VALIDATION_ERROR -> schema / argument mismatch
//	EXECUTION_ERROR  -> the function returned a plain error
//	(custom codes are kept when the function returns *ToolError itself)
//
// A FunctionTool has no mutable state after construction and is safe for
// concurrent use.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	schema      *gojsonschema.Schema
	schemaErr   error
	fn          FunctionFunc
}

// NewFunctionTool constructs a FunctionTool from an explicit schema.
//
// Example:
//
//	sum := NewFunctionTool(
//	  "calculate_sum",
//	  "Calculate the sum of two numbers",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "a": map[string]any{"type": "number"},
//	      "b": map[string]any{"type": "number"},
//	    },
//	    "required": []string{"a", "b"},
//	  },
//	  func(_ context.Context, args map[string]any) (any, error) {
//	    return args["a"].(float64) + args["b"].(float64), nil
//	  },
//	)
func NewFunctionTool(name, description string, parameters map[string]any, fn FunctionFunc) *FunctionTool {
	schema, err := util.CompileSchema(parameters)
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		schema:      schema,
		schemaErr:   err,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct derives the parameter schema from a struct.
//
//	type SumArgs struct {
//	  A float64 `json:"a" description:"First addend"`
//	  B float64 `json:"b" description:"Second addend"`
//	}
func NewFunctionToolFromStruct(name, description string, structType any, fn FunctionFunc) *FunctionTool {
	return NewFunctionTool(name, description, util.CreateSchema(structType), fn)
}

// CreateSchema builds a JSON schema from a struct's exported fields.
func CreateSchema(structType any) map[string]any { return util.CreateSchema(structType) }

// Name returns the unique tool name.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates args and invokes the wrapped function.
func (t *FunctionTool) Call(ctx context.Context, args map[string]any) (any, error) {
	if t.schemaErr != nil {
		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("invalid parameter schema: %v", t.schemaErr),
			Code:    CodeValidation,
		}
	}

	if err := util.ValidateParameters(t.schema, args); err != nil {
		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    CodeValidation,
			Details: err,
		}
	}

	result, err := t.fn(ctx, args)
	if err != nil {
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			return nil, toolErr
		}
		return nil, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    CodeExecution,
		}
	}

	return result, nil
}
