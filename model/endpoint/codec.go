package endpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/hupe1980/agentcore/core"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	// ErrInvalidPayload is returned when a response is not valid JSON.
	ErrInvalidPayload = errors.New("response is not valid JSON")
	// ErrOutputNotFound is returned when the configured output path is absent.
	ErrOutputNotFound = errors.New("output path not found in response")
)

// Codec builds request payloads from the user input and history, and turns
// raw response text (or one streamed chunk) into assistant text.
type Codec interface {
	Encode(text string, history []core.Message) (any, error)
	Decode(raw string) (string, error)
}

// JSONCodec places the input (and optionally the history) at sjson paths of
// a JSON object and extracts the answer with a gjson path.
type JSONCodec struct {
	// InputPath receives the user text (default "input").
	InputPath string
	// HistoryPath receives the chat history; empty omits it.
	HistoryPath string
	// OutputPath selects the answer; empty returns the raw response.
	OutputPath string
	// Extra are static fields set before input and history.
	Extra map[string]any
}

// Encode implements Codec.
func (c JSONCodec) Encode(text string, history []core.Message) (any, error) {
	body := "{}"

	keys := make([]string, 0, len(c.Extra))
	for k := range c.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var err error
	for _, k := range keys {
		if body, err = sjson.Set(body, k, c.Extra[k]); err != nil {
			return nil, fmt.Errorf("set %q: %w", k, err)
		}
	}

	inputPath := c.InputPath
	if inputPath == "" {
		inputPath = "input"
	}
	if body, err = sjson.Set(body, inputPath, text); err != nil {
		return nil, fmt.Errorf("set %q: %w", inputPath, err)
	}

	if c.HistoryPath != "" {
		if history == nil {
			history = []core.Message{}
		}
		if body, err = sjson.Set(body, c.HistoryPath, history); err != nil {
			return nil, fmt.Errorf("set %q: %w", c.HistoryPath, err)
		}
	}

	return json.RawMessage(body), nil
}

// Decode implements Codec.
func (c JSONCodec) Decode(raw string) (string, error) {
	if c.OutputPath == "" {
		return raw, nil
	}
	if !gjson.Valid(raw) {
		return "", ErrInvalidPayload
	}
	result := gjson.Get(raw, c.OutputPath)
	if !result.Exists() {
		return "", fmt.Errorf("%w: %q", ErrOutputNotFound, c.OutputPath)
	}
	return result.String(), nil
}

// TextCodec sends {"input": text} and returns the response unchanged.
type TextCodec struct{}

// Encode implements Codec.
func (TextCodec) Encode(text string, _ []core.Message) (any, error) {
	return map[string]string{"input": text}, nil
}

// Decode implements Codec.
func (TextCodec) Decode(raw string) (string, error) { return raw, nil }

// CodecFuncs adapts caller supplied functions to Codec. A nil function falls
// back to TextCodec behaviour.
type CodecFuncs struct {
	EncodeFunc func(text string, history []core.Message) (any, error)
	DecodeFunc func(raw string) (string, error)
}

// Encode implements Codec.
func (c CodecFuncs) Encode(text string, history []core.Message) (any, error) {
	if c.EncodeFunc == nil {
		return TextCodec{}.Encode(text, history)
	}
	return c.EncodeFunc(text, history)
}

// Decode implements Codec.
func (c CodecFuncs) Decode(raw string) (string, error) {
	if c.DecodeFunc == nil {
		return raw, nil
	}
	return c.DecodeFunc(raw)
}
