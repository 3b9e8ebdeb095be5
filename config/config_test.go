package config

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/agentcore/agent"
	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/internal/testutil"
	"github.com/hupe1980/agentcore/model"
	"github.com/hupe1980/agentcore/model/endpoint"
	"github.com/hupe1980/agentcore/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const llmYAML = `
name: Tech Agent
description: Answers questions about computers.
provider: anthropic
model: claude-test
streaming: true
inference:
  max_tokens: 512
  temperature: 0.2
  stop_sequences: ["END"]
guardrail:
  identifier: g-1
  version: "2"
system_prompt:
  template: "You are {{name}}. Topics:\n{{topics}}"
  variables:
    name: TechBot
    topics: [hardware, software]
tools:
  max_recursions: 4
`

func TestParseLLMConfig(t *testing.T) {
	cfg, err := Parse([]byte(llmYAML))
	require.NoError(t, err)

	assert.Equal(t, "Tech Agent", cfg.Name)
	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.True(t, cfg.Streaming)
	assert.EqualValues(t, 512, cfg.Inference.MaxTokens)
	require.NotNil(t, cfg.Inference.Temperature)
	assert.Equal(t, 0.2, *cfg.Inference.Temperature)
	assert.Equal(t, []string{"END"}, cfg.Inference.StopSequences)
	assert.Equal(t, "g-1", cfg.Guardrail.Identifier)
	assert.Equal(t, 4, cfg.MaxRecursions())

	var opts agent.LLMAgentOptions
	cfg.LLMOptions()(&opts)
	assert.True(t, opts.Streaming)
	assert.Equal(t, cfg.Inference, opts.Inference)
	require.NotNil(t, opts.CustomSystemPrompt)
	assert.Equal(t, "You are {{name}}. Topics:\n{{topics}}", opts.CustomSystemPrompt.Template)
}

func TestParseExpandsEnvironment(t *testing.T) {
	t.Setenv("AGENTCORE_TEST_TOKEN", "s3cret")

	cfg, err := Parse([]byte(`
name: remote
provider: http
endpoint:
  url: http://localhost:8080/chat
  headers:
    Authorization: Bearer ${AGENTCORE_TEST_TOKEN}
`))
	require.NoError(t, err)
	assert.Equal(t, "Bearer s3cret", cfg.Endpoint.Headers["Authorization"])
	assert.Equal(t, []string{"Authorization"}, cfg.HeaderNames())

	var opts agent.APIAgentOptions
	cfg.APIAgentOptions()(&opts)
	require.NotNil(t, opts.Headers)
	assert.Equal(t, "Bearer s3cret", opts.Headers()["Authorization"])
	assert.Equal(t, endpoint.TextCodec{}, cfg.Codec())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing name", "provider: openai", "name is required"},
		{"missing provider", "name: a", "provider is required"},
		{"unknown provider", "name: a\nprovider: bedrock", `unknown provider "bedrock"`},
		{"http without url", "name: a\nprovider: http", "endpoint.url is required"},
		{"temperature range", "name: a\nprovider: openai\ninference:\n  temperature: 3", "temperature must be within"},
		{"top_p range", "name: a\nprovider: openai\ninference:\n  top_p: 1.5", "top_p must be within"},
		{"negative budget", "name: a\nprovider: openai\ntools:\n  max_recursions: -1", "max_recursions must not be negative"},
		{"empty template", "name: a\nprovider: openai\nsystem_prompt:\n  variables: {x: 1}", "system_prompt.template is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("name: [unclosed"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(llmYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Tech Agent", cfg.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewAgentWithModelOverride(t *testing.T) {
	cfg, err := Parse([]byte(llmYAML))
	require.NoError(t, err)
	cfg.Streaming = false

	echo := tool.NewFunctionTool("echo", "Echoes", nil, func(_ context.Context, args map[string]any) (any, error) {
		return args, nil
	})
	exec, err := tool.NewExecutor([]tool.Tool{echo})
	require.NoError(t, err)

	llm := model.NewMockModel("mock", testutil.ToolUseReplies(10, "echo")...)
	a, err := NewAgent(cfg, func(o *BuildOptions) {
		o.Model = llm
		o.Executor = exec
	})
	require.NoError(t, err)
	assert.Equal(t, "Tech Agent", a.Name())

	resp, err := a.ProcessRequest(context.Background(), "q", "u", "s", nil, nil)
	require.NoError(t, err)
	assert.True(t, resp.Exhausted)
	assert.Equal(t, 4, llm.Calls())

	req := llm.Requests()[0]
	assert.Equal(t, "You are TechBot. Topics:\nhardware\nsoftware", req.System)
	assert.Equal(t, []string{"END"}, req.Inference.StopSequences)
}

func TestNewAgentHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Team") != "core" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"text":` + string(body) + `}}`))
	}))
	defer srv.Close()

	cfg, err := Parse([]byte(`
name: remote
provider: http
endpoint:
  url: ` + srv.URL + `
  headers:
    X-Team: core
  codec:
    input_path: prompt
    output_path: data.text.prompt
`))
	require.NoError(t, err)

	a, err := NewAgent(cfg)
	require.NoError(t, err)

	resp, err := a.ProcessRequest(context.Background(), "ping", "u", "s", []core.Message{core.NewUserText("old")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ping", resp.Message.Text())
}

func TestNewAgentInvalidConfig(t *testing.T) {
	_, err := NewAgent(&AgentConfig{Name: "a"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewAgentNilLogger(t *testing.T) {
	cfg, err := Parse([]byte("name: a\nprovider: openai"))
	require.NoError(t, err)

	llm := model.NewMockModel("mock", core.NewAssistantText("ok"))
	a, err := NewAgent(cfg, func(o *BuildOptions) {
		o.Model = llm
		o.Logger = nil
	})
	require.NoError(t, err)

	resp, err := a.ProcessRequest(context.Background(), "q", "u", "s", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Message.Text())
}
