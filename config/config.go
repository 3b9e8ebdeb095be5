package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentcore/agent"
	"github.com/hupe1980/agentcore/model"
	"github.com/hupe1980/agentcore/model/endpoint"
	"github.com/hupe1980/agentcore/prompt"
)

// Supported providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderHTTP      = "http"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid agent config")

// AgentConfig describes one agent in YAML.
//
//	name: Tech Agent
//	description: Answers questions about computers.
//	provider: anthropic
//	model: claude-3-5-haiku-latest
//	inference:
//	  max_tokens: 1024
//	  temperature: 0.2
//	system_prompt:
//	  template: "You are {{name}}."
//	  variables:
//	    name: Tech Agent
//	tools:
//	  max_recursions: 5
type AgentConfig struct {
	Name         string                 `yaml:"name"`
	Description  string                 `yaml:"description"`
	Provider     string                 `yaml:"provider"`
	Model        string                 `yaml:"model,omitempty"`
	APIKey       string                 `yaml:"api_key,omitempty"`
	Streaming    bool                   `yaml:"streaming,omitempty"`
	Inference    model.InferenceConfig  `yaml:"inference,omitempty"`
	Guardrail    *model.GuardrailConfig `yaml:"guardrail,omitempty"`
	SystemPrompt *SystemPromptConfig    `yaml:"system_prompt,omitempty"`
	Tools        *ToolsConfig           `yaml:"tools,omitempty"`
	Endpoint     *EndpointConfig        `yaml:"endpoint,omitempty"`
}

// SystemPromptConfig replaces the default system prompt.
type SystemPromptConfig struct {
	Template  string         `yaml:"template"`
	Variables map[string]any `yaml:"variables,omitempty"`
}

// ToolsConfig tunes the tool loop. The tools themselves are registered in
// code.
type ToolsConfig struct {
	MaxRecursions int `yaml:"max_recursions,omitempty"`
}

// EndpointConfig configures an HTTP agent.
type EndpointConfig struct {
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Codec   *CodecConfig      `yaml:"codec,omitempty"`
}

// CodecConfig maps to endpoint.JSONCodec.
type CodecConfig struct {
	InputPath   string         `yaml:"input_path,omitempty"`
	HistoryPath string         `yaml:"history_path,omitempty"`
	OutputPath  string         `yaml:"output_path,omitempty"`
	Extra       map[string]any `yaml:"extra,omitempty"`
}

// Load reads and parses a YAML file.
func Load(path string) (*AgentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, expands ${VAR} references from the environment and
// validates the result.
func Parse(data []byte) (*AgentConfig, error) {
	var cfg AgentConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and value ranges.
func (c *AgentConfig) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Name) == "" {
		problems = append(problems, "name is required")
	}

	switch c.Provider {
	case ProviderAnthropic, ProviderOpenAI:
	case ProviderHTTP:
		if c.Endpoint == nil || c.Endpoint.URL == "" {
			problems = append(problems, "endpoint.url is required for provider http")
		}
	case "":
		problems = append(problems, "provider is required")
	default:
		problems = append(problems, fmt.Sprintf("unknown provider %q", c.Provider))
	}

	if c.Inference.MaxTokens < 0 {
		problems = append(problems, "inference.max_tokens must not be negative")
	}
	if t := c.Inference.Temperature; t != nil && (*t < 0 || *t > 2) {
		problems = append(problems, "inference.temperature must be within [0, 2]")
	}
	if p := c.Inference.TopP; p != nil && (*p < 0 || *p > 1) {
		problems = append(problems, "inference.top_p must be within [0, 1]")
	}
	if c.Tools != nil && c.Tools.MaxRecursions < 0 {
		problems = append(problems, "tools.max_recursions must not be negative")
	}
	if c.SystemPrompt != nil && c.SystemPrompt.Template == "" {
		problems = append(problems, "system_prompt.template is required")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// MaxRecursions returns the configured tool loop budget (0 = default).
func (c *AgentConfig) MaxRecursions() int {
	if c.Tools == nil {
		return 0
	}
	return c.Tools.MaxRecursions
}

// LLMOptions converts the config into an option for agent.NewLLMAgent. Tool
// configuration is left to the caller.
func (c *AgentConfig) LLMOptions() func(o *agent.LLMAgentOptions) {
	return func(o *agent.LLMAgentOptions) {
		o.Streaming = c.Streaming
		o.Inference = c.Inference
		o.Guardrail = c.Guardrail
		if c.SystemPrompt != nil {
			o.CustomSystemPrompt = &agent.PromptTemplate{
				Template:  c.SystemPrompt.Template,
				Variables: prompt.Variables(c.SystemPrompt.Variables),
			}
		}
	}
}

// APIAgentOptions converts the config into an option for agent.NewAPIAgent.
func (c *AgentConfig) APIAgentOptions() func(o *agent.APIAgentOptions) {
	return func(o *agent.APIAgentOptions) {
		o.Streaming = c.Streaming
		if c.Endpoint == nil || len(c.Endpoint.Headers) == 0 {
			return
		}
		headers := make(map[string]string, len(c.Endpoint.Headers))
		for k, v := range c.Endpoint.Headers {
			headers[k] = v
		}
		o.Headers = func() map[string]string { return headers }
	}
}

// Codec returns the endpoint codec. Without a codec section the endpoint
// speaks plain text.
func (c *AgentConfig) Codec() endpoint.Codec {
	if c.Endpoint == nil || c.Endpoint.Codec == nil {
		return endpoint.TextCodec{}
	}
	cc := c.Endpoint.Codec
	return endpoint.JSONCodec{
		InputPath:   cc.InputPath,
		HistoryPath: cc.HistoryPath,
		OutputPath:  cc.OutputPath,
		Extra:       cc.Extra,
	}
}

// HeaderNames returns the configured header names, sorted. Values are never
// logged.
func (c *AgentConfig) HeaderNames() []string {
	if c.Endpoint == nil {
		return nil
	}
	names := make([]string, 0, len(c.Endpoint.Headers))
	for k := range c.Endpoint.Headers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
