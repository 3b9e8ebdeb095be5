package config

import (
	"net/http"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/agentcore/agent"
	"github.com/hupe1980/agentcore/logging"
	"github.com/hupe1980/agentcore/model"
	"github.com/hupe1980/agentcore/model/anthropic"
	"github.com/hupe1980/agentcore/model/openai"
	"github.com/hupe1980/agentcore/tool"
)

// BuildOptions supply the parts of an agent that cannot be expressed in YAML.
type BuildOptions struct {
	// Model replaces the provider adapter built from the config.
	Model model.Model
	// Executor provides the tools; nil disables the tool loop.
	Executor *tool.Executor
	// HTTPClient is used by http agents.
	HTTPClient *http.Client
	// Logger is passed to adapters and agents (default no-op).
	Logger logging.Logger
}

// NewAgent builds the agent described by c.
func NewAgent(c *AgentConfig, optFns ...func(o *BuildOptions)) (agent.Agent, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	opts := BuildOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	opts.Logger.Debug("config.agent.build", "name", c.Name, "provider", c.Provider, "headers", c.HeaderNames())

	if c.Provider == ProviderHTTP {
		return agent.NewAPIAgent(c.Name, c.Description, c.Endpoint.URL, c.Codec(), c.APIAgentOptions(), func(o *agent.APIAgentOptions) {
			o.HTTPClient = opts.HTTPClient
			o.Logger = opts.Logger
		}), nil
	}

	llm := opts.Model
	if llm == nil {
		llm = c.newModel(opts.Logger)
	}

	return agent.NewLLMAgent(c.Name, c.Description, llm, c.LLMOptions(), func(o *agent.LLMAgentOptions) {
		o.Logger = opts.Logger
		if opts.Executor != nil {
			o.ToolConfig = agent.NewToolConfig(opts.Executor, c.MaxRecursions())
		}
	}), nil
}

func (c *AgentConfig) newModel(logger logging.Logger) model.Model {
	switch c.Provider {
	case ProviderOpenAI:
		return openai.NewModel(func(o *openai.Options) {
			if c.Model != "" {
				o.Model = c.Model
			}
			o.APIKey = c.APIKey
			o.Logger = logger
		})
	default:
		return anthropic.NewModel(func(o *anthropic.Options) {
			if c.Model != "" {
				o.Model = sdkanthropic.Model(c.Model)
			}
			o.APIKey = c.APIKey
			o.Logger = logger
		})
	}
}
