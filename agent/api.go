package agent

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/logging"
	"github.com/hupe1980/agentcore/model/endpoint"
)

// APIAgentOptions configures an APIAgent.
type APIAgentOptions struct {
	// Streaming returns the response body as a Stream of decoded chunks.
	Streaming bool
	// Headers adds request headers; its values win over the defaults.
	Headers endpoint.HeadersFunc
	// HTTPClient performs the requests (default http.DefaultClient).
	HTTPClient *http.Client
	// Logger receives request events (default no-op).
	Logger logging.Logger
}

// APIAgent forwards requests to an HTTP endpoint. The codec builds the
// payload from the input and history and extracts the answer.
type APIAgent struct {
	BaseAgent
	client *endpoint.Client
	codec  endpoint.Codec
	opts   APIAgentOptions
}

// NewAPIAgent creates an agent for url. A nil codec sends {"input": text}
// and returns the response body unchanged.
func NewAPIAgent(name, description, url string, codec endpoint.Codec, optFns ...func(o *APIAgentOptions)) *APIAgent {
	opts := APIAgentOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if codec == nil {
		codec = endpoint.TextCodec{}
	}

	client := endpoint.New(url, func(o *endpoint.Options) {
		o.Headers = opts.Headers
		if opts.HTTPClient != nil {
			o.HTTPClient = opts.HTTPClient
		}
	})

	return &APIAgent{
		BaseAgent: NewBaseAgent(name, description),
		client:    client,
		codec:     codec,
		opts:      opts,
	}
}

// ProcessRequest implements Agent.
func (a *APIAgent) ProcessRequest(
	ctx context.Context,
	inputText, userID, sessionID string,
	history []core.Message,
	_ map[string]string,
) (*Response, error) {
	logger := logging.With(a.opts.Logger,
		"agent", a.Name(),
		"user_id", userID,
		"session_id", sessionID,
		"invocation_id", core.NewID(),
	)

	payload, err := a.codec.Encode(inputText, history)
	if err != nil {
		return nil, fmt.Errorf("encode input: %w", err)
	}

	logger.Info("agent.request.start", "endpoint", a.client.URL(), "streaming", a.opts.Streaming)
	start := time.Now()

	if a.opts.Streaming {
		stream, err := a.client.PostStream(ctx, payload, a.codec.Decode)
		if err != nil {
			logger.Error("agent.request.error", "error", err.Error())
			return nil, err
		}
		return &Response{Stream: stream}, nil
	}

	raw, err := a.client.Post(ctx, payload)
	if err != nil {
		logger.Error("agent.request.error", "error", err.Error())
		return nil, err
	}

	text, err := a.codec.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode output: %w", err)
	}

	logger.Info("agent.request.completed", "duration_ms", time.Since(start).Milliseconds())

	msg := core.NewAssistantText(text)
	return &Response{Message: &msg}, nil
}
