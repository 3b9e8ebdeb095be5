package agent

import (
	"context"
	"strings"

	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/model"
)

// Agent answers one user utterance given the prior chat history.
type Agent interface {
	// Name returns the human-readable name of the agent.
	Name() string
	// Description says what the agent is good at.
	Description() string
	// ProcessRequest dispatches inputText plus history and returns either a
	// complete message or a stream of text fragments.
	ProcessRequest(
		ctx context.Context,
		inputText, userID, sessionID string,
		history []core.Message,
		params map[string]string,
	) (*Response, error)
}

// Response carries exactly one of Message or Stream. Tool loop runs also
// report the conversation they produced.
type Response struct {
	Message *core.Message
	Stream  *model.Stream

	// Conversation holds the full tool loop conversation, replies and tool
	// results included. Empty for plain requests.
	Conversation []core.Message
	// ModelCalls counts model round trips; zero for streams and endpoints.
	ModelCalls int
	// Exhausted reports that the tool loop ran out of budget.
	Exhausted bool
}

// IsStreaming reports whether the response is a stream.
func (r *Response) IsStreaming() bool { return r.Stream != nil }

// Text returns the message text or drains the stream. Cancelling ctx
// abandons the stream and returns ctx.Err().
func (r *Response) Text(ctx context.Context) (string, error) {
	if r.Stream == nil {
		if r.Message == nil {
			return "", nil
		}
		return r.Message.Text(), nil
	}

	var sb strings.Builder
	for frag, err := range r.Stream.Fragments() {
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(frag)
		if err := ctx.Err(); err != nil {
			return sb.String(), err
		}
	}
	return sb.String(), nil
}

// BaseAgent holds the identity shared by all agents. Embed it in concrete
// implementations.
type BaseAgent struct {
	name        string
	description string
}

// NewBaseAgent constructs a BaseAgent.
func NewBaseAgent(name, description string) BaseAgent {
	return BaseAgent{name: name, description: description}
}

// Name returns the human-readable name for this agent.
func (b *BaseAgent) Name() string { return b.name }

// Description returns a detailed description of this agent's purpose.
func (b *BaseAgent) Description() string { return b.description }
