package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentcore/agent"
	"github.com/hupe1980/agentcore/core"
	"github.com/hupe1980/agentcore/logging"
	"github.com/hupe1980/agentcore/model"
	"github.com/hupe1980/agentcore/session"
)

// Options holds dependency overrides passed to New().
type Options struct {
	// Store persists chat histories (default session.NewInMemoryStore()).
	Store session.Store
	// Logger receives run events (default no-op).
	Logger logging.Logger
}

// Runner binds an agent to a session store: it loads the history before a
// request and persists the exchange afterwards. Public methods are safe for
// concurrent use.
type Runner struct {
	agent  agent.Agent
	store  session.Store
	logger logging.Logger
}

// New constructs a Runner with optional overrides.
func New(a agent.Agent, optFns ...func(o *Options)) *Runner {
	opts := Options{
		Store:  session.NewInMemoryStore(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Store == nil {
		opts.Store = session.NewInMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Runner{agent: a, store: opts.Store, logger: opts.Logger}
}

// Store returns the session store used by the runner.
func (r *Runner) Store() session.Store { return r.store }

// Run answers input within the given session. Complete responses are
// persisted before Run returns. Streamed responses are persisted once the
// caller drains the stream; an abandoned or failed stream is not saved.
func (r *Runner) Run(ctx context.Context, input, userID, sessionID string, params map[string]string) (*agent.Response, error) {
	logger := logging.With(r.logger, "agent", r.agent.Name(), "user_id", userID, "session_id", sessionID)

	history, err := r.store.FetchChat(ctx, userID, sessionID, r.agent.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chat: %w", err)
	}

	resp, err := r.agent.ProcessRequest(ctx, input, userID, sessionID, history, params)
	if err != nil {
		return nil, err
	}

	user := core.NewUserText(input)

	if resp.IsStreaming() {
		resp.Stream = model.NewStream(&persistingSource{
			inner: resp.Stream,
			onDone: func(text string) {
				// the caller's ctx may already be done once the stream is drained
				saveCtx := context.WithoutCancel(ctx)
				if err := r.save(saveCtx, userID, sessionID, user, core.NewAssistantText(text)); err != nil {
					logger.Error("runner.save.error", "error", err.Error())
					return
				}
				logger.Debug("runner.save.completed", "streamed", true)
			},
		})
		return resp, nil
	}

	var msgs []core.Message
	switch {
	case len(resp.Conversation) > len(history):
		msgs = resp.Conversation[len(history):]
	case resp.Message != nil:
		msgs = []core.Message{user, *resp.Message}
	default:
		msgs = []core.Message{user}
	}
	if err := r.save(ctx, userID, sessionID, msgs...); err != nil {
		return nil, err
	}
	logger.Debug("runner.save.completed", "messages", len(msgs))

	return resp, nil
}

func (r *Runner) save(ctx context.Context, userID, sessionID string, msgs ...core.Message) error {
	if err := r.store.SaveChatMessages(ctx, userID, sessionID, r.agent.Name(), msgs...); err != nil {
		return fmt.Errorf("failed to save chat messages: %w", err)
	}
	return nil
}

// persistingSource forwards fragments and hands the accumulated text to
// onDone when the inner stream ends without error.
type persistingSource struct {
	inner  *model.Stream
	sb     strings.Builder
	onDone func(text string)
	fired  bool
}

func (p *persistingSource) Next() bool {
	if p.inner.Next() {
		p.sb.WriteString(p.inner.Fragment())
		return true
	}
	if p.inner.Err() == nil && !p.fired {
		p.fired = true
		p.onDone(p.sb.String())
	}
	return false
}

func (p *persistingSource) Fragment() string { return p.inner.Fragment() }

func (p *persistingSource) Err() error { return p.inner.Err() }

func (p *persistingSource) Close() error {
	p.fired = true
	return p.inner.Close()
}
