package model

import (
	"context"
	"sync"

	"github.com/hupe1980/agentcore/core"
)

// MockModel is a lightweight in-memory Model useful for tests & examples. It
// replays scripted assistant messages in order; once the script is exhausted
// the last message is repeated. Streaming splits the text of the next
// scripted message into one fragment per rune.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	script    []core.Message
	next      int
	requests  []Request
	closed    int
	err       error
	streamErr error
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name string, script ...core.Message) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      "mock",
			SupportsTools: true,
		},
		script: script,
	}
}

// SetError makes every following call fail with err.
func (m *MockModel) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetStreamError makes streams fail with err after yielding their fragments.
func (m *MockModel) SetStreamError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streamErr = err
}

// Converse implements Model.
func (m *MockModel) Converse(ctx context.Context, req Request) (core.Message, error) {
	if err := ctx.Err(); err != nil {
		return core.Message{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(req)
	if m.err != nil {
		return core.Message{}, m.err
	}
	msg, ok := m.advance()
	if !ok {
		return core.Message{}, ErrEmptyResponse
	}
	return msg, nil
}

// ConverseStream implements Model.
func (m *MockModel) ConverseStream(ctx context.Context, req Request) (*Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(req)
	if m.err != nil {
		return nil, m.err
	}
	msg, ok := m.advance()
	if !ok {
		return nil, ErrEmptyResponse
	}
	var fragments []string
	for _, r := range msg.Text() {
		fragments = append(fragments, string(r))
	}
	src := NewSliceSource(m.streamErr, fragments...)
	src.OnClose = func() {
		m.mu.Lock()
		m.closed++
		m.mu.Unlock()
	}
	return NewStream(src), nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }

// Calls returns how many requests were received.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns copies of the received requests.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// ClosedStreams returns how many streams released their source.
func (m *MockModel) ClosedStreams() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockModel) record(req Request) {
	msgs := make([]core.Message, len(req.Messages))
	copy(msgs, req.Messages)
	req.Messages = msgs
	m.requests = append(m.requests, req)
}

func (m *MockModel) advance() (core.Message, bool) {
	if len(m.script) == 0 {
		return core.Message{}, false
	}
	idx := m.next
	if idx >= len(m.script) {
		idx = len(m.script) - 1
	} else {
		m.next++
	}
	return m.script[idx], true
}
