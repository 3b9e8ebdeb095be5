package session

import (
	"context"
	"sync"

	"github.com/hupe1980/agentcore/core"
)

// Store persists chat histories keyed by user, session and agent.
type Store interface {
	// FetchChat returns the stored history, oldest first. An unknown key
	// yields an empty history.
	FetchChat(ctx context.Context, userID, sessionID, agentName string) ([]core.Message, error)
	// SaveChatMessages appends msgs to the history.
	SaveChatMessages(ctx context.Context, userID, sessionID, agentName string, msgs ...core.Message) error
}

// Options configure an InMemoryStore.
type Options struct {
	// MaxHistory keeps only the newest messages per key (0 = unlimited).
	MaxHistory int
}

type key struct {
	userID, sessionID, agentName string
}

// InMemoryStore is a volatile Store keeping histories in a process local
// map. It is safe for concurrent access and best suited for tests or demo
// servers. Returned histories are copies.
type InMemoryStore struct {
	mu    sync.RWMutex
	chats map[key][]core.Message
	opts  Options
}

// NewInMemoryStore constructs an empty in‑memory store.
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxHistory < 0 {
		opts.MaxHistory = 0
	}
	return &InMemoryStore{chats: make(map[key][]core.Message), opts: opts}
}

// FetchChat implements Store.
func (s *InMemoryStore) FetchChat(ctx context.Context, userID, sessionID, agentName string) ([]core.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.chats[key{userID, sessionID, agentName}]
	out := make([]core.Message, len(stored))
	for i, m := range stored {
		out[i] = m.Clone()
	}
	return out, nil
}

// SaveChatMessages implements Store. Trimming never starts the kept history
// with an assistant message.
func (s *InMemoryStore) SaveChatMessages(ctx context.Context, userID, sessionID, agentName string, msgs ...core.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{userID, sessionID, agentName}
	chat := s.chats[k]
	for _, m := range msgs {
		chat = append(chat, m.Clone())
	}
	s.chats[k] = s.trimLocked(chat)
	return nil
}

// Len returns the number of stored messages for a key.
func (s *InMemoryStore) Len(userID, sessionID, agentName string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chats[key{userID, sessionID, agentName}])
}

func (s *InMemoryStore) trimLocked(chat []core.Message) []core.Message {
	if s.opts.MaxHistory == 0 || len(chat) <= s.opts.MaxHistory {
		return chat
	}
	start := len(chat) - s.opts.MaxHistory
	for start < len(chat) && chat[start].Role() != core.RoleUser {
		start++
	}
	trimmed := make([]core.Message, len(chat)-start)
	copy(trimmed, chat[start:])
	return trimmed
}
