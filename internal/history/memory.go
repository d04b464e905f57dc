package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a simple in-process history store for local/dev use.
// Each chat log carries its own lock, so appends for one chat are
// serialized while other chats are untouched.
type MemoryStore struct {
	mu       sync.Mutex
	chats    map[string]*chatLog
	maxTurns int
}

type chatLog struct {
	mu    sync.Mutex
	turns []Turn
}

func NewMemoryStore(maxTurns int) *MemoryStore {
	if maxTurns <= 0 {
		maxTurns = 12
	}
	return &MemoryStore{chats: make(map[string]*chatLog), maxTurns: maxTurns}
}

func (s *MemoryStore) log(chatID string) *chatLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.chats[chatID]
	if !ok {
		l = &chatLog{}
		s.chats[chatID] = l
	}
	return l
}

func (s *MemoryStore) Append(_ context.Context, chatID string, role Role, content string) ([]Turn, error) {
	l := s.log(chatID)
	l.mu.Lock()
	defer l.mu.Unlock()

	l.turns = append(l.turns, Turn{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
	if n := len(l.turns); n > s.maxTurns {
		// Evict oldest first; reslice into a fresh backing array so the
		// log does not pin evicted turns.
		trimmed := make([]Turn, s.maxTurns)
		copy(trimmed, l.turns[n-s.maxTurns:])
		l.turns = trimmed
	}
	return cloneTurns(l.turns), nil
}

func (s *MemoryStore) Recent(_ context.Context, chatID string, limit int) ([]Turn, error) {
	l := s.log(chatID)
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.turns) == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > len(l.turns) {
		limit = len(l.turns)
	}
	return cloneTurns(l.turns[len(l.turns)-limit:]), nil
}

func (s *MemoryStore) Close() error { return nil }

func cloneTurns(turns []Turn) []Turn {
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}
