package history

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn stores a single user or assistant conversational turn.
// A turn is immutable once appended.
type Turn struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrUnavailable marks backend failures. Callers must be able to tell an
// unreachable store apart from an empty history, so every backend error
// wraps this sentinel and an empty history is never returned on failure.
var ErrUnavailable = errors.New("history store unavailable")

// Store persists bounded per-chat conversation history.
//
// Append adds one turn, enforces the FIFO turn bound and returns the
// resulting trimmed history in chronological order. Appends for the same
// chat are serialized by the implementation; different chats proceed in
// parallel. Recent returns up to limit most-recent turns, oldest first.
type Store interface {
	Append(ctx context.Context, chatID string, role Role, content string) ([]Turn, error)
	Recent(ctx context.Context, chatID string, limit int) ([]Turn, error)
	Close() error
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
