// Package ratelimit gates how often a single chat may trigger generation.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter enforces a per-chat cooldown window between accepted requests.
type Limiter struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
}

func New(window time.Duration) *Limiter {
	return &Limiter{
		window: window,
		last:   make(map[string]time.Time),
	}
}

// Admit reports whether a request for chatID at now may proceed. The check
// and the timestamp update are a single atomic step: of two near-simultaneous
// calls for the same chat, exactly one is admitted. A rejected call leaves
// the recorded timestamp untouched. A request exactly at the window boundary
// is admitted.
func (l *Limiter) Admit(chatID string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev, ok := l.last[chatID]
	if ok && now.Sub(prev) < l.window {
		return false
	}
	l.last[chatID] = now
	return true
}

// Window returns the configured cooldown window.
func (l *Limiter) Window() time.Duration {
	return l.window
}
