package history

import (
	"context"
	"strings"
)

// NewStore creates a postgres-backed store when DATABASE_URL is configured,
// a redis-backed one when REDIS_URL is, otherwise in-memory.
func NewStore(ctx context.Context, databaseURL, redisURL string, maxTurns int) (Store, error) {
	if strings.TrimSpace(databaseURL) != "" {
		return NewPostgresStore(ctx, databaseURL, maxTurns)
	}
	if strings.TrimSpace(redisURL) != "" {
		return NewRedisStore(redisURL, maxTurns)
	}
	return NewMemoryStore(maxTurns), nil
}
