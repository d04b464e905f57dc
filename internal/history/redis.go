package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const chatKeyPrefix = "chat:"

// RedisStore keeps each chat's history in a Redis list of JSON-encoded
// turns. RPUSH plus LTRIM enforces the FIFO bound server-side, so the
// stored list never grows past maxTurns.
type RedisStore struct {
	client   *redis.Client
	maxTurns int
}

func NewRedisStore(redisURL string, maxTurns int) (*RedisStore, error) {
	if maxTurns <= 0 {
		maxTurns = 12
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisStore{client: redis.NewClient(opts), maxTurns: maxTurns}, nil
}

func (s *RedisStore) Append(ctx context.Context, chatID string, role Role, content string) ([]Turn, error) {
	turn := Turn{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	val, err := json.Marshal(turn)
	if err != nil {
		return nil, unavailable("encode turn", err)
	}

	key := s.key(chatID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, val)
	pipe.LTrim(ctx, key, int64(-s.maxTurns), -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, unavailable("append turn", err)
	}
	return s.Recent(ctx, chatID, s.maxTurns)
}

func (s *RedisStore) Recent(ctx context.Context, chatID string, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = s.maxTurns
	}
	vals, err := s.client.LRange(ctx, s.key(chatID), int64(-limit), -1).Result()
	if err != nil {
		return nil, unavailable("query recent turns", err)
	}
	if len(vals) == 0 {
		return nil, nil
	}

	turns := make([]Turn, 0, len(vals))
	for _, v := range vals {
		var t Turn
		if err := json.Unmarshal([]byte(v), &t); err != nil {
			return nil, unavailable("decode turn", err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(chatID string) string {
	return chatKeyPrefix + chatID + ":turns"
}
