package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists conversation history in PostgreSQL. The table is
// append-only: turns are only inserted and read back with a bounded limit,
// never updated or deleted. The seq column (insertion order) is
// authoritative for ordering; created_at is kept for audit.
type PostgresStore struct {
	pool     *pgxpool.Pool
	maxTurns int
}

func NewPostgresStore(ctx context.Context, databaseURL string, maxTurns int) (*PostgresStore, error) {
	if maxTurns <= 0 {
		maxTurns = 12
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool, maxTurns: maxTurns}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chat_turns (
			id TEXT PRIMARY KEY,
			chat_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			seq BIGSERIAL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chat_turns_chat_seq ON chat_turns (chat_id, seq);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, chatID string, role Role, content string) ([]Turn, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO chat_turns (id, chat_id, role, content, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(),
		chatID,
		string(role),
		content,
		time.Now().UTC(),
	)
	if err != nil {
		return nil, unavailable("append turn", err)
	}
	return s.Recent(ctx, chatID, s.maxTurns)
}

func (s *PostgresStore) Recent(ctx context.Context, chatID string, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = s.maxTurns
	}

	// Select the most recent limit turns, not the first limit ever written.
	rows, err := s.pool.Query(ctx,
		`SELECT id, chat_id, role, content, created_at
		 FROM chat_turns WHERE chat_id=$1 ORDER BY seq DESC LIMIT $2`,
		chatID,
		limit,
	)
	if err != nil {
		return nil, unavailable("query recent turns", err)
	}
	defer rows.Close()

	turns := make([]Turn, 0, limit)
	for rows.Next() {
		var t Turn
		var role string
		if err := rows.Scan(&t.ID, &t.ChatID, &role, &t.Content, &t.CreatedAt); err != nil {
			return nil, unavailable("scan turn row", err)
		}
		t.Role = Role(role)
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate turn rows", err)
	}

	// Reverse into chronological order for prompt coherence.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	return turns, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
