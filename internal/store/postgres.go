package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ugaemi/missionroom-server/internal/leaderboard"
)

const schema = `
CREATE TABLE IF NOT EXISTS leaderboard_entries (
    id TEXT PRIMARY KEY,
    team_name TEXT NOT NULL,
    players TEXT[] NOT NULL DEFAULT '{}',
    elapsed_seconds INTEGER NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_leaderboard_entries_rank ON leaderboard_entries(elapsed_seconds, created_at);
`

// PostgresStore implements LeaderboardStore using PostgreSQL.
type PostgresStore struct {
	pool  *pgxpool.Pool
	clock clock
}

// NewPostgresStore connects to PostgreSQL and initializes the schema.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create leaderboard schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// RecordFinishedRun inserts a run and computes its rank.
func (s *PostgresStore) RecordFinishedRun(ctx context.Context, teamName string, players []string, elapsedSeconds int) (*leaderboard.Entry, error) {
	entry := leaderboard.NewEntry(teamName, players, elapsedSeconds, s.clock.now())

	_, err := s.pool.Exec(ctx,
		`INSERT INTO leaderboard_entries (id, team_name, players, elapsed_seconds, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.TeamName, entry.Players, entry.ElapsedSeconds, entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert leaderboard entry: %w", err)
	}

	var better int
	err = s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM leaderboard_entries
		 WHERE elapsed_seconds < $1 OR (elapsed_seconds = $1 AND created_at < $2)`,
		entry.ElapsedSeconds, entry.CreatedAt).Scan(&better)
	if err != nil {
		return nil, fmt.Errorf("rank leaderboard entry: %w", err)
	}
	entry.Rank = better + 1

	return entry, nil
}

// TopEntries returns the best runs.
func (s *PostgresStore) TopEntries(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, team_name, players, elapsed_seconds, created_at
		 FROM leaderboard_entries
		 ORDER BY elapsed_seconds ASC, created_at ASC
		 LIMIT $1`, leaderboard.ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []leaderboard.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		e.Rank = len(entries) + 1
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}
	return entries, nil
}

// Close releases database resources.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanEntry(row pgx.Row) (*leaderboard.Entry, error) {
	var e leaderboard.Entry
	err := row.Scan(&e.ID, &e.TeamName, &e.Players, &e.ElapsedSeconds, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}
