package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ugaemi/missionroom-server/internal/leaderboard"
)

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown leaderboard driver")

// LeaderboardStore defines the interface for persistent storage of finished runs.
type LeaderboardStore interface {
	// RecordFinishedRun stores a run and returns it with its rank at write time.
	RecordFinishedRun(ctx context.Context, teamName string, players []string, elapsedSeconds int) (*leaderboard.Entry, error)
	// TopEntries returns the best runs, fastest first, ties by earlier submission.
	TopEntries(ctx context.Context, limit int) ([]leaderboard.Entry, error)
	// Close releases storage resources.
	Close() error
}

// Options selects and configures a leaderboard backend.
type Options struct {
	Driver      string
	DatabaseURL string
	SQLitePath  string
}

// Open creates the configured leaderboard backend.
func Open(ctx context.Context, opts Options) (LeaderboardStore, error) {
	switch opts.Driver {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverPostgres:
		return NewPostgresStore(ctx, opts.DatabaseURL)
	case DriverSQLite:
		return NewSQLiteStore(opts.SQLitePath)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}

// clock is shared by the backends so tests can control submission order.
type clock func() time.Time

func (c clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
