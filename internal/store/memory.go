package store

import (
	"context"
	"slices"
	"sync"

	"github.com/samber/lo"

	"github.com/ugaemi/missionroom-server/internal/leaderboard"
)

// MemoryStore keeps the leaderboard in process memory.
type MemoryStore struct {
	entries []leaderboard.Entry
	clock   clock
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty in-memory leaderboard.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// RecordFinishedRun stores a run and returns it with its rank.
func (s *MemoryStore) RecordFinishedRun(_ context.Context, teamName string, players []string, elapsedSeconds int) (*leaderboard.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := leaderboard.NewEntry(teamName, players, elapsedSeconds, s.clock.now())
	entry.Rank = 1 + lo.CountBy(s.entries, func(e leaderboard.Entry) bool {
		return leaderboard.Better(e, *entry)
	})
	s.entries = append(s.entries, *entry)
	return entry, nil
}

// TopEntries returns the best runs.
func (s *MemoryStore) TopEntries(_ context.Context, limit int) ([]leaderboard.Entry, error) {
	s.mu.RLock()
	sorted := append([]leaderboard.Entry{}, s.entries...)
	s.mu.RUnlock()

	slices.SortStableFunc(sorted, func(a, b leaderboard.Entry) int {
		switch {
		case leaderboard.Better(a, b):
			return -1
		case leaderboard.Better(b, a):
			return 1
		default:
			return 0
		}
	})

	top := sorted[:min(len(sorted), leaderboard.ClampLimit(limit))]
	for i := range top {
		top[i].Rank = i + 1
	}
	return top, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
