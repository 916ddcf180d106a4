package game

import (
	"math"
	"time"

	"github.com/samber/lo"
)

// AllSolved reports whether a puzzle map is non-empty and every entry is true.
func AllSolved(puzzles map[string]bool) bool {
	if len(puzzles) == 0 {
		return false
	}
	return lo.EveryBy(lo.Values(puzzles), func(done bool) bool { return done })
}

// ElapsedSeconds returns whole seconds between start and end, rounded and never negative.
func ElapsedSeconds(start, end time.Time) int {
	secs := math.Round(float64(end.Sub(start).Milliseconds()) / 1000)
	if secs < 0 {
		return 0
	}
	return int(secs)
}

// ClampRemaining keeps a countdown value inside [0, total].
func ClampRemaining(remaining, total time.Duration) time.Duration {
	return min(max(remaining, 0), total)
}
