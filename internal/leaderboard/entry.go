package leaderboard

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	DefaultTeamName   = "Unnamed Team"
	MaxTeamNameLength = 40
	DefaultLimit      = 10
	MaxLimit          = 100
)

// Entry is one finished mission run on the leaderboard.
type Entry struct {
	ID             string    `json:"id"`
	TeamName       string    `json:"teamName"`
	Players        []string  `json:"players"`
	ElapsedSeconds int       `json:"elapsedSeconds"`
	CreatedAt      time.Time `json:"createdAt"`
	Rank           int       `json:"rank"`
}

// NewEntry creates a normalized entry stamped with createdAt.
// Timestamps are truncated to microseconds so every backend compares them identically.
func NewEntry(teamName string, players []string, elapsedSeconds int, createdAt time.Time) *Entry {
	return &Entry{
		ID:             uuid.New().String(),
		TeamName:       NormalizeTeamName(teamName),
		Players:        NormalizePlayers(players),
		ElapsedSeconds: max(elapsedSeconds, 0),
		CreatedAt:      createdAt.UTC().Truncate(time.Microsecond),
	}
}

// NormalizeTeamName trims, defaults and bounds a team name.
func NormalizeTeamName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultTeamName
	}
	if utf8.RuneCountInString(name) > MaxTeamNameLength {
		name = string([]rune(name)[:MaxTeamNameLength])
	}
	return name
}

// NormalizePlayers trims names and drops blanks and duplicates, keeping order.
func NormalizePlayers(players []string) []string {
	trimmed := lo.Map(players, func(p string, _ int) string { return strings.TrimSpace(p) })
	return lo.Uniq(lo.Compact(trimmed))
}

// ClampLimit bounds a requested page size to [1, MaxLimit], defaulting non-positive values.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}

// Better reports whether a ranks strictly ahead of b: faster runs first,
// ties broken by earlier submission.
func Better(a, b Entry) bool {
	if a.ElapsedSeconds != b.ElapsedSeconds {
		return a.ElapsedSeconds < b.ElapsedSeconds
	}
	return a.CreatedAt.Before(b.CreatedAt)
}
