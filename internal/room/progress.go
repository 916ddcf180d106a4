package room

import (
	"log/slog"
	"maps"

	"github.com/ugaemi/missionroom-server/internal/game"
	"github.com/ugaemi/missionroom-server/internal/ws"
)

// setPuzzleStatus records a puzzle result. The returned summary is non-nil only on
// the call that completed the mission; later calls never overwrite it.
// Caller must hold r.mu.
func (r *Room) setPuzzleStatus(key string, completed bool) (map[string]bool, *game.MissionSummary) {
	r.puzzles[key] = completed

	r.bc.Publish(r.Name, ws.TypePuzzleStatusUpdate, puzzleStatusMessage{Key: key, Completed: completed})
	r.publishProgress()

	progress := maps.Clone(r.puzzles)
	expired := r.timer.remaining <= 0
	if r.missionStartedAt == nil || expired || r.summary != nil || !game.AllSolved(r.puzzles) {
		return progress, nil
	}

	now := r.now()
	r.summary = &game.MissionSummary{
		CompletedAt:    now,
		ElapsedSeconds: game.ElapsedSeconds(*r.missionStartedAt, now),
	}
	// The clock freezes on the completion time.
	r.cancelSchedule()

	r.bc.Publish(r.Name, ws.TypeMissionComplete, *r.summary)
	slog.Info("mission complete", "room", r.Name, "elapsed_seconds", r.summary.ElapsedSeconds)

	return progress, r.summaryCopy()
}
