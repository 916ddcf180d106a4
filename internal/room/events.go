package room

import (
	"maps"
	"time"

	"github.com/ugaemi/missionroom-server/internal/game"
	"github.com/ugaemi/missionroom-server/internal/ws"
)

type playersUpdateMessage struct {
	Players []game.Player `json:"players"`
}

type timerUpdateMessage struct {
	Remaining float64 `json:"remaining"`
}

type missionStartedMessage struct {
	StartedAt time.Time `json:"startedAt"`
	Remaining float64   `json:"remaining"`
}

type puzzleStatusMessage struct {
	Key       string `json:"key"`
	Completed bool   `json:"completed"`
}

type emptyMessage struct{}

// The publish helpers below must be called with r.mu held so that every
// subscriber observes the room's events in the same order.

func (r *Room) publishPlayers() {
	r.bc.Publish(r.Name, ws.TypePlayersUpdate, playersUpdateMessage{Players: r.roster()})
}

func (r *Room) publishTimer() {
	r.bc.Publish(r.Name, ws.TypeTimerUpdate, timerUpdateMessage{Remaining: r.timer.remaining.Seconds()})
}

func (r *Room) publishProgress() {
	r.bc.Publish(r.Name, ws.TypeProgressSync, maps.Clone(r.puzzles))
}
