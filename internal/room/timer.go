package room

import (
	"log/slog"
	"time"

	"github.com/ugaemi/missionroom-server/internal/game"
	"github.com/ugaemi/missionroom-server/internal/ws"
)

type timerState struct {
	remaining time.Duration
	status    game.TimerStatus
	startedAt *time.Time

	// stopCh is closed to cancel the active tick schedule; nil while stopped.
	stopCh chan struct{}
}

// start begins a mission run. A running or completed run is left untouched unless
// reset is set. Returns false when the call was absorbed.
// Caller must hold r.mu.
func (r *Room) start(reset bool) bool {
	if !reset && (r.timer.status == game.TimerRunning || r.summary != nil) {
		return false
	}
	r.cancelSchedule()

	now := r.now()
	r.timer.remaining = r.duration
	r.timer.startedAt = &now
	r.missionStartedAt = &now
	r.summary = nil

	stop := make(chan struct{})
	r.timer.stopCh = stop
	r.timer.status = game.TimerRunning
	go r.tickLoop(stop)

	slog.Info("mission started", "room", r.Name, "duration", r.duration)
	return true
}

// stop cancels the schedule and restores the timer to a fresh, unstarted mission.
// Caller must hold r.mu.
func (r *Room) stop() {
	r.cancelSchedule()
	r.timer.remaining = r.duration
	r.timer.startedAt = nil
	r.missionStartedAt = nil
	r.summary = nil
}

// cancelSchedule is safe to call without an active schedule. Once it returns no
// further tick is applied, because ticks run under r.mu and check their channel.
// Caller must hold r.mu.
func (r *Room) cancelSchedule() {
	if r.timer.stopCh != nil {
		close(r.timer.stopCh)
		r.timer.stopCh = nil
	}
	r.timer.status = game.TimerStopped
}

func (r *Room) tickLoop(stop chan struct{}) {
	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !r.tick(stop) {
				return
			}
		}
	}
}

// tick applies one decrement. It returns false once the schedule has ended.
func (r *Room) tick(stop chan struct{}) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	select {
	case <-stop:
		return false
	default:
	}

	r.timer.remaining = game.ClampRemaining(r.timer.remaining-r.tickInterval, r.duration)
	r.publishTimer()

	if r.timer.remaining > 0 {
		return true
	}

	r.cancelSchedule()
	r.bc.Publish(r.Name, ws.TypeMissionExpired, emptyMessage{})
	slog.Info("mission timer expired", "room", r.Name)
	return false
}

// reset wipes the mission and chat while keeping the roster.
// Caller must hold r.mu.
func (r *Room) reset() {
	r.stop()
	r.messages = []game.ChatMessage{}
	r.puzzles = make(map[string]bool)

	r.bc.Publish(r.Name, ws.TypeMissionReset, emptyMessage{})
	r.publishTimer()
	r.publishProgress()

	slog.Info("mission reset", "room", r.Name)
}
