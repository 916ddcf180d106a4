package room

import (
	"maps"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/ugaemi/missionroom-server/internal/game"
	"github.com/ugaemi/missionroom-server/internal/ws"
)

// Room is one mission session. All fields are guarded by mu; the Manager owns every Room.
type Room struct {
	Name string

	players  []*member
	messages []game.ChatMessage
	puzzles  map[string]bool

	missionStartedAt *time.Time
	summary          *game.MissionSummary
	timer            timerState

	// deleted is set once the Manager has dropped the room; holders of a stale pointer retry.
	deleted bool

	bc           Broadcaster
	duration     time.Duration
	tickInterval time.Duration
	now          func() time.Time

	mu sync.Mutex
}

// member is a roster entry together with the connection that joined it.
type member struct {
	*game.Player
	client *ws.Client
}

// Snapshot is the full state of a room, sent to a client when it joins.
type Snapshot struct {
	Room           string               `json:"room"`
	Players        []game.Player        `json:"players"`
	Messages       []game.ChatMessage   `json:"messages"`
	TimerRemaining float64              `json:"timerRemaining"`
	MissionStarted bool                 `json:"missionStarted"`
	Puzzles        map[string]bool      `json:"puzzles"`
	Summary        *game.MissionSummary `json:"summary,omitempty"`
}

func newRoom(name string, bc Broadcaster, opts Options) *Room {
	return &Room{
		Name:         name,
		players:      []*member{},
		messages:     []game.ChatMessage{},
		puzzles:      make(map[string]bool),
		timer:        timerState{remaining: opts.Duration},
		bc:           bc,
		duration:     opts.Duration,
		tickInterval: opts.TickInterval,
		now:          opts.Now,
	}
}

// Snapshot returns a copy of the room's current state.
func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// PlayerCount returns the number of players.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// IsEmpty returns true if the room has neither players nor chat history.
func (r *Room) IsEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isEmpty()
}

// Remaining returns the countdown value.
func (r *Room) Remaining() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timer.remaining
}

// TimerStatus reports whether a tick schedule is active.
func (r *Room) TimerStatus() game.TimerStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timer.status
}

// MissionStartedAt returns when the current run started, or nil.
func (r *Room) MissionStartedAt() *time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.missionStartedAt == nil {
		return nil
	}
	t := *r.missionStartedAt
	return &t
}

// Summary returns the mission summary of the current run, or nil.
func (r *Room) Summary() *game.MissionSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summaryCopy()
}

// Caller must hold r.mu.
func (r *Room) isEmpty() bool {
	return len(r.players) == 0 && len(r.messages) == 0
}

// Caller must hold r.mu.
func (r *Room) snapshot() Snapshot {
	return Snapshot{
		Room:           r.Name,
		Players:        r.roster(),
		Messages:       append([]game.ChatMessage{}, r.messages...),
		TimerRemaining: r.timer.remaining.Seconds(),
		MissionStarted: r.missionStartedAt != nil,
		Puzzles:        maps.Clone(r.puzzles),
		Summary:        r.summaryCopy(),
	}
}

// Caller must hold r.mu.
func (r *Room) roster() []game.Player {
	return lo.Map(r.players, func(m *member, _ int) game.Player { return *m.Player })
}

// Caller must hold r.mu.
func (r *Room) summaryCopy() *game.MissionSummary {
	if r.summary == nil {
		return nil
	}
	s := *r.summary
	return &s
}
