package room

import (
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/ugaemi/missionroom-server/internal/game"
	"github.com/ugaemi/missionroom-server/internal/ws"
)

// Options configures the rooms created by a Manager.
type Options struct {
	Duration     time.Duration
	TickInterval time.Duration
	// Now is the clock used for mission start and completion times.
	Now func() time.Time
}

// DefaultOptions returns the production mission timing.
func DefaultOptions() Options {
	return Options{
		Duration:     game.RoomDuration,
		TickInterval: game.TickInterval,
		Now:          time.Now,
	}
}

// Manager is the registry of all live rooms, keyed by room name.
type Manager struct {
	rooms map[string]*Room
	bc    Broadcaster
	opts  Options
	mu    sync.RWMutex
}

// NewManager creates a new room manager. Zero option fields fall back to DefaultOptions.
func NewManager(bc Broadcaster, opts Options) *Manager {
	def := DefaultOptions()
	if opts.Duration <= 0 {
		opts.Duration = def.Duration
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = def.TickInterval
	}
	if opts.Now == nil {
		opts.Now = def.Now
	}
	return &Manager{
		rooms: make(map[string]*Room),
		bc:    bc,
		opts:  opts,
	}
}

// Duration returns the full mission length.
func (m *Manager) Duration() time.Duration {
	return m.opts.Duration
}

// GetOrCreate returns the room with the given name, creating an empty one if needed.
func (m *Manager) GetOrCreate(name string) *Room {
	m.mu.RLock()
	r, ok := m.rooms[name]
	m.mu.RUnlock()
	if ok {
		return r
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[name]; ok {
		return r
	}
	r = newRoom(name, m.bc, m.opts)
	m.rooms[name] = r
	slog.Info("room created", "room", name)
	return r
}

// GetRoom returns a room by its name, or nil.
func (m *Manager) GetRoom(name string) *Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[name]
}

// Delete removes a room if it has no players and no chat history.
func (m *Manager) Delete(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[name]
	if !ok {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isEmpty() {
		return false
	}
	r.cancelSchedule()
	r.deleted = true
	delete(m.rooms, name)

	slog.Info("room removed", "room", name)
	return true
}

// RoomCount returns the number of live rooms.
func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// RoomNames returns the sorted names of live rooms.
func (m *Manager) RoomNames() []string {
	m.mu.RLock()
	names := lo.Keys(m.rooms)
	m.mu.RUnlock()
	slices.Sort(names)
	return names
}

// SuggestName returns a room code that is not currently in use.
func (m *Manager) SuggestName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	existing := make(map[string]bool, len(m.rooms))
	for name := range m.rooms {
		existing[name] = true
	}
	return GenerateCode(existing)
}

// withRoom runs fn with exclusive access to the named room, creating it if needed.
// Rooms left without players and chat are collected afterwards.
func (m *Manager) withRoom(name string, fn func(r *Room)) {
	for {
		r := m.GetOrCreate(name)
		r.mu.Lock()
		if r.deleted {
			r.mu.Unlock()
			continue
		}
		fn(r)
		empty := r.isEmpty()
		r.mu.Unlock()

		if empty {
			m.Delete(name)
		}
		return
	}
}

// Join adds identity to the room and returns the state the client should render.
// The same snapshot is sent to client before any further room event.
func (m *Manager) Join(name, identity, avatar string, client *ws.Client) Snapshot {
	var snap Snapshot
	m.withRoom(name, func(r *Room) {
		snap = r.join(identity, avatar, client)
	})
	return snap
}

// Leave removes identity from the room. An emptied room stops its timer and,
// without chat history, is deleted.
func (m *Manager) Leave(name, identity string, client *ws.Client) {
	r := m.GetRoom(name)
	if r == nil {
		m.unsubscribe(client, name)
		return
	}
	m.leaveRoom(r, identity, client)
}

// leaveRoom removes identity from r. If r was deleted after it was looked up,
// only the client's subscription to the room name is dropped.
func (m *Manager) leaveRoom(r *Room, identity string, client *ws.Client) {
	r.mu.Lock()
	if r.deleted {
		r.mu.Unlock()
		m.unsubscribe(client, r.Name)
		return
	}
	r.leave(identity, client)
	empty := r.isEmpty()
	r.mu.Unlock()

	if empty {
		m.Delete(r.Name)
	}
}

func (m *Manager) unsubscribe(client *ws.Client, name string) {
	if client != nil {
		m.bc.Unsubscribe(client, name)
	}
}

// UpdateAvatar changes a player's avatar, adding the player if absent.
func (m *Manager) UpdateAvatar(name, identity, avatar string, client *ws.Client) {
	m.withRoom(name, func(r *Room) {
		r.updateAvatar(identity, avatar, client)
	})
}

// Post appends a chat message to the room's log and relays it.
func (m *Manager) Post(name, identity, text string) game.ChatMessage {
	var msg game.ChatMessage
	m.withRoom(name, func(r *Room) {
		msg = r.post(identity, text)
	})
	return msg
}

// History returns the room's full chat log.
func (m *Manager) History(name string) []game.ChatMessage {
	r := m.GetRoom(name)
	if r == nil {
		return []game.ChatMessage{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]game.ChatMessage{}, r.messages...)
}

// StartMission starts the room's countdown, or restarts it when reset is set.
// Starting an already running mission keeps its remaining time.
func (m *Manager) StartMission(name string, reset bool) time.Duration {
	var remaining time.Duration
	m.withRoom(name, func(r *Room) {
		r.start(reset)
		remaining = r.timer.remaining
		r.bc.Publish(r.Name, ws.TypeMissionStarted, missionStartedMessage{
			StartedAt: *r.missionStartedAt,
			Remaining: remaining.Seconds(),
		})
		r.publishTimer()
	})
	return remaining
}

// StopMission cancels the countdown and clears the current run.
func (m *Manager) StopMission(name string) {
	r := m.GetRoom(name)
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stop()
}

// ResetMission clears chat, puzzles and the mission while keeping the roster.
func (m *Manager) ResetMission(name string) {
	m.withRoom(name, func(r *Room) {
		r.reset()
	})
}

// SetPuzzleStatus records a puzzle result and returns the progress map, plus the
// mission summary if this call completed the mission.
func (m *Manager) SetPuzzleStatus(name, key string, completed bool) (map[string]bool, *game.MissionSummary) {
	var (
		progress map[string]bool
		summary  *game.MissionSummary
	)
	m.withRoom(name, func(r *Room) {
		progress, summary = r.setPuzzleStatus(key, completed)
	})
	return progress, summary
}

// MissionResult returns the room's summary and current player identities.
// ok is false when the room does not exist or its mission is not complete.
func (m *Manager) MissionResult(name string) (summary game.MissionSummary, players []string, ok bool) {
	r := m.GetRoom(name)
	if r == nil {
		return game.MissionSummary{}, nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.summary == nil {
		return game.MissionSummary{}, nil, false
	}
	players = lo.Map(r.players, func(p *member, _ int) string { return p.Identity })
	return *r.summary, players, true
}

// Shutdown cancels every active timer schedule.
func (m *Manager) Shutdown() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rooms {
		r.mu.Lock()
		r.cancelSchedule()
		r.mu.Unlock()
	}
}

// NormalizeName trims a client supplied room name. Room names are case-sensitive.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}
