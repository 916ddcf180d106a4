package room

import (
	"log/slog"

	"github.com/samber/lo"

	"github.com/ugaemi/missionroom-server/internal/game"
	"github.com/ugaemi/missionroom-server/internal/ws"
)

// Caller must hold r.mu.
func (r *Room) join(identity, avatar string, client *ws.Client) Snapshot {
	if client != nil {
		r.bc.Subscribe(client, r.Name)
	}

	r.removeMember(identity, nil)
	r.players = append(r.players, &member{Player: game.NewPlayer(identity, avatar), client: client})

	snap := r.snapshot()
	if client != nil {
		r.bc.SendDirect(client, ws.TypeJoinRoom, snap)
	}
	r.publishPlayers()

	slog.Info("player joined room", "player", identity, "room", r.Name, "players", len(r.players))
	return snap
}

// leave removes identity from the roster. A non-nil client only removes the entry
// it joined, so a stale connection cannot evict a reconnected player.
// Caller must hold r.mu.
func (r *Room) leave(identity string, client *ws.Client) {
	if client != nil {
		r.bc.Unsubscribe(client, r.Name)
	}

	if r.removeMember(identity, client) {
		r.publishPlayers()
		slog.Info("player left room", "player", identity, "room", r.Name, "players", len(r.players))
	}

	if len(r.players) == 0 {
		r.stop()
	}
}

// Caller must hold r.mu.
func (r *Room) updateAvatar(identity, avatar string, client *ws.Client) {
	m, ok := lo.Find(r.players, func(m *member) bool { return m.Identity == identity })
	if ok {
		m.SetAvatar(avatar)
	} else {
		if client != nil {
			r.bc.Subscribe(client, r.Name)
		}
		r.players = append(r.players, &member{Player: game.NewPlayer(identity, avatar), client: client})
	}
	r.publishPlayers()
}

// removeMember drops identity's entry, restricted to client's entry when client is non-nil.
// Caller must hold r.mu.
func (r *Room) removeMember(identity string, client *ws.Client) bool {
	before := len(r.players)
	r.players = lo.Reject(r.players, func(m *member, _ int) bool {
		return m.Identity == identity && (client == nil || m.client == nil || m.client == client)
	})
	return len(r.players) != before
}
