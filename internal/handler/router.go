package handler

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/ugaemi/missionroom-server/internal/room"
	"github.com/ugaemi/missionroom-server/internal/store"
	"github.com/ugaemi/missionroom-server/internal/ws"
)

// membership is the room and identity a connection currently plays as.
type membership struct {
	Room     string
	Identity string
}

// Router dispatches incoming messages to the appropriate handler.
type Router struct {
	rm      *room.Manager
	lobby   *LobbyHandler
	mission *MissionHandler
	score   *ScoreHandler

	// members tracks client ID -> membership, shared across handlers.
	members map[string]membership
	mu      sync.RWMutex
}

// NewRouter creates a new message router.
func NewRouter(rm *room.Manager, scores store.LeaderboardStore) *Router {
	r := &Router{
		rm:      rm,
		members: make(map[string]membership),
	}
	r.lobby = NewLobbyHandler(rm, r)
	r.mission = NewMissionHandler(rm)
	r.score = NewScoreHandler(rm, scores)
	return r
}

// RegisterMember maps a client ID to its room membership.
func (r *Router) RegisterMember(clientID string, m membership) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[clientID] = m
}

// UnregisterMember removes a client's membership.
func (r *Router) UnregisterMember(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, clientID)
}

// GetMember returns the membership for a client.
func (r *Router) GetMember(clientID string) (membership, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[clientID]
	return m, ok
}

// HandleMessage parses and routes an incoming client message.
func (r *Router) HandleMessage(cm *ws.ClientMessage) {
	var msg ws.Message
	if err := json.Unmarshal(cm.Data, &msg); err != nil {
		slog.Warn("invalid message format", "client", cm.Client.ID, "error", err)
		cm.Client.SendMessage(ws.NewErrorMessage("invalid message format"))
		return
	}

	switch msg.Type {
	// Presence and chat
	case ws.TypeJoinRoom:
		r.lobby.HandleJoinRoom(cm.Client, msg)
	case ws.TypeLeaveRoom:
		r.lobby.HandleLeaveRoom(cm.Client, msg)
	case ws.TypeAvatarUpdate:
		r.lobby.HandleAvatarUpdate(cm.Client, msg)
	case ws.TypeChatMessage:
		r.lobby.HandleChatMessage(cm.Client, msg)

	// Mission
	case ws.TypeStartMission:
		r.mission.HandleStartMission(cm.Client, msg)
	case ws.TypeResetMission:
		r.mission.HandleResetMission(cm.Client, msg)
	case ws.TypePuzzleStatusUpdate:
		r.mission.HandlePuzzleStatus(cm.Client, msg)

	// Leaderboard
	case ws.TypeSubmitScore:
		r.score.HandleSubmitScore(cm.Client, msg)

	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", cm.Client.ID)
		cm.Client.SendMessage(ws.NewErrorMessage("unknown message type: " + msg.Type))
	}
}

// HandleDisconnect handles client disconnection.
func (r *Router) HandleDisconnect(client *ws.Client) {
	r.lobby.HandleDisconnect(client)
}
