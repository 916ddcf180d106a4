package handler

import (
	"log/slog"

	"github.com/ugaemi/missionroom-server/internal/room"
	"github.com/ugaemi/missionroom-server/internal/ws"
)

// LobbyHandler handles presence and chat messages.
type LobbyHandler struct {
	rm     *room.Manager
	router *Router
}

// NewLobbyHandler creates a new lobby handler.
func NewLobbyHandler(rm *room.Manager, router *Router) *LobbyHandler {
	return &LobbyHandler{
		rm:     rm,
		router: router,
	}
}

// HandleJoinRoom joins the client to a room. The room's snapshot is acknowledged
// directly to the client by the room itself.
func (h *LobbyHandler) HandleJoinRoom(client *ws.Client, msg ws.Message) {
	req, ok := decode[joinRoomRequest](client, msg)
	if !ok {
		return
	}

	h.switchMembership(client, membership{Room: req.Room, Identity: req.Identity})
	h.rm.Join(req.Room, req.Identity, req.Avatar, client)
}

// HandleLeaveRoom handles an explicit leave.
func (h *LobbyHandler) HandleLeaveRoom(client *ws.Client, msg ws.Message) {
	req, ok := decode[leaveRoomRequest](client, msg)
	if !ok {
		return
	}

	if m, ok := h.router.GetMember(client.ID); ok && m.Room == req.Room && m.Identity == req.Identity {
		h.router.UnregisterMember(client.ID)
	}
	h.rm.Leave(req.Room, req.Identity, client)
}

// HandleAvatarUpdate changes a player's avatar, joining them if they are not in the room yet.
func (h *LobbyHandler) HandleAvatarUpdate(client *ws.Client, msg ws.Message) {
	req, ok := decode[avatarUpdateRequest](client, msg)
	if !ok {
		return
	}

	h.switchMembership(client, membership{Room: req.Room, Identity: req.Identity})
	h.rm.UpdateAvatar(req.Room, req.Identity, req.Avatar, client)
}

// HandleChatMessage relays a chat line to the room.
func (h *LobbyHandler) HandleChatMessage(client *ws.Client, msg ws.Message) {
	req, ok := decode[chatMessageRequest](client, msg)
	if !ok {
		return
	}

	h.rm.Post(req.Room, req.Identity, req.Text)
	slog.Debug("chat message", "room", req.Room, "player", req.Identity)
}

// HandleDisconnect treats a dropped connection as an explicit leave.
func (h *LobbyHandler) HandleDisconnect(client *ws.Client) {
	m, ok := h.router.GetMember(client.ID)
	if !ok {
		return
	}
	h.router.UnregisterMember(client.ID)
	h.rm.Leave(m.Room, m.Identity, client)
	slog.Info("player disconnected", "player", m.Identity, "room", m.Room)
}

// switchMembership records next as the client's membership, leaving any other
// room or identity the connection held before.
func (h *LobbyHandler) switchMembership(client *ws.Client, next membership) {
	if prev, ok := h.router.GetMember(client.ID); ok && prev != next {
		h.rm.Leave(prev.Room, prev.Identity, client)
	}
	h.router.RegisterMember(client.ID, next)
}
