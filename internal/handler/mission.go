package handler

import (
	"github.com/ugaemi/missionroom-server/internal/room"
	"github.com/ugaemi/missionroom-server/internal/ws"
)

// MissionHandler handles timer and puzzle messages.
type MissionHandler struct {
	rm *room.Manager
}

// NewMissionHandler creates a new mission handler.
func NewMissionHandler(rm *room.Manager) *MissionHandler {
	return &MissionHandler{rm: rm}
}

// HandleStartMission starts the room's countdown. Repeated starts while running are absorbed.
func (h *MissionHandler) HandleStartMission(client *ws.Client, msg ws.Message) {
	req, ok := decode[startMissionRequest](client, msg)
	if !ok {
		return
	}
	h.rm.StartMission(req.Room, req.Restart)
}

// HandleResetMission wipes the room's mission, chat and puzzles.
func (h *MissionHandler) HandleResetMission(client *ws.Client, msg ws.Message) {
	req, ok := decode[resetMissionRequest](client, msg)
	if !ok {
		return
	}
	h.rm.ResetMission(req.Room)
}

// HandlePuzzleStatus records a puzzle result for the whole room.
func (h *MissionHandler) HandlePuzzleStatus(client *ws.Client, msg ws.Message) {
	req, ok := decode[puzzleStatusRequest](client, msg)
	if !ok {
		return
	}
	h.rm.SetPuzzleStatus(req.Room, req.Key, req.Completed)
}
