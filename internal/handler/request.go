package handler

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ugaemi/missionroom-server/internal/room"
	"github.com/ugaemi/missionroom-server/internal/ws"
)

var validate = validator.New()

// normalizer is implemented by requests that clean up client input before validation.
type normalizer interface {
	normalize()
}

type joinRoomRequest struct {
	Identity string `json:"identity" validate:"required,max=64"`
	Room     string `json:"room" validate:"required,max=64"`
	Avatar   string `json:"avatar" validate:"max=256"`
}

func (r *joinRoomRequest) normalize() {
	r.Identity = strings.TrimSpace(r.Identity)
	r.Room = room.NormalizeName(r.Room)
	r.Avatar = strings.TrimSpace(r.Avatar)
}

type leaveRoomRequest struct {
	Room     string `json:"room" validate:"required,max=64"`
	Identity string `json:"identity" validate:"required,max=64"`
}

func (r *leaveRoomRequest) normalize() {
	r.Room = room.NormalizeName(r.Room)
	r.Identity = strings.TrimSpace(r.Identity)
}

type avatarUpdateRequest struct {
	Room     string `json:"room" validate:"required,max=64"`
	Identity string `json:"identity" validate:"required,max=64"`
	Avatar   string `json:"avatar" validate:"max=256"`
}

func (r *avatarUpdateRequest) normalize() {
	r.Room = room.NormalizeName(r.Room)
	r.Identity = strings.TrimSpace(r.Identity)
	r.Avatar = strings.TrimSpace(r.Avatar)
}

// chatMessageRequest carries text verbatim; only routing fields are cleaned.
type chatMessageRequest struct {
	Room     string `json:"room" validate:"required,max=64"`
	Identity string `json:"identity" validate:"required,max=64"`
	Text     string `json:"text"`
}

func (r *chatMessageRequest) normalize() {
	r.Room = room.NormalizeName(r.Room)
	r.Identity = strings.TrimSpace(r.Identity)
}

type startMissionRequest struct {
	Room    string `json:"room" validate:"required,max=64"`
	Restart bool   `json:"restart"`
}

func (r *startMissionRequest) normalize() {
	r.Room = room.NormalizeName(r.Room)
}

type resetMissionRequest struct {
	Room string `json:"room" validate:"required,max=64"`
}

func (r *resetMissionRequest) normalize() {
	r.Room = room.NormalizeName(r.Room)
}

type puzzleStatusRequest struct {
	Room      string `json:"room" validate:"required,max=64"`
	Key       string `json:"key" validate:"required,max=128"`
	Completed bool   `json:"completed"`
}

func (r *puzzleStatusRequest) normalize() {
	r.Room = room.NormalizeName(r.Room)
	r.Key = strings.TrimSpace(r.Key)
}

type submitScoreRequest struct {
	Room     string `json:"room" validate:"required,max=64"`
	TeamName string `json:"teamName"`
}

func (r *submitScoreRequest) normalize() {
	r.Room = room.NormalizeName(r.Room)
	r.TeamName = strings.TrimSpace(r.TeamName)
}

// decode unmarshals, normalizes and validates an intent payload. Malformed intents
// are dropped; other rooms must never be affected by a bad client.
func decode[T any, PT interface {
	*T
	normalizer
}](client *ws.Client, msg ws.Message) (*T, bool) {
	req := PT(new(T))
	if err := json.Unmarshal(msg.Data, req); err != nil {
		slog.Debug("dropping malformed intent", "type", msg.Type, "client", client.ID, "error", err)
		return nil, false
	}
	req.normalize()
	if err := validate.Struct(req); err != nil {
		slog.Debug("dropping invalid intent", "type", msg.Type, "client", client.ID, "error", err)
		return nil, false
	}
	return (*T)(req), true
}
