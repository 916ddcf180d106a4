package ws

import "encoding/json"

// Message represents a WebSocket message with type-based routing.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Message types - Presence
const (
	TypeJoinRoom      = "joinRoom"
	TypeLeaveRoom     = "leaveRoom"
	TypeAvatarUpdate  = "avatarUpdate"
	TypePlayersUpdate = "playersUpdate"
)

// Message types - Chat
const (
	TypeChatMessage = "chatMessage"
	TypeNewMessage  = "newMessage"
)

// Message types - Mission
const (
	TypeStartMission       = "startMission"
	TypeMissionStarted     = "missionStarted"
	TypeResetMission       = "resetMission"
	TypeMissionReset       = "missionReset"
	TypeTimerUpdate        = "timerUpdate"
	TypeMissionExpired     = "missionExpired"
	TypePuzzleStatusUpdate = "puzzleStatusUpdate"
	TypeProgressSync       = "progressSync"
	TypeMissionComplete    = "missionComplete"
)

// Message types - Leaderboard
const (
	TypeSubmitScore   = "submitScore"
	TypeScoreRecorded = "scoreRecorded"
)

// Message types - System
const (
	TypeError = "error"
)

// ErrorMessage is sent when an error occurs.
type ErrorMessage struct {
	Message string `json:"message"`
}

// NewErrorMessage creates a Message with an error payload.
func NewErrorMessage(msg string) Message {
	data, _ := json.Marshal(ErrorMessage{Message: msg})
	return Message{Type: TypeError, Data: data}
}

// NewMessage creates a Message with a typed payload.
func NewMessage(msgType string, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: msgType, Data: data}, nil
}
