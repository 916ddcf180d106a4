package game

import "time"

// Player is one roster entry of a room.
type Player struct {
	Identity string `json:"identity"`
	Avatar   string `json:"avatar,omitempty"`
}

// NewPlayer creates a roster entry.
func NewPlayer(identity, avatar string) *Player {
	return &Player{Identity: identity, Avatar: avatar}
}

// SetAvatar replaces the avatar token.
func (p *Player) SetAvatar(avatar string) {
	p.Avatar = avatar
}

// ChatMessage is an immutable entry of a room's chat log.
type ChatMessage struct {
	Identity string `json:"identity"`
	Text     string `json:"text"`
}

// MissionSummary is the result of a mission run whose puzzles were all solved.
type MissionSummary struct {
	CompletedAt    time.Time `json:"completedAt"`
	ElapsedSeconds int       `json:"elapsedSeconds"`
}
