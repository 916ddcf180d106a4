package room

import (
	"github.com/ugaemi/missionroom-server/internal/game"
	"github.com/ugaemi/missionroom-server/internal/ws"
)

// Caller must hold r.mu.
func (r *Room) post(identity, text string) game.ChatMessage {
	msg := game.ChatMessage{Identity: identity, Text: text}
	r.messages = append(r.messages, msg)
	r.bc.Publish(r.Name, ws.TypeNewMessage, msg)
	return msg
}
