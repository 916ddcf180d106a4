package room

import "github.com/ugaemi/missionroom-server/internal/ws"

// Broadcaster delivers room events to connections. *ws.Hub implements it.
type Broadcaster interface {
	Subscribe(c *ws.Client, room string)
	Unsubscribe(c *ws.Client, room string)
	Publish(room, msgType string, payload any)
	SendDirect(c *ws.Client, msgType string, payload any)
}
