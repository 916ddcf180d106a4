package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// Hub maintains the set of active clients, their room subscriptions, and routes messages.
type Hub struct {
	Clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Incoming   chan *ClientMessage

	// rooms maps a room name to the clients subscribed to its events.
	rooms map[string]map[*Client]bool
	mu    sync.RWMutex
	done  chan struct{}

	// OnMessage is called for each incoming client message.
	OnMessage func(cm *ClientMessage)
	// OnDisconnect is called when a client disconnects.
	OnDisconnect func(client *Client)
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Incoming:   make(chan *ClientMessage, 256),
		rooms:      make(map[string]map[*Client]bool),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop. It returns after ctx is cancelled and all clients are closed.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			slog.Info("hub stopped")
			return

		case client := <-h.Register:
			h.mu.Lock()
			h.Clients[client] = true
			h.mu.Unlock()
			slog.Info("client connected", "client", client.ID)

		case client := <-h.Unregister:
			h.remove(client)

		case cm := <-h.Incoming:
			if h.OnMessage != nil {
				h.OnMessage(cm)
			}
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) unregister(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) incoming(cm *ClientMessage) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.Incoming <- cm:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	_, ok := h.Clients[client]
	if ok {
		delete(h.Clients, client)
		for name, subs := range h.rooms {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.rooms, name)
			}
		}
		client.closeSend()
	}
	h.mu.Unlock()

	if !ok {
		return
	}
	slog.Info("client disconnected", "client", client.ID)
	if h.OnDisconnect != nil {
		h.OnDisconnect(client)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.Clients {
		client.closeSend()
		if client.Conn != nil {
			client.Conn.Close()
		}
	}
	h.Clients = make(map[*Client]bool)
	h.rooms = make(map[string]map[*Client]bool)
}

// Subscribe adds a client to a room's channel.
func (h *Hub) Subscribe(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.rooms[room]
	if !ok {
		subs = make(map[*Client]bool)
		h.rooms[room] = subs
	}
	subs[c] = true
}

// Unsubscribe removes a client from a room's channel.
func (h *Hub) Unsubscribe(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(subs, c)
	if len(subs) == 0 {
		delete(h.rooms, room)
	}
}

// Publish sends an event to every client currently subscribed to room.
func (h *Hub) Publish(room, msgType string, payload any) {
	data, err := encode(msgType, payload)
	if err != nil {
		slog.Error("failed to encode event", "type", msgType, "room", room, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[room] {
		client.sendRaw(data)
	}
}

// SendDirect sends an event to a single client.
func (h *Hub) SendDirect(c *Client, msgType string, payload any) {
	data, err := encode(msgType, payload)
	if err != nil {
		slog.Error("failed to encode event", "type", msgType, "client", c.ID, "error", err)
		return
	}
	c.sendRaw(data)
}

// SubscriberCount returns the number of clients subscribed to room.
func (h *Hub) SubscriberCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Clients)
}

func encode(msgType string, payload any) ([]byte, error) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(msg)
}
