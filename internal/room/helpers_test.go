package room

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/ugaemi/missionroom-server/internal/ws"
)

// mockClient creates a ws.Client with a buffered Send channel for testing.
func mockClient(id string) *ws.Client {
	return &ws.Client{
		ID:   id,
		Send: make(chan []byte, 1024),
	}
}

// drainMessages reads all pending messages from a client's send channel.
func drainMessages(client *ws.Client) []ws.Message {
	var msgs []ws.Message
	for {
		select {
		case data := <-client.Send:
			var msg ws.Message
			if err := json.Unmarshal(data, &msg); err == nil {
				msgs = append(msgs, msg)
			}
		default:
			return msgs
		}
	}
}

// findMessageByType finds the first message of a given type.
func findMessageByType(msgs []ws.Message, msgType string) *ws.Message {
	for _, m := range msgs {
		if m.Type == msgType {
			return &m
		}
	}
	return nil
}

func messageTypes(msgs []ws.Message) []string {
	types := make([]string, 0, len(msgs))
	for _, m := range msgs {
		types = append(types, m.Type)
	}
	return types
}

// waitForMessage blocks until a message of msgType arrives, returning everything read so far.
func waitForMessage(t *testing.T, client *ws.Client, msgType string, timeout time.Duration) []ws.Message {
	t.Helper()
	var msgs []ws.Message
	deadline := time.After(timeout)
	for {
		select {
		case data := <-client.Send:
			var msg ws.Message
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			msgs = append(msgs, msg)
			if msg.Type == msgType {
				return msgs
			}
		case <-deadline:
			t.Fatalf("timeout waiting for %s", msgType)
			return msgs
		}
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// setupManager builds a Manager on a real hub with a short mission for timer tests.
func setupManager(opts Options) (*Manager, *ws.Hub) {
	hub := ws.NewHub()
	return NewManager(hub, opts), hub
}

func fastOptions() Options {
	return Options{Duration: 200 * time.Millisecond, TickInterval: 10 * time.Millisecond}
}
