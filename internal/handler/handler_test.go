package handler

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ugaemi/missionroom-server/internal/leaderboard"
	"github.com/ugaemi/missionroom-server/internal/room"
	"github.com/ugaemi/missionroom-server/internal/store"
	"github.com/ugaemi/missionroom-server/internal/ws"
)

// failingStore implements store.LeaderboardStore and always fails.
type failingStore struct{}

func (failingStore) RecordFinishedRun(context.Context, string, []string, int) (*leaderboard.Entry, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) TopEntries(context.Context, int) ([]leaderboard.Entry, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) Close() error { return nil }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
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

type testEnv struct {
	router *Router
	rm     *room.Manager
	hub    *ws.Hub
	clock  *fakeClock
}

func setupRouter(t *testing.T, scores store.LeaderboardStore) *testEnv {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 4, 2, 19, 0, 0, 0, time.UTC)}
	hub := ws.NewHub()
	rm := room.NewManager(hub, room.Options{Now: clock.Now})
	router := NewRouter(rm, scores)
	router.score.submit = func(f func()) { f() }

	t.Cleanup(rm.Shutdown)
	return &testEnv{router: router, rm: rm, hub: hub, clock: clock}
}

func newClient(id string) *ws.Client {
	return &ws.Client{
		ID:   id,
		Send: make(chan []byte, 256),
	}
}

// send routes a client intent through the router.
func (e *testEnv) send(t *testing.T, client *ws.Client, msgType string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	raw, err := json.Marshal(ws.Message{Type: msgType, Data: data})
	require.NoError(t, err)
	e.router.HandleMessage(&ws.ClientMessage{Client: client, Data: raw})
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

func findMessageByType(msgs []ws.Message, msgType string) *ws.Message {
	for _, m := range msgs {
		if m.Type == msgType {
			return &m
		}
	}
	return nil
}

func readResponseWithTimeout(t *testing.T, client *ws.Client, timeout time.Duration) ws.Message {
	t.Helper()
	select {
	case data := <-client.Send:
		var msg ws.Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(timeout):
		t.Fatal("timeout waiting for response")
		return ws.Message{}
	}
}
