package room

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugaemi/missionroom-server/internal/game"
	"github.com/ugaemi/missionroom-server/internal/ws"
)

func TestGetOrCreate_DefaultState(t *testing.T) {
	m, _ := setupManager(Options{})

	r := m.GetOrCreate("4521")
	snap := r.Snapshot()

	assert.Equal(t, "4521", snap.Room)
	assert.Empty(t, snap.Players)
	assert.Empty(t, snap.Messages)
	assert.Empty(t, snap.Puzzles)
	assert.False(t, snap.MissionStarted)
	assert.Nil(t, snap.Summary)
	assert.Equal(t, game.RoomDuration.Seconds(), snap.TimerRemaining)
	assert.Equal(t, game.TimerStopped, r.TimerStatus())
	assert.Same(t, r, m.GetOrCreate("4521"))
}

func TestGetOrCreate_ConcurrentFirstJoin(t *testing.T) {
	m, _ := setupManager(Options{})

	const n = 64
	rooms := make([]*Room, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rooms[i] = m.GetOrCreate("fresh")
		}()
	}
	wg.Wait()

	for _, r := range rooms {
		assert.Same(t, rooms[0], r)
	}
	assert.Equal(t, 1, m.RoomCount())
}

func TestGetOrCreate_NamesAreCaseSensitive(t *testing.T) {
	m, _ := setupManager(Options{})
	assert.NotSame(t, m.GetOrCreate("Vault"), m.GetOrCreate("vault"))
	assert.Equal(t, []string{"Vault", "vault"}, m.RoomNames())
}

func TestDelete_OnlyEmptyRooms(t *testing.T) {
	m, _ := setupManager(Options{})
	m.Join("X", "A", "", nil)

	assert.False(t, m.Delete("X"))
	assert.Equal(t, 1, m.RoomCount())

	m.Leave("X", "A", nil)
	assert.Nil(t, m.GetRoom("X"))
	assert.False(t, m.Delete("X"))
}

func TestJoin_AcksSnapshotThenBroadcastsRoster(t *testing.T) {
	m, _ := setupManager(Options{})
	a, b := mockClient("a"), mockClient("b")

	m.Join("4521", "A", "fox", a)
	drainMessages(a)

	snap := m.Join("4521", "B", "owl", b)
	require.Len(t, snap.Players, 2)
	assert.Equal(t, game.Player{Identity: "A", Avatar: "fox"}, snap.Players[0])
	assert.Equal(t, game.Player{Identity: "B", Avatar: "owl"}, snap.Players[1])

	bMsgs := drainMessages(b)
	assert.Equal(t, []string{ws.TypeJoinRoom, ws.TypePlayersUpdate}, messageTypes(bMsgs))

	var ack Snapshot
	require.NoError(t, json.Unmarshal(bMsgs[0].Data, &ack))
	assert.Equal(t, snap.Players, ack.Players)
	assert.Equal(t, 600.0, ack.TimerRemaining)

	aMsgs := drainMessages(a)
	assert.Equal(t, []string{ws.TypePlayersUpdate}, messageTypes(aMsgs))
}

func TestJoin_RejoinMovesToEnd(t *testing.T) {
	m, _ := setupManager(Options{})

	m.Join("X", "A", "cat", nil)
	m.Join("X", "B", "", nil)
	snap := m.Join("X", "A", "dog", nil)

	assert.Equal(t, []game.Player{
		{Identity: "B"},
		{Identity: "A", Avatar: "dog"},
	}, snap.Players)
}

func TestJoin_LateJoinerReceivesChatHistory(t *testing.T) {
	m, _ := setupManager(Options{})
	a, b := mockClient("a"), mockClient("b")

	m.Join("X", "A", "", a)
	m.Post("X", "A", "hello")

	snap := m.Join("X", "B", "", b)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, game.ChatMessage{Identity: "A", Text: "hello"}, snap.Messages[0])

	ack := findMessageByType(drainMessages(b), ws.TypeJoinRoom)
	require.NotNil(t, ack)
	assert.Contains(t, string(ack.Data), `"hello"`)
}

func TestLeave_RemovesEmptyRoom(t *testing.T) {
	m, hub := setupManager(Options{})
	a := mockClient("a")

	m.Join("X", "A", "", a)
	assert.Equal(t, 1, hub.SubscriberCount("X"))

	m.Leave("X", "A", a)
	assert.Nil(t, m.GetRoom("X"))
	assert.Equal(t, 0, hub.SubscriberCount("X"))
}

func TestLeave_KeepsRoomWithChatHistory(t *testing.T) {
	m, _ := setupManager(Options{})

	m.Join("X", "A", "", nil)
	m.Post("X", "A", "brb")
	m.Leave("X", "A", nil)

	r := m.GetRoom("X")
	require.NotNil(t, r)
	assert.Equal(t, 0, r.PlayerCount())
	assert.Equal(t, []game.ChatMessage{{Identity: "A", Text: "brb"}}, m.History("X"))
}

func TestLeave_BroadcastsRosterToRemaining(t *testing.T) {
	m, _ := setupManager(Options{})
	a, b := mockClient("a"), mockClient("b")
	m.Join("X", "A", "", a)
	m.Join("X", "B", "", b)
	drainMessages(a)

	m.Leave("X", "B", b)

	msg := findMessageByType(drainMessages(a), ws.TypePlayersUpdate)
	require.NotNil(t, msg)
	assert.JSONEq(t, `{"players":[{"identity":"A"}]}`, string(msg.Data))
	assert.Empty(t, drainMessages(b))
}

func TestLeave_StaleConnectionKeepsReconnectedPlayer(t *testing.T) {
	m, _ := setupManager(Options{})
	oldConn, newConn := mockClient("old"), mockClient("new")

	m.Join("X", "A", "", oldConn)
	m.Join("X", "A", "", newConn)

	m.Leave("X", "A", oldConn)

	r := m.GetRoom("X")
	require.NotNil(t, r)
	assert.Equal(t, 1, r.PlayerCount())

	m.Leave("X", "A", newConn)
	assert.Nil(t, m.GetRoom("X"))
}

func TestLeave_DeletedRoomDropsSubscription(t *testing.T) {
	m, hub := setupManager(Options{})
	a, b := mockClient("a"), mockClient("b")

	// a still holds the room it looked up when the registry deleted it.
	hub.Subscribe(a, "X")
	r := m.GetOrCreate("X")
	require.True(t, m.Delete("X"))

	m.leaveRoom(r, "A", a)
	assert.Equal(t, 0, hub.SubscriberCount("X"))

	m.Join("X", "B", "", b)
	m.Post("X", "B", "hi")
	assert.Empty(t, drainMessages(a))
	assert.Equal(t, 1, hub.SubscriberCount("X"))
}

func TestLeave_UnknownRoomIsNoop(t *testing.T) {
	m, _ := setupManager(Options{})
	m.Leave("ghost", "A", mockClient("a"))
	assert.Equal(t, 0, m.RoomCount())
}

func TestUpdateAvatar(t *testing.T) {
	m, _ := setupManager(Options{})
	a := mockClient("a")
	m.Join("X", "A", "fox", a)
	m.Join("X", "B", "owl", nil)
	drainMessages(a)

	m.UpdateAvatar("X", "A", "bear", a)

	snap := m.GetRoom("X").Snapshot()
	assert.Equal(t, []game.Player{{Identity: "A", Avatar: "bear"}, {Identity: "B", Avatar: "owl"}}, snap.Players)
	assert.Equal(t, []string{ws.TypePlayersUpdate}, messageTypes(drainMessages(a)))
}

func TestUpdateAvatar_AddsMissingPlayerWithoutReplay(t *testing.T) {
	m, hub := setupManager(Options{})
	c := mockClient("c")
	m.Post("X", "A", "hi")

	m.UpdateAvatar("X", "C", "wolf", c)

	assert.Equal(t, 1, hub.SubscriberCount("X"))
	msgs := drainMessages(c)
	assert.Equal(t, []string{ws.TypePlayersUpdate}, messageTypes(msgs))
	assert.Equal(t, []game.Player{{Identity: "C", Avatar: "wolf"}}, m.GetRoom("X").Snapshot().Players)
}

func TestPost_BroadcastsVerbatim(t *testing.T) {
	m, _ := setupManager(Options{})
	a, b := mockClient("a"), mockClient("b")
	m.Join("X", "A", "", a)
	m.Join("X", "B", "", b)
	drainMessages(a)
	drainMessages(b)

	msg := m.Post("X", "A", "  spaced out  ")
	assert.Equal(t, "  spaced out  ", msg.Text)

	for _, c := range []*ws.Client{a, b} {
		got := findMessageByType(drainMessages(c), ws.TypeNewMessage)
		require.NotNil(t, got)
		assert.JSONEq(t, `{"identity":"A","text":"  spaced out  "}`, string(got.Data))
	}
}

func TestHistory_UnknownRoomIsEmpty(t *testing.T) {
	m, _ := setupManager(Options{})
	assert.Empty(t, m.History("nowhere"))
	assert.Equal(t, 0, m.RoomCount())
}

func TestRooms_AreIsolated(t *testing.T) {
	m, _ := setupManager(Options{})
	a, b := mockClient("a"), mockClient("b")
	m.Join("one", "A", "", a)
	m.Join("two", "B", "", b)
	drainMessages(a)
	drainMessages(b)

	m.Post("one", "A", "secret")
	m.SetPuzzleStatus("one", "p1", true)

	assert.Empty(t, drainMessages(b))
	snap := m.GetRoom("two").Snapshot()
	assert.Empty(t, snap.Messages)
	assert.Empty(t, snap.Puzzles)
}

func TestRoster_MatchesJoinedSetForRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	identities := []string{"A", "B", "C", "D"}

	for round := range 20 {
		t.Run(fmt.Sprintf("round-%d", round), func(t *testing.T) {
			m, _ := setupManager(Options{})
			joined := map[string]bool{}

			for range 40 {
				id := identities[rng.IntN(len(identities))]
				if rng.IntN(2) == 0 {
					m.Join("R", id, "", nil)
					joined[id] = true
				} else {
					m.Leave("R", id, nil)
					delete(joined, id)
				}

				var want []string
				for id := range joined {
					want = append(want, id)
				}
				slices.Sort(want)

				r := m.GetRoom("R")
				if len(want) == 0 {
					assert.Nil(t, r)
					continue
				}
				require.NotNil(t, r)
				var got []string
				for _, p := range r.Snapshot().Players {
					got = append(got, p.Identity)
				}
				slices.Sort(got)
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestSuggestName_AvoidsLiveRooms(t *testing.T) {
	m, _ := setupManager(Options{})
	m.Join("1234", "A", "", nil)

	code := m.SuggestName()
	assert.Len(t, code, 4)
	assert.NotEqual(t, "1234", code)
}

func TestGenerateCode_Digits(t *testing.T) {
	code := GenerateCode(map[string]bool{})
	assert.Regexp(t, `^[0-9]{4}$`, code)
}

func TestGenerateCode_WidensWhenFourDigitsAreTaken(t *testing.T) {
	taken := make(map[string]bool, 10000)
	for i := range 10000 {
		taken[fmt.Sprintf("%04d", i)] = true
	}

	code := GenerateCode(taken)
	assert.Regexp(t, `^[0-9]{5}$`, code)
	assert.False(t, taken[code])
}
