package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ugaemi/missionroom-server/internal/leaderboard"
	"github.com/ugaemi/missionroom-server/internal/room"
	"github.com/ugaemi/missionroom-server/internal/store"
	"github.com/ugaemi/missionroom-server/internal/ws"
)

const storeTimeout = 5 * time.Second

// ErrMissionIncomplete is reported when a score is submitted for a room without a summary.
var ErrMissionIncomplete = errors.New("mission not complete")

// ScoreHandler connects finished missions to the leaderboard store.
type ScoreHandler struct {
	rm     *room.Manager
	store  store.LeaderboardStore
	reads  singleflight.Group
	submit func(func())
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(rm *room.Manager, s store.LeaderboardStore) *ScoreHandler {
	return &ScoreHandler{
		rm:     rm,
		store:  s,
		submit: func(f func()) { go f() },
	}
}

type scoreRecordedResponse struct {
	Entry leaderboard.Entry `json:"entry"`
}

type leaderboardResponse struct {
	Entries []leaderboard.Entry `json:"entries"`
}

// HandleSubmitScore records the room's finished run. Store I/O runs off the hub goroutine
// so one slow write cannot stall other rooms.
func (h *ScoreHandler) HandleSubmitScore(client *ws.Client, msg ws.Message) {
	req, ok := decode[submitScoreRequest](client, msg)
	if !ok {
		return
	}

	h.submit(func() {
		entry, err := h.Record(context.Background(), req.Room, req.TeamName)
		switch {
		case errors.Is(err, ErrMissionIncomplete):
			client.SendMessage(ws.NewErrorMessage(err.Error()))
			return
		case err != nil:
			slog.Error("failed to record score", "room", req.Room, "error", err)
			client.SendMessage(ws.NewErrorMessage("could not record score"))
			return
		}

		resp, _ := ws.NewMessage(ws.TypeScoreRecorded, scoreRecordedResponse{Entry: *entry})
		client.SendMessage(resp)
	})
}

// Record stores the completed mission of a room under teamName.
// An empty team name falls back to the room name.
func (h *ScoreHandler) Record(ctx context.Context, roomName, teamName string) (*leaderboard.Entry, error) {
	summary, players, ok := h.rm.MissionResult(roomName)
	if !ok {
		return nil, ErrMissionIncomplete
	}
	if teamName == "" {
		teamName = roomName
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	entry, err := h.store.RecordFinishedRun(ctx, teamName, players, summary.ElapsedSeconds)
	if err != nil {
		return nil, err
	}
	slog.Info("score recorded", "room", roomName, "team", entry.TeamName, "elapsed_seconds", entry.ElapsedSeconds, "rank", entry.Rank)
	return entry, nil
}

// ServeLeaderboard handles GET /leaderboard?limit=N.
func (h *ScoreHandler) ServeLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	limit = leaderboard.ClampLimit(limit)

	v, err, _ := h.reads.Do(strconv.Itoa(limit), func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		return h.store.TopEntries(ctx, limit)
	})
	if err != nil {
		slog.Error("failed to load leaderboard", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not load leaderboard"})
		return
	}

	writeJSON(w, http.StatusOK, leaderboardResponse{Entries: v.([]leaderboard.Entry)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
