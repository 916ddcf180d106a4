package handler

import "net/http"

type healthResponse struct {
	Status string `json:"status"`
	Rooms  int    `json:"rooms"`
}

// RegisterRoutes mounts the HTTP endpoints on mux.
func (r *Router) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", r.ServeHealth)
	mux.HandleFunc("GET /leaderboard", r.score.ServeLeaderboard)
	mux.HandleFunc("GET /rooms/code", r.ServeRoomCode)
}

// ServeHealth reports liveness and the number of live rooms.
func (r *Router) ServeHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Rooms: r.rm.RoomCount()})
}

// ServeRoomCode suggests a room code that no live room is using.
func (r *Router) ServeRoomCode(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"room": r.rm.SuggestName()})
}
