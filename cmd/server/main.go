package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ugaemi/missionroom-server/internal/config"
	"github.com/ugaemi/missionroom-server/internal/handler"
	"github.com/ugaemi/missionroom-server/internal/room"
	"github.com/ugaemi/missionroom-server/internal/store"
	"github.com/ugaemi/missionroom-server/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())

	scores, err := store.Open(ctx, store.Options{
		Driver:      cfg.LeaderboardDriver,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
	})
	if err != nil {
		slog.Error("failed to open leaderboard store", "driver", cfg.LeaderboardDriver, "error", err)
		os.Exit(1)
	}

	hub := ws.NewHub()
	rm := room.NewManager(hub, room.Options{
		Duration:     cfg.RoomDuration,
		TickInterval: cfg.TickInterval,
	})
	router := handler.NewRouter(rm, scores)

	hub.OnMessage = router.HandleMessage
	hub.OnDisconnect = router.HandleDisconnect

	go hub.Run(ctx)

	mux := http.NewServeMux()
	router.RegisterRoutes(mux)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(hub, w, r)
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}

	go func() {
		slog.Info("server starting", "addr", server.Addr, "leaderboard", cfg.LeaderboardDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"missionroom": func(shutdownCtx context.Context) error {
				slog.Info("graceful shutdown initiated")
				err := server.Shutdown(shutdownCtx)
				cancel()
				<-hub.Done()
				rm.Shutdown()
				return errors.Join(err, scores.Close())
			},
		},
	)

	exitCode := <-wait
	slog.Info("server stopped", "exit_code", exitCode)
	os.Exit(exitCode)
}

func handleWebSocket(hub *ws.Hub, w http.ResponseWriter, r *http.Request) {
	select {
	case <-hub.Done():
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	client := ws.NewClient(uuid.NewString(), hub, conn)
	select {
	case hub.Register <- client:
	case <-hub.Done():
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

func setupLogger(cfg *config.Config) {
	var h slog.Handler
	opts := &slog.HandlerOptions{}

	switch cfg.LogLevel {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	switch cfg.LogFormat {
	case "json":
		h = slog.NewJSONHandler(os.Stdout, opts)
	default:
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(h))
}
