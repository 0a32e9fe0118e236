package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gridglow/vanishttt-backend/internal/entity"
	"github.com/gridglow/vanishttt-backend/internal/pkg"
	"github.com/gridglow/vanishttt-backend/internal/syncer"
)

type gameManager interface {
	MakeTurn(ctx context.Context, sessionID, gameID string, cell int) (*entity.Game, error)
	Restart(ctx context.Context, sessionID, gameID string) (*entity.Game, error)
}

type gameSyncer interface {
	Subscribe(ctx context.Context, gameID string) *syncer.Subscription
}

// Server - pushes record snapshots to browsers over a websocket. A client
// sends a "watch" action for a game id and receives an "update" for every
// change until it unwatches or the socket closes.
type Server struct {
	logger  *slog.Logger
	manager gameManager
	syncer  gameSyncer

	upgrader websocket.Upgrader
	handlers map[string]func(ctx context.Context, conn *connection, msg *Message) error
}

func New(logger *slog.Logger, manager gameManager, gameSyncer gameSyncer) *Server {
	server := &Server{
		logger:  logger,
		manager: manager,
		syncer:  gameSyncer,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the game is joined by shareable code, not by origin
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
	}

	server.handlers = map[string]func(context.Context, *connection, *Message) error{
		"game:watch":   server.handleWatch,
		"game:unwatch": server.handleUnwatch,
		"game:turn":    server.handleTurn,
		"game:restart": server.handleRestart,
	}

	return server
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// connection - one browser socket plus its active watch, if any. Writes
// are serialized; gorilla connections do not allow concurrent writers.
type connection struct {
	socket    *websocket.Conn
	sessionID string

	writeMu sync.Mutex

	watchMu sync.Mutex
	watch   *syncer.Subscription
}

func (that *connection) send(action string, payload ResponsePayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = that.socket.WriteJSON(Message{Action: action, Payload: raw}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// setWatch - swaps the active subscription, tearing down the previous one
// so navigating between games never leaks a watcher.
func (that *connection) setWatch(sub *syncer.Subscription) {
	that.watchMu.Lock()
	defer that.watchMu.Unlock()

	if that.watch != nil {
		that.watch.Unsubscribe()
	}
	that.watch = sub
}

func (that *Server) serveConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveConnection")

	sessionID := that.sessionIDFromRequest(w, r)

	socket, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := &connection{
		socket:    socket,
		sessionID: sessionID,
	}

	defer func() {
		conn.setWatch(nil)
		_ = socket.Close()
	}()

	log.Info("WebSocket connection established")

	that.handleMessages(ctx, conn)
}

// handleMessages - reads client messages until the socket closes.
func (that *Server) handleMessages(ctx context.Context, conn *connection) {
	log := that.logger.With("method", "handleMessages")

	for {
		var message Message
		if err := conn.socket.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			continue
		}

		if err := handler(ctx, conn, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// sessionIDFromRequest - reuses the REST session cookie so a browser's
// socket carries the same identity as its HTTP calls.
func (that *Server) sessionIDFromRequest(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie("player_session")
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := pkg.GenerateNewSessionID()
	http.SetCookie(w, &http.Cookie{
		Name:    "player_session",
		Value:   id,
		Expires: time.Now().Add(30 * 24 * time.Hour),
		Path:    "/",
	})

	return id
}
