package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gridglow/vanishttt-backend/internal/entity"
	"github.com/gridglow/vanishttt-backend/internal/pkg"
)

type gameManager interface {
	CreateGame(ctx context.Context, sessionID, playerName string) (*entity.Game, error)
	JoinGame(ctx context.Context, sessionID, gameID, playerName string) (*entity.Game, error)
	MakeTurn(ctx context.Context, sessionID, gameID string, cell int) (*entity.Game, error)
	Restart(ctx context.Context, sessionID, gameID string) (*entity.Game, error)
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	ResolveRole(ctx context.Context, sessionID, gameID string) (string, string, error)
}

type Server struct {
	logger  *slog.Logger
	manager gameManager
	baseURL string
}

func New(logger *slog.Logger, manager gameManager, baseURL string) *Server {
	return &Server{
		logger:  logger,
		manager: manager,
		baseURL: baseURL,
	}
}

// Routes - the REST surface for game lifecycle and moves.
func (that *Server) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(that.withSessionCookie)

	router.Get("/ping", that.handlePing)
	router.Post("/games", that.handleCreateGame)
	router.Get("/games/{gameID}", that.handleGetGame)
	router.Post("/games/{gameID}/join", that.handleJoinGame)
	router.Post("/games/{gameID}/moves", that.handleMakeTurn)
	router.Post("/games/{gameID}/restart", that.handleRestart)

	return router
}

func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
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

type sessionKey struct{}

const sessionCookieName = "player_session"

// withSessionCookie - every browser gets a stable opaque session id; the
// seat it holds in each game is keyed by it.
func (that *Server) withSessionCookie(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			cookie = &http.Cookie{
				Name:    sessionCookieName,
				Value:   pkg.GenerateNewSessionID(),
				Expires: time.Now().Add(30 * 24 * time.Hour),
				Path:    "/",
			}
			http.SetCookie(w, cookie)
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, cookie.Value)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionKey{}).(string)
	return id
}
