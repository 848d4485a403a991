// Package server exposes the portal over HTTP: a small JSON API for the
// lobby lifecycle and a websocket per game session. State flows one way:
// clients send action frames, the server pushes the full game row whenever
// its version advances, signalled by Redis with a poll fallback.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kagehara/partydeck/internal/cache"
	"github.com/kagehara/partydeck/internal/database"
	"github.com/kagehara/partydeck/internal/game"
	"github.com/kagehara/partydeck/internal/models"
)

// Server routes portal requests to the game manager and fans out change
// signals to connected sessions.
type Server struct {
	mgr *game.Manager
	log *logrus.Entry

	mu   sync.Mutex
	subs map[uuid.UUID]map[chan int64]struct{}
}

// New constructs a Server around a manager.
func New(mgr *game.Manager) *Server {
	return &Server{
		mgr:  mgr,
		log:  logrus.WithField("component", "server"),
		subs: make(map[uuid.UUID]map[chan int64]struct{}),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /games", s.handleListGames)
	mux.HandleFunc("POST /games", s.handleCreateGame)
	mux.HandleFunc("GET /games/{id}", s.handleGetGame)
	mux.HandleFunc("POST /games/{id}/join", s.handleJoinGame)
	mux.HandleFunc("POST /games/{id}/start", s.handleStartGame)
	mux.HandleFunc("DELETE /games/{id}", s.handleAbandonGame)
	mux.HandleFunc("GET /games/{id}/history", s.handleHistory)
	mux.HandleFunc("GET /games/{id}/ws", s.handleSession)
	mux.HandleFunc("GET /players/active", s.handleActivePlayers)
	return mux
}

// Run starts the change-signal pump and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	go s.pumpChanges(ctx)

	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	s.log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// pumpChanges relays Redis change notifications to per-game subscribers.
// Without Redis the sessions fall back to polling.
func (s *Server) pumpChanges(ctx context.Context) {
	if cache.Rdb == nil {
		return
	}
	events, err := cache.SubscribeGameChanged(ctx)
	if err != nil {
		s.log.WithError(err).Warn("change subscription failed, sessions will poll")
		return
	}
	for ev := range events {
		s.mu.Lock()
		for ch := range s.subs[ev.GameID] {
			select {
			case ch <- ev.Version:
			default:
			}
		}
		s.mu.Unlock()
	}
}

func (s *Server) subscribe(gameID uuid.UUID) chan int64 {
	ch := make(chan int64, 4)
	s.mu.Lock()
	if s.subs[gameID] == nil {
		s.subs[gameID] = make(map[chan int64]struct{})
	}
	s.subs[gameID][ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Server) unsubscribe(gameID uuid.UUID, ch chan int64) {
	s.mu.Lock()
	delete(s.subs[gameID], ch)
	if len(s.subs[gameID]) == 0 {
		delete(s.subs, gameID)
	}
	s.mu.Unlock()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	rows, err := s.mgr.ListOpen(r.Context(), 50)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"games": rows})
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind     models.GameKind    `json:"kind"`
		PlayerID uuid.UUID          `json:"playerId"`
		Options  game.CreateOptions `json:"options"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	row, err := s.mgr.CreateGame(r.Context(), req.Kind, req.PlayerID, req.Options)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, row)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	row, err := s.mgr.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		PlayerID uuid.UUID `json:"playerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	row, err := s.mgr.Join(r.Context(), id, req.PlayerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		PlayerID uuid.UUID `json:"playerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	row, err := s.mgr.Start(r.Context(), id, req.PlayerID, uint64(time.Now().UnixNano()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleAbandonGame(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	playerID, err := uuid.Parse(r.URL.Query().Get("player"))
	if err != nil {
		http.Error(w, "bad player id", http.StatusBadRequest)
		return
	}
	if err := s.mgr.Abandon(r.Context(), id, playerID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if cache.Rdb == nil {
		http.Error(w, "history unavailable", http.StatusServiceUnavailable)
		return
	}
	records, err := cache.GameActionHistory(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"actions": records})
}

func (s *Server) handleActivePlayers(w http.ResponseWriter, r *http.Request) {
	if cache.Rdb == nil {
		http.Error(w, "presence unavailable", http.StatusServiceUnavailable)
		return
	}
	players, err := cache.ActivePlayers(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"players": players})
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "bad game id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("write response failed")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, game.ErrIllegalAction),
		errors.Is(err, game.ErrUnknownAction),
		errors.Is(err, game.ErrUnknownKind),
		errors.Is(err, game.ErrNotSeated),
		errors.Is(err, game.ErrNotHost):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, database.ErrVersionConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		s.log.WithError(err).Error("internal error")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
