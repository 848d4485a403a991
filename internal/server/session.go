package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kagehara/partydeck/internal/cache"
	"github.com/kagehara/partydeck/internal/database"
	"github.com/kagehara/partydeck/internal/game"
	"github.com/kagehara/partydeck/internal/models"
)

// pollInterval is the fallback cadence for detecting a missed change
// signal. The Redis pump makes pushes near-instant; the poll only covers
// dropped signals and Redis-less deployments.
const pollInterval = time.Second

// serverFrame is a server-to-client websocket message.
type serverFrame struct {
	Type  string          `json:"type"`
	Game  *models.GameRow `json:"game,omitempty"`
	Error string          `json:"error,omitempty"`
}

// clientFrame is a client-to-server websocket message.
type clientFrame struct {
	Type   string        `json:"type"`
	Action models.Action `json:"action"`
}

// handleSession upgrades to a websocket and runs one game session: an
// initial state push, then a push on every version advance, while action
// frames from the client run through the manager.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	gameID, ok := s.pathID(w, r)
	if !ok {
		return
	}
	playerID, err := uuid.Parse(r.URL.Query().Get("player"))
	if err != nil {
		http.Error(w, "bad player id", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket accept failed")
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	log := s.log.WithFields(logrus.Fields{"game": gameID, "player": playerID})

	row, err := s.mgr.Get(ctx, gameID)
	if err != nil {
		_ = wsjson.Write(ctx, conn, serverFrame{Type: "error", Error: "game not found"})
		return
	}
	if err := wsjson.Write(ctx, conn, serverFrame{Type: "state", Game: row}); err != nil {
		return
	}
	lastVersion := row.Version

	signals := s.subscribe(gameID)
	defer s.unsubscribe(gameID, signals)

	go s.readActions(ctx, cancel, conn, gameID, playerID, log)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case v := <-signals:
			if v <= lastVersion {
				continue
			}
		case <-ticker.C:
		}
		row, err := s.mgr.Get(ctx, gameID)
		if err != nil {
			log.WithError(err).Warn("state refresh failed")
			return
		}
		if row.Version == lastVersion {
			continue
		}
		if err := wsjson.Write(ctx, conn, serverFrame{Type: "state", Game: row}); err != nil {
			return
		}
		lastVersion = row.Version
	}
}

// readActions consumes client frames until the connection drops. Errors
// from an action are reported on the socket without closing it; only
// transport errors end the session.
func (s *Server) readActions(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, gameID, playerID uuid.UUID, log *logrus.Entry) {
	defer cancel()
	for {
		var frame clientFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			return
		}
		if cache.Rdb != nil {
			go func() {
				pctx, pcancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer pcancel()
				_ = cache.TouchPresence(pctx, playerID)
			}()
		}
		switch frame.Type {
		case "action":
			if _, err := s.mgr.ApplyAction(ctx, gameID, playerID, frame.Action); err != nil {
				if isActionError(err) {
					_ = wsjson.Write(ctx, conn, serverFrame{Type: "error", Error: err.Error()})
					continue
				}
				log.WithError(err).Warn("apply action failed")
				return
			}
		case "ping":
			// presence touch above is the whole point of a ping
		default:
			_ = wsjson.Write(ctx, conn, serverFrame{Type: "error", Error: "unknown frame type"})
		}
	}
}

// isActionError reports whether the error is the player's fault rather
// than the server's.
func isActionError(err error) bool {
	return errors.Is(err, game.ErrIllegalAction) ||
		errors.Is(err, game.ErrUnknownAction) ||
		errors.Is(err, game.ErrUnknownKind) ||
		errors.Is(err, game.ErrNotSeated) ||
		errors.Is(err, game.ErrNotHost) ||
		errors.Is(err, database.ErrVersionConflict)
}
