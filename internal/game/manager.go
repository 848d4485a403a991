package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kagehara/partydeck/internal/cache"
	"github.com/kagehara/partydeck/internal/database"
	"github.com/kagehara/partydeck/internal/models"
)

// maxApplyRetries bounds the read-apply-write loop under version
// conflicts. Conflicts are rare; two retries cover a burst of concurrent
// actions on the same game.
const maxApplyRetries = 3

// publishTimeout caps the async Redis publishes so a slow broker never
// holds a goroutine long.
const publishTimeout = 2 * time.Second

// Manager owns the lifecycle of stored games: lobby creation, seating,
// starting the engine, and applying actions with optimistic concurrency.
type Manager struct {
	log *logrus.Entry
}

// NewManager returns a Manager.
func NewManager() *Manager {
	return &Manager{log: logrus.WithField("component", "game-manager")}
}

// CreateGame opens a lobby. The engine state is built at Start, once every
// seat is taken; until then the row's state blob holds the creation
// options.
func (m *Manager) CreateGame(ctx context.Context, kind models.GameKind, hostID uuid.UUID, opts CreateOptions) (*models.GameRow, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	raw, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("game: marshal options: %w", err)
	}
	row, err := database.CreateGame(ctx, kind, hostID, raw)
	if err != nil {
		return nil, err
	}
	m.log.WithFields(logrus.Fields{
		"game": row.ID, "kind": kind, "host": hostID,
	}).Info("lobby created")
	return row, nil
}

// Join seats a player in a waiting lobby. Joining twice is a no-op.
func (m *Manager) Join(ctx context.Context, gameID, playerID uuid.UUID) (*models.GameRow, error) {
	row, err := database.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if row.Status != models.StatusWaiting {
		return nil, ErrIllegalAction
	}
	row, err = database.JoinGame(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}
	m.publishChange(row)
	return row, nil
}

// Start builds the initial engine state for the seated players and moves
// the game to playing. Host only.
func (m *Manager) Start(ctx context.Context, gameID, playerID uuid.UUID, seed uint64) (*models.GameRow, error) {
	row, err := database.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if row.Status != models.StatusWaiting {
		return nil, ErrIllegalAction
	}
	if row.HostID != playerID {
		return nil, ErrNotHost
	}
	var opts CreateOptions
	if len(row.State) > 0 {
		if err := json.Unmarshal(row.State, &opts); err != nil {
			return nil, fmt.Errorf("game: decode options: %w", err)
		}
	}
	state, err := NewInitialState(row.Kind, len(row.Participants), opts, seed, time.Now())
	if err != nil {
		return nil, err
	}
	updated, err := database.UpdateGameState(ctx, gameID, state, models.StatusPlaying, row.Version)
	if err != nil {
		return nil, err
	}
	m.publishChange(updated)
	m.recordAction(updated, playerID, models.Action{Type: "start"})
	m.log.WithFields(logrus.Fields{
		"game": gameID, "kind": row.Kind, "players": len(row.Participants),
	}).Info("game started")
	return updated, nil
}

// ApplyAction runs one wire action through the game's engine and persists
// the successor state. The write is guarded by the version read; on a
// conflict the whole read-apply-write cycle retries against the fresh row.
func (m *Manager) ApplyAction(ctx context.Context, gameID, playerID uuid.UUID, action models.Action) (*models.GameRow, error) {
	for attempt := 0; attempt < maxApplyRetries; attempt++ {
		row, err := database.GetGame(ctx, gameID)
		if err != nil {
			return nil, err
		}
		if row.Status != models.StatusPlaying {
			return nil, ErrIllegalAction
		}
		seat := row.SeatOf(playerID)
		if seat < 0 {
			return nil, ErrNotSeated
		}
		next, err := Apply(row.Kind, row.State, seat, action, time.Now())
		if err != nil {
			return nil, err
		}
		status, err := StatusFor(row.Kind, next)
		if err != nil {
			return nil, err
		}
		updated, err := database.UpdateGameState(ctx, gameID, next, status, row.Version)
		if errors.Is(err, database.ErrVersionConflict) {
			m.log.WithFields(logrus.Fields{
				"game": gameID, "attempt": attempt + 1,
			}).Debug("version conflict, retrying")
			continue
		}
		if err != nil {
			return nil, err
		}
		m.publishChange(updated)
		m.recordAction(updated, playerID, action)
		return updated, nil
	}
	return nil, database.ErrVersionConflict
}

// Abandon ends a game early. Host only: a waiting lobby is deleted
// outright, a running game is marked finished in place.
func (m *Manager) Abandon(ctx context.Context, gameID, playerID uuid.UUID) error {
	row, err := database.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	if row.HostID != playerID {
		return ErrNotHost
	}
	switch row.Status {
	case models.StatusWaiting:
		if err := database.DeleteGame(ctx, gameID); err != nil {
			return err
		}
	case models.StatusPlaying:
		if err := database.SetStatus(ctx, gameID, models.StatusFinished); err != nil {
			return err
		}
	default:
		return ErrIllegalAction
	}
	m.publishChange(&models.GameRow{ID: row.ID, Version: row.Version + 1})
	m.log.WithFields(logrus.Fields{"game": gameID, "host": playerID}).Info("game abandoned")
	return nil
}

// Get returns the stored row.
func (m *Manager) Get(ctx context.Context, gameID uuid.UUID) (*models.GameRow, error) {
	return database.GetGame(ctx, gameID)
}

// ListOpen returns waiting lobbies for the portal's lobby browser.
func (m *Manager) ListOpen(ctx context.Context, limit int) ([]*models.GameRow, error) {
	return database.ListGamesByStatus(ctx, models.StatusWaiting, limit)
}

// publishChange notifies subscribed sessions off the request path.
func (m *Manager) publishChange(row *models.GameRow) {
	if cache.Rdb == nil {
		return
	}
	go func(id uuid.UUID, version int64) {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := cache.PublishGameChanged(ctx, id, version); err != nil {
			m.log.WithError(err).WithField("game", id).Warn("publish change failed")
		}
	}(row.ID, row.Version)
}

// recordAction appends the action to the game's Redis history, keyed by
// the version the action produced.
func (m *Manager) recordAction(row *models.GameRow, playerID uuid.UUID, action models.Action) {
	if cache.Rdb == nil {
		return
	}
	rec := cache.GameActionRecord{
		GameID:        row.ID,
		ActionIndex:   row.Version,
		ActorUserID:   playerID,
		ActionType:    action.Type,
		ActionPayload: action.Payload,
		Timestamp:     time.Now().UTC(),
	}
	go func(rec cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			m.log.WithError(err).WithField("game", rec.GameID).Warn("record action failed")
		}
	}(rec)
}
