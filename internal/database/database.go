// Package database persists game rows in Postgres via pgx. Callers use the
// package-level pool: Connect sets DB, and the accessors below operate on
// it. DB may be left nil in tests; callers that persist asynchronously
// guard on that.
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/kagehara/partydeck/internal/models"
)

// DB is the shared connection pool. Nil until Connect succeeds.
var DB *pgxpool.Pool

// ErrNotFound is returned when no game row matches the requested id.
var ErrNotFound = errors.New("database: game not found")

// ErrVersionConflict is returned by UpdateGameState when the row version
// changed since the caller read it. The caller re-reads and retries.
var ErrVersionConflict = errors.New("database: version conflict")

// Connect opens the pool and verifies connectivity.
func Connect(ctx context.Context, url string) error {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return fmt.Errorf("database: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("database: ping: %w", err)
	}
	DB = pool
	logrus.Info("database: connected")
	return nil
}

// Migrate creates the games table if it does not exist.
func Migrate(ctx context.Context) error {
	_, err := DB.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS games (
			id           UUID PRIMARY KEY,
			kind         TEXT NOT NULL,
			status       TEXT NOT NULL,
			host_id      UUID NOT NULL,
			participants UUID[] NOT NULL,
			state        JSONB NOT NULL,
			version      BIGINT NOT NULL DEFAULT 1,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	return nil
}

// CreateGame inserts a fresh row at version 1 with the host as the only
// participant.
func CreateGame(ctx context.Context, kind models.GameKind, hostID uuid.UUID, state json.RawMessage) (*models.GameRow, error) {
	row := &models.GameRow{
		ID:           uuid.New(),
		Kind:         kind,
		Status:       models.StatusWaiting,
		HostID:       hostID,
		Participants: []uuid.UUID{hostID},
		State:        state,
		Version:      1,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	_, err := DB.Exec(ctx, `
		INSERT INTO games (id, kind, status, host_id, participants, state, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		row.ID, row.Kind, row.Status, row.HostID, row.Participants, row.State, row.Version, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("database: create game: %w", err)
	}
	return row, nil
}

// GetGame loads one row by id.
func GetGame(ctx context.Context, id uuid.UUID) (*models.GameRow, error) {
	row := &models.GameRow{}
	err := DB.QueryRow(ctx, `
		SELECT id, kind, status, host_id, participants, state, version, created_at, updated_at
		FROM games WHERE id = $1`, id).Scan(
		&row.ID, &row.Kind, &row.Status, &row.HostID, &row.Participants,
		&row.State, &row.Version, &row.CreatedAt, &row.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database: get game: %w", err)
	}
	return row, nil
}

// ListGamesByStatus returns rows in a lifecycle state, newest first.
func ListGamesByStatus(ctx context.Context, status models.GameStatus, limit int) ([]*models.GameRow, error) {
	rows, err := DB.Query(ctx, `
		SELECT id, kind, status, host_id, participants, state, version, created_at, updated_at
		FROM games WHERE status = $1 ORDER BY created_at DESC LIMIT $2`, status, limit)
	if err != nil {
		return nil, fmt.Errorf("database: list games: %w", err)
	}
	defer rows.Close()

	var out []*models.GameRow
	for rows.Next() {
		r := &models.GameRow{}
		if err := rows.Scan(&r.ID, &r.Kind, &r.Status, &r.HostID, &r.Participants,
			&r.State, &r.Version, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("database: scan game: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// JoinGame appends a participant to a waiting game. Joining twice is a
// no-op.
func JoinGame(ctx context.Context, id, playerID uuid.UUID) (*models.GameRow, error) {
	_, err := DB.Exec(ctx, `
		UPDATE games
		SET participants = array_append(participants, $2), updated_at = now()
		WHERE id = $1 AND status = $3 AND NOT ($2 = ANY(participants))`,
		id, playerID, models.StatusWaiting)
	if err != nil {
		return nil, fmt.Errorf("database: join game: %w", err)
	}
	return GetGame(ctx, id)
}

// UpdateGameState writes a new engine state and status, guarded by the
// version the caller read. On a concurrent write the version no longer
// matches and ErrVersionConflict comes back instead.
func UpdateGameState(ctx context.Context, id uuid.UUID, state json.RawMessage, status models.GameStatus, expectVersion int64) (*models.GameRow, error) {
	tag, err := DB.Exec(ctx, `
		UPDATE games
		SET state = $2, status = $3, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $4`,
		id, state, status, expectVersion)
	if err != nil {
		return nil, fmt.Errorf("database: update game state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := GetGame(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrVersionConflict
	}
	return GetGame(ctx, id)
}

// SetStatus moves a game between lifecycle states without touching the
// engine blob.
func SetStatus(ctx context.Context, id uuid.UUID, status models.GameStatus) error {
	tag, err := DB.Exec(ctx, `
		UPDATE games SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("database: set status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteGame removes a row. Used when a host abandons a waiting lobby.
func DeleteGame(ctx context.Context, id uuid.UUID) error {
	tag, err := DB.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("database: delete game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
