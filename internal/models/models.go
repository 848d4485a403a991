// Package models defines the shared envelope types for stored games and
// wire actions. Engine state itself stays opaque here: one JSON blob per
// game, interpreted only by the dispatchers.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// GameKind identifies one of the portal's rules engines.
type GameKind string

const (
	KindElemental  GameKind = "elemental"
	KindAbyss      GameKind = "abyss"
	KindCourt      GameKind = "court"
	KindMidnight   GameKind = "midnight"
	KindGifts      GameKind = "gifts"
	KindHitBlow    GameKind = "hitblow"
	KindValueTalk  GameKind = "valuetalk"
	KindSecretWord GameKind = "secretword"
)

// Kinds lists every supported game kind.
var Kinds = []GameKind{
	KindElemental, KindAbyss, KindCourt, KindMidnight,
	KindGifts, KindHitBlow, KindValueTalk, KindSecretWord,
}

// Valid reports whether k names a known engine.
func (k GameKind) Valid() bool {
	for _, kind := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// GameStatus is the lifecycle of a stored game row.
type GameStatus string

const (
	StatusWaiting  GameStatus = "waiting"
	StatusPlaying  GameStatus = "playing"
	StatusFinished GameStatus = "finished"
)

// GameRow is one row of the games table: envelope plus the engine state
// blob. Version increments on every state write and backs the
// compare-and-swap update discipline.
type GameRow struct {
	ID           uuid.UUID       `json:"id"`
	Kind         GameKind        `json:"kind"`
	Status       GameStatus      `json:"status"`
	HostID       uuid.UUID       `json:"hostId"`
	Participants []uuid.UUID     `json:"participants"`
	State        json.RawMessage `json:"state"`
	Version      int64           `json:"version"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// SeatOf returns the seat index of a participant, or -1 when the player is
// not seated. Seat order is join order; the engines only ever see this
// index.
func (r *GameRow) SeatOf(playerID uuid.UUID) int {
	for i, p := range r.Participants {
		if p == playerID {
			return i
		}
	}
	return -1
}

// Action is one wire action frame: a type routed by the dispatcher and an
// engine-specific payload.
type Action struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}
