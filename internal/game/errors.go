package game

import "errors"

var (
	// ErrIllegalAction means the engine rejected the transition: wrong
	// actor, wrong phase, or an argument the rules forbid.
	ErrIllegalAction = errors.New("game: illegal action")

	// ErrUnknownKind means the game kind names no registered engine.
	ErrUnknownKind = errors.New("game: unknown game kind")

	// ErrUnknownAction means the action type is not one the kind's
	// dispatcher routes.
	ErrUnknownAction = errors.New("game: unknown action type")

	// ErrNotSeated means the acting player is not a participant of the
	// game.
	ErrNotSeated = errors.New("game: player not seated")

	// ErrNotHost means a host-only operation was attempted by another
	// player.
	ErrNotHost = errors.New("game: not the host")
)
