// Package game routes stored games to their rules engines. The engines are
// pure state-transition functions over typed structs; this package owns the
// JSON boundary around them: it decodes the stored blob, applies one wire
// action for one seat, and re-encodes the result. A nil engine result
// surfaces as ErrIllegalAction.
package game

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kagehara/partydeck/engine/abyss"
	"github.com/kagehara/partydeck/engine/court"
	"github.com/kagehara/partydeck/engine/elemental"
	"github.com/kagehara/partydeck/engine/gifts"
	"github.com/kagehara/partydeck/engine/hitblow"
	"github.com/kagehara/partydeck/engine/midnight"
	"github.com/kagehara/partydeck/engine/secretword"
	"github.com/kagehara/partydeck/engine/valuetalk"
	"github.com/kagehara/partydeck/internal/models"
)

// CreateOptions carries the per-kind knobs chosen at lobby creation.
// Currently only Value Talk reads any of them.
type CreateOptions struct {
	Difficulty string `json:"difficulty,omitempty"`
}

// NewInitialState builds the starting state blob for a game kind. now is
// only consulted by engines that track wall-clock deadlines.
func NewInitialState(kind models.GameKind, playerCount int, opts CreateOptions, seed uint64, now time.Time) (json.RawMessage, error) {
	switch kind {
	case models.KindElemental:
		return encodeNew(elemental.NewState(playerCount, seed))
	case models.KindAbyss:
		return encodeNew(abyss.NewState(playerCount, seed))
	case models.KindCourt:
		return encodeNew(court.NewState(playerCount, seed))
	case models.KindMidnight:
		return encodeNew(midnight.NewState(playerCount, seed))
	case models.KindGifts:
		return encodeNew(gifts.NewState(playerCount, seed))
	case models.KindHitBlow:
		return encodeNew(hitblow.NewState(playerCount))
	case models.KindValueTalk:
		return encodeNew(valuetalk.NewState(playerCount, valuetalk.Difficulty(opts.Difficulty), seed))
	case models.KindSecretWord:
		return encodeNew(secretword.NewState(playerCount, seed, now))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Apply decodes the stored state, applies one action for the given seat,
// and returns the encoded successor state.
func Apply(kind models.GameKind, state json.RawMessage, seat int, action models.Action, now time.Time) (json.RawMessage, error) {
	switch kind {
	case models.KindElemental:
		return applyElemental(state, seat, action)
	case models.KindAbyss:
		return applyAbyss(state, seat, action)
	case models.KindCourt:
		return applyCourt(state, seat, action)
	case models.KindMidnight:
		return applyMidnight(state, seat, action)
	case models.KindGifts:
		return applyGifts(state, seat, action)
	case models.KindHitBlow:
		return applyHitBlow(state, seat, action)
	case models.KindValueTalk:
		return applyValueTalk(state, seat, action)
	case models.KindSecretWord:
		return applySecretWord(state, seat, action, now)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// StatusFor derives the lifecycle status from a state blob: playing until
// the kind's terminal condition holds, finished after.
func StatusFor(kind models.GameKind, state json.RawMessage) (models.GameStatus, error) {
	var probe struct {
		Phase  string            `json:"phase"`
		Deck   []json.RawMessage `json:"deck"`
		Winner *int              `json:"winner"`
	}
	if err := json.Unmarshal(state, &probe); err != nil {
		return "", fmt.Errorf("game: decode state for status: %w", err)
	}
	switch kind {
	case models.KindElemental:
		if len(probe.Deck) == 0 {
			return models.StatusFinished, nil
		}
	case models.KindAbyss, models.KindMidnight, models.KindValueTalk:
		if probe.Phase == "gameover" {
			return models.StatusFinished, nil
		}
	case models.KindCourt, models.KindGifts:
		if probe.Phase == "finished" {
			return models.StatusFinished, nil
		}
	case models.KindHitBlow:
		if probe.Winner != nil && *probe.Winner != hitblow.NoWinner {
			return models.StatusFinished, nil
		}
	case models.KindSecretWord:
		if probe.Phase == "result" {
			return models.StatusFinished, nil
		}
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return models.StatusPlaying, nil
}

func encodeNew[T any](s *T, err error) (json.RawMessage, error) {
	if err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

// encodeNext maps the engine contract to the dispatcher contract: nil
// means the engine refused the action.
func encodeNext[T any](next *T) (json.RawMessage, error) {
	if next == nil {
		return nil, ErrIllegalAction
	}
	return json.Marshal(next)
}

func decodeState(raw json.RawMessage, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("game: decode state: %w", err)
	}
	return nil
}

func decodePayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return fmt.Errorf("game: missing action payload")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("game: decode action payload: %w", err)
	}
	return nil
}
