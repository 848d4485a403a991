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

func applyElemental(raw json.RawMessage, seat int, action models.Action) (json.RawMessage, error) {
	var s elemental.State
	if err := decodeState(raw, &s); err != nil {
		return nil, err
	}
	switch action.Type {
	case "play_card":
		var p struct {
			Card   elemental.Card   `json:"card"`
			Target elemental.Target `json:"target"`
			Color  elemental.Color  `json:"color"`
		}
		if err := decodePayload(action.Payload, &p); err != nil {
			return nil, err
		}
		return encodeNext(elemental.PlayCard(&s, seat, p.Card, p.Target, p.Color))
	case "draw_card":
		var p struct {
			Source elemental.DrawSource `json:"source"`
		}
		if err := decodePayload(action.Payload, &p); err != nil {
			return nil, err
		}
		return encodeNext(elemental.DrawCard(&s, seat, p.Source))
	default:
		return nil, fmt.Errorf("%w: elemental %q", ErrUnknownAction, action.Type)
	}
}

func applyAbyss(raw json.RawMessage, seat int, action models.Action) (json.RawMessage, error) {
	var s abyss.State
	if err := decodeState(raw, &s); err != nil {
		return nil, err
	}
	switch action.Type {
	case "consume_oxygen":
		return encodeNext(abyss.ConsumeOxygenAndMaybeEndRound(&s, seat))
	case "switch_direction":
		return encodeNext(abyss.SwitchToReturning(&s, seat))
	case "roll_dice":
		return encodeNext(abyss.RollDice(&s, seat))
	case "move":
		// The move total comes from the recorded roll, never from the
		// client; a move without a roll on the books is illegal.
		if len(s.LastDice) == 0 {
			return nil, ErrIllegalAction
		}
		total := 0
		for _, d := range s.LastDice {
			total += d
		}
		return encodeNext(abyss.MovePlayer(&s, seat, total))
	case "pick_up":
		return encodeNext(abyss.PickUpLoot(&s, seat))
	case "put_down":
		return encodeNext(abyss.PutDownLoot(&s, seat))
	case "end_turn":
		return encodeNext(abyss.EndTurnAndMaybeFinishRound(&s, seat))
	case "next_round":
		return encodeNext(abyss.BeginNextRound(&s))
	default:
		return nil, fmt.Errorf("%w: abyss %q", ErrUnknownAction, action.Type)
	}
}

func applyCourt(raw json.RawMessage, seat int, action models.Action) (json.RawMessage, error) {
	var s court.State
	if err := decodeState(raw, &s); err != nil {
		return nil, err
	}
	switch action.Type {
	case "play_card":
		// Target is optional on the wire; absent means no target, which
		// only targetless ranks accept.
		var p struct {
			Rank   int  `json:"rank"`
			Target *int `json:"target"`
			Guess  int  `json:"guess"`
		}
		if err := decodePayload(action.Payload, &p); err != nil {
			return nil, err
		}
		target := court.NoTarget
		if p.Target != nil {
			target = *p.Target
		}
		return encodeNext(court.PlayCard(&s, seat, p.Rank, target, p.Guess))
	default:
		return nil, fmt.Errorf("%w: court %q", ErrUnknownAction, action.Type)
	}
}

func applyMidnight(raw json.RawMessage, seat int, action models.Action) (json.RawMessage, error) {
	var s midnight.State
	if err := decodeState(raw, &s); err != nil {
		return nil, err
	}
	switch action.Type {
	case "bid":
		var p struct {
			Value int `json:"value"`
		}
		if err := decodePayload(action.Payload, &p); err != nil {
			return nil, err
		}
		return encodeNext(midnight.Bid(&s, seat, p.Value))
	case "call_midnight":
		return encodeNext(midnight.CallMidnight(&s, seat))
	case "next_round":
		return encodeNext(midnight.StartNextRound(&s))
	case "restart":
		return encodeNext(midnight.Restart(&s))
	default:
		return nil, fmt.Errorf("%w: midnight %q", ErrUnknownAction, action.Type)
	}
}

func applyGifts(raw json.RawMessage, seat int, action models.Action) (json.RawMessage, error) {
	var s gifts.State
	if err := decodeState(raw, &s); err != nil {
		return nil, err
	}
	switch action.Type {
	case "pay_chip":
		return encodeNext(gifts.PayChip(&s, seat))
	case "take_card":
		return encodeNext(gifts.TakeCard(&s, seat))
	case "restart":
		return encodeNext(gifts.Restart(&s))
	default:
		return nil, fmt.Errorf("%w: gifts %q", ErrUnknownAction, action.Type)
	}
}

func applyHitBlow(raw json.RawMessage, seat int, action models.Action) (json.RawMessage, error) {
	var s hitblow.State
	if err := decodeState(raw, &s); err != nil {
		return nil, err
	}
	switch action.Type {
	case "set_secret":
		var p struct {
			Secret string `json:"secret"`
		}
		if err := decodePayload(action.Payload, &p); err != nil {
			return nil, err
		}
		return encodeNext(hitblow.SetSecret(&s, seat, p.Secret))
	case "guess":
		var p struct {
			Guess string `json:"guess"`
		}
		if err := decodePayload(action.Payload, &p); err != nil {
			return nil, err
		}
		return encodeNext(hitblow.SubmitGuess(&s, seat, p.Guess))
	default:
		return nil, fmt.Errorf("%w: hitblow %q", ErrUnknownAction, action.Type)
	}
}

func applyValueTalk(raw json.RawMessage, seat int, action models.Action) (json.RawMessage, error) {
	var s valuetalk.State
	if err := decodeState(raw, &s); err != nil {
		return nil, err
	}
	switch action.Type {
	case "play_card":
		var p struct {
			Card        int    `json:"card"`
			Description string `json:"description"`
		}
		if err := decodePayload(action.Payload, &p); err != nil {
			return nil, err
		}
		return encodeNext(valuetalk.PlayCard(&s, seat, p.Card, p.Description))
	case "update_description":
		var p struct {
			Card int    `json:"card"`
			Text string `json:"text"`
		}
		if err := decodePayload(action.Payload, &p); err != nil {
			return nil, err
		}
		return encodeNext(valuetalk.UpdateDescription(&s, seat, p.Card, p.Text))
	case "change_theme":
		return encodeNext(valuetalk.ChangeTheme(&s))
	case "restart":
		return encodeNext(valuetalk.Restart(&s))
	default:
		return nil, fmt.Errorf("%w: valuetalk %q", ErrUnknownAction, action.Type)
	}
}

func applySecretWord(raw json.RawMessage, seat int, action models.Action, now time.Time) (json.RawMessage, error) {
	var s secretword.State
	if err := decodeState(raw, &s); err != nil {
		return nil, err
	}
	switch action.Type {
	case "message":
		var p struct {
			Author string `json:"author"`
			Text   string `json:"text"`
		}
		if err := decodePayload(action.Payload, &p); err != nil {
			return nil, err
		}
		author := p.Author
		if author == "" {
			author = fmt.Sprintf("player %d", seat)
		}
		return encodeNext(secretword.AddMessage(&s, author, p.Text, now))
	case "end_discussion":
		return encodeNext(secretword.EndDiscussion(&s))
	case "vote":
		var p struct {
			Target int `json:"target"`
		}
		if err := decodePayload(action.Payload, &p); err != nil {
			return nil, err
		}
		return encodeNext(secretword.Vote(&s, seat, p.Target))
	case "finish_voting":
		return encodeNext(secretword.FinishVoting(&s))
	default:
		return nil, fmt.Errorf("%w: secretword %q", ErrUnknownAction, action.Type)
	}
}
