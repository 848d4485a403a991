package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kagehara/partydeck/engine/court"
	"github.com/kagehara/partydeck/engine/elemental"
	"github.com/kagehara/partydeck/engine/hitblow"
	"github.com/kagehara/partydeck/internal/models"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func mustRaw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func action(t *testing.T, typ string, payload any) models.Action {
	t.Helper()
	a := models.Action{Type: typ}
	if payload != nil {
		a.Payload = mustRaw(t, payload)
	}
	return a
}

func TestNewInitialStateAllKinds(t *testing.T) {
	counts := map[models.GameKind]int{
		models.KindElemental:  2,
		models.KindAbyss:      3,
		models.KindCourt:      3,
		models.KindMidnight:   3,
		models.KindGifts:      3,
		models.KindHitBlow:    2,
		models.KindValueTalk:  3,
		models.KindSecretWord: 4,
	}
	for kind, n := range counts {
		t.Run(string(kind), func(t *testing.T) {
			state, err := NewInitialState(kind, n, CreateOptions{}, 7, testNow)
			require.NoError(t, err)
			require.NotEmpty(t, state)

			status, err := StatusFor(kind, state)
			require.NoError(t, err)
			assert.Equal(t, models.StatusPlaying, status)
		})
	}
}

func TestNewInitialStateUnknownKind(t *testing.T) {
	_, err := NewInitialState("chess", 2, CreateOptions{}, 1, testNow)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestNewInitialStateBadPlayerCount(t *testing.T) {
	_, err := NewInitialState(models.KindElemental, 5, CreateOptions{}, 1, testNow)
	assert.Error(t, err)
}

func TestApplyElementalPlayThenDraw(t *testing.T) {
	state, err := NewInitialState(models.KindElemental, 2, CreateOptions{}, 42, testNow)
	require.NoError(t, err)

	var s elemental.State
	require.NoError(t, json.Unmarshal(state, &s))
	card := s.Hands[0][0]

	state, err = Apply(models.KindElemental, state, 0, action(t, "play_card", map[string]any{
		"card":   card,
		"target": elemental.TargetDiscard,
		"color":  card.Color,
	}), testNow)
	require.NoError(t, err)

	require.NoError(t, json.Unmarshal(state, &s))
	assert.Equal(t, elemental.PhaseDraw, s.Phase)

	state, err = Apply(models.KindElemental, state, 0, action(t, "draw_card", map[string]any{
		"source": elemental.DeckSource,
	}), testNow)
	require.NoError(t, err)

	require.NoError(t, json.Unmarshal(state, &s))
	assert.Equal(t, elemental.PhasePlay, s.Phase)
	assert.Equal(t, 1, s.CurrentPlayer)
}

func TestApplyWrongSeatIsIllegal(t *testing.T) {
	state, err := NewInitialState(models.KindGifts, 3, CreateOptions{}, 1, testNow)
	require.NoError(t, err)

	_, err = Apply(models.KindGifts, state, 1, action(t, "pay_chip", nil), testNow)
	assert.ErrorIs(t, err, ErrIllegalAction)
}

func TestApplyUnknownAction(t *testing.T) {
	state, err := NewInitialState(models.KindGifts, 3, CreateOptions{}, 1, testNow)
	require.NoError(t, err)

	_, err = Apply(models.KindGifts, state, 0, action(t, "castle", nil), testNow)
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestApplyGiftsPayChip(t *testing.T) {
	state, err := NewInitialState(models.KindGifts, 3, CreateOptions{}, 1, testNow)
	require.NoError(t, err)

	state, err = Apply(models.KindGifts, state, 0, action(t, "pay_chip", nil), testNow)
	require.NoError(t, err)

	var s struct {
		PotChips    int   `json:"potChips"`
		PlayerChips []int `json:"playerChips"`
	}
	require.NoError(t, json.Unmarshal(state, &s))
	assert.Equal(t, 1, s.PotChips)
	assert.Equal(t, 10, s.PlayerChips[0])
}

func TestApplyMidnightBid(t *testing.T) {
	state, err := NewInitialState(models.KindMidnight, 3, CreateOptions{}, 5, testNow)
	require.NoError(t, err)

	state, err = Apply(models.KindMidnight, state, 0, action(t, "bid", map[string]any{"value": 50}), testNow)
	require.NoError(t, err)

	var s struct {
		CurrentBid         int `json:"currentBid"`
		CurrentBidderIndex int `json:"currentBidderIndex"`
	}
	require.NoError(t, json.Unmarshal(state, &s))
	assert.Equal(t, 50, s.CurrentBid)
	assert.Equal(t, 0, s.CurrentBidderIndex)
}

func TestApplyAbyssRollDice(t *testing.T) {
	state, err := NewInitialState(models.KindAbyss, 3, CreateOptions{}, 9, testNow)
	require.NoError(t, err)

	state, err = Apply(models.KindAbyss, state, 0, action(t, "consume_oxygen", nil), testNow)
	require.NoError(t, err)
	state, err = Apply(models.KindAbyss, state, 0, action(t, "roll_dice", nil), testNow)
	require.NoError(t, err)

	var s struct {
		LastDice []int `json:"lastDice"`
	}
	require.NoError(t, json.Unmarshal(state, &s))
	assert.Len(t, s.LastDice, 2)
}

func TestApplyAbyssMoveUsesRecordedRoll(t *testing.T) {
	state, err := NewInitialState(models.KindAbyss, 3, CreateOptions{}, 9, testNow)
	require.NoError(t, err)

	state, err = Apply(models.KindAbyss, state, 0, action(t, "consume_oxygen", nil), testNow)
	require.NoError(t, err)

	// No roll recorded yet: the move is rejected before it reaches the
	// engine, whatever total the client claims.
	_, err = Apply(models.KindAbyss, state, 0, action(t, "move", map[string]any{"diceTotal": 99}), testNow)
	assert.ErrorIs(t, err, ErrIllegalAction)

	state, err = Apply(models.KindAbyss, state, 0, action(t, "roll_dice", nil), testNow)
	require.NoError(t, err)

	var rolled struct {
		LastDice []int `json:"lastDice"`
	}
	require.NoError(t, json.Unmarshal(state, &rolled))
	require.Len(t, rolled.LastDice, 2)
	total := rolled.LastDice[0] + rolled.LastDice[1]

	state, err = Apply(models.KindAbyss, state, 0, action(t, "move", nil), testNow)
	require.NoError(t, err)

	var moved struct {
		Players []struct {
			Position int `json:"position"`
		} `json:"players"`
	}
	require.NoError(t, json.Unmarshal(state, &moved))
	// From the submarine with no loot and nobody ahead, every step of the
	// recorded total lands on an open cell.
	assert.Equal(t, total-1, moved.Players[0].Position)
}

func TestApplyHitBlowFullGame(t *testing.T) {
	state, err := NewInitialState(models.KindHitBlow, 2, CreateOptions{}, 0, testNow)
	require.NoError(t, err)

	state, err = Apply(models.KindHitBlow, state, 0, action(t, "set_secret", map[string]any{"secret": "1234"}), testNow)
	require.NoError(t, err)
	state, err = Apply(models.KindHitBlow, state, 1, action(t, "set_secret", map[string]any{"secret": "5678"}), testNow)
	require.NoError(t, err)

	state, err = Apply(models.KindHitBlow, state, 0, action(t, "guess", map[string]any{"guess": "5678"}), testNow)
	require.NoError(t, err)

	var s hitblow.State
	require.NoError(t, json.Unmarshal(state, &s))
	assert.Equal(t, 0, s.Winner)

	status, err := StatusFor(models.KindHitBlow, state)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, status)
}

func TestApplyCourtOptionalTarget(t *testing.T) {
	s := &court.State{
		Phase: court.PhasePlaying,
		Deck:  []int{court.RankGuard, court.RankGuard},
		Players: []court.Player{
			{Hand: []int{court.RankHandmaid, court.RankGuard}},
			{Hand: []int{court.RankBaron}},
		},
		Winner: court.NoWinner,
	}
	state := mustRaw(t, s)

	state, err := Apply(models.KindCourt, state, 0, action(t, "play_card", map[string]any{
		"rank": court.RankHandmaid,
	}), testNow)
	require.NoError(t, err)

	var next court.State
	require.NoError(t, json.Unmarshal(state, &next))
	assert.True(t, next.Players[0].IsProtected)
	assert.Equal(t, 1, next.TurnIndex)
}

func TestApplySecretWordMessage(t *testing.T) {
	state, err := NewInitialState(models.KindSecretWord, 4, CreateOptions{}, 3, testNow)
	require.NoError(t, err)

	later := testNow.Add(30 * time.Second)
	state, err = Apply(models.KindSecretWord, state, 2, action(t, "message", map[string]any{
		"author": "ami",
		"text":   "  mine is round  ",
	}), later)
	require.NoError(t, err)

	var s struct {
		Messages []struct {
			Author    string `json:"author"`
			Text      string `json:"text"`
			Timestamp int64  `json:"timestamp"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(state, &s))
	require.Len(t, s.Messages, 1)
	assert.Equal(t, "ami", s.Messages[0].Author)
	assert.Equal(t, "mine is round", s.Messages[0].Text)
	assert.Equal(t, later.UnixMilli(), s.Messages[0].Timestamp)
}

func TestApplyValueTalkChangeTheme(t *testing.T) {
	state, err := NewInitialState(models.KindValueTalk, 3, CreateOptions{Difficulty: "EASY"}, 11, testNow)
	require.NoError(t, err)

	state, err = Apply(models.KindValueTalk, state, 0, action(t, "change_theme", nil), testNow)
	require.NoError(t, err)

	var s struct {
		ThemeChangeUsed bool `json:"themeChangeUsed"`
	}
	require.NoError(t, json.Unmarshal(state, &s))
	assert.True(t, s.ThemeChangeUsed)

	_, err = Apply(models.KindValueTalk, state, 0, action(t, "change_theme", nil), testNow)
	assert.ErrorIs(t, err, ErrIllegalAction)
}

func TestStatusForTable(t *testing.T) {
	cases := []struct {
		name  string
		kind  models.GameKind
		state string
		want  models.GameStatus
	}{
		{"abyss playing", models.KindAbyss, `{"phase":"playing"}`, models.StatusPlaying},
		{"abyss over", models.KindAbyss, `{"phase":"gameover"}`, models.StatusFinished},
		{"court finished", models.KindCourt, `{"phase":"finished"}`, models.StatusFinished},
		{"elemental empty deck", models.KindElemental, `{"deck":[]}`, models.StatusFinished},
		{"elemental live deck", models.KindElemental, `{"deck":[{"color":"fire","value":3}]}`, models.StatusPlaying},
		{"hitblow undecided", models.KindHitBlow, `{"winner":-1}`, models.StatusPlaying},
		{"hitblow won", models.KindHitBlow, `{"winner":1}`, models.StatusFinished},
		{"secretword result", models.KindSecretWord, `{"phase":"result"}`, models.StatusFinished},
		{"midnight over", models.KindMidnight, `{"phase":"gameover"}`, models.StatusFinished},
		{"valuetalk playing", models.KindValueTalk, `{"phase":"playing"}`, models.StatusPlaying},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := StatusFor(tc.kind, json.RawMessage(tc.state))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
