// Package elemental implements the Elemental Paths rules: a two-player
// card-laying game where cards of five elements are committed to ascending
// expedition columns or discarded, with wager cards multiplying a column's
// score.
//
// Transition functions return a fresh state, or nil when the action is
// illegal; the caller keeps the prior state on nil.
package elemental

import (
	"fmt"

	"github.com/kagehara/partydeck/engine/rng"
)

// Color identifies one of the five elements.
type Color string

const (
	ColorFlame Color = "flame"
	ColorTide  Color = "tide"
	ColorStone Color = "stone"
	ColorGale  Color = "gale"
	ColorBloom Color = "bloom"
)

// Colors lists every color in display order.
var Colors = []Color{ColorFlame, ColorTide, ColorStone, ColorGale, ColorBloom}

// WagerValue marks a wager card. Numeric cards carry values 2-10.
const WagerValue = 0

// Card is one card of the 60-card deck: per color, values 2-10 plus three
// wagers. Cards of equal color and value are interchangeable.
type Card struct {
	Color Color `json:"color"`
	Value int   `json:"value"`
}

// IsWager reports whether the card is a wager (multiplier) card.
func (c Card) IsWager() bool { return c.Value == WagerValue }

func (c Card) label() string {
	if c.IsWager() {
		return string(c.Color) + " wager"
	}
	return fmt.Sprintf("%s %d", c.Color, c.Value)
}

// Phase is the turn sub-phase: the current player first plays, then draws.
type Phase string

const (
	PhasePlay Phase = "play"
	PhaseDraw Phase = "draw"
)

// Target selects where a played card goes.
type Target string

const (
	TargetExpedition Target = "expedition"
	TargetDiscard    Target = "discard"
)

// DeckSource is the DrawSource for the face-down deck; every other source is
// a color's discard pile.
const DeckSource DrawSource = "deck"

// DrawSource names where a card is drawn from: DeckSource or a Color.
type DrawSource string

const (
	numPlayers     = 2
	handSize       = 8
	maxLogs        = 5
	valueMin       = 2
	valueMax       = 10
	wagersPerColor = 3
)

// State is the complete game state. It is replaced wholesale on every
// transition and serializes losslessly to JSON.
type State struct {
	Phase         Phase                        `json:"phase"`
	Deck          []Card                       `json:"deck"`
	Hands         [numPlayers][]Card           `json:"hands"`
	Expeditions   [numPlayers]map[Color][]Card `json:"expeditions"`
	Discards      map[Color][]Card             `json:"discards"`
	CurrentPlayer int                          `json:"currentPlayer"`
	// LastDiscarded blocks immediately reclaiming the card just discarded.
	// Empty string means no restriction.
	LastDiscarded Color      `json:"lastDiscarded"`
	Logs          []string   `json:"logs"`
	Rng           rng.Source `json:"rng"`
}

// NewState creates the initial state: shuffled deck, eight cards dealt to
// each player alternately, player 0 to act. playerCount must be exactly 2.
func NewState(playerCount int, seed uint64) (*State, error) {
	if playerCount != numPlayers {
		return nil, fmt.Errorf("elemental: requires exactly %d players, got %d", numPlayers, playerCount)
	}
	src := rng.New(seed)
	deck := buildDeck()
	rng.Shuffle(&src, deck)

	s := &State{
		Phase:    PhasePlay,
		Discards: emptyPiles(),
		Rng:      src,
	}
	for p := 0; p < numPlayers; p++ {
		s.Expeditions[p] = emptyPiles()
	}
	for i := 0; i < handSize; i++ {
		for p := 0; p < numPlayers; p++ {
			deck, s.Hands[p] = draw(deck, s.Hands[p])
		}
	}
	s.Deck = deck
	return s, nil
}

func buildDeck() []Card {
	deck := make([]Card, 0, len(Colors)*(valueMax-valueMin+1+wagersPerColor))
	for _, color := range Colors {
		for v := valueMin; v <= valueMax; v++ {
			deck = append(deck, Card{Color: color, Value: v})
		}
		for i := 0; i < wagersPerColor; i++ {
			deck = append(deck, Card{Color: color, Value: WagerValue})
		}
	}
	return deck
}

func emptyPiles() map[Color][]Card {
	piles := make(map[Color][]Card, len(Colors))
	for _, c := range Colors {
		piles[c] = []Card{}
	}
	return piles
}

func draw(deck, hand []Card) (newDeck, newHand []Card) {
	top := deck[len(deck)-1]
	return deck[:len(deck)-1], append(hand, top)
}

func (s *State) clone() *State {
	ns := &State{
		Phase:         s.Phase,
		Deck:          append([]Card(nil), s.Deck...),
		Discards:      clonePiles(s.Discards),
		CurrentPlayer: s.CurrentPlayer,
		LastDiscarded: s.LastDiscarded,
		Logs:          append([]string(nil), s.Logs...),
		Rng:           s.Rng,
	}
	for p := 0; p < numPlayers; p++ {
		ns.Hands[p] = append([]Card(nil), s.Hands[p]...)
		ns.Expeditions[p] = clonePiles(s.Expeditions[p])
	}
	return ns
}

func clonePiles(piles map[Color][]Card) map[Color][]Card {
	out := make(map[Color][]Card, len(piles))
	for c, pile := range piles {
		out[c] = append([]Card(nil), pile...)
	}
	return out
}

func (s *State) appendLog(msg string) {
	s.Logs = append(s.Logs, msg)
	if len(s.Logs) > maxLogs {
		s.Logs = s.Logs[len(s.Logs)-maxLogs:]
	}
}

// CanPlayOnExpedition reports whether card may be appended to column: a
// wager only onto an empty or all-wager column, a numeric card only if its
// value exceeds the column's highest numeric value (gaps allowed).
func CanPlayOnExpedition(column []Card, card Card) bool {
	if card.IsWager() {
		for _, c := range column {
			if !c.IsWager() {
				return false
			}
		}
		return true
	}
	highest := 0
	for _, c := range column {
		if !c.IsWager() && c.Value > highest {
			highest = c.Value
		}
	}
	return card.Value > highest
}

// PlayCard removes card from player's hand and commits it to the player's
// expedition column or the color's discard pile. color must match the card's
// own color. Moves the turn to the draw phase. Returns nil if the action is
// illegal.
func PlayCard(s *State, player int, card Card, target Target, color Color) *State {
	if s.Phase != PhasePlay || player != s.CurrentPlayer {
		return nil
	}
	if color != card.Color {
		return nil
	}
	idx := indexOfCard(s.Hands[player], card)
	if idx < 0 {
		return nil
	}

	ns := s.clone()
	ns.Hands[player] = append(ns.Hands[player][:idx], ns.Hands[player][idx+1:]...)

	switch target {
	case TargetDiscard:
		ns.Discards[color] = append(ns.Discards[color], card)
		ns.LastDiscarded = color
		ns.appendLog(fmt.Sprintf("player %d discarded %s", player+1, card.label()))
	case TargetExpedition:
		if !CanPlayOnExpedition(s.Expeditions[player][color], card) {
			return nil
		}
		ns.Expeditions[player][color] = append(ns.Expeditions[player][color], card)
		ns.LastDiscarded = ""
		ns.appendLog(fmt.Sprintf("player %d played %s", player+1, card.label()))
	default:
		return nil
	}

	ns.Phase = PhaseDraw
	return ns
}

// DrawCard draws from the deck or a discard pile, adds the card to the
// acting player's hand, and passes the turn. Drawing from the pile the
// player just discarded to, or from an empty source, is illegal.
func DrawCard(s *State, player int, source DrawSource) *State {
	if s.Phase != PhaseDraw || player != s.CurrentPlayer {
		return nil
	}

	ns := s.clone()
	if source == DeckSource {
		if len(s.Deck) == 0 {
			return nil
		}
		ns.Deck, ns.Hands[player] = draw(ns.Deck, ns.Hands[player])
		ns.appendLog(fmt.Sprintf("player %d drew from the deck", player+1))
	} else {
		color := Color(source)
		pile, ok := s.Discards[color]
		if !ok || len(pile) == 0 || color == s.LastDiscarded {
			return nil
		}
		top := pile[len(pile)-1]
		ns.Discards[color] = ns.Discards[color][:len(pile)-1]
		ns.Hands[player] = append(ns.Hands[player], top)
		ns.appendLog(fmt.Sprintf("player %d reclaimed %s", player+1, top.label()))
	}

	ns.Phase = PhasePlay
	ns.CurrentPlayer = 1 - s.CurrentPlayer
	ns.LastDiscarded = ""
	return ns
}

// GetDrawOptions returns every legal draw source for the current state.
func GetDrawOptions(s *State) []DrawSource {
	var options []DrawSource
	if len(s.Deck) > 0 {
		options = append(options, DeckSource)
	}
	for _, color := range Colors {
		if len(s.Discards[color]) > 0 && color != s.LastDiscarded {
			options = append(options, DrawSource(color))
		}
	}
	return options
}

// IsFinished reports the end-of-game condition: the deck is empty. The
// caller checks this after each draw; the engine never closes the game
// itself.
func IsFinished(s *State) bool { return len(s.Deck) == 0 }

func indexOfCard(hand []Card, card Card) int {
	for i, c := range hand {
		if c == card {
			return i
		}
	}
	return -1
}
