// Package midnight implements the Midnight Party rules: a 2-10 player
// bluffing game where each player sees everyone's cards but their own and
// bids on the table total until someone challenges with "Midnight!". The
// loser of a challenge drops a life; last player with lives wins.
//
// Transition functions return a fresh state, or nil when the action is
// illegal; the caller keeps the prior state on nil.
package midnight

import (
	"fmt"

	"github.com/kagehara/partydeck/engine/rng"
)

// Special card markers. A Card with an empty Special is numeric.
const (
	SpecialDouble  = "x2"
	SpecialMaxZero = "MAX=0"
	SpecialMystery = "?"
)

// Card is one deck card: a plain number, or a special token.
type Card struct {
	Value   int    `json:"value"`
	Special string `json:"special,omitempty"`
}

// IsNumeric reports whether the card contributes its Value directly.
func (c Card) IsNumeric() bool { return c.Special == "" }

func num(v int) Card     { return Card{Value: v} }
func spec(s string) Card { return Card{Special: s} }

// FullDeck returns a fresh copy of the 37-card deck: 10 through 80 in tens
// three times each, a few negatives and zeros, and six special tokens.
func FullDeck() []Card {
	deck := make([]Card, 0, 37)
	for _, n := range []int{10, 20, 30, 40, 50, 60, 70, 80} {
		deck = append(deck, num(n), num(n), num(n))
	}
	deck = append(deck, num(-10), num(-10), num(-20), num(-20))
	deck = append(deck, num(0), num(0), num(0))
	deck = append(deck,
		spec(SpecialDouble), spec(SpecialDouble),
		spec(SpecialMaxZero), spec(SpecialMaxZero),
		spec(SpecialMystery), spec(SpecialMystery),
	)
	return deck
}

// Phase is the round lifecycle.
type Phase string

const (
	PhaseBidding         Phase = "bidding"
	PhaseChallengeResult Phase = "challenge_result"
	PhaseGameOver        Phase = "gameover"
)

const (
	initialLives = 3
	minPlayers   = 2
	maxPlayers   = 10
	// deckReserve keeps cards undealt so "?" tokens can resolve.
	deckReserve = 5
)

// NoBid is CurrentBid before anyone has bid in a round.
const NoBid = -1

// State is the complete game state. It is replaced wholesale on every
// transition and serializes losslessly to JSON.
type State struct {
	Phase Phase `json:"phase"`
	// Deck holds the undealt remainder, consumed from the front by "?"
	// resolution during a challenge.
	Deck               []Card   `json:"deck"`
	Hands              [][]Card `json:"hands"`
	CurrentBid         int      `json:"currentBid"`
	CurrentBidderIndex int      `json:"currentBidderIndex"`
	CurrentPlayerIndex int      `json:"currentPlayerIndex"`
	Lives              []int    `json:"lives"`
	Round              int      `json:"round"`
	// Challenge outcome, present only in challenge_result and gameover.
	LastTotal      *int       `json:"lastTotal,omitempty"`
	LastLoserIndex *int       `json:"lastLoserIndex,omitempty"`
	RevealedHands  [][]Card   `json:"revealedHands,omitempty"`
	Rng            rng.Source `json:"rng"`
}

// CardsPerPlayer is the per-round deal size, leaving a reserve for "?"
// resolution.
func CardsPerPlayer(playerCount int) int {
	return (len(FullDeck()) - deckReserve) / playerCount
}

// NewState creates the initial state for 2-10 players: a shuffled deal with
// player 0 to act, no bid on the table, three lives each.
func NewState(playerCount int, seed uint64) (*State, error) {
	if playerCount < minPlayers || playerCount > maxPlayers {
		return nil, fmt.Errorf("midnight: requires %d-%d players, got %d", minPlayers, maxPlayers, playerCount)
	}
	src := rng.New(seed)
	s := &State{
		Phase:              PhaseBidding,
		CurrentBid:         NoBid,
		CurrentBidderIndex: -1,
		Lives:              make([]int, playerCount),
		Round:              1,
		Rng:                src,
	}
	for i := range s.Lives {
		s.Lives[i] = initialLives
	}
	s.Deck, s.Hands = deal(&s.Rng, playerCount)
	return s, nil
}

func deal(src *rng.Source, playerCount int) (deck []Card, hands [][]Card) {
	deck = FullDeck()
	rng.Shuffle(src, deck)
	per := CardsPerPlayer(playerCount)
	hands = make([][]Card, playerCount)
	for i := range hands {
		hands[i] = append([]Card(nil), deck[:per]...)
		deck = deck[per:]
	}
	return deck, hands
}

func (s *State) clone() *State {
	ns := &State{
		Phase:              s.Phase,
		Deck:               append([]Card(nil), s.Deck...),
		Hands:              cloneHands(s.Hands),
		CurrentBid:         s.CurrentBid,
		CurrentBidderIndex: s.CurrentBidderIndex,
		CurrentPlayerIndex: s.CurrentPlayerIndex,
		Lives:              append([]int(nil), s.Lives...),
		Round:              s.Round,
		Rng:                s.Rng,
	}
	if s.LastTotal != nil {
		v := *s.LastTotal
		ns.LastTotal = &v
	}
	if s.LastLoserIndex != nil {
		v := *s.LastLoserIndex
		ns.LastLoserIndex = &v
	}
	if s.RevealedHands != nil {
		ns.RevealedHands = cloneHands(s.RevealedHands)
	}
	return ns
}

func cloneHands(hands [][]Card) [][]Card {
	out := make([][]Card, len(hands))
	for i, h := range hands {
		out[i] = append([]Card(nil), h...)
	}
	return out
}

// CalculateTotal resolves the table total in a fixed order: each "?" draws
// one card from the deck front (a drawn special counts as 0), then a
// "MAX=0" zeroes the single largest resolved number, then everything is
// summed, then the sum doubles once per "x2" on the table. Returns the
// total and the deck remainder after "?" draws.
func CalculateTotal(hands [][]Card, deck []Card) (total int, usedDeck []Card) {
	usedDeck = append([]Card(nil), deck...)

	var all []Card
	for _, h := range hands {
		all = append(all, h...)
	}

	var values []int
	doubles, hasMaxZero := 0, false
	for _, c := range all {
		switch c.Special {
		case "":
			values = append(values, c.Value)
		case SpecialDouble:
			doubles++
		case SpecialMaxZero:
			hasMaxZero = true
		case SpecialMystery:
			v := 0
			if len(usedDeck) > 0 {
				if drawn := usedDeck[0]; drawn.IsNumeric() {
					v = drawn.Value
				}
				usedDeck = usedDeck[1:]
			}
			values = append(values, v)
		}
	}

	if hasMaxZero && len(values) > 0 {
		maxIdx := 0
		for i, v := range values {
			if v > values[maxIdx] {
				maxIdx = i
			}
		}
		values[maxIdx] = 0
	}

	for _, v := range values {
		total += v
	}
	for i := 0; i < doubles; i++ {
		total *= 2
	}
	return total, usedDeck
}

func activeIndices(lives []int) []int {
	var out []int
	for i, l := range lives {
		if l > 0 {
			out = append(out, i)
		}
	}
	return out
}

func nextPlayerIndex(lives []int, current int) int {
	active := activeIndices(lives)
	if len(active) == 0 {
		return current
	}
	for i, idx := range active {
		if idx == current {
			return active[(i+1)%len(active)]
		}
	}
	return active[0]
}

// Bid declares a table total: strictly greater than the standing bid, or
// any value >= 0 when no bid exists yet. The turn passes to the next living
// player. Returns nil if the action is illegal.
func Bid(s *State, player, value int) *State {
	if s.Phase != PhaseBidding || s.CurrentPlayerIndex != player {
		return nil
	}
	if player < 0 || player >= len(s.Lives) || s.Lives[player] <= 0 {
		return nil
	}
	minBid := 0
	if s.CurrentBid >= 0 {
		minBid = s.CurrentBid + 1
	}
	if value < minBid {
		return nil
	}

	ns := s.clone()
	ns.CurrentBid = value
	ns.CurrentBidderIndex = player
	ns.CurrentPlayerIndex = nextPlayerIndex(ns.Lives, player)
	return ns
}

// CallMidnight challenges the standing bid. The table total is resolved;
// if it meets or exceeds the bid the bidder overreached and loses a life,
// otherwise the challenger loses one. All hands are revealed for display.
// Returns nil if the action is illegal or no bid exists.
func CallMidnight(s *State, player int) *State {
	if s.Phase != PhaseBidding || s.CurrentPlayerIndex != player {
		return nil
	}
	if player < 0 || player >= len(s.Lives) || s.Lives[player] <= 0 {
		return nil
	}
	if s.CurrentBid < 0 {
		return nil
	}

	ns := s.clone()
	total, usedDeck := CalculateTotal(ns.Hands, ns.Deck)
	ns.Deck = usedDeck

	loser := player
	if total >= s.CurrentBid {
		loser = s.CurrentBidderIndex
	}
	if ns.Lives[loser] > 0 {
		ns.Lives[loser]--
	}

	ns.Phase = PhaseChallengeResult
	if len(activeIndices(ns.Lives)) <= 1 {
		ns.Phase = PhaseGameOver
	}
	ns.LastTotal = &total
	ns.LastLoserIndex = &loser
	ns.RevealedHands = cloneHands(s.Hands)
	return ns
}

// StartNextRound reshuffles and redeals after a challenge. The loser opens
// the round if still alive, otherwise the first living player by index.
// Returns nil outside challenge_result.
func StartNextRound(s *State) *State {
	if s.Phase != PhaseChallengeResult {
		return nil
	}
	ns := s.clone()

	starter := 0
	if ns.LastLoserIndex != nil {
		starter = *ns.LastLoserIndex
	}
	if starter >= len(ns.Lives) || ns.Lives[starter] <= 0 {
		if active := activeIndices(ns.Lives); len(active) > 0 {
			starter = active[0]
		} else {
			starter = 0
		}
	}

	ns.Deck, ns.Hands = deal(&ns.Rng, len(ns.Hands))
	ns.Phase = PhaseBidding
	ns.CurrentBid = NoBid
	ns.CurrentBidderIndex = -1
	ns.CurrentPlayerIndex = starter
	ns.Round = s.Round + 1
	ns.LastTotal = nil
	ns.LastLoserIndex = nil
	ns.RevealedHands = nil
	return ns
}

// Restart begins a fresh game with the same player count once the current
// one is over. Returns nil unless the game has ended.
func Restart(s *State) *State {
	if s.Phase != PhaseGameOver {
		return nil
	}
	ns, err := NewState(len(s.Hands), uint64(s.Rng))
	if err != nil {
		return nil
	}
	return ns
}
