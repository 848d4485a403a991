// Package gifts implements the Cursed Gifts rules: a 3-5 player auction of
// unwanted cards. The active player either pays a chip onto the face-up
// card or takes the card with its accumulated pot. Cards score against you,
// but a run of consecutive values counts only its lowest card.
//
// Transition functions return a fresh state, or nil when the action is
// illegal; the caller keeps the prior state on nil.
package gifts

import (
	"fmt"
	"sort"

	"github.com/kagehara/partydeck/engine/rng"
)

// Phase is the game lifecycle.
type Phase string

const (
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

const (
	cardMin        = 3
	cardMax        = 35
	removeCount    = 9
	chipsPerPlayer = 11
	minPlayers     = 3
	maxPlayers     = 5
)

// NoCard is CurrentCard when no card faces up (the game has ended).
const NoCard = 0

// State is the complete game state. It is replaced wholesale on every
// transition and serializes losslessly to JSON.
type State struct {
	Phase Phase `json:"phase"`
	// Deck is the face-down remainder; the top is the last element.
	Deck []int `json:"deck"`
	// CurrentCard is the face-up card under auction, NoCard after the
	// deck runs out.
	CurrentCard        int        `json:"currentCard"`
	PotChips           int        `json:"potChips"`
	CurrentPlayerIndex int        `json:"currentPlayerIndex"`
	PlayerChips        []int      `json:"playerChips"`
	PlayerCards        [][]int    `json:"playerCards"`
	Rng                rng.Source `json:"rng"`
}

// NewState creates the initial state for 3-5 players: a 24-card deck (9 of
// the 33 values removed unseen), eleven chips each, the first card face up
// and player 0 to act.
func NewState(playerCount int, seed uint64) (*State, error) {
	if playerCount < minPlayers || playerCount > maxPlayers {
		return nil, fmt.Errorf("gifts: requires %d-%d players, got %d", minPlayers, maxPlayers, playerCount)
	}
	src := rng.New(seed)
	s := &State{Rng: src}
	s.reset(playerCount)
	return s, nil
}

// reset deals a fresh game in place, advancing the stored rng.
func (s *State) reset(playerCount int) {
	deck := make([]int, 0, cardMax-cardMin+1)
	for v := cardMin; v <= cardMax; v++ {
		deck = append(deck, v)
	}
	rng.Shuffle(&s.Rng, deck)
	deck = deck[:len(deck)-removeCount]

	s.Phase = PhasePlaying
	s.CurrentCard = deck[len(deck)-1]
	s.Deck = deck[:len(deck)-1]
	s.PotChips = 0
	s.CurrentPlayerIndex = 0
	s.PlayerChips = make([]int, playerCount)
	s.PlayerCards = make([][]int, playerCount)
	for i := range s.PlayerChips {
		s.PlayerChips[i] = chipsPerPlayer
		s.PlayerCards[i] = []int{}
	}
}

func (s *State) clone() *State {
	ns := &State{
		Phase:              s.Phase,
		Deck:               append([]int(nil), s.Deck...),
		CurrentCard:        s.CurrentCard,
		PotChips:           s.PotChips,
		CurrentPlayerIndex: s.CurrentPlayerIndex,
		PlayerChips:        append([]int(nil), s.PlayerChips...),
		PlayerCards:        make([][]int, len(s.PlayerCards)),
		Rng:                s.Rng,
	}
	for i, cards := range s.PlayerCards {
		ns.PlayerCards[i] = append([]int(nil), cards...)
	}
	return ns
}

// PayChip declines the face-up card: one chip moves from the player to the
// pot and the turn passes. Returns nil if the player has no chips or the
// action is otherwise illegal.
func PayChip(s *State, player int) *State {
	if s.Phase != PhasePlaying || s.CurrentCard == NoCard {
		return nil
	}
	if s.CurrentPlayerIndex != player {
		return nil
	}
	if s.PlayerChips[player] < 1 {
		return nil
	}

	ns := s.clone()
	ns.PlayerChips[player]--
	ns.PotChips++
	ns.CurrentPlayerIndex = (player + 1) % len(ns.PlayerChips)
	return ns
}

// TakeCard claims the face-up card and the whole pot, then reveals the next
// deck card. The turn stays with the taker. An empty deck ends the game.
// Returns nil if the action is illegal.
func TakeCard(s *State, player int) *State {
	if s.Phase != PhasePlaying || s.CurrentCard == NoCard {
		return nil
	}
	if s.CurrentPlayerIndex != player {
		return nil
	}

	ns := s.clone()
	ns.PlayerCards[player] = append(ns.PlayerCards[player], s.CurrentCard)
	ns.PlayerChips[player] += s.PotChips
	ns.PotChips = 0

	if len(ns.Deck) == 0 {
		ns.CurrentCard = NoCard
		ns.Phase = PhaseFinished
		return ns
	}
	ns.CurrentCard = ns.Deck[len(ns.Deck)-1]
	ns.Deck = ns.Deck[:len(ns.Deck)-1]
	return ns
}

// ScoreForCards is the card penalty: sorted, each maximal run of
// consecutive values counts only its minimum.
func ScoreForCards(cards []int) int {
	if len(cards) == 0 {
		return 0
	}
	sorted := append([]int(nil), cards...)
	sort.Ints(sorted)

	sum := sorted[0]
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1]+1 {
			sum += sorted[i]
		}
	}
	return sum
}

// CalculateScores returns each player's score: chips minus card penalty.
func CalculateScores(s *State) []int {
	scores := make([]int, len(s.PlayerChips))
	for i, cards := range s.PlayerCards {
		scores[i] = s.PlayerChips[i] - ScoreForCards(cards)
	}
	return scores
}

// WinnerIndex returns the highest-scoring player once the game is finished,
// lowest index on ties, or -1 while the game runs.
func WinnerIndex(s *State) int {
	if s.Phase != PhaseFinished {
		return -1
	}
	scores := CalculateScores(s)
	best := 0
	for i, sc := range scores {
		if sc > scores[best] {
			best = i
		}
	}
	return best
}

// Restart begins a fresh game with the same player count once the current
// one is finished. Returns nil otherwise.
func Restart(s *State) *State {
	if s.Phase != PhaseFinished {
		return nil
	}
	ns := s.clone()
	ns.reset(len(s.PlayerChips))
	return ns
}
