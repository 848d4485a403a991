// Package valuetalk implements the Value Talk rules: a cooperative game
// where players hold secret numbers from 1-100 and must play them in
// ascending order, communicating only through analogies on a shared theme.
// Playing a card while a smaller one is still hidden anywhere costs a life
// and burns every smaller card from every hand.
//
// Transition functions return a fresh state, or nil when the action is
// illegal; the caller keeps the prior state on nil.
package valuetalk

import (
	"fmt"

	"github.com/kagehara/partydeck/engine/rng"
)

// Phase is the game lifecycle.
type Phase string

const (
	PhasePlaying  Phase = "playing"
	PhaseGameOver Phase = "gameover"
)

const (
	initialLife = 3
	deckMax     = 100
)

// PlayerState is one player's hidden hand with the analogies they have
// written for each card.
type PlayerState struct {
	Hand         []int          `json:"hand"`
	Descriptions map[int]string `json:"descriptions"`
}

// PlayedCard is one card in the ascending sequence on the table.
type PlayedCard struct {
	Card        int    `json:"card"`
	Description string `json:"description"`
	PlayerIndex int    `json:"playerIndex"`
}

// SmallerCard identifies a hidden card that should have been played first.
type SmallerCard struct {
	PlayerIndex int `json:"playerIndex"`
	Card        int `json:"card"`
}

// LastFailure describes the most recent misplay, for display.
type LastFailure struct {
	Message      string        `json:"message"`
	PlayedCard   int           `json:"playedCard"`
	PlayerIndex  int           `json:"playerIndex"`
	SmallerCards []SmallerCard `json:"smallerCards"`
}

// State is the complete game state. It is replaced wholesale on every
// transition and serializes losslessly to JSON.
type State struct {
	Phase           Phase         `json:"phase"`
	Theme           string        `json:"theme"`
	Life            int           `json:"life"`
	Level           int           `json:"level"`
	Deck            []int         `json:"deck"`
	PlayedCards     []PlayedCard  `json:"played_cards"`
	Players         []PlayerState `json:"players"`
	LastFailure     *LastFailure  `json:"lastFailure,omitempty"`
	ThemeChangeUsed bool          `json:"themeChangeUsed"`
	Difficulty      Difficulty    `json:"difficulty"`
	Rng             rng.Source    `json:"rng"`
}

// handCounts is the per-seat deal: pairs get three cards each, trios two,
// four players split 2/2/1/1 at random, larger tables one each.
func handCounts(src *rng.Source, playerCount int) []int {
	switch {
	case playerCount <= 0:
		return nil
	case playerCount == 2:
		return []int{3, 3}
	case playerCount == 3:
		return []int{2, 2, 2}
	case playerCount == 4:
		seats := []int{0, 1, 2, 3}
		rng.Shuffle(src, seats)
		counts := []int{1, 1, 1, 1}
		counts[seats[0]], counts[seats[1]] = 2, 2
		return counts
	default:
		counts := make([]int, playerCount)
		for i := range counts {
			counts[i] = 1
		}
		return counts
	}
}

func freshDeck(src *rng.Source) []int {
	deck := make([]int, deckMax)
	for i := range deck {
		deck[i] = i + 1
	}
	rng.Shuffle(src, deck)
	return deck
}

// NewState creates the initial state: a shuffled 1-100 deck, a theme for
// the difficulty, three lives, level 1. Any playerCount >= 1 is accepted.
func NewState(playerCount int, difficulty Difficulty, seed uint64) (*State, error) {
	if playerCount < 1 {
		return nil, fmt.Errorf("valuetalk: requires at least 1 player, got %d", playerCount)
	}
	if difficulty == "" {
		difficulty = DifficultyMixed
	}
	src := rng.New(seed)
	s := &State{
		Phase:      PhasePlaying,
		Life:       initialLife,
		Level:      1,
		Difficulty: difficulty,
		Rng:        src,
	}
	s.Theme = NewTheme(&s.Rng, difficulty, 1)
	deck := freshDeck(&s.Rng)
	s.Deck, s.Players = dealHands(&s.Rng, deck, playerCount)
	return s, nil
}

func dealHands(src *rng.Source, deck []int, playerCount int) ([]int, []PlayerState) {
	counts := handCounts(src, playerCount)
	players := make([]PlayerState, playerCount)
	for i := range players {
		hand := append([]int(nil), deck[:counts[i]]...)
		deck = deck[counts[i]:]
		players[i] = PlayerState{Hand: hand, Descriptions: map[int]string{}}
	}
	return deck, players
}

func (s *State) clone() *State {
	ns := &State{
		Phase:           s.Phase,
		Theme:           s.Theme,
		Life:            s.Life,
		Level:           s.Level,
		Deck:            append([]int(nil), s.Deck...),
		PlayedCards:     append([]PlayedCard(nil), s.PlayedCards...),
		Players:         make([]PlayerState, len(s.Players)),
		ThemeChangeUsed: s.ThemeChangeUsed,
		Difficulty:      s.Difficulty,
		Rng:             s.Rng,
	}
	for i, p := range s.Players {
		np := PlayerState{
			Hand:         append([]int(nil), p.Hand...),
			Descriptions: make(map[int]string, len(p.Descriptions)),
		}
		for c, d := range p.Descriptions {
			np.Descriptions[c] = d
		}
		ns.Players[i] = np
	}
	if s.LastFailure != nil {
		f := *s.LastFailure
		f.SmallerCards = append([]SmallerCard(nil), s.LastFailure.SmallerCards...)
		ns.LastFailure = &f
	}
	return ns
}

// UpdateDescription stores a player's analogy for a card still in their
// hand. Returns nil outside play or when the card is not held.
func UpdateDescription(s *State, player, card int, text string) *State {
	if s.Phase != PhasePlaying {
		return nil
	}
	if player < 0 || player >= len(s.Players) || !holds(s.Players[player].Hand, card) {
		return nil
	}
	ns := s.clone()
	ns.Players[player].Descriptions[card] = text
	return ns
}

func holds(hand []int, card int) bool {
	for _, c := range hand {
		if c == card {
			return true
		}
	}
	return false
}

// PlayCard commits a card to the table. It succeeds only when no smaller
// card remains hidden in any hand; the card joins the played sequence and,
// once every hand is empty, the next level deals. A misplay costs one life
// (game over at zero) and burns every strictly smaller card from every
// hand; the misplayed card stays where it was. Returns nil if the action
// is illegal.
func PlayCard(s *State, player, card int, description string) *State {
	if s.Phase != PhasePlaying {
		return nil
	}
	if player < 0 || player >= len(s.Players) || !holds(s.Players[player].Hand, card) {
		return nil
	}

	ns := s.clone()
	var smaller []SmallerCard
	for i, p := range ns.Players {
		for _, c := range p.Hand {
			if c < card {
				smaller = append(smaller, SmallerCard{PlayerIndex: i, Card: c})
			}
		}
	}

	if len(smaller) > 0 {
		return ns.failPlay(player, card, smaller)
	}

	hand := ns.Players[player].Hand
	for i, c := range hand {
		if c == card {
			ns.Players[player].Hand = append(hand[:i], hand[i+1:]...)
			break
		}
	}
	delete(ns.Players[player].Descriptions, card)
	ns.PlayedCards = append(ns.PlayedCards, PlayedCard{Card: card, Description: description, PlayerIndex: player})
	ns.LastFailure = nil

	for _, p := range ns.Players {
		if len(p.Hand) > 0 {
			return ns
		}
	}
	return ns.dealNextLevel()
}

// failPlay applies the misplay penalty: life down one and a cascade burn
// of every card below the played one.
func (s *State) failPlay(player, card int, smaller []SmallerCard) *State {
	smallest := smaller[0]
	for _, sc := range smaller[1:] {
		if sc.Card < smallest.Card {
			smallest = sc
		}
	}

	s.Life--
	if s.Life <= 0 {
		s.Phase = PhaseGameOver
	}
	for i := range s.Players {
		p := &s.Players[i]
		var kept []int
		for _, c := range p.Hand {
			if c >= card {
				kept = append(kept, c)
			} else {
				delete(p.Descriptions, c)
			}
		}
		p.Hand = kept
	}
	s.LastFailure = &LastFailure{
		Message:      fmt.Sprintf("miss: player %d's card %d was smaller", smallest.PlayerIndex+1, smallest.Card),
		PlayedCard:   card,
		PlayerIndex:  player,
		SmallerCards: smaller,
	}
	return s
}

// dealNextLevel starts the next level: fresh hands from the remaining deck
// (reshuffling a full deck when it runs short), an empty table, and for
// gradual play a theme from the new level's tier.
func (s *State) dealNextLevel() *State {
	s.Level++

	need := 0
	probe := s.Rng // counts only; the real deal advances the stored rng
	for _, n := range handCounts(&probe, len(s.Players)) {
		need += n
	}
	if len(s.Deck) < need {
		s.Deck = freshDeck(&s.Rng)
	}
	s.Deck, s.Players = dealHands(&s.Rng, s.Deck, len(s.Players))
	s.PlayedCards = nil
	s.LastFailure = nil
	if s.Difficulty == DifficultyGradual {
		s.Theme = NewTheme(&s.Rng, s.Difficulty, s.Level)
	}
	return s
}

// ChangeTheme redraws the theme from the current tier, usable once per
// game. Returns nil once used or outside play.
func ChangeTheme(s *State) *State {
	if s.Phase != PhasePlaying || s.ThemeChangeUsed {
		return nil
	}
	ns := s.clone()
	pool := themePool(ns.Difficulty, ns.Level)
	others := make([]string, 0, len(pool))
	for _, t := range pool {
		if t != ns.Theme {
			others = append(others, t)
		}
	}
	if len(others) == 0 {
		others = pool
	}
	ns.Theme = rng.Pick(&ns.Rng, others)
	ns.ThemeChangeUsed = true
	return ns
}

// Restart begins a fresh game with the same players and difficulty: full
// lives, level 1, new deck and theme.
func Restart(s *State) *State {
	ns := s.clone()
	ns.Phase = PhasePlaying
	ns.Life = initialLife
	ns.Level = 1
	ns.Theme = NewTheme(&ns.Rng, ns.Difficulty, 1)
	ns.Deck, ns.Players = dealHands(&ns.Rng, freshDeck(&ns.Rng), len(ns.Players))
	ns.PlayedCards = nil
	ns.LastFailure = nil
	ns.ThemeChangeUsed = false
	return ns
}
