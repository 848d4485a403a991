// Package court implements the Court Intrigue rules: a 2-4 player
// elimination deduction game over a 16-card deck of ranked courtiers, each
// rank carrying a distinct effect on discard. The last player standing, or
// the highest card when the deck runs dry, wins.
//
// Transition functions return a fresh state, or nil when the action is
// illegal; the caller keeps the prior state on nil.
package court

import (
	"fmt"

	"github.com/kagehara/partydeck/engine/rng"
)

// Card ranks.
const (
	RankGuard    = 1 // name a value, eliminate the target on a match
	RankPriest   = 2 // privately look at a target's hand
	RankBaron    = 3 // compare hands, lower is eliminated
	RankHandmaid = 4 // protected until the player's next turn
	RankPrince   = 5 // force a target (may be self) to redraw
	RankKing     = 6 // swap hands with a target
	RankMinister = 7 // no effect, but forced out alongside rank 5 or 6
	RankPrincess = 8 // discarding her eliminates you
)

// CardNames maps each rank to its display name.
var CardNames = map[int]string{
	RankGuard:    "Guard",
	RankPriest:   "Priest",
	RankBaron:    "Baron",
	RankHandmaid: "Handmaid",
	RankPrince:   "Prince",
	RankKing:     "King",
	RankMinister: "Minister",
	RankPrincess: "Princess",
}

// NoTarget is passed as the target index for ranks that take none, and for
// a rank-5 self-target.
const NoTarget = -1

// NoWinner is the Winner value while the game is still running.
const NoWinner = -1

// GuessOptions lists the values a Guard may name. Rank 1 is excluded since
// guards cannot name guards.
var GuessOptions = []int{2, 3, 4, 5, 6, 7, 8}

// deckTemplate is the full 16-card deck before the face-down removal.
var deckTemplate = []int{1, 1, 1, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 7, 8}

// Phase is the game lifecycle.
type Phase string

const (
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

const (
	minPlayers = 2
	maxPlayers = 4
)

// Player is one seat's standing in the round.
type Player struct {
	Hand         []int `json:"hand"`
	IsEliminated bool  `json:"isEliminated"`
	IsProtected  bool  `json:"isProtected"`
	Score        int   `json:"score"`
}

// DiscardEntry records one discard in play order.
type DiscardEntry struct {
	PlayerIndex int `json:"playerIndex"`
	Rank        int `json:"rank"`
}

// PriestReveal is the ephemeral result of a rank-2 play: only ActorIndex
// should be shown Rank. It is cleared by every transition except the one
// that set it.
type PriestReveal struct {
	ActorIndex  int `json:"actorIndex"`
	TargetIndex int `json:"targetIndex"`
	Rank        int `json:"rank"`
}

// State is the complete game state. It is replaced wholesale on every
// transition and serializes losslessly to JSON.
type State struct {
	Phase Phase `json:"phase"`
	Deck  []int `json:"deck"`
	// RemovedCard was set aside face-down at deal and re-enters play only
	// through a rank-5 redraw against an empty deck.
	RemovedCard      int            `json:"removedCard"`
	DiscardPile      []DiscardEntry `json:"discardPile"`
	TurnIndex        int            `json:"turnIndex"`
	Players          []Player       `json:"players"`
	Winner           int            `json:"winner"`
	Logs             []string       `json:"logs"`
	LastPriestReveal *PriestReveal  `json:"lastPriestReveal,omitempty"`
	Rng              rng.Source     `json:"rng"`
}

// NewState creates the initial state for 2-4 players: one card removed face
// down, one card dealt to each player, and a second to player 0 who acts
// first.
func NewState(playerCount int, seed uint64) (*State, error) {
	if playerCount < minPlayers || playerCount > maxPlayers {
		return nil, fmt.Errorf("court: requires %d-%d players, got %d", minPlayers, maxPlayers, playerCount)
	}
	src := rng.New(seed)
	deck := append([]int(nil), deckTemplate...)
	rng.Shuffle(&src, deck)

	removed := deck[len(deck)-1]
	deck = deck[:len(deck)-1]

	players := make([]Player, playerCount)
	for i := range players {
		players[i] = Player{Hand: []int{deck[0]}}
		deck = deck[1:]
	}
	players[0].Hand = append(players[0].Hand, deck[0])
	deck = deck[1:]

	return &State{
		Phase:       PhasePlaying,
		Deck:        deck,
		RemovedCard: removed,
		DiscardPile: []DiscardEntry{},
		Players:     players,
		Winner:      NoWinner,
		Logs:        []string{"game start"},
		Rng:         src,
	}, nil
}

func (s *State) clone() *State {
	ns := &State{
		Phase:       s.Phase,
		Deck:        append([]int(nil), s.Deck...),
		RemovedCard: s.RemovedCard,
		DiscardPile: append([]DiscardEntry(nil), s.DiscardPile...),
		TurnIndex:   s.TurnIndex,
		Players:     make([]Player, len(s.Players)),
		Winner:      s.Winner,
		Logs:        append([]string(nil), s.Logs...),
		Rng:         s.Rng,
	}
	for i, p := range s.Players {
		p.Hand = append([]int(nil), p.Hand...)
		ns.Players[i] = p
	}
	if s.LastPriestReveal != nil {
		r := *s.LastPriestReveal
		ns.LastPriestReveal = &r
	}
	return ns
}

// CardNeedsTarget reports whether playing rank requires a target index.
func CardNeedsTarget(rank int) bool {
	switch rank {
	case RankGuard, RankPriest, RankBaron, RankPrince, RankKing:
		return true
	}
	return false
}

// CardNeedsGuess reports whether playing rank requires a named value.
func CardNeedsGuess(rank int) bool { return rank == RankGuard }

// MustDiscardMinister reports the forced-discard rule: a hand holding the
// Minister next to a Prince or King may only discard the Minister.
func MustDiscardMinister(hand []int) bool {
	hasMinister, hasRoyal := false, false
	for _, r := range hand {
		switch r {
		case RankMinister:
			hasMinister = true
		case RankPrince, RankKing:
			hasRoyal = true
		}
	}
	return hasMinister && hasRoyal
}

// DiscardableCards returns the ranks player may legally discard this turn.
func DiscardableCards(s *State, player int) []int {
	if player < 0 || player >= len(s.Players) {
		return nil
	}
	hand := s.Players[player].Hand
	if MustDiscardMinister(hand) {
		return []int{RankMinister}
	}
	return append([]int(nil), hand...)
}

// ValidTargets returns the opponents player may aim an effect at: alive,
// not self, not protected. Rank-5 plays additionally accept protected
// players and self; see PlayCard.
func ValidTargets(s *State, actor int) []int {
	var out []int
	for i, p := range s.Players {
		if i == actor || p.IsEliminated || p.IsProtected {
			continue
		}
		out = append(out, i)
	}
	return out
}

func countAlive(players []Player) int {
	n := 0
	for _, p := range players {
		if !p.IsEliminated {
			n++
		}
	}
	return n
}

func nextAliveIndex(players []Player, from int) int {
	n := len(players)
	for i := 1; i <= n; i++ {
		idx := (from + i) % n
		if !players[idx].IsEliminated {
			return idx
		}
	}
	return from
}

// PlayCard discards rank from player's hand and resolves its effect. target
// is a player index for ranks 1, 2, 3, 5 and 6, or NoTarget otherwise (a
// rank-5 play with NoTarget redraws the actor's own hand). guess is the
// value a Guard names, 2-8. Returns nil if the action is illegal.
//
// Rank-5 plays may target a protected player; protection blocks every other
// rank. After the effect the turn passes to the next living player, whose
// protection clears and who draws one card; an empty deck at that point
// ends the round with the highest remaining hand winning.
func PlayCard(s *State, player int, rank, target, guess int) *State {
	if s.Phase != PhasePlaying || player != s.TurnIndex {
		return nil
	}
	if player < 0 || player >= len(s.Players) || s.Players[player].IsEliminated {
		return nil
	}

	ns := s.clone()
	ns.LastPriestReveal = nil
	actor := &ns.Players[player]

	handIdx := -1
	for i, r := range actor.Hand {
		if r == rank {
			handIdx = i
			break
		}
	}
	if handIdx < 0 {
		return nil
	}
	if MustDiscardMinister(actor.Hand) && rank != RankMinister {
		return nil
	}

	actor.Hand = append(actor.Hand[:handIdx], actor.Hand[handIdx+1:]...)
	ns.DiscardPile = append(ns.DiscardPile, DiscardEntry{PlayerIndex: player, Rank: rank})

	switch rank {
	case RankPrincess:
		actor.IsEliminated = true
		ns.appendLog(fmt.Sprintf("player %d discarded the Princess and is out", player+1))

	case RankMinister, RankHandmaid:
		if rank == RankHandmaid {
			actor.IsProtected = true
			ns.appendLog(fmt.Sprintf("player %d is protected until their next turn", player+1))
		} else {
			ns.appendLog(fmt.Sprintf("player %d discarded the Minister", player+1))
		}

	case RankPrince:
		idx := target
		if idx == NoTarget || idx == player {
			idx = player
		} else if !ns.validEffectTarget(idx, true) {
			return nil
		}
		tp := &ns.Players[idx]
		tp.Hand = nil
		drawn := ns.RemovedCard
		if len(ns.Deck) > 0 {
			drawn = ns.Deck[len(ns.Deck)-1]
			ns.Deck = ns.Deck[:len(ns.Deck)-1]
		}
		tp.Hand = []int{drawn}
		ns.appendLog(fmt.Sprintf("player %d made player %d discard and redraw", player+1, idx+1))

	case RankGuard:
		if guess < 2 || guess > 8 {
			return nil
		}
		if !ns.validEffectTarget(target, false) || target == player {
			return nil
		}
		tp := &ns.Players[target]
		if len(tp.Hand) == 0 {
			return nil
		}
		if tp.Hand[0] == guess {
			tp.IsEliminated = true
			ns.appendLog(fmt.Sprintf("player %d named %d against player %d: hit, player %d is out", player+1, guess, target+1, target+1))
		} else {
			ns.appendLog(fmt.Sprintf("player %d named %d against player %d: miss", player+1, guess, target+1))
		}

	case RankPriest:
		if !ns.validEffectTarget(target, false) || target == player {
			return nil
		}
		seen := 0
		if h := ns.Players[target].Hand; len(h) > 0 {
			seen = h[0]
		}
		ns.LastPriestReveal = &PriestReveal{ActorIndex: player, TargetIndex: target, Rank: seen}
		ns.appendLog(fmt.Sprintf("player %d looked at player %d's hand", player+1, target+1))

	case RankBaron:
		if !ns.validEffectTarget(target, false) || target == player {
			return nil
		}
		mine, theirs := handValue(actor.Hand), handValue(ns.Players[target].Hand)
		switch {
		case mine < theirs:
			actor.IsEliminated = true
			ns.appendLog(fmt.Sprintf("player %d lost the Baron comparison to player %d and is out", player+1, target+1))
		case theirs < mine:
			ns.Players[target].IsEliminated = true
			ns.appendLog(fmt.Sprintf("player %d lost the Baron comparison to player %d and is out", target+1, player+1))
		default:
			ns.appendLog(fmt.Sprintf("player %d and player %d tied the Baron comparison", player+1, target+1))
		}

	case RankKing:
		if !ns.validEffectTarget(target, false) || target == player {
			return nil
		}
		tp := &ns.Players[target]
		actor.Hand, tp.Hand = tp.Hand, actor.Hand
		ns.appendLog(fmt.Sprintf("player %d swapped hands with player %d", player+1, target+1))

	default:
		return nil
	}

	if countAlive(ns.Players) <= 1 {
		return ns.finishLastStanding()
	}
	return ns.advanceAndDraw()
}

// validEffectTarget checks target is a live seat; when ignoreProtection is
// false a protected target is rejected.
func (s *State) validEffectTarget(target int, ignoreProtection bool) bool {
	if target < 0 || target >= len(s.Players) {
		return false
	}
	p := s.Players[target]
	if p.IsEliminated {
		return false
	}
	if p.IsProtected && !ignoreProtection {
		return false
	}
	return true
}

func handValue(hand []int) int {
	if len(hand) == 0 {
		return 0
	}
	return hand[0]
}

// finishLastStanding closes the game with the sole survivor as winner.
func (s *State) finishLastStanding() *State {
	s.Phase = PhaseFinished
	s.Winner = NoWinner
	for i, p := range s.Players {
		if !p.IsEliminated {
			s.Winner = i
			break
		}
	}
	if s.Winner >= 0 {
		s.appendLog(fmt.Sprintf("player %d wins", s.Winner+1))
	}
	return s
}

// advanceAndDraw passes the turn to the next living player, clears their
// protection and deals them a card. If the deck cannot cover the draw, the
// round ends in a showdown: highest card among survivors wins, first index
// on ties.
func (s *State) advanceAndDraw() *State {
	next := nextAliveIndex(s.Players, s.TurnIndex)
	s.TurnIndex = next
	p := &s.Players[next]
	p.IsProtected = false
	if len(s.Deck) > 0 {
		p.Hand = append(p.Hand, s.Deck[len(s.Deck)-1])
		s.Deck = s.Deck[:len(s.Deck)-1]
	}
	if len(s.Deck) == 0 {
		return s.finishShowdown()
	}
	return s
}

func (s *State) finishShowdown() *State {
	s.Phase = PhaseFinished
	s.Winner = NoWinner
	best := -1
	for i, p := range s.Players {
		if p.IsEliminated {
			continue
		}
		if v := handValue(p.Hand); v > best {
			best = v
			s.Winner = i
		}
	}
	if s.Winner >= 0 {
		s.appendLog(fmt.Sprintf("deck empty: player %d wins the showdown with %s", s.Winner+1, CardNames[best]))
	}
	return s
}

func (s *State) appendLog(msg string) {
	s.Logs = append(s.Logs, msg)
}
