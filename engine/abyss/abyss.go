// Package abyss implements the Abyss Salvage rules: a shared-oxygen
// push-your-luck dive. Players descend a path of ruins, pick up loot that
// slows them down and drains the shared oxygen pool, and must return to the
// submarine before the pool empties or forfeit everything they carry.
//
// Transition functions return a fresh state, or nil when the action is
// illegal; the caller keeps the prior state on nil.
package abyss

import (
	"fmt"

	"github.com/kagehara/partydeck/engine/rng"
)

// Phase of the game.
type Phase string

const (
	PhasePlaying     Phase = "playing"
	PhaseRoundResult Phase = "round_result"
	PhaseGameOver    Phase = "gameover"
)

// Direction of a player's movement along the path.
type Direction string

const (
	DirDescending Direction = "down"
	DirReturning  Direction = "up"
)

// CellType classifies a path cell.
type CellType string

const (
	CellRuin  CellType = "ruin"  // a single unclaimed loot chip
	CellBlank CellType = "blank" // a spent ruin
	CellStack CellType = "stack" // up to three forfeited chips bundled together
)

// SubmarinePos is the position index of the submarine (home). Path cells are
// indexed from 0.
const SubmarinePos = -1

const (
	OxygenMax   = 25
	TotalRounds = 3

	pathLength = 32
	minPlayers = 2
	maxPlayers = 6
	stackSize  = 3
)

// Loot is one salvage chip: its ruin level and hidden score.
type Loot struct {
	Level int `json:"level"`
	Score int `json:"score"`
}

// Cell is one step of the dive path.
type Cell struct {
	Type  CellType `json:"type"`
	Level int      `json:"level"`
	Score int      `json:"score"`
	Count int      `json:"count"`
	// Loot holds the stack contents; nil except for CellStack.
	Loot []Loot `json:"loot,omitempty"`
}

// Player is one diver's state.
type Player struct {
	Position    int       `json:"position"` // SubmarinePos or an index into Path
	HoldingLoot []Loot    `json:"holdingLoot"`
	Score       int       `json:"score"`
	Direction   Direction `json:"direction"`
	IsReturned  bool      `json:"isReturned"`
}

// State is the complete game state, replaced wholesale on every transition.
type State struct {
	Phase              Phase      `json:"phase"`
	Oxygen             int        `json:"oxygen"` // shared pool, never negative
	Round              int        `json:"round"`  // 1..TotalRounds
	Path               []Cell     `json:"path"`
	Players            []Player   `json:"players"`
	CurrentPlayerIndex int        `json:"currentPlayerIndex"`
	// Turn sub-phase flags: oxygen must be consumed before moving, and the
	// player must move before picking up, dropping, or ending the turn.
	OxygenConsumedThisTurn bool `json:"oxygenConsumedThisTurn"`
	MovedThisTurn          bool `json:"movedThisTurn"`
	// RoundForfeited records whether the last round ended by oxygen depletion.
	RoundForfeited bool       `json:"roundForfeited"`
	LastDice       []int      `json:"lastDice,omitempty"`
	Rng            rng.Source `json:"rng"`
}

// NewState creates the initial state: a 32-cell path of shuffled ruin levels
// with randomized scores, all players at the submarine, round 1.
func NewState(playerCount int, seed uint64) (*State, error) {
	if playerCount < minPlayers || playerCount > maxPlayers {
		return nil, fmt.Errorf("abyss: supports %d-%d players, got %d", minPlayers, maxPlayers, playerCount)
	}
	src := rng.New(seed)
	s := &State{
		Phase:   PhasePlaying,
		Oxygen:  OxygenMax,
		Round:   1,
		Path:    buildPath(&src),
		Players: make([]Player, playerCount),
		Rng:     src,
	}
	for i := range s.Players {
		s.Players[i] = freshPlayer(0)
	}
	return s, nil
}

// buildPath lays out pathLength ruins: levels 1-4 evenly represented,
// shuffled, each with a score drawn from its level's range.
func buildPath(src *rng.Source) []Cell {
	levels := make([]int, pathLength)
	for i := range levels {
		levels[i] = i%4 + 1
	}
	rng.Shuffle(src, levels)
	path := make([]Cell, 0, pathLength)
	for _, level := range levels {
		path = append(path, ruinCell(level, scoreForLevel(src, level)))
	}
	return path
}

// scoreForLevel draws a uniform score from the level's range: deeper ruins
// are worth more.
func scoreForLevel(src *rng.Source, level int) int {
	var lo, hi int
	switch level {
	case 2:
		lo, hi = 2, 5
	case 3:
		lo, hi = 3, 7
	case 4:
		lo, hi = 5, 10
	default:
		lo, hi = 1, 3
	}
	return lo + src.IntN(hi-lo+1)
}

func ruinCell(level, score int) Cell {
	return Cell{Type: CellRuin, Level: level, Score: score, Count: 1}
}

func blankCell() Cell {
	return Cell{Type: CellBlank}
}

func freshPlayer(score int) Player {
	return Player{
		Position:    SubmarinePos,
		HoldingLoot: []Loot{},
		Score:       score,
		Direction:   DirDescending,
	}
}

func (s *State) clone() *State {
	ns := *s
	ns.Path = make([]Cell, len(s.Path))
	for i, c := range s.Path {
		c.Loot = append([]Loot(nil), c.Loot...)
		ns.Path[i] = c
	}
	ns.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		p.HoldingLoot = append([]Loot(nil), p.HoldingLoot...)
		ns.Players[i] = p
	}
	ns.LastDice = append([]int(nil), s.LastDice...)
	return &ns
}

// actingOK reports whether player may take a turn action right now.
func (s *State) actingOK(player int) bool {
	return s.Phase == PhasePlaying && player == s.CurrentPlayerIndex
}

// ConsumeOxygen subtracts the acting player's held-loot count from the
// shared pool, floored at zero, and marks the turn's oxygen step done. It
// does not settle the round; use ConsumeOxygenAndMaybeEndRound for the full
// turn step.
func ConsumeOxygen(s *State, player int) *State {
	if !s.actingOK(player) || s.OxygenConsumedThisTurn {
		return nil
	}
	ns := s.clone()
	ns.Oxygen -= len(ns.Players[player].HoldingLoot)
	if ns.Oxygen < 0 {
		ns.Oxygen = 0
	}
	ns.OxygenConsumedThisTurn = true
	return ns
}

// ConsumeOxygenAndMaybeEndRound performs the turn's oxygen step; if the pool
// hits zero the round ends immediately with every player's held loot
// forfeited. Consumption is applied first, depletion checked second,
// forfeiture computed against the post-consumption state.
func ConsumeOxygenAndMaybeEndRound(s *State, player int) *State {
	ns := ConsumeOxygen(s, player)
	if ns == nil {
		return nil
	}
	if ns.Oxygen == 0 {
		return EndRound(ns, true)
	}
	return ns
}

// SwitchToReturning flips the acting player's direction from descending to
// returning. The reverse is never allowed, and the turn's oxygen step must
// already be done.
func SwitchToReturning(s *State, player int) *State {
	if !s.actingOK(player) || !s.OxygenConsumedThisTurn {
		return nil
	}
	if s.Players[player].Direction != DirDescending {
		return nil
	}
	ns := s.clone()
	ns.Players[player].Direction = DirReturning
	return ns
}

// RollDice draws two independent dice uniform in {1,2,3} and records them on
// the state. Legal only between the oxygen step and the move step.
func RollDice(s *State, player int) *State {
	if !s.actingOK(player) || !s.OxygenConsumedThisTurn || s.MovedThisTurn {
		return nil
	}
	ns := s.clone()
	d1 := 1 + ns.Rng.IntN(3)
	d2 := 1 + ns.Rng.IntN(3)
	ns.LastDice = []int{d1, d2}
	return ns
}

// MovePlayer advances the acting player along their direction. Effective
// steps are the dice total minus held-loot count, floored at zero. Cells
// occupied by other players are passed through without consuming a step
// (jump-over). Movement stops at the path boundary. Reaching the submarine
// marks the player returned.
func MovePlayer(s *State, player int, diceTotal int) *State {
	if !s.actingOK(player) || !s.OxygenConsumedThisTurn || s.MovedThisTurn {
		return nil
	}
	ns := s.clone()
	p := &ns.Players[player]

	steps := diceTotal - len(p.HoldingLoot)
	if steps < 0 {
		steps = 0
	}
	dir := 1
	if p.Direction == DirReturning {
		dir = -1
	}
	pos := p.Position
	for steps > 0 {
		next := pos + dir
		if next < SubmarinePos || next >= len(ns.Path) {
			break
		}
		pos = next
		if !ns.occupiedByOther(player, next) {
			steps--
		}
	}
	p.Position = pos
	p.IsReturned = pos == SubmarinePos
	ns.MovedThisTurn = true
	return ns
}

func (s *State) occupiedByOther(player, pos int) bool {
	if pos < 0 {
		return false
	}
	for i, p := range s.Players {
		if i != player && p.Position == pos {
			return true
		}
	}
	return false
}

// PickUpLoot claims the cell under the acting player: a ruin yields its
// single chip, a stack yields every chip in it. The cell becomes blank.
func PickUpLoot(s *State, player int) *State {
	if !s.actingOK(player) || !s.MovedThisTurn {
		return nil
	}
	pos := s.Players[player].Position
	if pos < 0 {
		return nil
	}
	cell := s.Path[pos]
	var added []Loot
	switch {
	case cell.Type == CellRuin:
		added = []Loot{{Level: cell.Level, Score: cell.Score}}
	case cell.Type == CellStack && len(cell.Loot) > 0:
		added = append(added, cell.Loot...)
	default:
		return nil
	}

	ns := s.clone()
	ns.Path[pos] = blankCell()
	ns.Players[player].HoldingLoot = append(ns.Players[player].HoldingLoot, added...)
	return ns
}

// PutDownLoot drops the most recently picked chip onto the blank cell under
// the acting player, turning it back into a ruin with that chip's level and
// score.
func PutDownLoot(s *State, player int) *State {
	if !s.actingOK(player) || !s.MovedThisTurn {
		return nil
	}
	p := s.Players[player]
	if p.Position < 0 || len(p.HoldingLoot) == 0 {
		return nil
	}
	if s.Path[p.Position].Type != CellBlank {
		return nil
	}
	ns := s.clone()
	last := ns.Players[player].HoldingLoot[len(p.HoldingLoot)-1]
	ns.Players[player].HoldingLoot = ns.Players[player].HoldingLoot[:len(p.HoldingLoot)-1]
	ns.Path[p.Position] = ruinCell(last.Level, last.Score)
	return ns
}

// EndTurn passes play to the next player and resets the turn sub-phase
// flags. The oxygen step must have been taken.
func EndTurn(s *State, player int) *State {
	if !s.actingOK(player) || !s.OxygenConsumedThisTurn {
		return nil
	}
	ns := s.clone()
	ns.CurrentPlayerIndex = (ns.CurrentPlayerIndex + 1) % len(ns.Players)
	ns.OxygenConsumedThisTurn = false
	ns.MovedThisTurn = false
	ns.LastDice = nil
	return ns
}

// EndTurnAndMaybeFinishRound ends the turn, then settles the round
// immediately if every player has reached the submarine.
func EndTurnAndMaybeFinishRound(s *State, player int) *State {
	ns := EndTurn(s, player)
	if ns == nil {
		return nil
	}
	if AllReturned(ns) {
		return EndRound(ns, false)
	}
	return ns
}

// AllReturned reports whether every player is back at the submarine.
func AllReturned(s *State) bool {
	for _, p := range s.Players {
		if !p.IsReturned {
			return false
		}
	}
	return true
}

// BeginNextRound moves from the round-result screen back into play.
func BeginNextRound(s *State) *State {
	if s.Phase != PhaseRoundResult {
		return nil
	}
	ns := s.clone()
	ns.Phase = PhasePlaying
	ns.RoundForfeited = false
	return ns
}
