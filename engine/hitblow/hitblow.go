// Package hitblow implements the Hit and Blow rules: a two-player code
// breaking duel. Each player sets a secret of four distinct digits, then
// they alternate guesses; a hit is a digit in the right position, a blow a
// right digit in the wrong position. Four hits wins on the spot.
//
// Transition functions return a fresh state, or nil when the action is
// illegal; the caller keeps the prior state on nil.
package hitblow

import "fmt"

// Digits is the secret and guess length.
const Digits = 4

// NoWinner is the Winner value while the game is running.
const NoWinner = -1

// Phase is the game lifecycle.
type Phase string

const (
	PhaseSetup Phase = "setup"
	PhasePlay  Phase = "play"
)

const numPlayers = 2

// GuessEntry is one recorded guess with its result.
type GuessEntry struct {
	Guess string `json:"guess"`
	Hit   int    `json:"hit"`
	Blow  int    `json:"blow"`
}

// State is the complete game state. It is replaced wholesale on every
// transition and serializes losslessly to JSON.
type State struct {
	Phase   Phase              `json:"phase"`
	Secrets [numPlayers]string `json:"secrets"`
	IsSet   [numPlayers]bool   `json:"isSet"`
	// CurrentTurn is meaningful only during play.
	CurrentTurn int                      `json:"currentTurn"`
	Histories   [numPlayers][]GuessEntry `json:"histories"`
	Winner      int                      `json:"winner"`
}

// NewState creates the setup-phase state: both players still owe a secret.
// playerCount must be exactly 2.
func NewState(playerCount int) (*State, error) {
	if playerCount != numPlayers {
		return nil, fmt.Errorf("hitblow: requires exactly %d players, got %d", numPlayers, playerCount)
	}
	return &State{Phase: PhaseSetup, Winner: NoWinner}, nil
}

func (s *State) clone() *State {
	ns := *s
	for i := range s.Histories {
		ns.Histories[i] = append([]GuessEntry(nil), s.Histories[i]...)
	}
	return &ns
}

// IsValidGuess reports whether g is exactly four distinct decimal digits.
func IsValidGuess(g string) bool {
	if len(g) != Digits {
		return false
	}
	var seen [10]bool
	for i := 0; i < len(g); i++ {
		c := g[i]
		if c < '0' || c > '9' {
			return false
		}
		d := c - '0'
		if seen[d] {
			return false
		}
		seen[d] = true
	}
	return true
}

// CheckHitBlow scores guess against secret: hit counts matched positions,
// blow counts matched digits in wrong positions.
func CheckHitBlow(secret, guess string) (hit, blow int) {
	for i := 0; i < len(secret) && i < len(guess); i++ {
		if secret[i] == guess[i] {
			hit++
		}
	}
	var inSecret, inGuess [10]int
	for i := 0; i < len(secret); i++ {
		if c := secret[i]; c >= '0' && c <= '9' {
			inSecret[c-'0']++
		}
	}
	for i := 0; i < len(guess); i++ {
		if c := guess[i]; c >= '0' && c <= '9' {
			inGuess[c-'0']++
		}
	}
	matches := 0
	for d := 0; d < 10; d++ {
		if inSecret[d] < inGuess[d] {
			matches += inSecret[d]
		} else {
			matches += inGuess[d]
		}
	}
	return hit, matches - hit
}

// SetSecret records a player's secret during setup. Once both are set, play
// begins with player 0. Returns nil on an invalid secret or outside setup.
func SetSecret(s *State, player int, secret string) *State {
	if s.Phase != PhaseSetup || !IsValidGuess(secret) {
		return nil
	}
	if player < 0 || player >= numPlayers {
		return nil
	}
	ns := s.clone()
	ns.Secrets[player] = secret
	ns.IsSet[player] = true
	if ns.IsSet[0] && ns.IsSet[1] {
		ns.Phase = PhasePlay
		ns.CurrentTurn = 0
	}
	return ns
}

// SubmitGuess scores the current player's guess against the opponent's
// secret and appends it to their history. Four hits win immediately;
// otherwise the turn passes. Returns nil for an invalid guess, a finished
// game, or the wrong actor.
func SubmitGuess(s *State, player int, guess string) *State {
	if s.Phase != PhasePlay || s.Winner != NoWinner {
		return nil
	}
	if player != s.CurrentTurn || !IsValidGuess(guess) {
		return nil
	}

	ns := s.clone()
	opponent := 1 - player
	hit, blow := CheckHitBlow(ns.Secrets[opponent], guess)
	ns.Histories[player] = append(ns.Histories[player], GuessEntry{Guess: guess, Hit: hit, Blow: blow})
	if hit == Digits {
		ns.Winner = player
	} else {
		ns.CurrentTurn = opponent
	}
	return ns
}

// MergedEntry is one guess in cross-player chronological order.
type MergedEntry struct {
	Player int    `json:"player"`
	Guess  string `json:"guess"`
	Hit    int    `json:"hit"`
	Blow   int    `json:"blow"`
}

// MergedHistory interleaves both histories in the order the guesses were
// made: players alternate starting with player 0.
func MergedHistory(s *State) []MergedEntry {
	var out []MergedEntry
	idx := [numPlayers]int{}
	turn := 0
	for idx[0] < len(s.Histories[0]) || idx[1] < len(s.Histories[1]) {
		if idx[turn] >= len(s.Histories[turn]) {
			break
		}
		e := s.Histories[turn][idx[turn]]
		out = append(out, MergedEntry{Player: turn, Guess: e.Guess, Hit: e.Hit, Blow: e.Blow})
		idx[turn]++
		turn = 1 - turn
	}
	return out
}
