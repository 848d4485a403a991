// Package secretword implements the Secret Word rules: a 3-8 player social
// deduction game. Everyone but one hidden "wolf" gets the same word; the
// wolf gets a similar one. After a timed discussion the table votes, and
// the citizens win only if the most-voted player was the wolf.
//
// Transition functions return a fresh state, or nil when the action is
// illegal; the caller keeps the prior state on nil. Time never flows inside
// the engine: callers pass the current time and poll the deadline.
package secretword

import (
	"fmt"
	"strings"
	"time"

	"github.com/kagehara/partydeck/engine/rng"
)

// WordPair is [majority word, minority word], similar enough to talk past
// each other.
type WordPair [2]string

// WordPairs is the fixed pool the deal draws from.
var WordPairs = []WordPair{
	{"udon noodles", "soba noodles"},
	{"rice ball", "sandwich"},
	{"barbecue", "hot pot"},
	{"curry", "stew"},
	{"coffee", "black tea"},
	{"math class", "science class"},
	{"field trip", "school excursion"},
	{"cleaning", "laundry"},
	{"dog", "cat"},
	{"first date", "marriage proposal"},
	{"partner", "best friend"},
	{"holding hands", "hugging"},
	{"ghost", "alien"},
	{"time machine", "teleport door"},
	{"hero", "demon lord"},
}

// Phase is the game lifecycle.
type Phase string

const (
	PhaseDiscussion Phase = "discussion"
	PhaseVoting     Phase = "voting"
	PhaseResult     Phase = "result"
)

const (
	minPlayers               = 3
	maxPlayers               = 8
	defaultDiscussionSeconds = 3 * 60
)

// NoVote marks a seat that has not voted yet.
const NoVote = -1

// RoleCitizen and RoleWolf are the assignment values.
const (
	RoleCitizen = 0
	RoleWolf    = 1
)

// Message is one discussion chat line.
type Message struct {
	Author    string `json:"author"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// Result is the vote outcome.
type Result struct {
	ExiledIndex int  `json:"exiledIndex"`
	WasWolf     bool `json:"wasWolf"`
	CitizensWin bool `json:"citizensWin"`
}

// State is the complete game state. It is replaced wholesale on every
// transition and serializes losslessly to JSON.
type State struct {
	Phase        Phase  `json:"phase"`
	MajorityWord string `json:"majorityWord"`
	MinorityWord string `json:"minorityWord"`
	// Assignments[i] is RoleCitizen or RoleWolf. Exactly one wolf exists.
	Assignments []int `json:"assignments"`
	// DiscussionEndsAt is a Unix-millisecond deadline polled by the caller.
	DiscussionEndsAt          int64      `json:"discussionEndsAt"`
	DiscussionDurationSeconds int        `json:"discussionDurationSeconds"`
	Votes                     []int      `json:"votes"`
	Messages                  []Message  `json:"messages"`
	Result                    *Result    `json:"result,omitempty"`
	Rng                       rng.Source `json:"rng"`
}

// NewState creates the initial state for 3-8 players: a random word pair,
// one random wolf, and a discussion deadline measured from now.
func NewState(playerCount int, seed uint64, now time.Time) (*State, error) {
	if playerCount < minPlayers || playerCount > maxPlayers {
		return nil, fmt.Errorf("secretword: requires %d-%d players, got %d", minPlayers, maxPlayers, playerCount)
	}
	src := rng.New(seed)
	pair := rng.Pick(&src, WordPairs)

	assignments := make([]int, playerCount)
	assignments[src.IntN(playerCount)] = RoleWolf

	votes := make([]int, playerCount)
	for i := range votes {
		votes[i] = NoVote
	}

	return &State{
		Phase:                     PhaseDiscussion,
		MajorityWord:              pair[0],
		MinorityWord:              pair[1],
		Assignments:               assignments,
		DiscussionEndsAt:          now.UnixMilli() + defaultDiscussionSeconds*1000,
		DiscussionDurationSeconds: defaultDiscussionSeconds,
		Votes:                     votes,
		Messages:                  []Message{},
		Rng:                       src,
	}, nil
}

func (s *State) clone() *State {
	ns := *s
	ns.Assignments = append([]int(nil), s.Assignments...)
	ns.Votes = append([]int(nil), s.Votes...)
	ns.Messages = append([]Message(nil), s.Messages...)
	if s.Result != nil {
		r := *s.Result
		ns.Result = &r
	}
	return &ns
}

// PlayerWord returns the word shown to a seat.
func PlayerWord(s *State, player int) string {
	if player < 0 || player >= len(s.Assignments) {
		return ""
	}
	if s.Assignments[player] == RoleWolf {
		return s.MinorityWord
	}
	return s.MajorityWord
}

// RemainingDiscussionSeconds reports the discussion time left at now,
// floored at zero. Outside discussion it is always zero.
func RemainingDiscussionSeconds(s *State, now time.Time) int {
	if s.Phase != PhaseDiscussion {
		return 0
	}
	ms := s.DiscussionEndsAt - now.UnixMilli()
	if ms <= 0 {
		return 0
	}
	return int((ms + 999) / 1000)
}

// AddMessage appends a chat line during discussion. Blank messages are
// rejected; text is trimmed.
func AddMessage(s *State, author, text string, now time.Time) *State {
	if s.Phase != PhaseDiscussion {
		return nil
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	ns := s.clone()
	ns.Messages = append(ns.Messages, Message{Author: author, Text: trimmed, Timestamp: now.UnixMilli()})
	return ns
}

// EndDiscussion moves to voting. The caller triggers this when the polled
// deadline expires, or early by agreement.
func EndDiscussion(s *State) *State {
	if s.Phase != PhaseDiscussion {
		return nil
	}
	ns := s.clone()
	ns.Phase = PhaseVoting
	return ns
}

// Vote records voter's choice of target. Self-votes are illegal; revoting
// overwrites. Once every seat has voted the result resolves.
func Vote(s *State, voter, target int) *State {
	if s.Phase != PhaseVoting {
		return nil
	}
	if voter < 0 || voter >= len(s.Votes) {
		return nil
	}
	if target < 0 || target >= len(s.Votes) || target == voter {
		return nil
	}
	ns := s.clone()
	ns.Votes[voter] = target
	for _, v := range ns.Votes {
		if v == NoVote {
			return ns
		}
	}
	return ns.resolve()
}

// FinishVoting forces the result from the votes cast so far, for callers
// that cut voting short.
func FinishVoting(s *State) *State {
	if s.Phase != PhaseVoting {
		return nil
	}
	return s.clone().resolve()
}

// resolve exiles the most-voted seat, lowest index on ties, and scores the
// game: citizens win exactly when the exiled seat was the wolf.
func (s *State) resolve() *State {
	counts := make([]int, len(s.Votes))
	for _, v := range s.Votes {
		if v >= 0 {
			counts[v]++
		}
	}
	exiled, max := 0, 0
	for i, c := range counts {
		if c > max {
			max = c
			exiled = i
		}
	}
	wasWolf := s.Assignments[exiled] == RoleWolf
	s.Phase = PhaseResult
	s.Result = &Result{ExiledIndex: exiled, WasWolf: wasWolf, CitizensWin: wasWolf}
	return s
}
