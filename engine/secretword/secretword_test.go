package secretword

import (
	"testing"
	"time"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestState(t *testing.T, players int) *State {
	t.Helper()
	s, err := NewState(players, 21, t0)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	return s
}

// TestNewState verifies the deal: exactly one wolf, a matching word pair,
// a deadline three minutes out.
func TestNewState(t *testing.T) {
	s := newTestState(t, 5)
	wolves := 0
	for _, a := range s.Assignments {
		if a == RoleWolf {
			wolves++
		}
	}
	if wolves != 1 {
		t.Errorf("expected exactly one wolf, got %d", wolves)
	}
	found := false
	for _, p := range WordPairs {
		if p[0] == s.MajorityWord && p[1] == s.MinorityWord {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("words %q/%q are not a known pair", s.MajorityWord, s.MinorityWord)
	}
	if got := RemainingDiscussionSeconds(s, t0); got != 180 {
		t.Errorf("expected 180 seconds at start, got %d", got)
	}
	for _, v := range s.Votes {
		if v != NoVote {
			t.Error("all seats should start unvoted")
		}
	}
}

func TestNewStatePlayerBounds(t *testing.T) {
	for _, n := range []int{2, 9} {
		if _, err := NewState(n, 1, t0); err == nil {
			t.Errorf("expected error for playerCount=%d", n)
		}
	}
}

// TestPlayerWord verifies the wolf sees the minority word.
func TestPlayerWord(t *testing.T) {
	s := newTestState(t, 4)
	for i, a := range s.Assignments {
		want := s.MajorityWord
		if a == RoleWolf {
			want = s.MinorityWord
		}
		if got := PlayerWord(s, i); got != want {
			t.Errorf("player %d: got %q want %q", i, got, want)
		}
	}
}

// TestRemainingSeconds verifies the pure countdown.
func TestRemainingSeconds(t *testing.T) {
	s := newTestState(t, 3)
	if got := RemainingDiscussionSeconds(s, t0.Add(60*time.Second)); got != 120 {
		t.Errorf("expected 120 seconds, got %d", got)
	}
	if got := RemainingDiscussionSeconds(s, t0.Add(10*time.Minute)); got != 0 {
		t.Errorf("expired timer should read 0, got %d", got)
	}
	voting := EndDiscussion(s)
	if got := RemainingDiscussionSeconds(voting, t0); got != 0 {
		t.Errorf("timer outside discussion should read 0, got %d", got)
	}
}

// TestAddMessage verifies trimming and phase gating.
func TestAddMessage(t *testing.T) {
	s := newTestState(t, 3)

	ns := AddMessage(s, "ayumi", "  mine is chewy  ", t0.Add(5*time.Second))
	if ns == nil {
		t.Fatal("message should be accepted")
	}
	m := ns.Messages[0]
	if m.Text != "mine is chewy" || m.Author != "ayumi" {
		t.Errorf("unexpected message: %+v", m)
	}
	if m.Timestamp != t0.Add(5*time.Second).UnixMilli() {
		t.Errorf("unexpected timestamp %d", m.Timestamp)
	}

	if AddMessage(s, "ayumi", "   ", t0) != nil {
		t.Error("blank message should be rejected")
	}
	voting := EndDiscussion(s)
	if AddMessage(voting, "ayumi", "late", t0) != nil {
		t.Error("messages outside discussion should be rejected")
	}
}

// TestVoteFlow verifies self-vote rejection, revoting and auto-resolve
// once the last vote lands.
func TestVoteFlow(t *testing.T) {
	s := newTestState(t, 3)
	s = EndDiscussion(s)

	if Vote(s, 0, 0) != nil {
		t.Error("self-vote should be rejected")
	}
	if Vote(s, 0, 5) != nil {
		t.Error("out-of-range target should be rejected")
	}

	s = Vote(s, 0, 1)
	if s == nil || s.Phase != PhaseVoting {
		t.Fatal("first vote should keep voting open")
	}
	// Revote is allowed while voting stays open.
	s = Vote(s, 0, 2)
	if s == nil || s.Votes[0] != 2 {
		t.Fatal("revote should overwrite")
	}
	s = Vote(s, 1, 2)
	if s.Phase != PhaseVoting {
		t.Fatal("voting should still be open")
	}
	s = Vote(s, 2, 0)
	if s == nil || s.Phase != PhaseResult {
		t.Fatal("last vote should resolve the game")
	}
	if s.Result == nil || s.Result.ExiledIndex != 2 {
		t.Errorf("player 2 had two votes and should be exiled, got %+v", s.Result)
	}
	if s.Result.CitizensWin != (s.Assignments[2] == RoleWolf) {
		t.Error("citizens win exactly when the exiled player was the wolf")
	}
}

// TestVoteTieLowestIndex verifies the tiebreak.
func TestVoteTieLowestIndex(t *testing.T) {
	s := newTestState(t, 4)
	s = EndDiscussion(s)
	s.Votes = []int{1, 0, 3, 2} // one vote each

	ns := FinishVoting(s)
	if ns == nil {
		t.Fatal("forced finish should be legal")
	}
	if ns.Result.ExiledIndex != 0 {
		t.Errorf("tie should exile the lowest index, got %d", ns.Result.ExiledIndex)
	}
}

// TestFinishVotingPartial verifies a forced finish with missing votes.
func TestFinishVotingPartial(t *testing.T) {
	s := newTestState(t, 4)
	if FinishVoting(s) != nil {
		t.Error("forced finish during discussion should be rejected")
	}
	s = EndDiscussion(s)
	s = Vote(s, 0, 3)
	ns := FinishVoting(s)
	if ns == nil || ns.Phase != PhaseResult {
		t.Fatal("forced finish should resolve")
	}
	if ns.Result.ExiledIndex != 3 {
		t.Errorf("sole vote should decide, got %d", ns.Result.ExiledIndex)
	}
}
