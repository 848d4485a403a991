package gifts

import "testing"

// TestNewState verifies the deal: 24-card deck with one face up, eleven
// chips each.
func TestNewState(t *testing.T) {
	s, err := NewState(4, 11)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	if len(s.Deck) != 23 {
		t.Errorf("expected 23 face-down cards, got %d", len(s.Deck))
	}
	if s.CurrentCard < 3 || s.CurrentCard > 35 {
		t.Errorf("face-up card out of range: %d", s.CurrentCard)
	}
	for i, chips := range s.PlayerChips {
		if chips != 11 {
			t.Errorf("player %d: expected 11 chips, got %d", i, chips)
		}
	}
	seen := map[int]bool{s.CurrentCard: true}
	for _, c := range s.Deck {
		if c < 3 || c > 35 || seen[c] {
			t.Errorf("bad or duplicate deck card %d", c)
		}
		seen[c] = true
	}
}

func TestNewStatePlayerBounds(t *testing.T) {
	for _, n := range []int{2, 6} {
		if _, err := NewState(n, 1); err == nil {
			t.Errorf("expected error for playerCount=%d", n)
		}
	}
}

// TestPayThenTake is the canonical two-action round: P0 declines, P1 takes
// the card plus the pot and keeps the turn.
func TestPayThenTake(t *testing.T) {
	s, _ := NewState(3, 11)
	s.CurrentCard = 20

	ns := PayChip(s, 0)
	if ns == nil {
		t.Fatal("pay should be legal")
	}
	if ns.PlayerChips[0] != 10 || ns.PotChips != 1 {
		t.Errorf("expected chips 10 and pot 1, got %d and %d", ns.PlayerChips[0], ns.PotChips)
	}
	if ns.CurrentPlayerIndex != 1 {
		t.Errorf("turn should pass to player 1, got %d", ns.CurrentPlayerIndex)
	}

	ns2 := TakeCard(ns, 1)
	if ns2 == nil {
		t.Fatal("take should be legal")
	}
	if ns2.PlayerChips[1] != 12 || ns2.PotChips != 0 {
		t.Errorf("expected chips 12 and pot 0, got %d and %d", ns2.PlayerChips[1], ns2.PotChips)
	}
	if len(ns2.PlayerCards[1]) != 1 || ns2.PlayerCards[1][0] != 20 {
		t.Errorf("expected card 20 in player 1's pile, got %v", ns2.PlayerCards[1])
	}
	if ns2.CurrentPlayerIndex != 1 {
		t.Errorf("taking should not advance the turn, got %d", ns2.CurrentPlayerIndex)
	}
}

// TestPayChipRequiresChips verifies a broke player cannot decline.
func TestPayChipRequiresChips(t *testing.T) {
	s, _ := NewState(3, 11)
	s.PlayerChips[0] = 0
	if PayChip(s, 0) != nil {
		t.Error("paying with zero chips should be rejected")
	}
}

// TestWrongActorRejected verifies out-of-turn actions are no-ops.
func TestWrongActorRejected(t *testing.T) {
	s, _ := NewState(3, 11)
	if PayChip(s, 1) != nil || TakeCard(s, 2) != nil {
		t.Error("out-of-turn actions should be rejected")
	}
}

// TestTakeLastCardEndsGame verifies the game closes when the deck empties.
func TestTakeLastCardEndsGame(t *testing.T) {
	s, _ := NewState(3, 11)
	s.Deck = nil
	s.CurrentCard = 30

	ns := TakeCard(s, 0)
	if ns == nil {
		t.Fatal("take should be legal")
	}
	if ns.Phase != PhaseFinished || ns.CurrentCard != NoCard {
		t.Errorf("expected finished with no face-up card, got %s / %d", ns.Phase, ns.CurrentCard)
	}
	if TakeCard(ns, 0) != nil || PayChip(ns, 0) != nil {
		t.Error("actions after the game ends should be rejected")
	}
}

// TestChipConservation verifies chips only move between players and pot.
func TestChipConservation(t *testing.T) {
	s, _ := NewState(3, 11)
	total := func(st *State) int {
		n := st.PotChips
		for _, c := range st.PlayerChips {
			n += c
		}
		return n
	}
	want := total(s)

	cur := s
	for i := 0; i < 3; i++ {
		cur = PayChip(cur, cur.CurrentPlayerIndex)
		if cur == nil {
			t.Fatal("pay should be legal")
		}
	}
	cur = TakeCard(cur, cur.CurrentPlayerIndex)
	if cur == nil {
		t.Fatal("take should be legal")
	}
	if got := total(cur); got != want {
		t.Errorf("chips not conserved: %d != %d", got, want)
	}
}

// TestScoreForCards verifies runs count only their minimum.
func TestScoreForCards(t *testing.T) {
	cases := []struct {
		name  string
		cards []int
		want  int
	}{
		{"empty", nil, 0},
		{"single", []int{7}, 7},
		{"run counts min", []int{5, 6, 7}, 5},
		{"two runs", []int{5, 6, 10, 11, 12}, 15},
		{"unsorted input", []int{12, 5, 11, 6, 10}, 15},
		{"no runs", []int{3, 9, 20}, 32},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ScoreForCards(tc.cards); got != tc.want {
				t.Errorf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

// TestWinnerIndex verifies scoring and the first-index tiebreak.
func TestWinnerIndex(t *testing.T) {
	s, _ := NewState(3, 11)
	if WinnerIndex(s) != -1 {
		t.Error("no winner while the game runs")
	}
	s.Phase = PhaseFinished
	s.PlayerChips = []int{5, 8, 8}
	s.PlayerCards = [][]int{{10}, {13}, {13}}
	// Scores: -5, -5, -5: tie resolved to the lowest index.
	if got := WinnerIndex(s); got != 0 {
		t.Errorf("expected winner 0 on a tie, got %d", got)
	}

	s.PlayerChips = []int{5, 9, 8}
	if got := WinnerIndex(s); got != 1 {
		t.Errorf("expected winner 1, got %d", got)
	}
}

// TestRestart verifies a full redeal after the game ends.
func TestRestart(t *testing.T) {
	s, _ := NewState(4, 11)
	if Restart(s) != nil {
		t.Error("restart mid-game should be rejected")
	}
	s.Phase = PhaseFinished
	s.CurrentCard = NoCard
	s.PlayerChips = []int{0, 1, 2, 3}
	s.PlayerCards[2] = []int{10, 11}

	ns := Restart(s)
	if ns == nil {
		t.Fatal("restart should be legal after the game ends")
	}
	if ns.Phase != PhasePlaying || len(ns.Deck) != 23 || ns.CurrentPlayerIndex != 0 {
		t.Errorf("unexpected restarted state: %+v", ns)
	}
	for i := range ns.PlayerChips {
		if ns.PlayerChips[i] != 11 || len(ns.PlayerCards[i]) != 0 {
			t.Errorf("player %d not reset", i)
		}
	}
}
