package abyss

import "testing"

// countChips tallies every loot chip on the path and in hands.
func countChips(s *State) int {
	n := 0
	for _, c := range s.Path {
		n += c.Count
	}
	for _, p := range s.Players {
		n += len(p.HoldingLoot)
	}
	return n
}

// TestRoundSettlementAllReturned verifies the normal round end: the last
// end-turn settles once every player is back, returned players bank their
// haul, and blanks vanish.
func TestRoundSettlementAllReturned(t *testing.T) {
	s := newTestState(t, 3)
	s.Path[0] = blankCell()
	s.Path[1] = blankCell()
	for i := range s.Players {
		s.Players[i].Position = SubmarinePos
		s.Players[i].IsReturned = true
	}
	s.Players[0].HoldingLoot = []Loot{{Level: 1, Score: 3}, {Level: 2, Score: 4}}
	s.Players[2].HoldingLoot = []Loot{{Level: 4, Score: 10}}
	s.CurrentPlayerIndex = 2
	s.OxygenConsumedThisTurn = true

	ns := EndTurnAndMaybeFinishRound(s, 2)
	if ns == nil {
		t.Fatal("end turn should be legal")
	}
	if ns.Phase != PhaseRoundResult {
		t.Fatalf("expected round settlement, got phase %s", ns.Phase)
	}
	if ns.RoundForfeited {
		t.Error("roundForfeited should be false without depletion")
	}
	if ns.Players[0].Score != 7 {
		t.Errorf("returned player should bank 7, got %d", ns.Players[0].Score)
	}
	if ns.Players[2].Score != 10 {
		t.Errorf("returned player should bank 10, got %d", ns.Players[2].Score)
	}
	if ns.Round != 2 || ns.Oxygen != OxygenMax {
		t.Errorf("expected round 2 with full oxygen, got round=%d oxygen=%d", ns.Round, ns.Oxygen)
	}
	for _, c := range ns.Path {
		if c.Type == CellBlank {
			t.Error("blank cells should be removed between rounds")
		}
		if c.Type == CellStack {
			t.Error("no stacks expected when every chip was banked")
		}
	}
	for i, p := range ns.Players {
		if p.Position != SubmarinePos || p.IsReturned || len(p.HoldingLoot) != 0 {
			t.Errorf("player %d not reset: %+v", i, p)
		}
	}
}

// TestRoundSettlementStrandedForfeits verifies a player who never made it
// home loses their held loot to a deep-end stack while returned players
// still bank.
func TestRoundSettlementStrandedForfeits(t *testing.T) {
	s := newTestState(t, 3)
	s.Players[0].Position = SubmarinePos
	s.Players[0].IsReturned = true
	s.Players[0].HoldingLoot = []Loot{{Level: 1, Score: 3}, {Level: 2, Score: 4}}
	s.Players[1].Position = SubmarinePos
	s.Players[1].IsReturned = true
	s.Players[2].Position = 9
	s.Players[2].HoldingLoot = []Loot{{Level: 4, Score: 10}}

	ns := EndRound(s, false)
	if ns == nil {
		t.Fatal("settlement should be legal")
	}
	if ns.Players[0].Score != 7 {
		t.Errorf("returned player should bank 7, got %d", ns.Players[0].Score)
	}
	if ns.Players[2].Score != 0 {
		t.Errorf("stranded player should bank nothing, got %d", ns.Players[2].Score)
	}
	if ns.RoundForfeited {
		t.Error("roundForfeited should be false without depletion")
	}
	last := ns.Path[len(ns.Path)-1]
	if last.Type != CellStack || last.Count != 1 || last.Score != 10 || last.Level != 4 {
		t.Errorf("expected the stranded chip stacked at the deep end, got %+v", last)
	}
}

// TestRoundSettlementConservation verifies no chip is created or destroyed
// by settlement: on-path chips minus banked chips stays constant.
func TestRoundSettlementConservation(t *testing.T) {
	s := newTestState(t, 2)
	s.Path[3] = blankCell()
	s.Players[0].Position = 6
	s.Players[0].HoldingLoot = []Loot{{Level: 2, Score: 5}, {Level: 1, Score: 1}}
	s.Players[1].Position = 11
	s.Players[1].HoldingLoot = []Loot{{Level: 3, Score: 6}}
	before := countChips(s)

	ns := EndRound(s, true)
	if countChips(ns) != before {
		t.Errorf("forfeited chips lost: before=%d after=%d", before, countChips(ns))
	}
}

// TestStackBundlingLimit verifies forfeited chips bundle in groups of at
// most three, in encounter order.
func TestStackBundlingLimit(t *testing.T) {
	s := newTestState(t, 2)
	s.Players[0].Position = 2
	s.Players[0].HoldingLoot = []Loot{{Level: 1, Score: 1}, {Level: 1, Score: 2}, {Level: 2, Score: 3}, {Level: 2, Score: 4}}
	s.Players[1].Position = 5
	s.Players[1].HoldingLoot = []Loot{{Level: 3, Score: 5}}

	ns := EndRound(s, false)
	n := len(ns.Path)
	first, second := ns.Path[n-2], ns.Path[n-1]
	if first.Type != CellStack || first.Count != 3 || first.Score != 1+2+3 {
		t.Errorf("expected first stack of 3 scoring 6, got %+v", first)
	}
	if second.Type != CellStack || second.Count != 2 || second.Score != 4+5 {
		t.Errorf("expected second stack of 2 scoring 9, got %+v", second)
	}
}

// TestGameOverAfterFinalRound verifies settlement of round 3 ends the game.
func TestGameOverAfterFinalRound(t *testing.T) {
	s := newTestState(t, 2)
	s.Round = TotalRounds
	s.Players[0].Position = SubmarinePos
	s.Players[0].IsReturned = true
	s.Players[1].Position = SubmarinePos
	s.Players[1].IsReturned = true

	ns := EndRound(s, false)
	if ns.Phase != PhaseGameOver {
		t.Errorf("expected gameover after round %d, got %s", TotalRounds, ns.Phase)
	}
}

// TestBeginNextRound verifies the transition out of the settlement screen.
func TestBeginNextRound(t *testing.T) {
	s := newTestState(t, 2)
	if BeginNextRound(s) != nil {
		t.Error("begin next round mid-play should be rejected")
	}
	s.Phase = PhaseRoundResult
	s.RoundForfeited = true
	ns := BeginNextRound(s)
	if ns == nil {
		t.Fatal("begin next round should be legal from settlement")
	}
	if ns.Phase != PhasePlaying || ns.RoundForfeited {
		t.Errorf("expected playing phase with flag cleared, got %+v", ns)
	}
}

// TestEndTurnDoesNotSettleEarly verifies a round continues while any player
// is still out in the water.
func TestEndTurnDoesNotSettleEarly(t *testing.T) {
	s := newTestState(t, 2)
	s.Players[0].Position = SubmarinePos
	s.Players[0].IsReturned = true
	s.CurrentPlayerIndex = 0
	s.OxygenConsumedThisTurn = true

	// Player 1 is still descending.
	ns := EndTurnAndMaybeFinishRound(s, 0)
	if ns == nil {
		t.Fatal("end turn should be legal")
	}
	if ns.Phase != PhasePlaying {
		t.Errorf("round should continue, got phase %s", ns.Phase)
	}
	if ns.CurrentPlayerIndex != 1 {
		t.Errorf("expected player 1 next, got %d", ns.CurrentPlayerIndex)
	}
}
