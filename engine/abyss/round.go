package abyss

// EndRound settles the round in four strict steps:
//
//  1. Score or forfeit each player's held loot. On oxygen depletion every
//     player forfeits regardless of whether they made it home; otherwise
//     returned players bank their loot and stranded players forfeit.
//  2. Compact the path by removing all blank cells.
//  3. Bundle forfeited chips into stacks of up to three, in encounter order,
//     appended to the end of the compacted path.
//  4. Reset oxygen, positions, directions and hands; advance the round
//     counter. The game is over once the final round has been played.
func EndRound(s *State, oxygenDepleted bool) *State {
	if s.Phase != PhasePlaying {
		return nil
	}
	ns := s.clone()

	var dropped []Loot
	scores := make([]int, len(ns.Players))
	for i, p := range ns.Players {
		scores[i] = p.Score
		switch {
		case oxygenDepleted:
			dropped = append(dropped, p.HoldingLoot...)
		case p.IsReturned:
			for _, l := range p.HoldingLoot {
				scores[i] += l.Score
			}
		default:
			dropped = append(dropped, p.HoldingLoot...)
		}
	}

	path := compactPath(ns.Path)
	for i := 0; i < len(dropped); i += stackSize {
		end := i + stackSize
		if end > len(dropped) {
			end = len(dropped)
		}
		path = append(path, stackCell(dropped[i:end]))
	}
	ns.Path = path

	gameOver := ns.Round >= TotalRounds
	if ns.Round < TotalRounds {
		ns.Round++
	}
	if gameOver {
		ns.Phase = PhaseGameOver
	} else {
		ns.Phase = PhaseRoundResult
	}
	ns.Oxygen = OxygenMax
	for i := range ns.Players {
		ns.Players[i] = freshPlayer(scores[i])
	}
	ns.CurrentPlayerIndex = 0
	ns.OxygenConsumedThisTurn = false
	ns.MovedThisTurn = false
	ns.RoundForfeited = oxygenDepleted
	ns.LastDice = nil
	return ns
}

func compactPath(path []Cell) []Cell {
	out := make([]Cell, 0, len(path))
	for _, c := range path {
		if c.Type != CellBlank {
			out = append(out, c)
		}
	}
	return out
}

// stackCell bundles up to three forfeited chips into one cell. The cell
// shows the highest level in the bundle and the summed score.
func stackCell(chunk []Loot) Cell {
	cell := Cell{
		Type:  CellStack,
		Count: len(chunk),
		Loot:  append([]Loot(nil), chunk...),
	}
	for _, l := range chunk {
		if l.Level > cell.Level {
			cell.Level = l.Level
		}
		cell.Score += l.Score
	}
	return cell
}
