package elemental

// ColorScore breaks down one expedition column's score.
type ColorScore struct {
	Base       int `json:"base"`       // sum of numeric values minus 20, 0 for an empty column
	WagerCount int `json:"wagerCount"`
	Multiplier int `json:"multiplier"` // wager count + 1
	Bonus      int `json:"bonus"`      // +20 for columns of 8 or more cards
	Total      int `json:"total"`
}

// PlayerScore is the per-color breakdown plus the player's total.
type PlayerScore struct {
	PerColor map[Color]ColorScore `json:"perColor"`
	Total    int                  `json:"total"`
}

func scoreColumn(column []Card) ColorScore {
	if len(column) == 0 {
		return ColorScore{Multiplier: 1}
	}
	sum := 0
	wagers := 0
	for _, c := range column {
		if c.IsWager() {
			wagers++
		} else {
			sum += c.Value
		}
	}
	detail := ColorScore{
		Base:       sum - 20,
		WagerCount: wagers,
		Multiplier: wagers + 1,
	}
	if len(column) >= 8 {
		detail.Bonus = 20
	}
	detail.Total = detail.Base*detail.Multiplier + detail.Bonus
	return detail
}

// CalculatePlayerScore scores one player's expedition columns.
func CalculatePlayerScore(expeditions map[Color][]Card) PlayerScore {
	score := PlayerScore{PerColor: make(map[Color]ColorScore, len(Colors))}
	for _, color := range Colors {
		detail := scoreColumn(expeditions[color])
		score.PerColor[color] = detail
		score.Total += detail.Total
	}
	return score
}
