package valuetalk

import "github.com/kagehara/partydeck/engine/rng"

// Difficulty selects which theme tier rounds draw from. Gradual climbs the
// tiers as the level rises; mixed draws from everything.
type Difficulty string

const (
	DifficultyEasy    Difficulty = "EASY"
	DifficultyNormal  Difficulty = "NORMAL"
	DifficultyHard    Difficulty = "HARD"
	DifficultyMixed   Difficulty = "MIXED"
	DifficultyGradual Difficulty = "GRADUAL"
)

// Theme tiers. Every theme maps cleanly onto a 1-100 scale so players can
// describe their number without naming it.
var (
	EasyThemes = []string{
		"size of an animal",
		"running speed of an animal",
		"weight of something in a bag",
		"price of something from a convenience store",
		"height of a famous building",
		"lifespan of a living creature",
		"calorie count of a food",
		"spiciness of a food",
		"sweetness of a food",
		"speed of a vehicle",
		"price of a home appliance",
		"size of a ball used in sports",
		"loudness of a sound",
		"temperature of something hot",
		"length of a wait in a queue",
		"distance of a trip",
	}
	NormalThemes = []string{
		"usefulness of an item on a desert island",
		"reliability of a weapon against zombies",
		"excitement of finding something in the fridge",
		"appeal of a first-date location",
		"awkwardness of an unwanted present",
		"scariness of something found at home",
		"usefulness of an unassuming stationery item",
		"earning potential of a profession",
		"rage level of a breach of manners",
		"scream factor of a theme-park ride",
		"guilty pleasure of a late-night snack",
		"usefulness of a survival tool",
		"comfort of an item carried in a bag",
		"money you could lend and forgive losing",
		"minutes of lateness you could forgive",
		"strength of sleepiness",
	}
	HardThemes = []string{
		"priority of things that matter in life",
		"what it takes to count as a grown-up",
		"things that should still exist in 100 years",
		"impressiveness of a special-move name",
		"charisma of a villain",
		"depth of an act of love",
		"how just an action feels",
		"moments that feel like freedom",
		"moments that feel like happiness",
		"the line between a friend and a best friend",
		"value of things money cannot buy",
		"talent versus effort",
		"kind lie versus harmful lie",
		"balance of risk and reward",
		"qualities a leader needs",
		"value of youth versus experience",
	}
)

// AllThemes returns every tier combined, for mixed play.
func AllThemes() []string {
	out := make([]string, 0, len(EasyThemes)+len(NormalThemes)+len(HardThemes))
	out = append(out, EasyThemes...)
	out = append(out, NormalThemes...)
	out = append(out, HardThemes...)
	return out
}

// themePool resolves the tier for a difficulty at a given level. Gradual
// uses easy for levels 1-2, normal for 3-5, hard beyond.
func themePool(difficulty Difficulty, level int) []string {
	switch difficulty {
	case DifficultyEasy:
		return EasyThemes
	case DifficultyNormal:
		return NormalThemes
	case DifficultyHard:
		return HardThemes
	case DifficultyGradual:
		switch {
		case level <= 2:
			return EasyThemes
		case level <= 5:
			return NormalThemes
		default:
			return HardThemes
		}
	default:
		return AllThemes()
	}
}

// NewTheme draws a theme for the difficulty and level.
func NewTheme(src *rng.Source, difficulty Difficulty, level int) string {
	return rng.Pick(src, themePool(difficulty, level))
}
