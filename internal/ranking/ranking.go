package ranking

import (
	"cmp"
	"slices"

	"github.com/derekprior/leaguetable/internal/league"
)

// Standing is a team with its 1-indexed position in a division.
type Standing struct {
	Position int
	Team     league.Team
}

// rule compares two teams; a negative result ranks a above b.
type rule func(a, b league.Team) int

// ladder is evaluated in order until one rule separates the teams.
// Anything still tied keeps its input order.
var ladder = []rule{
	byPoints,
	byGoalDifference,
	byGoalsFor,
	byHeadToHeadPoints,
	byHeadToHeadAwayGoals,
}

// Rank returns a new slice ordered best first. The input is not modified.
func Rank(teams []league.Team) []league.Team {
	ranked := slices.Clone(teams)
	slices.SortStableFunc(ranked, Compare)
	return ranked
}

// Compare applies the tie-break ladder to two teams.
func Compare(a, b league.Team) int {
	for _, r := range ladder {
		if c := r(a, b); c != 0 {
			return c
		}
	}
	return 0
}

// Standings ranks the teams and numbers them from 1.
func Standings(teams []league.Team) []Standing {
	ranked := Rank(teams)
	out := make([]Standing, len(ranked))
	for i, t := range ranked {
		out[i] = Standing{Position: i + 1, Team: t}
	}
	return out
}

func byPoints(a, b league.Team) int {
	return cmp.Compare(b.Points(), a.Points())
}

func byGoalDifference(a, b league.Team) int {
	return cmp.Compare(b.GoalDifference(), a.GoalDifference())
}

func byGoalsFor(a, b league.Team) int {
	return cmp.Compare(b.GoalsFor, a.GoalsFor)
}

// Head-to-head rules hold their place in the ladder but are not
// implemented yet; they never separate two teams.
func byHeadToHeadPoints(a, b league.Team) int { return 0 }

func byHeadToHeadAwayGoals(a, b league.Team) int { return 0 }
