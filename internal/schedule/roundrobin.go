package schedule

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/derekprior/leaguetable/internal/league"
)

// entrant occupies one position on the rotation circle. A bye entrant pads
// an odd field to an even one and never appears in a fixture.
type entrant struct {
	team league.Team
	bye  bool
}

// Schedule builds a double round-robin for one division using the circle
// method. The team at position 0 stays fixed while the others rotate one
// place to the right after each round. The second leg repeats the first
// with home and away swapped, offset by the length of the first leg.
//
// Fewer than two teams yields no fixtures.
func Schedule(teams []league.Team, season, division int) []league.Fixture {
	if len(teams) < 2 {
		return nil
	}

	circle := make([]entrant, 0, len(teams)+1)
	for _, t := range teams {
		circle = append(circle, entrant{team: t})
	}
	if len(circle)%2 == 1 {
		circle = append(circle, entrant{bye: true})
	}

	n := len(circle)
	half := n / 2
	legRounds := n - 1

	firstLeg := make([]league.Fixture, 0, legRounds*half)
	for r := 0; r < legRounds; r++ {
		for i := 0; i < half; i++ {
			home, away := circle[i], circle[n-1-i]
			if home.bye || away.bye {
				continue
			}
			firstLeg = append(firstLeg, newFixture(season, division, r+1, home.team.Ref(), away.team.Ref()))
		}
		rotate(circle)
	}

	fixtures := make([]league.Fixture, 0, 2*len(firstLeg))
	fixtures = append(fixtures, firstLeg...)
	for _, f := range firstLeg {
		fixtures = append(fixtures, newFixture(season, division, f.Matchweek+legRounds, f.Away, f.Home))
	}
	return fixtures
}

// Matchweeks returns how many matchweeks a division of n teams needs.
func Matchweeks(n int) int {
	if n < 2 {
		return 0
	}
	if n%2 == 1 {
		n++
	}
	return 2 * (n - 1)
}

// FinalMatchweek returns the highest matchweek in fixtures, or 0.
func FinalMatchweek(fixtures []league.Fixture) int {
	final := 0
	for _, f := range fixtures {
		final = max(final, f.Matchweek)
	}
	return final
}

// ShuffleWithinRounds reorders each run of fixtures that share a division
// and matchweek. No fixture changes round, pairing, or venue.
func ShuffleWithinRounds(fixtures []league.Fixture, rng *rand.Rand) {
	start := 0
	for i := 1; i <= len(fixtures); i++ {
		if i < len(fixtures) &&
			fixtures[i].Division == fixtures[start].Division &&
			fixtures[i].Matchweek == fixtures[start].Matchweek {
			continue
		}
		run := fixtures[start:i]
		rng.Shuffle(len(run), func(a, b int) {
			run[a], run[b] = run[b], run[a]
		})
		start = i
	}
}

// rotate moves every entrant except the first one place to the right,
// wrapping the last entrant round to position 1.
func rotate(circle []entrant) {
	if len(circle) < 3 {
		return
	}
	last := circle[len(circle)-1]
	copy(circle[2:], circle[1:len(circle)-1])
	circle[1] = last
}

func newFixture(season, division, matchweek int, home, away league.TeamRef) league.Fixture {
	return league.Fixture{
		ID:        uuid.NewString(),
		Season:    season,
		Division:  division,
		Matchweek: matchweek,
		Home:      home,
		Away:      away,
	}
}
