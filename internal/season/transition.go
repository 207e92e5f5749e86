package season

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/google/uuid"

	"github.com/derekprior/leaguetable/internal/league"
	"github.com/derekprior/leaguetable/internal/promotion"
	"github.com/derekprior/leaguetable/internal/ranking"
	"github.com/derekprior/leaguetable/internal/schedule"
)

// AdvanceSeason rolls the league into its next season: the current tables
// are ranked, promotion and relegation are applied, new tables are created
// and each division gets a fresh double round-robin. The league passed in
// is not modified.
//
// rng, when non-nil, shuffles fixtures within each matchweek.
func AdvanceSeason(l league.League, rng *rand.Rand) (league.League, error) {
	current := l.SeasonTables(l.CurrentSeason)
	for _, t := range current {
		if len(t.Teams) < t.NumberOfTeams {
			return league.League{}, fmt.Errorf("%w: %q has %d of %d teams",
				ErrTeamsMissing, t.Name, len(t.Teams), t.NumberOfTeams)
		}
	}
	if len(current) == 0 {
		return league.League{}, fmt.Errorf("%w: no divisions", ErrTeamsMissing)
	}
	if l.CurrentSeason > 0 && len(l.Fixtures) > 0 {
		return league.League{}, fmt.Errorf("%w: %d fixtures remaining", ErrSeasonInProgress, len(l.Fixtures))
	}
	if l.CurrentSeason >= l.MaxSeasons {
		return league.League{}, fmt.Errorf("%w: season %d of %d", ErrMaxSeasonsReached, l.CurrentSeason, l.MaxSeasons)
	}

	rosters := nextRosters(l.CurrentSeason, current)
	season := l.CurrentSeason + 1

	next := l.Clone()
	next.Fixtures = nil
	final := 0
	for i, t := range current {
		next.Tables = append(next.Tables, league.Table{
			ID:            uuid.NewString(),
			Season:        season,
			Division:      t.Division,
			Name:          t.Name,
			NumberOfTeams: t.NumberOfTeams,
			Promote:       t.Promote,
			Relegate:      t.Relegate,
			Teams:         rosters[i],
		})
		fixtures := schedule.Schedule(rosters[i], season, t.Division)
		final = max(final, schedule.FinalMatchweek(fixtures))
		next.Fixtures = append(next.Fixtures, fixtures...)
	}
	if rng != nil {
		schedule.ShuffleWithinRounds(next.Fixtures, rng)
	}

	next.CurrentSeason = season
	next.CurrentMatchweek = 1
	next.FinalMatchweek = final
	return next, nil
}

// nextRosters returns the teams of each division for the season after
// the given one. The first season keeps the rosters teams were added to.
func nextRosters(season int, tables []league.Table) [][]league.Team {
	rosters := make([][]league.Team, len(tables))
	if season == 0 {
		for i, t := range tables {
			rosters[i] = slices.Clone(t.Teams)
		}
		return rosters
	}

	states := make([]promotion.DivisionState, len(tables))
	for i, t := range tables {
		if len(t.Teams) != t.NumberOfTeams {
			panic(fmt.Sprintf("season %d division %d holds %d teams, configured for %d",
				t.Season, t.Division, len(t.Teams), t.NumberOfTeams))
		}
		states[i] = promotion.DivisionState{
			Division: t.Division,
			Teams:    ranking.Rank(t.Teams),
			Promote:  t.Promote,
			Relegate: t.Relegate,
		}
	}
	for i, s := range promotion.Resolve(states) {
		rosters[i] = s.Teams
	}
	return rosters
}

// AdvanceMatchweek moves the league on to its next matchweek.
func AdvanceMatchweek(l league.League) (league.League, error) {
	if l.CurrentSeason == 0 {
		return league.League{}, ErrSeasonNotStarted
	}
	if l.CurrentMatchweek >= l.FinalMatchweek {
		return league.League{}, fmt.Errorf("%w: matchweek %d of %d",
			ErrSeasonAlreadyComplete, l.CurrentMatchweek, l.FinalMatchweek)
	}
	next := l.Clone()
	next.CurrentMatchweek++
	return next, nil
}

// Standings ranks one division's table for any season on record.
func Standings(l league.League, season, division int) ([]ranking.Standing, error) {
	t, ok := l.Table(season, division)
	if !ok {
		return nil, fmt.Errorf("%w: season %d division %d", ErrUnknownTable, season, division)
	}
	return ranking.Standings(t.Teams), nil
}
