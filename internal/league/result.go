package league

import "fmt"

// RecordResult turns a pending fixture into a result and updates both
// teams in the current season's table.
func (l *League) RecordResult(fixtureID string, homeGoals, awayGoals int) (Result, error) {
	if homeGoals < 0 || awayGoals < 0 {
		return Result{}, ErrInvalidScore
	}

	idx := -1
	for i, f := range l.Fixtures {
		if f.ID == fixtureID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrFixtureNotFound, fixtureID)
	}
	fixture := l.Fixtures[idx]
	if fixture.Season != l.CurrentSeason || fixture.Matchweek > l.CurrentMatchweek {
		return Result{}, fmt.Errorf("%w: matchweek %d, current matchweek %d",
			ErrFixtureNotDue, fixture.Matchweek, l.CurrentMatchweek)
	}

	ti := l.tableIndex(fixture.Season, fixture.Division)
	if ti < 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrUnknownDivision, fixture.Division)
	}
	table := &l.Tables[ti]
	home := teamIndex(table.Teams, fixture.Home.ID)
	away := teamIndex(table.Teams, fixture.Away.ID)
	if home < 0 || away < 0 {
		panic(fmt.Sprintf("fixture %s references teams missing from division %d", fixture.ID, fixture.Division))
	}
	table.Teams[home].record(homeGoals, awayGoals)
	table.Teams[away].record(awayGoals, homeGoals)

	result := Result{Fixture: fixture, HomeGoals: homeGoals, AwayGoals: awayGoals}
	l.Fixtures = append(l.Fixtures[:idx:idx], l.Fixtures[idx+1:]...)
	l.Results = append(l.Results, result)
	return result, nil
}

func teamIndex(teams []Team, id string) int {
	for i, t := range teams {
		if t.ID == id {
			return i
		}
	}
	return -1
}
