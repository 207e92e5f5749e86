package api

import (
	"github.com/derekprior/leaguetable/internal/league"
	"github.com/derekprior/leaguetable/internal/ranking"
)

type divisionSummary struct {
	Division      int    `json:"division"`
	Name          string `json:"name"`
	NumberOfTeams int    `json:"number_of_teams"`
	Teams         int    `json:"teams"`
	Promote       int    `json:"promote"`
	Relegate      int    `json:"relegate"`
}

type leagueSummary struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Owner            string            `json:"owner"`
	Status           string            `json:"status"`
	MaxSeasons       int               `json:"max_seasons"`
	CurrentSeason    int               `json:"current_season"`
	CurrentMatchweek int               `json:"current_matchweek"`
	FinalMatchweek   int               `json:"final_matchweek"`
	PendingFixtures  int               `json:"pending_fixtures"`
	Divisions        []divisionSummary `json:"divisions"`
}

func newLeagueSummary(l league.League) leagueSummary {
	s := leagueSummary{
		ID:               l.ID,
		Name:             l.Name,
		Owner:            l.Owner,
		Status:           l.Status().String(),
		MaxSeasons:       l.MaxSeasons,
		CurrentSeason:    l.CurrentSeason,
		CurrentMatchweek: l.CurrentMatchweek,
		FinalMatchweek:   l.FinalMatchweek,
		PendingFixtures:  len(l.Fixtures),
		Divisions:        []divisionSummary{},
	}
	for _, t := range l.SeasonTables(l.CurrentSeason) {
		s.Divisions = append(s.Divisions, divisionSummary{
			Division:      t.Division,
			Name:          t.Name,
			NumberOfTeams: t.NumberOfTeams,
			Teams:         len(t.Teams),
			Promote:       t.Promote,
			Relegate:      t.Relegate,
		})
	}
	return s
}

type standingRow struct {
	Position       int    `json:"position"`
	Team           string `json:"team"`
	Played         int    `json:"played"`
	Won            int    `json:"won"`
	Drawn          int    `json:"drawn"`
	Lost           int    `json:"lost"`
	GoalsFor       int    `json:"goals_for"`
	GoalsAgainst   int    `json:"goals_against"`
	GoalDifference int    `json:"goal_difference"`
	Points         int    `json:"points"`
	Form           string `json:"form"`
}

func newStandingRow(s ranking.Standing) standingRow {
	t := s.Team
	return standingRow{
		Position:       s.Position,
		Team:           t.Name,
		Played:         t.Played,
		Won:            t.Wins,
		Drawn:          t.Draws,
		Lost:           t.Losses,
		GoalsFor:       t.GoalsFor,
		GoalsAgainst:   t.GoalsAgainst,
		GoalDifference: t.GoalDifference(),
		Points:         t.Points(),
		Form:           t.Form,
	}
}

type fixtureRow struct {
	ID        string `json:"id"`
	Division  int    `json:"division"`
	Matchweek int    `json:"matchweek"`
	Home      string `json:"home"`
	Away      string `json:"away"`
}

func newFixtureRow(f league.Fixture) fixtureRow {
	return fixtureRow{
		ID:        f.ID,
		Division:  f.Division,
		Matchweek: f.Matchweek,
		Home:      f.Home.Name,
		Away:      f.Away.Name,
	}
}

type resultRow struct {
	fixtureRow
	HomeGoals int `json:"home_goals"`
	AwayGoals int `json:"away_goals"`
}
