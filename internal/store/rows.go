package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/derekprior/leaguetable/internal/league"
)

func writeChildren(ctx context.Context, tx *sql.Tx, l *league.League) error {
	for _, t := range l.Tables {
		_, err := tx.ExecContext(ctx, `INSERT INTO tables
			(id, league_id, season, division, name, number_of_teams, promote, relegate)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, l.ID, t.Season, t.Division, t.Name, t.NumberOfTeams, t.Promote, t.Relegate)
		if err != nil {
			return fmt.Errorf("inserting table %q season %d: %w", t.Name, t.Season, err)
		}
		for i, team := range t.Teams {
			_, err := tx.ExecContext(ctx, `INSERT INTO teams
				(table_id, id, position, name, division, played, wins, draws, losses, goals_for, goals_against, form)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				t.ID, team.ID, i, team.Name, team.Division, team.Played,
				team.Wins, team.Draws, team.Losses, team.GoalsFor, team.GoalsAgainst, team.Form)
			if err != nil {
				return fmt.Errorf("inserting team %q: %w", team.Name, err)
			}
		}
	}

	for i, f := range l.Fixtures {
		_, err := tx.ExecContext(ctx, `INSERT INTO fixtures
			(id, league_id, position, season, division, matchweek, home_id, home_name, away_id, away_name, neutral)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			f.ID, l.ID, i, f.Season, f.Division, f.Matchweek,
			f.Home.ID, f.Home.Name, f.Away.ID, f.Away.Name, f.NeutralGround)
		if err != nil {
			return fmt.Errorf("inserting fixture %s: %w", f.ID, err)
		}
	}

	for i, r := range l.Results {
		_, err := tx.ExecContext(ctx, `INSERT INTO results
			(id, league_id, position, season, division, matchweek, home_id, home_name, away_id, away_name, neutral, home_goals, away_goals)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, l.ID, i, r.Season, r.Division, r.Matchweek,
			r.Home.ID, r.Home.Name, r.Away.ID, r.Away.Name, r.NeutralGround, r.HomeGoals, r.AwayGoals)
		if err != nil {
			return fmt.Errorf("inserting result %s: %w", r.ID, err)
		}
	}
	return nil
}

func readTables(ctx context.Context, tx *sql.Tx, leagueID string) ([]league.Table, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, season, division, name, number_of_teams, promote, relegate
		FROM tables WHERE league_id = ? ORDER BY season, division`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("reading tables: %w", err)
	}
	var tables []league.Table
	for rows.Next() {
		var t league.Table
		if err := rows.Scan(&t.ID, &t.Season, &t.Division, &t.Name, &t.NumberOfTeams, &t.Promote, &t.Relegate); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning table: %w", err)
		}
		tables = append(tables, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading tables: %w", err)
	}

	// Teams are read after the tables cursor is closed; the store holds a
	// single connection.
	for i := range tables {
		if tables[i].Teams, err = readTeams(ctx, tx, tables[i].ID); err != nil {
			return nil, err
		}
	}
	return tables, nil
}

func readTeams(ctx context.Context, tx *sql.Tx, tableID string) ([]league.Team, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, name, division, played, wins, draws, losses, goals_for, goals_against, form
		FROM teams WHERE table_id = ? ORDER BY position`, tableID)
	if err != nil {
		return nil, fmt.Errorf("reading teams: %w", err)
	}
	defer rows.Close()

	var teams []league.Team
	for rows.Next() {
		var t league.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Division, &t.Played, &t.Wins, &t.Draws, &t.Losses,
			&t.GoalsFor, &t.GoalsAgainst, &t.Form); err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func readFixtures(ctx context.Context, tx *sql.Tx, leagueID string) ([]league.Fixture, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, season, division, matchweek, home_id, home_name, away_id, away_name, neutral
		FROM fixtures WHERE league_id = ? ORDER BY position`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures: %w", err)
	}
	defer rows.Close()

	var fixtures []league.Fixture
	for rows.Next() {
		var f league.Fixture
		if err := rows.Scan(&f.ID, &f.Season, &f.Division, &f.Matchweek,
			&f.Home.ID, &f.Home.Name, &f.Away.ID, &f.Away.Name, &f.NeutralGround); err != nil {
			return nil, fmt.Errorf("scanning fixture: %w", err)
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, rows.Err()
}

func readResults(ctx context.Context, tx *sql.Tx, leagueID string) ([]league.Result, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, season, division, matchweek, home_id, home_name, away_id, away_name, neutral, home_goals, away_goals
		FROM results WHERE league_id = ? ORDER BY position`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}
	defer rows.Close()

	var results []league.Result
	for rows.Next() {
		var r league.Result
		if err := rows.Scan(&r.ID, &r.Season, &r.Division, &r.Matchweek,
			&r.Home.ID, &r.Home.Name, &r.Away.ID, &r.Away.Name, &r.NeutralGround,
			&r.HomeGoals, &r.AwayGoals); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
