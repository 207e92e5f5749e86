package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/derekprior/leaguetable/internal/api"
	"github.com/derekprior/leaguetable/internal/excel"
	"github.com/derekprior/leaguetable/internal/league"
	"github.com/derekprior/leaguetable/internal/season"
	"github.com/derekprior/leaguetable/internal/store"
	"github.com/derekprior/leaguetable/internal/validator"
)

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("✓ Created %s\n", outputPath)
	return nil
}

func runCreateLeague(ctx context.Context, a *app) error {
	if _, err := a.store.FindByName(ctx, a.cfg.League.Name); err == nil {
		return fmt.Errorf("league %q already exists in %s", a.cfg.League.Name, a.cfg.Database)
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	l, err := league.New(a.cfg.League.Name, a.cfg.League.Owner, a.cfg.League.MaxSeasons, a.cfg.FormLength, a.cfg.DivisionSpecs())
	if err != nil {
		return fmt.Errorf("building league: %w", err)
	}
	if err := a.store.Create(ctx, &l); err != nil {
		return err
	}

	fmt.Printf("✓ Created %s (%d divisions, %d teams) in %s\n",
		l.Name, l.DivisionsCount(), len(a.cfg.AllTeams()), a.cfg.Database)
	for _, t := range l.SeasonTables(0) {
		if len(t.Teams) < t.NumberOfTeams {
			fmt.Printf("  ⚠ %s has %d of %d teams\n", t.Name, len(t.Teams), t.NumberOfTeams)
		}
	}
	return nil
}

func runAddTeam(ctx context.Context, a *app, division int, name string) error {
	l, err := a.league(ctx)
	if err != nil {
		return err
	}
	l, err = a.svc.AddTeam(ctx, l.ID, a.caller(), division, name)
	if err != nil {
		return err
	}
	t, _ := l.Table(0, division)
	fmt.Printf("✓ Added %s to %s (%d of %d teams)\n", name, t.Name, len(t.Teams), t.NumberOfTeams)
	return nil
}

func runAdvanceSeason(ctx context.Context, a *app) error {
	l, err := a.league(ctx)
	if err != nil {
		return err
	}
	l, err = a.svc.AdvanceSeason(ctx, l.ID, a.caller())
	if err != nil {
		return err
	}

	fmt.Printf("✓ Season %d of %d started: %d fixtures over %d matchweeks\n",
		l.CurrentSeason, l.MaxSeasons, len(l.Fixtures), l.FinalMatchweek)
	for _, t := range l.SeasonTables(l.CurrentSeason) {
		fmt.Printf("  %-20s %d teams\n", t.Name, len(t.Teams))
	}
	return nil
}

func runAdvanceMatchweek(ctx context.Context, a *app) error {
	l, err := a.league(ctx)
	if err != nil {
		return err
	}
	l, err = a.svc.AdvanceMatchweek(ctx, l.ID, a.caller())
	if err != nil {
		return err
	}
	fmt.Printf("✓ Matchweek %d of %d\n", l.CurrentMatchweek, l.FinalMatchweek)
	if l.CurrentMatchweek == l.FinalMatchweek {
		fmt.Println("  ⚠ Final matchweek: record every result before advancing the season")
	}
	return nil
}

func runRecordResult(ctx context.Context, a *app, fixtureID string, home, away int) error {
	l, err := a.league(ctx)
	if err != nil {
		return err
	}
	l, err = a.svc.RecordResult(ctx, l.ID, a.caller(), fixtureID, home, away)
	if err != nil {
		return err
	}
	r := l.Results[len(l.Results)-1]
	fmt.Printf("✓ %s %d-%d %s\n", r.Home.Name, r.HomeGoals, r.AwayGoals, r.Away.Name)
	if l.Status() == league.SeasonComplete {
		fmt.Printf("✓ Season %d complete\n", l.CurrentSeason)
	}
	return nil
}

func runShowTable(ctx context.Context, a *app, seasonNum, division int) error {
	l, err := a.league(ctx)
	if err != nil {
		return err
	}
	if seasonNum < 0 {
		seasonNum = l.CurrentSeason
	}

	tables := l.SeasonTables(seasonNum)
	if len(tables) == 0 {
		return fmt.Errorf("%w: season %d", season.ErrUnknownTable, seasonNum)
	}
	for _, t := range tables {
		if division != 0 && t.Division != division {
			continue
		}
		standings, err := season.Standings(l, seasonNum, t.Division)
		if err != nil {
			return err
		}

		fmt.Printf("\n%s (season %d)\n", t.Name, seasonNum)
		fmt.Printf("  %3s  %-20s %3s %3s %3s %3s %4s %4s %4s %4s  %s\n",
			"Pos", "Team", "P", "W", "D", "L", "GF", "GA", "GD", "Pts", "Form")
		for _, s := range standings {
			marker := " "
			switch {
			case s.Position <= t.Promote:
				marker = "↑"
			case s.Position > len(standings)-t.Relegate:
				marker = "↓"
			}
			tm := s.Team
			fmt.Printf("%s %3d  %-20s %3d %3d %3d %3d %4d %4d %+4d %4d  %s\n",
				marker, s.Position, tm.Name, tm.Played, tm.Wins, tm.Draws, tm.Losses,
				tm.GoalsFor, tm.GoalsAgainst, tm.GoalDifference(), tm.Points(), tm.Form)
		}
	}
	return nil
}

func runListFixtures(ctx context.Context, a *app, matchweek int) error {
	l, err := a.league(ctx)
	if err != nil {
		return err
	}
	if l.CurrentSeason == 0 {
		return season.ErrSeasonNotStarted
	}
	if matchweek == 0 {
		matchweek = l.CurrentMatchweek
	}

	fmt.Printf("Season %d, matchweek %d of %d\n", l.CurrentSeason, matchweek, l.FinalMatchweek)
	for _, r := range l.Results {
		if r.Season == l.CurrentSeason && r.Matchweek == matchweek {
			fmt.Printf("  ✓ %-20s %d-%d  %-20s\n", r.Home.Name, r.HomeGoals, r.AwayGoals, r.Away.Name)
		}
	}
	for _, f := range l.FixturesForMatchweek(matchweek) {
		fmt.Printf("    %-20s  v   %-20s %s\n", f.Home.Name, f.Away.Name, f.ID)
	}
	return nil
}

func runExport(ctx context.Context, a *app, outputPath string) error {
	l, err := a.league(ctx)
	if err != nil {
		return err
	}
	f, err := excel.Generate(l)
	if err != nil {
		return fmt.Errorf("generating Excel: %w", err)
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("saving file: %w", err)
	}
	fmt.Printf("✓ Season %d saved to %s\n", l.CurrentSeason, outputPath)
	return nil
}

func runValidate(path string) error {
	violations, err := validator.Validate(path)
	if err != nil {
		return fmt.Errorf("validating: %w", err)
	}

	errs := 0
	warnings := 0
	for _, v := range violations {
		switch v.Type {
		case "error":
			errs++
			fmt.Printf("✗ Fixture error: %s\n", v.Message)
		case "warning":
			warnings++
			fmt.Printf("⚠ Fixture warning: %s\n", v.Message)
		}
	}

	fmt.Printf("\nValidation complete: %d errors, %d warnings\n", errs, warnings)
	if errs > 0 {
		return fmt.Errorf("%d fixture errors found", errs)
	}
	return nil
}

func runServe(ctx context.Context, a *app, addr string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(a.svc, a.log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	fmt.Printf("✓ Serving %s on %s\n", a.cfg.League.Name, addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	fmt.Println("✓ Server stopped")
	return nil
}

const configTemplate = `# League Configuration
# ====================
# This file defines a league, its divisions and their starting teams.

league:
  name: Sunday League
  # Only the owner may add teams, advance seasons and matchweeks, or
  # record results.
  owner: alice
  # The league finishes after this many seasons.
  max_seasons: 5

# SQLite database the league is stored in.
database: league.db

# Number of recent results shown in the form column.
form_length: 5

# Reorder fixtures within each matchweek when a season starts. The seed
# makes the order repeatable.
shuffle_fixtures: true
seed: 42

# Divisions, top first. Every team plays every other team in its
# division twice a season, once at home and once away.
#
# promoted:  number of top teams that move up a division.
# relegated: number of bottom teams that move down a division.
# A division's promoted count must equal the relegated count of the
# division above it, and neither may exceed half the division.
# The top division never promotes and the bottom never relegates.
#
# Divisions may list fewer teams than number_of_teams; use
# "leaguetable team add" to fill them before the first season.
divisions:
  - name: Premier
    number_of_teams: 4
    relegated: 1
    teams: [Ajax, Benfica, Celtic, Dynamo]
  - name: Championship
    number_of_teams: 4
    promoted: 1
    teams: [Everton, Fulham, Genoa, Hertha]
`
