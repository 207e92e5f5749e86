package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/derekprior/leaguetable/internal/config"
	"github.com/derekprior/leaguetable/internal/league"
)

func TestConfigTemplateLoads(t *testing.T) {
	cfg, err := config.LoadFromBytes([]byte(configTemplate))
	if err != nil {
		t.Fatalf("template does not load: %v", err)
	}
	if _, err := league.New(cfg.League.Name, cfg.League.Owner, cfg.League.MaxSeasons, cfg.FormLength, cfg.DivisionSpecs()); err != nil {
		t.Fatalf("template does not build a league: %v", err)
	}
}

func TestRunInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "league.yaml")

	if err := runInit(path); err != nil {
		t.Fatalf("runInit() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written config: %v", err)
	}
	if string(data) != configTemplate {
		t.Error("written config differs from template")
	}

	if err := runInit(path); err == nil {
		t.Error("expected error when config already exists")
	}
}

func TestLeagueCommands(t *testing.T) {
	dir := t.TempDir()
	configFile = filepath.Join(dir, "league.yaml")
	logLevel = "error"
	t.Cleanup(func() { configFile, logLevel = defaultConfigFile, "warn" })

	cfg := "league:\n  name: Cup\n  owner: alice\n  max_seasons: 1\n" +
		"database: " + filepath.Join(dir, "league.db") + "\n" +
		"divisions:\n  - name: Only\n    number_of_teams: 3\n    teams: [Ajax, Benfica]\n"
	if err := os.WriteFile(configFile, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	steps := []struct {
		name string
		run  func(context.Context, *app) error
	}{
		{"create", runCreateLeague},
		{"add team", func(ctx context.Context, a *app) error { return runAddTeam(ctx, a, 1, "Celtic") }},
		{"advance season", runAdvanceSeason},
		{"show table", func(ctx context.Context, a *app) error { return runShowTable(ctx, a, -1, 0) }},
		{"list fixtures", func(ctx context.Context, a *app) error { return runListFixtures(ctx, a, 0) }},
		{"export", func(ctx context.Context, a *app) error { return runExport(ctx, a, filepath.Join(dir, "fixtures.xlsx")) }},
	}
	for _, step := range steps {
		if err := withApp(ctx, step.run); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
	}

	if err := withApp(ctx, runCreateLeague); err == nil {
		t.Error("expected error creating the league twice")
	}
	if err := runValidate(filepath.Join(dir, "fixtures.xlsx")); err != nil {
		t.Errorf("exported fixtures failed validation: %v", err)
	}
}
