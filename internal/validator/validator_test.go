package validator

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/derekprior/leaguetable/internal/excel"
	"github.com/derekprior/leaguetable/internal/league"
	"github.com/derekprior/leaguetable/internal/season"
)

func startedLeague(t *testing.T) league.League {
	t.Helper()
	l, err := league.New("Sunday League", "alice", 3, 5, []league.DivisionSpec{
		{Name: "Premier", NumberOfTeams: 4, Relegate: 1, Teams: []string{"Ajax", "Benfica", "Celtic", "Dynamo"}},
		{Name: "Championship", NumberOfTeams: 5, Promote: 1, Teams: []string{"Everton", "Fulham", "Genoa", "Hertha", "Inter"}},
	})
	if err != nil {
		t.Fatalf("league.New() error: %v", err)
	}
	next, err := season.AdvanceSeason(l, nil)
	if err != nil {
		t.Fatalf("AdvanceSeason() error: %v", err)
	}
	return next
}

func writeWorkbook(t *testing.T, l league.League) string {
	t.Helper()
	f, err := excel.Generate(l)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "fixtures.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() error: %v", err)
	}
	return path
}

func errorsOnly(violations []Violation) []Violation {
	var out []Violation
	for _, v := range violations {
		if v.Type == "error" {
			out = append(out, v)
		}
	}
	return out
}

func TestValidateGeneratedWorkbook(t *testing.T) {
	l := startedLeague(t)
	path := writeWorkbook(t, l)

	violations, err := Validate(path)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	for _, v := range violations {
		t.Errorf("unexpected %s (row %d): %s", v.Type, v.Row, v.Message)
	}
}

func TestValidateAfterResults(t *testing.T) {
	l := startedLeague(t)
	for _, f := range l.FixturesForMatchweek(1) {
		if _, err := l.RecordResult(f.ID, 1, 1); err != nil {
			t.Fatalf("RecordResult() error: %v", err)
		}
	}
	path := writeWorkbook(t, l)

	violations, err := Validate(path)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if len(violations) != 0 {
		t.Errorf("played fixtures should still count, got %d violations: %v", len(violations), violations)
	}
}

func TestValidateMissingFile(t *testing.T) {
	_, err := Validate(filepath.Join(t.TempDir(), "missing.xlsx"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidateCorruptedWorkbook(t *testing.T) {
	l := startedLeague(t)
	f, err := excel.Generate(l)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	// Swap the second row's home and away so that pair is hosted by the
	// same team in both legs.
	home, _ := f.GetCellValue(excel.FixturesSheet, "D2")
	away, _ := f.GetCellValue(excel.FixturesSheet, "E2")
	f.SetCellValue(excel.FixturesSheet, "D2", away)
	f.SetCellValue(excel.FixturesSheet, "E2", home)

	path := filepath.Join(t.TempDir(), "corrupted.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() error: %v", err)
	}

	violations, err := Validate(path)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	errs := errorsOnly(violations)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Message, "do not swap home and away") {
		t.Errorf("unexpected message: %s", errs[0].Message)
	}
}

func TestValidateBadHeader(t *testing.T) {
	l := startedLeague(t)
	f, err := excel.Generate(l)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	f.SetCellValue(excel.FixturesSheet, "C1", "Round")
	path := filepath.Join(t.TempDir(), "header.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() error: %v", err)
	}

	if _, err := Validate(path); err == nil {
		t.Fatal("expected error for renamed column")
	}
}

func fx(division, matchweek int, home, away string) league.Fixture {
	return league.Fixture{
		Season:    1,
		Division:  division,
		Matchweek: matchweek,
		Home:      league.TeamRef{Name: home},
		Away:      league.TeamRef{Name: away},
	}
}

func TestCheckFixtures(t *testing.T) {
	valid := []league.Fixture{
		fx(1, 1, "A", "B"),
		fx(1, 2, "B", "A"),
	}

	t.Run("two-team double round robin", func(t *testing.T) {
		if v := CheckFixtures(valid); len(v) != 0 {
			t.Errorf("expected no violations, got %v", v)
		}
	})

	t.Run("pair met once", func(t *testing.T) {
		v := errorsOnly(CheckFixtures(valid[:1]))
		if len(v) != 1 || !strings.Contains(v[0].Message, "meet 1 times") {
			t.Errorf("expected one pairing error, got %v", v)
		}
	})

	t.Run("team twice in a matchweek", func(t *testing.T) {
		fixtures := []league.Fixture{
			fx(1, 1, "A", "B"),
			fx(1, 1, "A", "C"),
			fx(1, 2, "B", "A"),
			fx(1, 2, "C", "A"),
		}
		found := false
		for _, v := range CheckFixtures(fixtures) {
			if strings.Contains(v.Message, "A plays more than once in matchweek 1") {
				found = true
			}
		}
		if !found {
			t.Error("expected double-booking error for A")
		}
	})

	t.Run("gap in matchweeks", func(t *testing.T) {
		fixtures := []league.Fixture{
			fx(1, 1, "A", "B"),
			fx(1, 3, "B", "A"),
		}
		v := errorsOnly(CheckFixtures(fixtures))
		if len(v) != 1 || !strings.Contains(v[0].Message, "matchweek 2 has no fixtures") {
			t.Errorf("expected gap error, got %v", v)
		}
	})

	t.Run("team drawn against itself", func(t *testing.T) {
		v := errorsOnly(CheckFixtures([]league.Fixture{fx(1, 1, "A", "A")}))
		if len(v) == 0 || !strings.Contains(v[0].Message, "drawn against itself") {
			t.Errorf("expected self-pairing error, got %v", v)
		}
	})

	t.Run("divisions checked separately", func(t *testing.T) {
		fixtures := append(slices.Clone(valid),
			fx(2, 1, "C", "D"),
			fx(2, 2, "D", "C"),
		)
		if v := CheckFixtures(fixtures); len(v) != 0 {
			t.Errorf("expected no violations, got %v", v)
		}
	})

	t.Run("season length warning", func(t *testing.T) {
		fixtures := []league.Fixture{
			fx(1, 1, "A", "B"),
			fx(1, 2, "B", "A"),
			fx(1, 3, "A", "B"),
			fx(1, 3, "B", "A"),
		}
		var warnings int
		for _, v := range CheckFixtures(fixtures) {
			if v.Type == "warning" {
				warnings++
			}
		}
		if warnings != 1 {
			t.Errorf("expected 1 warning, got %d", warnings)
		}
	})
}
