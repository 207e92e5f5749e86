package validator

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/derekprior/leaguetable/internal/excel"
	"github.com/derekprior/leaguetable/internal/league"
	"github.com/derekprior/leaguetable/internal/schedule"
)

// Violation represents a schedule problem found during validation.
type Violation struct {
	Row     int    // spreadsheet row, 0 when not tied to one row
	Type    string // "error" or "warning"
	Message string
}

// Validate reads an exported workbook and checks its fixture list is a
// complete double round-robin for every division.
func Validate(path string) ([]Violation, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	fixtures, err := readFixtures(f)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures: %w", err)
	}
	return check(fixtures), nil
}

// CheckFixtures runs the same checks as Validate over an in-memory list.
func CheckFixtures(fixtures []league.Fixture) []Violation {
	parsed := make([]parsedFixture, len(fixtures))
	for i, fx := range fixtures {
		parsed[i] = parsedFixture{
			Season:    fx.Season,
			Division:  fx.Division,
			Matchweek: fx.Matchweek,
			Home:      fx.Home.Name,
			Away:      fx.Away.Name,
		}
	}
	return check(parsed)
}

type parsedFixture struct {
	Row       int
	Season    int
	Division  int
	Matchweek int
	Home      string
	Away      string
}

type divisionKey struct {
	season   int
	division int
}

func check(fixtures []parsedFixture) []Violation {
	groups := make(map[divisionKey][]parsedFixture)
	var keys []divisionKey
	for _, fx := range fixtures {
		k := divisionKey{fx.Season, fx.Division}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], fx)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].season != keys[j].season {
			return keys[i].season < keys[j].season
		}
		return keys[i].division < keys[j].division
	})

	var violations []Violation
	for _, k := range keys {
		group := groups[k]
		violations = append(violations, checkSelfPairing(k, group)...)
		violations = append(violations, checkPairings(k, group)...)
		violations = append(violations, checkOncePerMatchweek(k, group)...)
		violations = append(violations, checkContiguousMatchweeks(k, group)...)
		violations = append(violations, checkSeasonLength(k, group)...)
	}
	return violations
}

func readFixtures(f *excelize.File) ([]parsedFixture, error) {
	rows, err := f.GetRows(excel.FixturesSheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", excel.FixturesSheet, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%s is empty", excel.FixturesSheet)
	}
	header := rows[0]
	for i, want := range excel.FixtureHeaders[:5] {
		if i >= len(header) || header[i] != want {
			return nil, fmt.Errorf("%s column %d is %q, want %q", excel.FixturesSheet, i+1, cell(header, i), want)
		}
	}

	var fixtures []parsedFixture
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 5 || row[0] == "" {
			continue
		}
		season, err1 := strconv.Atoi(row[0])
		division, err2 := strconv.Atoi(row[1])
		matchweek, err3 := strconv.Atoi(row[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, fmt.Errorf("row %d: season, division and matchweek must be numbers", i+1)
		}
		fixtures = append(fixtures, parsedFixture{
			Row:       i + 1,
			Season:    season,
			Division:  division,
			Matchweek: matchweek,
			Home:      row[3],
			Away:      row[4],
		})
	}
	return fixtures, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func checkSelfPairing(k divisionKey, fixtures []parsedFixture) []Violation {
	var violations []Violation
	for _, fx := range fixtures {
		if fx.Home == fx.Away {
			violations = append(violations, Violation{
				Row:     fx.Row,
				Type:    "error",
				Message: fmt.Sprintf("season %d division %d: %s is drawn against itself", k.season, k.division, fx.Home),
			})
		}
	}
	return violations
}

// checkPairings requires every pair of teams in the division to meet
// exactly twice, once at each ground.
func checkPairings(k divisionKey, fixtures []parsedFixture) []Violation {
	type matchup struct{ a, b string }
	homeGames := make(map[matchup]int) // ordered: a hosts b
	teams := teamsOf(fixtures)

	for _, fx := range fixtures {
		homeGames[matchup{fx.Home, fx.Away}]++
	}

	var violations []Violation
	for i, a := range teams {
		for _, b := range teams[i+1:] {
			ab, ba := homeGames[matchup{a, b}], homeGames[matchup{b, a}]
			switch {
			case ab+ba != 2:
				violations = append(violations, Violation{
					Type: "error",
					Message: fmt.Sprintf("season %d division %d: %s and %s meet %d times (want 2)",
						k.season, k.division, a, b, ab+ba),
				})
			case ab != 1:
				violations = append(violations, Violation{
					Type: "error",
					Message: fmt.Sprintf("season %d division %d: %s and %s do not swap home and away",
						k.season, k.division, a, b),
				})
			}
		}
	}
	return violations
}

func checkOncePerMatchweek(k divisionKey, fixtures []parsedFixture) []Violation {
	type teamWeek struct {
		team string
		week int
	}
	seen := make(map[teamWeek]int)

	var violations []Violation
	for _, fx := range fixtures {
		for _, team := range []string{fx.Home, fx.Away} {
			tw := teamWeek{team, fx.Matchweek}
			seen[tw]++
			if seen[tw] == 2 {
				violations = append(violations, Violation{
					Row:  fx.Row,
					Type: "error",
					Message: fmt.Sprintf("season %d division %d: %s plays more than once in matchweek %d",
						k.season, k.division, team, fx.Matchweek),
				})
			}
		}
	}
	return violations
}

func checkContiguousMatchweeks(k divisionKey, fixtures []parsedFixture) []Violation {
	weeks := make(map[int]bool)
	last := 0
	for _, fx := range fixtures {
		weeks[fx.Matchweek] = true
		last = max(last, fx.Matchweek)
	}

	var violations []Violation
	for mw := 1; mw <= last; mw++ {
		if !weeks[mw] {
			violations = append(violations, Violation{
				Type:    "error",
				Message: fmt.Sprintf("season %d division %d: matchweek %d has no fixtures", k.season, k.division, mw),
			})
		}
	}
	return violations
}

// checkSeasonLength warns when a division runs longer or shorter than a
// double round-robin of its size needs.
func checkSeasonLength(k divisionKey, fixtures []parsedFixture) []Violation {
	last := 0
	for _, fx := range fixtures {
		last = max(last, fx.Matchweek)
	}
	want := schedule.Matchweeks(len(teamsOf(fixtures)))
	if last == want {
		return nil
	}
	return []Violation{{
		Type: "warning",
		Message: fmt.Sprintf("season %d division %d: runs %d matchweeks, %d teams need %d",
			k.season, k.division, last, len(teamsOf(fixtures)), want),
	}}
}

func teamsOf(fixtures []parsedFixture) []string {
	seen := make(map[string]bool)
	var teams []string
	for _, fx := range fixtures {
		for _, t := range []string{fx.Home, fx.Away} {
			if !seen[t] {
				seen[t] = true
				teams = append(teams, t)
			}
		}
	}
	sort.Strings(teams)
	return teams
}
