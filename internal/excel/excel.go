package excel

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/xuri/excelize/v2"

	"github.com/derekprior/leaguetable/internal/league"
	"github.com/derekprior/leaguetable/internal/ranking"
)

// FixturesSheet is the sheet listing every match of the exported season.
const FixturesSheet = "Fixtures"

// FixtureHeaders are the column headings of the fixtures sheet.
var FixtureHeaders = []string{"Season", "Division", "Matchweek", "Home", "Away", "Score"}

// Generate creates a workbook with the current season's fixtures and
// results, plus one standings sheet per division.
func Generate(l league.League) (*excelize.File, error) {
	f := excelize.NewFile()

	// Set default font for the workbook
	f.SetDefaultFont("Arial")

	if err := writeFixturesSheet(f, l); err != nil {
		return nil, fmt.Errorf("writing fixtures sheet: %w", err)
	}

	if err := writeStandingsSheets(f, l); err != nil {
		return nil, fmt.Errorf("writing standings sheets: %w", err)
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

type row struct {
	division  int
	matchweek int
	home      string
	away      string
	score     string
}

func writeFixturesSheet(f *excelize.File, l league.League) error {
	sheet := FixturesSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	writeHeaders(f, sheet, FixtureHeaders)

	var rows []row
	for _, r := range l.Results {
		if r.Season != l.CurrentSeason {
			continue
		}
		rows = append(rows, row{
			division:  r.Division,
			matchweek: r.Matchweek,
			home:      r.Home.Name,
			away:      r.Away.Name,
			score:     fmt.Sprintf("%d-%d", r.HomeGoals, r.AwayGoals),
		})
	}
	for _, fx := range l.Fixtures {
		rows = append(rows, row{
			division:  fx.Division,
			matchweek: fx.Matchweek,
			home:      fx.Home.Name,
			away:      fx.Away.Name,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].division != rows[j].division {
			return rows[i].division < rows[j].division
		}
		return rows[i].matchweek < rows[j].matchweek
	})

	cellStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 16, Family: "Arial"},
	})

	for i, r := range rows {
		n := i + 2
		f.SetCellValue(sheet, cellRef(1, n), l.CurrentSeason)
		f.SetCellValue(sheet, cellRef(2, n), r.division)
		f.SetCellValue(sheet, cellRef(3, n), r.matchweek)
		f.SetCellValue(sheet, cellRef(4, n), r.home)
		f.SetCellValue(sheet, cellRef(5, n), r.away)
		f.SetCellValue(sheet, cellRef(6, n), r.score)
		if cellStyle != 0 {
			f.SetCellStyle(sheet, cellRef(1, n), cellRef(len(FixtureHeaders), n), cellStyle)
		}
	}

	// Set column widths (sized for Arial 16)
	widths := map[string]float64{"A": 10, "B": 10, "C": 14, "D": 28, "E": 28, "F": 10}
	for col, w := range widths {
		f.SetColWidth(sheet, col, col, w)
	}
	return nil
}

func writeStandingsSheets(f *excelize.File, l league.League) error {
	headers := []string{"Pos", "Team", "P", "W", "D", "L", "GF", "GA", "GD", "Pts", "Form"}

	// Sheet1 is the default sheet, deleted once the workbook is built.
	used := map[string]bool{strings.ToLower(FixturesSheet): true, "sheet1": true}
	for _, table := range l.SeasonTables(l.CurrentSeason) {
		sheet := sheetName(table, used)
		used[strings.ToLower(sheet)] = true
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("sheet %q: %w", sheet, err)
		}
		writeHeaders(f, sheet, headers)

		cellStyle, _ := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Size: 16, Family: "Arial"},
		})

		// Highlight the movement places: green up, red down.
		upStyle, _ := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#C6EFCE"}},
			Font: &excelize.Font{Size: 16, Family: "Arial"},
		})
		downStyle, _ := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFC7CE"}},
			Font: &excelize.Font{Size: 16, Family: "Arial"},
		})

		standings := ranking.Standings(table.Teams)
		for i, s := range standings {
			n := i + 2
			t := s.Team
			values := []any{s.Position, t.Name, t.Played, t.Wins, t.Draws, t.Losses,
				t.GoalsFor, t.GoalsAgainst, t.GoalDifference(), t.Points(), t.Form}
			for col, v := range values {
				f.SetCellValue(sheet, cellRef(col+1, n), v)
			}

			style := cellStyle
			switch {
			case s.Position <= table.Promote:
				style = upStyle
			case s.Position > len(standings)-table.Relegate:
				style = downStyle
			}
			if style != 0 {
				f.SetCellStyle(sheet, cellRef(1, n), cellRef(len(headers), n), style)
			}
		}

		f.SetColWidth(sheet, "A", "A", 8)
		f.SetColWidth(sheet, "B", "B", 28)
		f.SetColWidth(sheet, "C", "J", 8)
		f.SetColWidth(sheet, "K", "K", 12)
	}
	return nil
}

// sheetName keeps division names within Excel's sheet name limit. A
// name Excel rejects, or one already taken (sheet names ignore case),
// falls back to the division number.
func sheetName(t league.Table, used map[string]bool) string {
	name := truncateUTF16(t.Name, excelize.MaxSheetNameLength)
	if validSheetName(name) && !used[strings.ToLower(name)] {
		return name
	}

	name = fmt.Sprintf("Division %d", t.Division)
	for n := 2; used[strings.ToLower(name)]; n++ {
		name = fmt.Sprintf("Division %d (%d)", t.Division, n)
	}
	return name
}

func validSheetName(name string) bool {
	return name != "" &&
		!strings.HasPrefix(name, "'") && !strings.HasSuffix(name, "'") &&
		!strings.ContainsAny(name, ":\\/?*[]")
}

// truncateUTF16 cuts s to at most limit UTF-16 code units, the unit Excel
// measures sheet names in.
func truncateUTF16(s string, limit int) string {
	n := 0
	for i, r := range s {
		n += utf16.RuneLen(r)
		if n > limit {
			return s[:i]
		}
	}
	return s
}

func writeHeaders(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 16, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if headerStyle != 0 {
		f.SetCellStyle(sheet, cellRef(1, 1), cellRef(len(headers), 1), headerStyle)
	}
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
