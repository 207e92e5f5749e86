package league

import (
	"strings"

	"github.com/google/uuid"
)

const (
	DefaultFormLength = 5
	FormPlaceholder   = '-'
)

// Outcome characters recorded in a team's form trail.
const (
	FormWin  = 'W'
	FormDraw = 'D'
	FormLoss = 'L'
)

// Team is one competitor's record within one division for one season.
// Statistics never carry over between seasons; see Renew.
type Team struct {
	ID           string
	Name         string
	Division     int
	Played       int
	Wins         int
	Draws        int
	Losses       int
	GoalsFor     int
	GoalsAgainst int
	Form         string // oldest result first
}

// NewTeam returns a team with a fresh identity and no matches played.
func NewTeam(name string, division, formLength int) Team {
	if formLength <= 0 {
		formLength = DefaultFormLength
	}
	return Team{
		ID:       uuid.NewString(),
		Name:     name,
		Division: division,
		Form:     blankForm(formLength),
	}
}

// Renew returns a copy of the team for a new season: same name, new
// identity, zeroed statistics, and the given division.
func (t Team) Renew(division int) Team {
	return NewTeam(t.Name, division, len(t.Form))
}

func (t Team) Points() int {
	return 3*t.Wins + t.Draws
}

func (t Team) GoalDifference() int {
	return t.GoalsFor - t.GoalsAgainst
}

// Ref returns the handle fixtures and results use to point at the team.
func (t Team) Ref() TeamRef {
	return TeamRef{ID: t.ID, Name: t.Name}
}

func (t *Team) record(scored, conceded int) {
	t.Played++
	t.GoalsFor += scored
	t.GoalsAgainst += conceded

	var outcome byte
	switch {
	case scored > conceded:
		t.Wins++
		outcome = FormWin
	case scored < conceded:
		t.Losses++
		outcome = FormLoss
	default:
		t.Draws++
		outcome = FormDraw
	}

	if len(t.Form) == 0 {
		t.Form = blankForm(DefaultFormLength)
	}
	t.Form = t.Form[1:] + string(outcome)
}

func blankForm(n int) string {
	return strings.Repeat(string(FormPlaceholder), n)
}
