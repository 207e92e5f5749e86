package league

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Table is one division's ranking group for one season. Tables from past
// seasons stay on the League untouched so earlier standings can be viewed.
type Table struct {
	ID            string
	Season        int
	Division      int // 1 = top
	Name          string
	NumberOfTeams int
	Promote       int // teams leaving upward at season end
	Relegate      int // teams leaving downward at season end
	Teams         []Team
}

// TeamRef identifies a team from a fixture or result.
type TeamRef struct {
	ID   string
	Name string
}

// Fixture is a scheduled match that has not been played.
type Fixture struct {
	ID            string
	Season        int
	Division      int
	Matchweek     int
	Home          TeamRef
	Away          TeamRef
	NeutralGround bool
}

// Result is a played fixture with its score.
type Result struct {
	Fixture
	HomeGoals int
	AwayGoals int
}

// Status is where a league sits in its season lifecycle.
type Status int

const (
	NotStarted Status = iota
	InProgress
	SeasonComplete
	Finished
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case InProgress:
		return "in progress"
	case SeasonComplete:
		return "season complete"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// League is the aggregate root for every season of one competition.
type League struct {
	ID               string
	Name             string
	Owner            string
	MaxSeasons       int
	FormLength       int
	CurrentSeason    int
	CurrentMatchweek int
	FinalMatchweek   int
	Tables           []Table
	Fixtures         []Fixture // pending, current season only
	Results          []Result
	Version          int // bumped by the store on every successful save
}

// DivisionSpec describes a division when a league is set up.
type DivisionSpec struct {
	Name          string
	NumberOfTeams int
	Promote       int
	Relegate      int
	Teams         []string
}

// New builds a league that has not started its first season. The top
// division never promotes and the bottom division never relegates.
func New(name, owner string, maxSeasons, formLength int, divisions []DivisionSpec) (League, error) {
	divisions = NormalizeLadder(divisions)
	if err := CheckLadder(divisions); err != nil {
		return League{}, err
	}
	if formLength <= 0 {
		formLength = DefaultFormLength
	}

	l := League{
		ID:         uuid.NewString(),
		Name:       name,
		Owner:      owner,
		MaxSeasons: maxSeasons,
		FormLength: formLength,
	}
	for i, d := range divisions {
		l.Tables = append(l.Tables, Table{
			ID:            uuid.NewString(),
			Season:        0,
			Division:      i + 1,
			Name:          d.Name,
			NumberOfTeams: d.NumberOfTeams,
			Promote:       d.Promote,
			Relegate:      d.Relegate,
		})
	}
	for i, d := range divisions {
		for _, team := range d.Teams {
			if err := l.AddTeam(i+1, team); err != nil {
				return League{}, err
			}
		}
	}
	return l, nil
}

// DivisionsCount returns the number of divisions in the current season.
func (l *League) DivisionsCount() int {
	return len(l.SeasonTables(l.CurrentSeason))
}

// Status derives the lifecycle state from the season counters and the
// pending fixture list.
func (l *League) Status() Status {
	switch {
	case l.CurrentSeason == 0:
		return NotStarted
	case len(l.Fixtures) > 0:
		return InProgress
	case l.CurrentSeason >= l.MaxSeasons:
		return Finished
	default:
		return SeasonComplete
	}
}

// SeasonTables returns copies of the tables for a season, top division first.
func (l *League) SeasonTables(season int) []Table {
	var tables []Table
	for _, t := range l.Tables {
		if t.Season == season {
			tables = append(tables, t)
		}
	}
	slices.SortFunc(tables, func(a, b Table) int { return a.Division - b.Division })
	return tables
}

// Table returns the table for a season and division.
func (l *League) Table(season, division int) (Table, bool) {
	if i := l.tableIndex(season, division); i >= 0 {
		return l.Tables[i], true
	}
	return Table{}, false
}

func (l *League) tableIndex(season, division int) int {
	for i, t := range l.Tables {
		if t.Season == season && t.Division == division {
			return i
		}
	}
	return -1
}

// AddTeam places a new team in a division before the first season.
func (l *League) AddTeam(division int, name string) error {
	if l.CurrentSeason > 0 {
		return ErrSeasonStarted
	}
	idx := l.tableIndex(0, division)
	if idx < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownDivision, division)
	}
	for _, t := range l.Tables {
		if t.Season != 0 {
			continue
		}
		for _, team := range t.Teams {
			if team.Name == name {
				return fmt.Errorf("%w: %q", ErrDuplicateTeam, name)
			}
		}
	}
	table := &l.Tables[idx]
	if len(table.Teams) >= table.NumberOfTeams {
		return fmt.Errorf("%w: %q holds %d teams", ErrDivisionFull, table.Name, table.NumberOfTeams)
	}
	table.Teams = append(table.Teams, NewTeam(name, division, l.FormLength))
	return nil
}

// FixturesForMatchweek returns the pending fixtures of one matchweek.
func (l *League) FixturesForMatchweek(matchweek int) []Fixture {
	var out []Fixture
	for _, f := range l.Fixtures {
		if f.Matchweek == matchweek {
			out = append(out, f)
		}
	}
	return out
}

// Clone returns a deep copy so a transition can be computed without
// touching the state it was read from.
func (l League) Clone() League {
	out := l
	out.Tables = make([]Table, len(l.Tables))
	for i, t := range l.Tables {
		t.Teams = slices.Clone(t.Teams)
		out.Tables[i] = t
	}
	out.Fixtures = slices.Clone(l.Fixtures)
	out.Results = slices.Clone(l.Results)
	return out
}
