package ranking

import (
	"testing"

	"github.com/derekprior/leaguetable/internal/league"
)

func team(name string, wins, draws, losses, gf, ga int) league.Team {
	return league.Team{
		ID:           name,
		Name:         name,
		Division:     1,
		Played:       wins + draws + losses,
		Wins:         wins,
		Draws:        draws,
		Losses:       losses,
		GoalsFor:     gf,
		GoalsAgainst: ga,
	}
}

func names(teams []league.Team) []string {
	out := make([]string, len(teams))
	for i, t := range teams {
		out[i] = t.Name
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRankLadder(t *testing.T) {
	tests := []struct {
		name  string
		teams []league.Team
		want  []string
	}{
		{
			name: "points first",
			teams: []league.Team{
				team("Ajax", 1, 0, 2, 9, 2),
				team("Benfica", 2, 0, 1, 3, 3),
			},
			want: []string{"Benfica", "Ajax"},
		},
		{
			name: "draws count one point",
			teams: []league.Team{
				team("Ajax", 1, 0, 2, 3, 3),
				team("Benfica", 0, 4, 0, 3, 3),
			},
			want: []string{"Benfica", "Ajax"},
		},
		{
			name: "goal difference breaks points tie",
			teams: []league.Team{
				team("Ajax", 2, 0, 0, 3, 2),
				team("Benfica", 2, 0, 0, 5, 1),
			},
			want: []string{"Benfica", "Ajax"},
		},
		{
			name: "goals scored breaks goal difference tie",
			teams: []league.Team{
				team("Ajax", 2, 0, 0, 3, 1),
				team("Benfica", 2, 0, 0, 6, 4),
			},
			want: []string{"Benfica", "Ajax"},
		},
		{
			name: "full tie keeps input order",
			teams: []league.Team{
				team("Celtic", 1, 1, 1, 4, 4),
				team("Ajax", 1, 1, 1, 4, 4),
				team("Benfica", 1, 1, 1, 4, 4),
			},
			want: []string{"Celtic", "Ajax", "Benfica"},
		},
		{
			name:  "empty",
			teams: nil,
			want:  []string{},
		},
		{
			name:  "single team",
			teams: []league.Team{team("Ajax", 0, 0, 0, 0, 0)},
			want:  []string{"Ajax"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(Rank(tt.teams))
			if !equal(got, tt.want) {
				t.Errorf("Rank() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRankIsDeterministicAcrossPermutations(t *testing.T) {
	teams := []league.Team{
		team("Ajax", 3, 1, 0, 10, 2),
		team("Benfica", 3, 1, 0, 8, 2),
		team("Celtic", 2, 0, 2, 5, 5),
		team("Dynamo", 0, 2, 2, 2, 7),
		team("Everton", 1, 0, 3, 3, 12),
	}
	want := names(Rank(teams))

	perms := [][]int{
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
		{1, 4, 0, 3, 2},
	}
	for _, p := range perms {
		shuffled := make([]league.Team, len(teams))
		for i, idx := range p {
			shuffled[i] = teams[idx]
		}
		if got := names(Rank(shuffled)); !equal(got, want) {
			t.Errorf("Rank(%v) = %v, want %v", p, got, want)
		}
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	teams := []league.Team{
		team("Ajax", 0, 0, 1, 0, 1),
		team("Benfica", 1, 0, 0, 1, 0),
	}
	Rank(teams)
	if teams[0].Name != "Ajax" {
		t.Errorf("input reordered: %v", names(teams))
	}
}

func TestStandingsPositions(t *testing.T) {
	standings := Standings([]league.Team{
		team("Ajax", 0, 0, 1, 0, 1),
		team("Benfica", 1, 0, 0, 1, 0),
	})
	if standings[0].Position != 1 || standings[0].Team.Name != "Benfica" {
		t.Errorf("first = %+v, want Benfica at 1", standings[0])
	}
	if standings[1].Position != 2 || standings[1].Team.Name != "Ajax" {
		t.Errorf("second = %+v, want Ajax at 2", standings[1])
	}
}
