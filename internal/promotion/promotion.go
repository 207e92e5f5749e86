package promotion

import (
	"fmt"

	"github.com/derekprior/leaguetable/internal/league"
)

// DivisionState is one division's ranked roster and its movement places.
type DivisionState struct {
	Division int
	Teams    []league.Team // ranked, best first
	Promote  int
	Relegate int
}

// Resolve computes every division's roster for the next season. Divisions
// must be ordered top to bottom and already ranked. Promotion places of
// each division are assumed to match the relegation places of the one
// above; that is checked when tables are configured, not here.
//
// Every team in the output is a fresh record for the new season.
func Resolve(divisions []DivisionState) []DivisionState {
	for _, d := range divisions {
		if d.Promote < 0 || d.Relegate < 0 || d.Promote+d.Relegate > len(d.Teams) {
			panic(fmt.Sprintf("division %d: cannot move %d up and %d down out of %d teams",
				d.Division, d.Promote, d.Relegate, len(d.Teams)))
		}
	}

	out := make([]DivisionState, len(divisions))
	for i, d := range divisions {
		staying := d.Teams[d.Promote : len(d.Teams)-d.Relegate]

		var roster []league.Team
		if i > 0 {
			above := divisions[i-1]
			roster = appendRenewed(roster, above.Teams[len(above.Teams)-above.Relegate:], d.Division)
		}
		roster = appendRenewed(roster, staying, d.Division)
		if i < len(divisions)-1 {
			below := divisions[i+1]
			roster = appendRenewed(roster, below.Teams[:below.Promote], d.Division)
		}

		out[i] = DivisionState{
			Division: d.Division,
			Teams:    roster,
			Promote:  d.Promote,
			Relegate: d.Relegate,
		}
	}
	return out
}

func appendRenewed(dst, teams []league.Team, division int) []league.Team {
	for _, t := range teams {
		dst = append(dst, t.Renew(division))
	}
	return dst
}
