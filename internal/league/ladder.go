package league

import "fmt"

// NormalizeLadder forces promotion out of the top division and relegation
// out of the bottom division to zero. The input is not modified.
func NormalizeLadder(divisions []DivisionSpec) []DivisionSpec {
	out := make([]DivisionSpec, len(divisions))
	copy(out, divisions)
	if len(out) > 0 {
		out[0].Promote = 0
		out[len(out)-1].Relegate = 0
	}
	return out
}

// CheckLadder rejects division set-ups the season engine cannot roll over:
// each division's promotion places must equal the relegation places of the
// division above, and neither may exceed half the division.
func CheckLadder(divisions []DivisionSpec) error {
	if len(divisions) == 0 {
		return fmt.Errorf("%w: at least one division is required", ErrInvalidLadder)
	}
	for i, d := range divisions {
		if d.NumberOfTeams < 2 {
			return fmt.Errorf("%w: division %q needs at least 2 teams, has capacity %d",
				ErrInvalidLadder, d.Name, d.NumberOfTeams)
		}
		if d.Promote < 0 || d.Relegate < 0 {
			return fmt.Errorf("%w: division %q has negative promotion/relegation places", ErrInvalidLadder, d.Name)
		}
		half := d.NumberOfTeams / 2
		if d.Promote > half {
			return fmt.Errorf("%w: division %q promotes %d of %d teams (max %d)",
				ErrInvalidLadder, d.Name, d.Promote, d.NumberOfTeams, half)
		}
		if d.Relegate > half {
			return fmt.Errorf("%w: division %q relegates %d of %d teams (max %d)",
				ErrInvalidLadder, d.Name, d.Relegate, d.NumberOfTeams, half)
		}
		if len(d.Teams) > d.NumberOfTeams {
			return fmt.Errorf("%w: division %q lists %d teams but holds %d",
				ErrInvalidLadder, d.Name, len(d.Teams), d.NumberOfTeams)
		}
		if i > 0 && d.Promote != divisions[i-1].Relegate {
			return fmt.Errorf("%w: division %q promotes %d but %q relegates %d",
				ErrInvalidLadder, d.Name, d.Promote, divisions[i-1].Name, divisions[i-1].Relegate)
		}
	}
	return nil
}
