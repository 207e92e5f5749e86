package season

import "errors"

var (
	ErrNotOwner              = errors.New("only the league owner can do that")
	ErrTeamsMissing          = errors.New("every division needs its full complement of teams")
	ErrSeasonInProgress      = errors.New("current season still has fixtures to play")
	ErrMaxSeasonsReached     = errors.New("league has played its final season")
	ErrSeasonNotStarted      = errors.New("season has not started")
	ErrSeasonAlreadyComplete = errors.New("season is already on its final matchweek")
	ErrUnknownTable          = errors.New("no table for that season and division")
)
