package league

import "errors"

var (
	ErrInvalidLadder   = errors.New("invalid promotion/relegation ladder")
	ErrUnknownDivision = errors.New("unknown division")
	ErrDivisionFull    = errors.New("division is full")
	ErrDuplicateTeam   = errors.New("team name already in use")
	ErrSeasonStarted   = errors.New("teams can only be added before the first season")
	ErrFixtureNotFound = errors.New("fixture not found")
	ErrFixtureNotDue   = errors.New("fixture is not due yet")
	ErrInvalidScore    = errors.New("goals cannot be negative")
)
