package season

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"

	"github.com/derekprior/leaguetable/internal/league"
	"github.com/derekprior/leaguetable/internal/ranking"
	"github.com/derekprior/leaguetable/internal/store"
)

// Store loads and saves whole leagues. Save must fail with
// store.ErrConflict when the league changed since it was loaded.
type Store interface {
	Load(ctx context.Context, id string) (league.League, error)
	Save(ctx context.Context, l *league.League) error
}

// Service applies league transitions against a Store, one writer per
// league at a time.
type Service struct {
	store   Store
	log     zerolog.Logger
	shuffle bool
	seed    int64

	mu    sync.Mutex
	locks map[string]*leagueLock
}

type leagueLock struct {
	mu   sync.Mutex
	refs int
}

type Option func(*Service)

// WithShuffle shuffles fixtures within each matchweek when a season
// starts, seeded from seed and the new season number.
func WithShuffle(seed int64) Option {
	return func(s *Service) {
		s.shuffle = true
		s.seed = seed
	}
}

func NewService(st Store, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store: st,
		log:   logger,
		locks: make(map[string]*leagueLock),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// League returns the stored league.
func (s *Service) League(ctx context.Context, id string) (league.League, error) {
	return s.store.Load(ctx, id)
}

// Standings ranks one division of a league for the given season.
func (s *Service) Standings(ctx context.Context, id string, season, division int) ([]ranking.Standing, error) {
	l, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return Standings(l, season, division)
}

// AdvanceSeason starts the league's next season on behalf of caller.
func (s *Service) AdvanceSeason(ctx context.Context, id, caller string) (league.League, error) {
	next, err := s.apply(ctx, id, caller, func(l league.League) (league.League, error) {
		var rng *rand.Rand
		if s.shuffle {
			rng = rand.New(rand.NewSource(s.seed + int64(l.CurrentSeason+1)))
		}
		return AdvanceSeason(l, rng)
	})
	if err != nil {
		return league.League{}, err
	}
	s.log.Info().
		Str("league", next.ID).
		Int("season", next.CurrentSeason).
		Int("final_matchweek", next.FinalMatchweek).
		Int("fixtures", len(next.Fixtures)).
		Msg("season started")
	return next, nil
}

// AdvanceMatchweek moves the league on one matchweek on behalf of caller.
func (s *Service) AdvanceMatchweek(ctx context.Context, id, caller string) (league.League, error) {
	next, err := s.apply(ctx, id, caller, AdvanceMatchweek)
	if err != nil {
		return league.League{}, err
	}
	s.log.Info().
		Str("league", next.ID).
		Int("season", next.CurrentSeason).
		Int("matchweek", next.CurrentMatchweek).
		Msg("matchweek started")
	return next, nil
}

// RecordResult enters the score of a pending fixture on behalf of caller.
func (s *Service) RecordResult(ctx context.Context, id, caller, fixtureID string, homeGoals, awayGoals int) (league.League, error) {
	var result league.Result
	next, err := s.apply(ctx, id, caller, func(l league.League) (league.League, error) {
		next := l.Clone()
		r, err := next.RecordResult(fixtureID, homeGoals, awayGoals)
		if err != nil {
			return league.League{}, err
		}
		result = r
		return next, nil
	})
	if err != nil {
		return league.League{}, err
	}
	s.log.Info().
		Str("league", next.ID).
		Str("fixture", result.ID).
		Str("home", result.Home.Name).
		Str("away", result.Away.Name).
		Int("home_goals", result.HomeGoals).
		Int("away_goals", result.AwayGoals).
		Msg("result recorded")
	return next, nil
}

// AddTeam enters a new team into a division before the first season.
func (s *Service) AddTeam(ctx context.Context, id, caller string, division int, name string) (league.League, error) {
	next, err := s.apply(ctx, id, caller, func(l league.League) (league.League, error) {
		next := l.Clone()
		if err := next.AddTeam(division, name); err != nil {
			return league.League{}, err
		}
		return next, nil
	})
	if err != nil {
		return league.League{}, err
	}
	s.log.Info().Str("league", next.ID).Int("division", division).Str("team", name).Msg("team added")
	return next, nil
}

// apply runs one read-compute-write cycle under the league's lock. A
// conflicting write from another process causes one fresh read and
// re-check; the earlier computation is never replayed.
func (s *Service) apply(ctx context.Context, id, caller string, transition func(league.League) (league.League, error)) (league.League, error) {
	unlock := s.lock(id)
	defer unlock()

	const attempts = 2
	for attempt := 1; ; attempt++ {
		current, err := s.store.Load(ctx, id)
		if err != nil {
			return league.League{}, err
		}
		if current.Owner != caller {
			return league.League{}, fmt.Errorf("%w: %q", ErrNotOwner, caller)
		}

		next, err := transition(current)
		if err != nil {
			return league.League{}, err
		}

		err = s.store.Save(ctx, &next)
		if errors.Is(err, store.ErrConflict) && attempt < attempts {
			s.log.Warn().Str("league", id).Int("version", current.Version).Msg("write conflict, re-reading league")
			continue
		}
		if err != nil {
			return league.League{}, fmt.Errorf("saving league %s: %w", id, err)
		}
		return next, nil
	}
}

// lock takes the league's mutex. Entries are reference counted and
// dropped once no caller holds or waits on them.
func (s *Service) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &leagueLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}
