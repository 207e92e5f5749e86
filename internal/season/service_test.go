package season

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derekprior/leaguetable/internal/league"
	"github.com/derekprior/leaguetable/internal/store"
)

func setupService(t *testing.T) (*Service, *store.Store, string) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "league.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	l := newLeague(t, 3, twoDivisions()...)
	require.NoError(t, st.Create(context.Background(), &l))
	return NewService(st, zerolog.Nop()), st, l.ID
}

func TestServiceAdvanceSeason(t *testing.T) {
	ctx := context.Background()
	svc, st, id := setupService(t)

	t.Run("rejects non-owner", func(t *testing.T) {
		_, err := svc.AdvanceSeason(ctx, id, "mallory")
		assert.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("first call succeeds and persists", func(t *testing.T) {
		next, err := svc.AdvanceSeason(ctx, id, "alice")
		require.NoError(t, err)
		assert.Equal(t, 1, next.CurrentSeason)

		stored, err := st.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.CurrentSeason)
		assert.Equal(t, 1, stored.CurrentMatchweek)
		assert.Equal(t, 6, stored.FinalMatchweek)
		assert.Len(t, stored.Fixtures, 24)
		assert.Len(t, stored.SeasonTables(1), 2)
	})

	t.Run("second call sees fixtures remaining", func(t *testing.T) {
		_, err := svc.AdvanceSeason(ctx, id, "alice")
		assert.ErrorIs(t, err, ErrSeasonInProgress)
	})
}

func TestServiceConcurrentAdvanceSucceedsOnce(t *testing.T) {
	ctx := context.Background()
	svc, _, id := setupService(t)

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.AdvanceSeason(ctx, id, "alice")
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrSeasonInProgress)
	}
	assert.Equal(t, 1, succeeded)
	assert.Empty(t, svc.locks, "lock entries must be released")
}

func TestServiceLockSerialisesAndReleases(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())

	unlockA := svc.lock("a")
	acquired := make(chan struct{})
	go func() {
		unlock := svc.lock("a")
		close(acquired)
		unlock()
	}()

	unlockB := svc.lock("b")
	unlockB()

	select {
	case <-acquired:
		t.Fatal("second holder acquired league a while it was locked")
	case <-time.After(50 * time.Millisecond):
	}
	unlockA()
	<-acquired

	assert.Eventually(t, func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		return len(svc.locks) == 0
	}, time.Second, 10*time.Millisecond)
}

// racingStore lets another writer start the season between this
// service's read and its write.
type racingStore struct {
	*store.Store
	once sync.Once
}

func (r *racingStore) Save(ctx context.Context, l *league.League) error {
	var raceErr error
	r.once.Do(func() {
		current, err := r.Store.Load(ctx, l.ID)
		if err != nil {
			raceErr = err
			return
		}
		next, err := AdvanceSeason(current, nil)
		if err != nil {
			raceErr = err
			return
		}
		raceErr = r.Store.Save(ctx, &next)
	})
	if raceErr != nil {
		return raceErr
	}
	return r.Store.Save(ctx, l)
}

func TestServiceRevalidatesAfterConflict(t *testing.T) {
	ctx := context.Background()
	_, st, id := setupService(t)
	svc := NewService(&racingStore{Store: st}, zerolog.Nop())

	_, err := svc.AdvanceSeason(ctx, id, "alice")
	assert.ErrorIs(t, err, ErrSeasonInProgress)

	stored, err := st.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CurrentSeason)
	assert.Len(t, stored.Fixtures, 24, "only the winning writer's fixtures are stored")
}

type conflictingStore struct {
	*store.Store
}

func (c conflictingStore) Save(context.Context, *league.League) error {
	return store.ErrConflict
}

func TestServiceGivesUpAfterRepeatedConflict(t *testing.T) {
	ctx := context.Background()
	_, st, id := setupService(t)
	svc := NewService(conflictingStore{st}, zerolog.Nop())

	_, err := svc.AdvanceSeason(ctx, id, "alice")
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestServiceMatchweekAndResults(t *testing.T) {
	ctx := context.Background()
	svc, st, id := setupService(t)

	_, err := svc.AdvanceMatchweek(ctx, id, "alice")
	assert.ErrorIs(t, err, ErrSeasonNotStarted)

	started, err := svc.AdvanceSeason(ctx, id, "alice")
	require.NoError(t, err)

	fixture := started.FixturesForMatchweek(1)[0]
	_, err = svc.RecordResult(ctx, id, "mallory", fixture.ID, 1, 0)
	assert.ErrorIs(t, err, ErrNotOwner)

	updated, err := svc.RecordResult(ctx, id, "alice", fixture.ID, 1, 0)
	require.NoError(t, err)
	assert.Len(t, updated.Fixtures, 23)
	assert.Len(t, updated.Results, 1)

	standings, err := svc.Standings(ctx, id, 1, fixture.Division)
	require.NoError(t, err)
	assert.Equal(t, fixture.Home.Name, standings[0].Team.Name)
	assert.Equal(t, 3, standings[0].Team.Points())

	next, err := svc.AdvanceMatchweek(ctx, id, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, next.CurrentMatchweek)

	stored, err := st.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CurrentMatchweek)
	assert.Len(t, stored.Results, 1)
}

func TestServiceShuffleKeepsRounds(t *testing.T) {
	ctx := context.Background()
	_, st, id := setupService(t)
	svc := NewService(st, zerolog.Nop(), WithShuffle(42))

	next, err := svc.AdvanceSeason(ctx, id, "alice")
	require.NoError(t, err)

	perWeek := make(map[[2]int]int)
	for _, f := range next.Fixtures {
		perWeek[[2]int{f.Division, f.Matchweek}]++
	}
	for key, n := range perWeek {
		assert.Equal(t, 2, n, "division %d matchweek %d", key[0], key[1])
	}
}

func TestServiceAddTeam(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(filepath.Join(t.TempDir(), "league.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	l := newLeague(t, 2,
		league.DivisionSpec{Name: "Premier", NumberOfTeams: 2, Teams: []string{"Ajax"}},
	)
	require.NoError(t, st.Create(ctx, &l))
	svc := NewService(st, zerolog.Nop())

	_, err = svc.AdvanceSeason(ctx, l.ID, "alice")
	assert.ErrorIs(t, err, ErrTeamsMissing)

	_, err = svc.AddTeam(ctx, l.ID, "mallory", 1, "Benfica")
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.AddTeam(ctx, l.ID, "alice", 1, "Ajax")
	assert.ErrorIs(t, err, league.ErrDuplicateTeam)

	added, err := svc.AddTeam(ctx, l.ID, "alice", 1, "Benfica")
	require.NoError(t, err)
	table, ok := added.Table(0, 1)
	require.True(t, ok)
	assert.Equal(t, []string{"Ajax", "Benfica"}, teamNames(table.Teams))

	_, err = svc.AddTeam(ctx, l.ID, "alice", 1, "Celtic")
	assert.ErrorIs(t, err, league.ErrDivisionFull)

	next, err := svc.AdvanceSeason(ctx, l.ID, "alice")
	require.NoError(t, err)
	assert.Len(t, next.Fixtures, 2)
}
