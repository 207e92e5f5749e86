package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/derekprior/leaguetable/internal/league"
	"github.com/derekprior/leaguetable/internal/season"
	"github.com/derekprior/leaguetable/internal/store"
)

// OwnerHeader carries the caller identity for mutating requests.
const OwnerHeader = "X-League-Owner"

// Service is the subset of season.Service the HTTP layer needs.
type Service interface {
	League(ctx context.Context, id string) (league.League, error)
	AdvanceSeason(ctx context.Context, id, caller string) (league.League, error)
	AdvanceMatchweek(ctx context.Context, id, caller string) (league.League, error)
	RecordResult(ctx context.Context, id, caller, fixtureID string, homeGoals, awayGoals int) (league.League, error)
	AddTeam(ctx context.Context, id, caller string, division int, name string) (league.League, error)
}

type handler struct {
	svc Service
	log zerolog.Logger
}

// NewRouter wires the league routes behind request logging and CORS.
func NewRouter(svc Service, logger zerolog.Logger) http.Handler {
	h := &handler{svc: svc, log: logger}

	r := mux.NewRouter()
	r.HandleFunc("/leagues/{id}", h.getLeague).Methods("GET")
	r.HandleFunc("/leagues/{id}/standings", h.getStandings).Methods("GET")
	r.HandleFunc("/leagues/{id}/fixtures", h.getFixtures).Methods("GET")
	r.HandleFunc("/leagues/{id}/season", h.advanceSeason).Methods("POST")
	r.HandleFunc("/leagues/{id}/matchweek", h.advanceMatchweek).Methods("POST")
	r.HandleFunc("/leagues/{id}/results", h.recordResult).Methods("POST")
	r.HandleFunc("/leagues/{id}/teams", h.addTeam).Methods("POST")
	r.Use(h.logRequests)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", OwnerHeader},
	})
	return c.Handler(r)
}

func (h *handler) getLeague(w http.ResponseWriter, r *http.Request) {
	l, err := h.svc.League(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newLeagueSummary(l))
}

func (h *handler) getStandings(w http.ResponseWriter, r *http.Request) {
	l, err := h.svc.League(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}

	seasonNum, err := intParam(r, "season", l.CurrentSeason)
	if err != nil {
		http.Error(w, "Invalid season", http.StatusBadRequest)
		return
	}
	division, err := intParam(r, "division", 1)
	if err != nil {
		http.Error(w, "Invalid division", http.StatusBadRequest)
		return
	}

	// Rank the snapshot the default season came from.
	standings, err := season.Standings(l, seasonNum, division)
	if err != nil {
		h.writeError(w, err)
		return
	}
	rows := make([]standingRow, len(standings))
	for i, s := range standings {
		rows[i] = newStandingRow(s)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"season":    seasonNum,
		"division":  division,
		"standings": rows,
	})
}

func (h *handler) getFixtures(w http.ResponseWriter, r *http.Request) {
	l, err := h.svc.League(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	matchweek, err := intParam(r, "matchweek", l.CurrentMatchweek)
	if err != nil {
		http.Error(w, "Invalid matchweek", http.StatusBadRequest)
		return
	}

	fixtures := []fixtureRow{}
	for _, f := range l.FixturesForMatchweek(matchweek) {
		fixtures = append(fixtures, newFixtureRow(f))
	}
	results := []resultRow{}
	for _, res := range l.Results {
		if res.Season == l.CurrentSeason && res.Matchweek == matchweek {
			results = append(results, resultRow{
				fixtureRow: newFixtureRow(res.Fixture),
				HomeGoals:  res.HomeGoals,
				AwayGoals:  res.AwayGoals,
			})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"season":    l.CurrentSeason,
		"matchweek": matchweek,
		"fixtures":  fixtures,
		"results":   results,
	})
}

func (h *handler) advanceSeason(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, id, caller string) (league.League, error) {
		return h.svc.AdvanceSeason(ctx, id, caller)
	})
}

func (h *handler) advanceMatchweek(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, id, caller string) (league.League, error) {
		return h.svc.AdvanceMatchweek(ctx, id, caller)
	})
}

type resultRequest struct {
	FixtureID string `json:"fixture_id"`
	HomeGoals *int   `json:"home_goals"`
	AwayGoals *int   `json:"away_goals"`
}

func (h *handler) recordResult(w http.ResponseWriter, r *http.Request) {
	var req resultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.FixtureID == "" || req.HomeGoals == nil || req.AwayGoals == nil {
		http.Error(w, "fixture_id, home_goals and away_goals are required", http.StatusBadRequest)
		return
	}
	h.mutate(w, r, func(ctx context.Context, id, caller string) (league.League, error) {
		return h.svc.RecordResult(ctx, id, caller, req.FixtureID, *req.HomeGoals, *req.AwayGoals)
	})
}

type teamRequest struct {
	Division int    `json:"division"`
	Name     string `json:"name"`
}

func (h *handler) addTeam(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Division < 1 {
		http.Error(w, "division and name are required", http.StatusBadRequest)
		return
	}
	h.mutate(w, r, func(ctx context.Context, id, caller string) (league.League, error) {
		return h.svc.AddTeam(ctx, id, caller, req.Division, req.Name)
	})
}

// mutate runs an owner-only operation and replies with the new summary.
func (h *handler) mutate(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id, caller string) (league.League, error)) {
	caller := r.Header.Get(OwnerHeader)
	if caller == "" {
		http.Error(w, "missing "+OwnerHeader+" header", http.StatusBadRequest)
		return
	}
	l, err := op(r.Context(), mux.Vars(r)["id"], caller)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newLeagueSummary(l))
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, season.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, season.ErrUnknownTable),
		errors.Is(err, league.ErrFixtureNotFound),
		errors.Is(err, league.ErrUnknownDivision):
		return http.StatusNotFound
	case errors.Is(err, league.ErrInvalidScore):
		return http.StatusBadRequest
	case errors.Is(err, season.ErrTeamsMissing),
		errors.Is(err, season.ErrSeasonInProgress),
		errors.Is(err, season.ErrMaxSeasonsReached),
		errors.Is(err, season.ErrSeasonNotStarted),
		errors.Is(err, season.ErrSeasonAlreadyComplete),
		errors.Is(err, league.ErrFixtureNotDue),
		errors.Is(err, league.ErrSeasonStarted),
		errors.Is(err, league.ErrDivisionFull),
		errors.Is(err, league.ErrDuplicateTeam),
		errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
