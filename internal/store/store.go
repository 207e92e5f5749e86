package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/derekprior/leaguetable/internal/league"
	_ "modernc.org/sqlite"
)

const busyTimeoutMillis = 5000

var (
	ErrNotFound = errors.New("league not found")
	// ErrConflict means the league changed after it was loaded.
	ErrConflict = errors.New("league was modified concurrently")
)

const schema = `
CREATE TABLE IF NOT EXISTS leagues (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	owner TEXT NOT NULL,
	max_seasons INTEGER NOT NULL,
	form_length INTEGER NOT NULL,
	current_season INTEGER NOT NULL,
	current_matchweek INTEGER NOT NULL,
	final_matchweek INTEGER NOT NULL,
	version INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS tables (
	id TEXT PRIMARY KEY,
	league_id TEXT NOT NULL,
	season INTEGER NOT NULL,
	division INTEGER NOT NULL,
	name TEXT NOT NULL,
	number_of_teams INTEGER NOT NULL,
	promote INTEGER NOT NULL,
	relegate INTEGER NOT NULL,
	UNIQUE (league_id, season, division)
);
CREATE TABLE IF NOT EXISTS teams (
	table_id TEXT NOT NULL,
	id TEXT NOT NULL,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	division INTEGER NOT NULL,
	played INTEGER NOT NULL,
	wins INTEGER NOT NULL,
	draws INTEGER NOT NULL,
	losses INTEGER NOT NULL,
	goals_for INTEGER NOT NULL,
	goals_against INTEGER NOT NULL,
	form TEXT NOT NULL,
	PRIMARY KEY (table_id, id)
);
CREATE TABLE IF NOT EXISTS fixtures (
	id TEXT PRIMARY KEY,
	league_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	season INTEGER NOT NULL,
	division INTEGER NOT NULL,
	matchweek INTEGER NOT NULL,
	home_id TEXT NOT NULL,
	home_name TEXT NOT NULL,
	away_id TEXT NOT NULL,
	away_name TEXT NOT NULL,
	neutral INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
	id TEXT PRIMARY KEY,
	league_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	season INTEGER NOT NULL,
	division INTEGER NOT NULL,
	matchweek INTEGER NOT NULL,
	home_id TEXT NOT NULL,
	home_name TEXT NOT NULL,
	away_id TEXT NOT NULL,
	away_name TEXT NOT NULL,
	neutral INTEGER NOT NULL,
	home_goals INTEGER NOT NULL,
	away_goals INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tables_league ON tables (league_id, season);
CREATE INDEX IF NOT EXISTS idx_fixtures_league ON fixtures (league_id, position);
CREATE INDEX IF NOT EXISTS idx_results_league ON results (league_id, position);
`

// Store persists leagues in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases from splitting across connections.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db}, nil
}

// dsn makes writers wait for a busy database instead of failing with
// SQLITE_BUSY, so a lost race surfaces as ErrConflict.
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(" + strconv.Itoa(busyTimeoutMillis) + ")"
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts a new league and sets its version to 1.
func (s *Store) Create(ctx context.Context, l *league.League) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO leagues
			(id, name, owner, max_seasons, form_length, current_season, current_matchweek, final_matchweek, version)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)`,
			l.ID, l.Name, l.Owner, l.MaxSeasons, l.FormLength,
			l.CurrentSeason, l.CurrentMatchweek, l.FinalMatchweek)
		if err != nil {
			return fmt.Errorf("inserting league: %w", err)
		}
		if err := writeChildren(ctx, tx, l); err != nil {
			return err
		}
		l.Version = 1
		return nil
	})
}

// Save writes the whole league if its version still matches the stored
// one. Nothing is written on ErrConflict. On success l.Version advances.
func (s *Store) Save(ctx context.Context, l *league.League) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE leagues SET
			name = ?, owner = ?, max_seasons = ?, form_length = ?,
			current_season = ?, current_matchweek = ?, final_matchweek = ?,
			version = version + 1
			WHERE id = ? AND version = ?`,
			l.Name, l.Owner, l.MaxSeasons, l.FormLength,
			l.CurrentSeason, l.CurrentMatchweek, l.FinalMatchweek,
			l.ID, l.Version)
		if err != nil {
			return fmt.Errorf("updating league: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("updating league: %w", err)
		}
		if n == 0 {
			return ErrConflict
		}

		for _, q := range []string{
			`DELETE FROM teams WHERE table_id IN (SELECT id FROM tables WHERE league_id = ?)`,
			`DELETE FROM tables WHERE league_id = ?`,
			`DELETE FROM fixtures WHERE league_id = ?`,
			`DELETE FROM results WHERE league_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, q, l.ID); err != nil {
				return fmt.Errorf("clearing league %s: %w", l.ID, err)
			}
		}
		return writeChildren(ctx, tx, l)
	})
	if err != nil {
		return err
	}
	l.Version++
	return nil
}

// Load reads a league with every season's tables. All reads run in one
// transaction so a concurrent Save is seen entirely or not at all.
func (s *Store) Load(ctx context.Context, id string) (league.League, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return league.League{}, fmt.Errorf("beginning read: %w", err)
	}
	defer tx.Rollback()

	var l league.League
	err = tx.QueryRowContext(ctx, `SELECT id, name, owner, max_seasons, form_length,
		current_season, current_matchweek, final_matchweek, version
		FROM leagues WHERE id = ?`, id).Scan(
		&l.ID, &l.Name, &l.Owner, &l.MaxSeasons, &l.FormLength,
		&l.CurrentSeason, &l.CurrentMatchweek, &l.FinalMatchweek, &l.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return league.League{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return league.League{}, fmt.Errorf("reading league: %w", err)
	}

	if l.Tables, err = readTables(ctx, tx, id); err != nil {
		return league.League{}, err
	}
	if l.Fixtures, err = readFixtures(ctx, tx, id); err != nil {
		return league.League{}, err
	}
	if l.Results, err = readResults(ctx, tx, id); err != nil {
		return league.League{}, err
	}
	return l, nil
}

// FindByName loads the league with the given name.
func (s *Store) FindByName(ctx context.Context, name string) (league.League, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM leagues WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return league.League{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return league.League{}, fmt.Errorf("finding league: %w", err)
	}
	return s.Load(ctx, id)
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
