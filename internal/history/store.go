// Package history persists route searches in a SQLite database so they can
// be listed and re-run.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"citypulse/internal/pulse"
)

// ErrNotFound is returned when no search has the requested id.
var ErrNotFound = errors.New("search not found")

// Entry is one remembered search.
type Entry struct {
	ID        string
	From      string
	To        string
	Analysis  *pulse.RouteAnalysis
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Key returns the "<from> to <to>" search key.
func (e Entry) Key() string {
	return pulse.SearchKey(e.From, e.To)
}

// Store manages the search history database.
type Store struct {
	db     *sql.DB
	dbPath string
	clock  clock.Clock
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock used for timestamps.
func WithClock(c clock.Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open creates or opens the history database at dbPath.
func Open(dbPath string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{
		db:     db,
		dbPath: dbPath,
		clock:  clock.New(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS searches (
		id TEXT PRIMARY KEY,
		search_key TEXT NOT NULL UNIQUE,
		from_place TEXT NOT NULL,
		to_place TEXT NOT NULL,
		routes_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_searches_created ON searches(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Add records a search. Repeating a search keeps its original position in
// the list and replaces the stored routes. created reports whether the
// search was new rather than a refresh of an existing entry.
func (s *Store) Add(ctx context.Context, from, to string, analysis *pulse.RouteAnalysis) (entry Entry, created bool, err error) {
	if from == "" || to == "" {
		return Entry{}, false, fmt.Errorf("search needs both endpoints")
	}
	if analysis == nil {
		analysis = &pulse.RouteAnalysis{}
	}
	routes, err := json.Marshal(analysis)
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to marshal routes: %w", err)
	}

	key := pulse.SearchKey(from, to)
	id := uuid.NewString()
	now := s.clock.Now().UnixNano()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO searches (id, search_key, from_place, to_place, routes_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(search_key) DO UPDATE SET
			routes_json = excluded.routes_json,
			updated_at = excluded.updated_at`,
		id, key, from, to, string(routes), now, now)
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to save search: %w", err)
	}

	entry, err = s.scanOne(s.db.QueryRowContext(ctx, selectEntry+` WHERE search_key = ?`, key))
	if err != nil {
		return Entry{}, false, err
	}
	// A conflicting key keeps the existing row and its id.
	created = entry.ID == id
	s.logger.Debug("Search saved",
		zap.String("search", key),
		zap.Int("routes", len(analysis.Routes)),
		zap.Bool("created", created))
	return entry, created, nil
}

const selectEntry = `SELECT id, from_place, to_place, routes_json, created_at, updated_at FROM searches`

// List returns up to limit searches, newest first. A limit of zero or less
// returns every search.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := selectEntry + ` ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list searches: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := s.scanOne(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list searches: %w", err)
	}
	return entries, nil
}

// Get returns the search with id.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, selectEntry+` WHERE id = ?`, id))
}

// Delete forgets one search.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM searches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete search: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear forgets every search and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM searches`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	n, _ := res.RowsAffected()
	s.logger.Info("History cleared", zap.Int64("searches", n))
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanOne(row scanner) (Entry, error) {
	var (
		e                Entry
		routes           string
		created, updated int64
	)
	if err := row.Scan(&e.ID, &e.From, &e.To, &routes, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, fmt.Errorf("failed to read search: %w", err)
	}
	e.Analysis = &pulse.RouteAnalysis{}
	if err := json.Unmarshal([]byte(routes), e.Analysis); err != nil {
		return Entry{}, fmt.Errorf("failed to unmarshal routes for %s: %w", e.ID, err)
	}
	e.CreatedAt = time.Unix(0, created)
	e.UpdatedAt = time.Unix(0, updated)
	return e, nil
}
