// Package sqlite provides SQLite-based storage implementations for reelscout services.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB is the shared SQLite handle behind every store in this package.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB returns an unopened DB for path; ":memory:" keeps everything in RAM.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// pragma is applied to every new connection; fileOnly ones are skipped for
// in-memory databases, which do not support WAL.
type pragma struct {
	stmt     string
	fileOnly bool
}

var pragmas = []pragma{
	{stmt: "PRAGMA busy_timeout = 5000"},
	{stmt: "PRAGMA journal_mode = WAL", fileOnly: true},
	// history and recommendation rows cascade with their content
	{stmt: "PRAGMA foreign_keys = ON"},
	{stmt: "PRAGMA synchronous = NORMAL", fileOnly: true},
}

// Open connects, applies pragmas and migrates the schema.
func (db *DB) Open() (err error) {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", db.path, err)
	}
	defer func() {
		if err != nil {
			conn.Close()
		}
	}()

	// One writer at a time; task claims rely on it.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		return fmt.Errorf("connect %s: %w", db.path, err)
	}

	memory := db.path == ":memory:"
	for _, p := range pragmas {
		if p.fileOnly && memory {
			continue
		}
		if _, err := conn.Exec(p.stmt); err != nil {
			return fmt.Errorf("%s: %w", p.stmt, err)
		}
	}

	if _, err := conn.Exec(schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	db.db = conn
	return nil
}

// Close closes the connection if one is open.
func (db *DB) Close() error {
	if db.db == nil {
		return nil
	}
	return db.db.Close()
}

// PingContext reports whether the database is reachable. The HTTP health
// check calls it.
func (db *DB) PingContext(ctx context.Context) error {
	if db.db == nil {
		return fmt.Errorf("database not open")
	}
	return db.db.PingContext(ctx)
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// BeginTx starts a read-write transaction.
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, nil)
}

const schema = `
CREATE TABLE IF NOT EXISTS sources (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	base_url TEXT NOT NULL,
	content_type TEXT NOT NULL,
	selectors TEXT NOT NULL DEFAULT '{}',
	list_paths TEXT NOT NULL DEFAULT '[]',
	search_path TEXT NOT NULL DEFAULT '',
	details_path TEXT NOT NULL DEFAULT '',
	is_active INTEGER NOT NULL DEFAULT 1,
	last_scraped_at TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS contents (
	id TEXT PRIMARY KEY,
	source_id TEXT NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
	url TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	poster_url TEXT NOT NULL DEFAULT '',
	backdrop_url TEXT NOT NULL DEFAULT '',
	release_year INTEGER NOT NULL DEFAULT 0,
	rating REAL NOT NULL DEFAULT 0,
	type TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT '',
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contents_source_id ON contents(source_id);
CREATE INDEX IF NOT EXISTS idx_contents_type_rating ON contents(type, rating DESC);

CREATE TABLE IF NOT EXISTS user_preferences (
	user_id TEXT PRIMARY KEY,
	preferred_types TEXT NOT NULL DEFAULT '[]',
	preferred_genres TEXT NOT NULL DEFAULT '[]',
	preferred_sources TEXT NOT NULL DEFAULT '[]',
	avoided_genres TEXT NOT NULL DEFAULT '[]',
	avoided_sources TEXT NOT NULL DEFAULT '[]',
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS user_history (
	user_id TEXT NOT NULL,
	content_id TEXT NOT NULL REFERENCES contents(id) ON DELETE CASCADE,
	watched_at TEXT NOT NULL,
	progress REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, content_id)
);

CREATE INDEX IF NOT EXISTS idx_user_history_watched ON user_history(user_id, watched_at DESC);

CREATE TABLE IF NOT EXISTS user_recommendations (
	user_id TEXT NOT NULL,
	content_id TEXT NOT NULL REFERENCES contents(id) ON DELETE CASCADE,
	score REAL NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (user_id, content_id)
);

CREATE TABLE IF NOT EXISTS scrape_tasks (
	id TEXT PRIMARY KEY,
	source_id TEXT NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
	action TEXT NOT NULL,
	params TEXT NOT NULL DEFAULT '{}',
	status TEXT NOT NULL,
	result TEXT,
	error TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scrape_tasks_status ON scrape_tasks(status, created_at);

CREATE TABLE IF NOT EXISTS scraping_sessions (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	items_count INTEGER NOT NULL DEFAULT 0,
	errors_count INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	started_at TEXT NOT NULL,
	finished_at TEXT
);

CREATE TABLE IF NOT EXISTS scraping_source_logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL REFERENCES scraping_sessions(id) ON DELETE CASCADE,
	source_id TEXT NOT NULL,
	success INTEGER NOT NULL,
	items_count INTEGER NOT NULL DEFAULT 0,
	errors_count INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS scraping_errors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL REFERENCES scraping_sessions(id) ON DELETE CASCADE,
	source_id TEXT NOT NULL DEFAULT '',
	message TEXT NOT NULL,
	occurred_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS scheduled_executions (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	status TEXT NOT NULL,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	details TEXT NOT NULL DEFAULT ''
);
`
