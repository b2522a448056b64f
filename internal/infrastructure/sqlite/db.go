package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT UNIQUE NOT NULL,
	password TEXT NOT NULL,
	is_employer INTEGER NOT NULL DEFAULT 0,
	email TEXT,
	avatar TEXT,
	about TEXT
);

CREATE TABLE IF NOT EXISTS jobs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	author_id INTEGER,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	tags TEXT,
	salary TEXT,
	created DATETIME NOT NULL,
	FOREIGN KEY (author_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS responses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	text TEXT NOT NULL,
	contact TEXT,
	created DATETIME NOT NULL,
	FOREIGN KEY (job_id) REFERENCES jobs(id),
	FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
CREATE INDEX IF NOT EXISTS idx_jobs_author_id ON jobs(author_id);
CREATE INDEX IF NOT EXISTS idx_jobs_created ON jobs(created);
CREATE INDEX IF NOT EXISTS idx_responses_job_id ON responses(job_id);
CREATE INDEX IF NOT EXISTS idx_responses_user_id ON responses(user_id);
`

// Tables in foreign key order, children last.
var tables = []string{"users", "jobs", "responses"}

type DB struct {
	*sqlx.DB
}

func New(dbPath string) (*DB, error) {
	memory := dbPath == ":memory:"

	db, err := sqlx.Connect("sqlite", dsn(dbPath, memory))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Every connection to :memory: opens its own empty database
	if memory {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{db}, nil
}

// dsn attaches the connection pragmas to the path so that every pooled
// connection gets them, not just the first one.
func dsn(dbPath string, memory bool) string {
	params := []string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
		"_time_format=sqlite",
		"_txlock=immediate",
	}
	if !memory {
		params = append(params, "_pragma=journal_mode(WAL)")
	}
	return dbPath + "?" + strings.Join(params, "&")
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// Reset drops every row in the store, children first. Used by the seed
// command.
func (db *DB) Reset() error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := len(tables) - 1; i >= 0; i-- {
		if _, err := tx.Exec("DELETE FROM " + tables[i]); err != nil {
			return fmt.Errorf("failed to clear %s: %w", tables[i], err)
		}
	}
	if _, err := tx.Exec("DELETE FROM sqlite_sequence"); err != nil {
		return fmt.Errorf("failed to reset sequences: %w", err)
	}
	return tx.Commit()
}

// NullString helper for optional string fields
func NullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}

// NullInt64 helper for optional int64 fields
func NullInt64(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{Valid: false}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}
