// Package store persists users, questions, quiz attempts, and per-question
// responses in SQLite or Postgres behind one database/sql surface.
package store

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	// Register Postgres SQL driver.
	_ "github.com/lib/pq"
	// Register SQLite SQL driver.
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row lookup matches nothing.
var ErrNotFound = errors.New("not found")

type sqlDialect string

const (
	dialectSQLite   sqlDialect = "sqlite"
	dialectPostgres sqlDialect = "postgres"
)

// Store is a SQL-backed persistence layer (SQLite or Postgres).
type Store struct {
	db      *sql.DB
	dialect sqlDialect
}

// NewSQLite opens a SQLite-backed store.
// dsn can be a file path (e.g. /var/lib/skepesis.db) or SQLite DSN.
func NewSQLite(dsn string) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = "skepesis.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	s := &Store{db: db, dialect: dialectSQLite}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgres opens a Postgres-backed store.
func NewPostgres(dsn string) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres store: %w", err)
	}
	s := &Store{db: db, dialect: dialectPostgres}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("ping %s store: %w", s.dialect, err)
	}

	timestamp := "DATETIME"
	if s.dialect == dialectPostgres {
		timestamp = "TIMESTAMPTZ"
	}

	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT UNIQUE NOT NULL,
	username TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL,
	created_at %[1]s NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

CREATE TABLE IF NOT EXISTS questions (
	id TEXT PRIMARY KEY,
	prompt TEXT NOT NULL,
	options TEXT NOT NULL,
	correct_answer TEXT NOT NULL,
	category TEXT NOT NULL,
	difficulty TEXT NOT NULL,
	question_type TEXT NOT NULL,
	source TEXT NOT NULL,
	created_at %[1]s NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_questions_category ON questions(category);
CREATE INDEX IF NOT EXISTS idx_questions_difficulty ON questions(difficulty);

CREATE TABLE IF NOT EXISTS attempts (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	topic TEXT NOT NULL,
	question_count INTEGER NOT NULL,
	correct_count INTEGER NOT NULL,
	score REAL NOT NULL,
	started_at %[1]s NOT NULL,
	completed_at %[1]s NULL
);
CREATE INDEX IF NOT EXISTS idx_attempts_user ON attempts(user_id);

CREATE TABLE IF NOT EXISTS responses (
	id TEXT PRIMARY KEY,
	attempt_id TEXT NOT NULL,
	question_id TEXT NOT NULL,
	answer TEXT NOT NULL,
	correct BOOLEAN NOT NULL,
	confidence INTEGER NOT NULL,
	time_taken_seconds REAL NOT NULL,
	created_at %[1]s NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_responses_attempt ON responses(attempt_id);`, timestamp)

	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("initialize %s store schema: %w", s.dialect, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// bind rewrites ? placeholders to $n for Postgres.
func (s *Store) bind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var (
		b      strings.Builder
		argNum = 1
	)
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			b.WriteString(fmt.Sprintf("$%d", argNum))
			argNum++
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func generateID() (string, error) {
	idBytes := make([]byte, 16)
	if _, err := rand.Read(idBytes); err != nil {
		return "", fmt.Errorf("generating id: %w", err)
	}
	return fmt.Sprintf("%x-%x-%x-%x-%x",
		idBytes[0:4], idBytes[4:6], idBytes[6:8], idBytes[8:10], idBytes[10:16]), nil
}
