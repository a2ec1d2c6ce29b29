package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite implementation of the matching store.
type Store struct {
	db *sql.DB
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DSN builds the connection string for path. Write transactions start with
// BEGIN IMMEDIATE so read-modify-write cycles on a match are serialized.
func DSN(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate", path)
}

// Open creates the parent directory, opens the database and migrates it.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return New(db), nil
}

// New wraps an already migrated database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RunMigrations creates all necessary tables
func RunMigrations(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS companies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		company_name TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS candidates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS job_postings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		company_id INTEGER NOT NULL,
		job_title TEXT NOT NULL,
		product_vendor TEXT NOT NULL DEFAULT '',
		product_type TEXT NOT NULL DEFAULT '',
		job_role TEXT NOT NULL DEFAULT '',
		seniority_level TEXT NOT NULL DEFAULT '',
		work_type TEXT NOT NULL DEFAULT '',
		employment_type TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		salary_min REAL NOT NULL DEFAULT 0,
		salary_max REAL NOT NULL DEFAULT 0,
		salary_currency TEXT NOT NULL DEFAULT 'usd',
		required_skills TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE CASCADE,
		CHECK(work_type IN ('', 'remote', 'hybrid', 'onsite'))
	);

	CREATE TABLE IF NOT EXISTS job_posting_skills (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_posting_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'technical',
		rating INTEGER NOT NULL DEFAULT 3,
		FOREIGN KEY (job_posting_id) REFERENCES job_postings(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS job_profiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		candidate_id INTEGER NOT NULL,
		profile_name TEXT NOT NULL,
		product_vendor TEXT NOT NULL DEFAULT '',
		product_type TEXT NOT NULL DEFAULT '',
		job_role TEXT NOT NULL DEFAULT '',
		years_of_experience INTEGER NOT NULL DEFAULT 0,
		work_type TEXT NOT NULL DEFAULT '',
		employment_type TEXT NOT NULL DEFAULT '',
		salary_min REAL NOT NULL DEFAULT 0,
		salary_max REAL NOT NULL DEFAULT 0,
		salary_currency TEXT NOT NULL DEFAULT 'usd',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (candidate_id) REFERENCES candidates(id) ON DELETE CASCADE,
		CHECK(work_type IN ('', 'remote', 'hybrid', 'onsite'))
	);

	CREATE TABLE IF NOT EXISTS profile_skills (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_profile_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'technical',
		proficiency INTEGER NOT NULL DEFAULT 3,
		FOREIGN KEY (job_profile_id) REFERENCES job_profiles(id) ON DELETE CASCADE,
		CHECK(proficiency BETWEEN 1 AND 5)
	);

	CREATE TABLE IF NOT EXISTS location_preferences (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_profile_id INTEGER NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (job_profile_id) REFERENCES job_profiles(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS swipes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		candidate_id INTEGER NOT NULL,
		company_id INTEGER NOT NULL,
		job_profile_id INTEGER NOT NULL,
		job_posting_id INTEGER NOT NULL,
		action TEXT NOT NULL,
		actor TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (job_profile_id) REFERENCES job_profiles(id) ON DELETE CASCADE,
		FOREIGN KEY (job_posting_id) REFERENCES job_postings(id) ON DELETE CASCADE,
		CHECK(action IN ('like', 'pass', 'ask_to_apply')),
		CHECK(actor IN ('candidate', 'recruiter'))
	);

	CREATE TABLE IF NOT EXISTS matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		candidate_id INTEGER NOT NULL,
		company_id INTEGER NOT NULL,
		job_posting_id INTEGER NOT NULL,
		job_profile_id INTEGER NOT NULL,
		candidate_liked BOOLEAN NOT NULL DEFAULT 0,
		company_liked BOOLEAN NOT NULL DEFAULT 0,
		candidate_asked_to_apply BOOLEAN NOT NULL DEFAULT 0,
		company_asked_to_apply BOOLEAN NOT NULL DEFAULT 0,
		match_percentage REAL NOT NULL DEFAULT 0,
		scored BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (job_profile_id) REFERENCES job_profiles(id) ON DELETE CASCADE,
		FOREIGN KEY (job_posting_id) REFERENCES job_postings(id) ON DELETE CASCADE,
		UNIQUE(candidate_id, company_id, job_posting_id, job_profile_id)
	);

	CREATE TABLE IF NOT EXISTS notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		kind TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		payload TEXT NOT NULL DEFAULT '{}',
		is_read BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_swipes_like_once ON swipes(candidate_id, job_posting_id, actor) WHERE action = 'like';
	CREATE INDEX IF NOT EXISTS idx_swipes_pair ON swipes(candidate_id, job_posting_id);
	CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(company_name);
	CREATE INDEX IF NOT EXISTS idx_job_postings_company ON job_postings(company_id);
	CREATE INDEX IF NOT EXISTS idx_job_profiles_candidate ON job_profiles(candidate_id);
	CREATE INDEX IF NOT EXISTS idx_matches_company ON matches(company_id);
	CREATE INDEX IF NOT EXISTS idx_matches_scored ON matches(scored);
	CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, is_read);
	`

	_, err := db.Exec(schema)
	return err
}
