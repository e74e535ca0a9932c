package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ashureev/interview-coach/internal/domain"
	"github.com/ashureev/interview-coach/internal/shared"
)

const (
	writeAttempts   = 3
	writeRetryDelay = 100 * time.Millisecond
)

var _ Repository = (*SQLiteStore)(nil)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// modernc applies each _pragma on every new pooled connection.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS interview_sessions (
		session_id TEXT PRIMARY KEY,
		role TEXT NOT NULL,
		level TEXT NOT NULL,
		record_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_interview_sessions_updated ON interview_sessions(updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetSession retrieves and validates a session record.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT record_json FROM interview_sessions WHERE session_id = ?`, sessionID)

	var recordJSON string
	err := row.Scan(&recordJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(recordJSON), &session); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrInvalidSession, sessionID, err)
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}
	return &session, nil
}

// SaveSession creates or overwrites a session record.
// Retries with exponential backoff on SQLITE_BUSY.
func (s *SQLiteStore) SaveSession(ctx context.Context, session *domain.Session) error {
	record, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	query := `
	INSERT INTO interview_sessions (session_id, role, level, record_json, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		record_json = excluded.record_json,
		updated_at = excluded.updated_at`

	err = shared.RetryOnConflict(ctx, writeAttempts, writeRetryDelay, func() error {
		_, execErr := s.db.ExecContext(ctx, query,
			session.ID, session.Role, session.Level, string(record),
			session.CreatedAt.Unix(), session.UpdatedAt.Unix(),
		)
		if execErr != nil && shared.IsSQLiteConflictError(execErr) {
			slog.Debug("SaveSession hit SQLITE_BUSY, retrying", "session_id", session.ID)
		}
		return execErr
	})
	if err != nil {
		return fmt.Errorf("upsert session %s: %w", session.ID, err)
	}
	return nil
}

// DeleteSessionsOlderThan removes sessions whose last update is older than ttl.
func (s *SQLiteStore) DeleteSessionsOlderThan(ctx context.Context, ttl time.Duration) (int64, error) {
	threshold := time.Now().Add(-ttl).Unix()

	var deleted int64
	err := shared.RetryOnConflict(ctx, writeAttempts, writeRetryDelay, func() error {
		result, execErr := s.db.ExecContext(ctx,
			`DELETE FROM interview_sessions WHERE updated_at < ?`, threshold)
		if execErr != nil {
			return execErr
		}
		deleted, execErr = result.RowsAffected()
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return deleted, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
