// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/ashureev/interview-coach/internal/domain"
)

// Repository persists interview session records.
type Repository interface {
	// GetSession loads a session. It returns domain.ErrSessionNotFound when
	// no record exists and domain.ErrInvalidSession when the record fails
	// validation.
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// SaveSession creates or fully overwrites a session record.
	SaveSession(ctx context.Context, session *domain.Session) error

	// DeleteSessionsOlderThan removes sessions not updated within ttl.
	DeleteSessionsOlderThan(ctx context.Context, ttl time.Duration) (int64, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
