package domain

import (
	"fmt"

	"github.com/containerd/errdefs"
)

// DefaultLevel is used when a session is started without a level.
const DefaultLevel = "entry"

var (
	// ErrSessionNotFound is returned when no session exists for an id.
	ErrSessionNotFound = fmt.Errorf("session not found: %w", errdefs.ErrNotFound)

	// ErrRoleNotFound is returned when the question bank has no such role.
	ErrRoleNotFound = fmt.Errorf("role not found: %w", errdefs.ErrNotFound)

	// ErrPoolEmpty is returned when a resolved role/level has no questions.
	ErrPoolEmpty = fmt.Errorf("no questions found for this role/level: %w", errdefs.ErrFailedPrecondition)

	// ErrInvalidSession is returned when a stored session record fails validation on load.
	ErrInvalidSession = fmt.Errorf("invalid session record: %w", errdefs.ErrDataLoss)
)
