// Package sessions declares the server-side session store contract with
// PostgreSQL and Redis implementations. Stores key sessions by the SHA-256
// hash of the client handle; the handle itself is never persisted.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/clickstore/internal/server/models"
)

// Repository defines operations for issuing, resolving and revoking sessions.
type Repository interface {
	// Create stores a new session.
	Create(ctx context.Context, s *models.Session) error

	// Find looks a session up by its token hash. Implementations return
	// common.ErrorNotFound when the session is absent.
	Find(ctx context.Context, tokenHash string) (*models.Session, error)

	// Touch records activity and moves the expiry forward.
	Touch(ctx context.Context, tokenHash string, lastSeen, expiresAt time.Time) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, tokenHash string) error

	// DeleteByUser removes every session of userID.
	DeleteByUser(ctx context.Context, userID int64) error

	// DeleteExpired purges sessions whose expiry is not after now and
	// reports how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
