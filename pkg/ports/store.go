package ports

import (
	"context"

	"github.com/aretw0/remnawizard/pkg/domain"
)

// SessionStore defines the interface for persisting wizard sessions.
// Implementations must make each call atomic per user.
type SessionStore interface {
	// Save persists the session for a given user.
	Save(ctx context.Context, userID domain.UserID, session *domain.Session) error

	// Load retrieves the session for a given user.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, userID domain.UserID) (*domain.Session, error)

	// Delete removes the session for a given user. Deleting a missing session is not an error.
	Delete(ctx context.Context, userID domain.UserID) error

	// List returns the users with a live session.
	List(ctx context.Context) ([]domain.UserID, error)
}
