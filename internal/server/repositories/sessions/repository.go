// Package sessions declares the repository contract for login sessions.
package sessions

import (
	"context"

	"github.com/dmitrijs2005/stargram/internal/server/models"
)

// Repository stores at most one session per user.
type Repository interface {
	// Upsert binds token to userID, replacing any previous token of that user
	// in a single statement.
	Upsert(ctx context.Context, userID int64, token string) error

	// Find returns the session holding token, or common.ErrorNotFound.
	Find(ctx context.Context, token string) (*models.Session, error)

	// DeleteByUserID removes the user's session. Deleting a missing session
	// is not an error.
	DeleteByUserID(ctx context.Context, userID int64) error
}
