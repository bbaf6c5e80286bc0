// Package feeds declares the repository contract for feeds.
package feeds

import (
	"context"

	"github.com/dmitrijs2005/stargram/internal/server/models"
)

type Repository interface {
	// Create inserts feed and fills CreatedAt.
	Create(ctx context.Context, feed *models.Feed) error
	// GetByID returns the feed or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.Feed, error)
	// ListAll returns every feed with its author, newest first.
	ListAll(ctx context.Context) ([]*models.FeedWithUser, error)
	// ListByUserName returns the feeds of one author, newest first.
	ListByUserName(ctx context.Context, userName string) ([]*models.FeedWithUser, error)
}
