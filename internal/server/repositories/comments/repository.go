// Package comments declares the repository contract for feed comments.
package comments

import (
	"context"

	"github.com/dmitrijs2005/stargram/internal/server/models"
)

type Repository interface {
	// Create inserts a comment by userID and fills ID and CreatedAt.
	Create(ctx context.Context, comment *models.Comment, userID int64) error
	// ListByFeedID returns the comments of a feed, oldest first.
	ListByFeedID(ctx context.Context, feedID string) ([]*models.Comment, error)
}
