// Package images declares the repository contract for feed images.
package images

import (
	"context"

	"github.com/dmitrijs2005/stargram/internal/server/models"
)

type Repository interface {
	// Create stores one image row. Positions are unique per feed.
	Create(ctx context.Context, image *models.Image) error
	// Get returns the image at position of feedID, or common.ErrorNotFound.
	Get(ctx context.Context, feedID string, position int) (*models.Image, error)
}
