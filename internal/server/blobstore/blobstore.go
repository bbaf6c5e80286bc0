// Package blobstore keeps image bytes outside the database. It is used when
// the server runs with the "s3" blob backend.
package blobstore

import (
	"context"
	"fmt"
)

// Store is the object storage the upload pipeline writes images to.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	// Get returns the object bytes, or common.ErrorNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// ImageKey is the object key of the image at position of feedID.
func ImageKey(feedID string, position int) string {
	return fmt.Sprintf("feeds/%s/%d", feedID, position)
}
