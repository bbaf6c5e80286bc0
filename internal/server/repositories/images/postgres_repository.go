package images

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/stargram/internal/common"
	"github.com/dmitrijs2005/stargram/internal/dbx"
	"github.com/dmitrijs2005/stargram/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, image *models.Image) error {
	query := `
		INSERT INTO images (feed_id, position, content_type, data, storage_key)
		VALUES ($1, $2, $3, $4, $5)
	`
	var data any
	if image.StorageKey == "" {
		data = image.Data
	}
	key := sql.NullString{String: image.StorageKey, Valid: image.StorageKey != ""}

	if _, err := r.db.ExecContext(ctx, query, image.FeedID, image.Position, image.ContentType, data, key); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, feedID string, position int) (*models.Image, error) {
	query := `
		SELECT feed_id, position, content_type, data, storage_key
		FROM images
		WHERE feed_id = $1 AND position = $2
	`
	image := &models.Image{}
	var key sql.NullString
	err := r.db.QueryRowContext(ctx, query, feedID, position).
		Scan(&image.FeedID, &image.Position, &image.ContentType, &image.Data, &key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	image.StorageKey = key.String

	return image, nil
}
