package feeds

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

func (r *PostgresRepository) Create(ctx context.Context, feed *models.Feed) error {
	query := `
		INSERT INTO feeds (id, user_id, caption, image_count)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query, feed.ID, feed.UserID, feed.Caption, feed.ImageCount).Scan(&feed.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Feed, error) {
	query := `
		SELECT id, user_id, caption, image_count, created_at
		FROM feeds
		WHERE id = $1
	`
	f := &models.Feed{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&f.ID, &f.UserID, &f.Caption, &f.ImageCount, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.FeedWithUser, error) {
	query := `
		SELECT f.id, u.username, f.caption, f.image_count, f.created_at
		FROM feeds f
		JOIN users u ON u.id = f.user_id
		ORDER BY f.created_at DESC
	`
	return r.list(ctx, query)
}

func (r *PostgresRepository) ListByUserName(ctx context.Context, userName string) ([]*models.FeedWithUser, error) {
	query := `
		SELECT f.id, u.username, f.caption, f.image_count, f.created_at
		FROM feeds f
		JOIN users u ON u.id = f.user_id
		WHERE u.username = $1
		ORDER BY f.created_at DESC
	`
	return r.list(ctx, query, userName)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.FeedWithUser, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.FeedWithUser, 0)
	for rows.Next() {
		item := &models.FeedWithUser{}
		if err := rows.Scan(&item.ID, &item.UserName, &item.Caption, &item.ImageCount, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
