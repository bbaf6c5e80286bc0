package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/stargram/internal/common"
	"github.com/dmitrijs2005/stargram/internal/logging"
	"github.com/dmitrijs2005/stargram/internal/server/models"
	"github.com/dmitrijs2005/stargram/internal/server/repositories/repomanager"
)

type CommentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewCommentService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *CommentService {
	return &CommentService{
		db:          db,
		repomanager: m,
		logger:      l.With("module", "comment_service"),
	}
}

// Create adds a comment by user to feedID.
func (s *CommentService) Create(ctx context.Context, user *models.User, feedID, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: empty comment", common.ErrorValidation)
	}
	if _, err := uuid.Parse(feedID); err != nil {
		return nil, common.ErrorNotFound
	}

	if _, err := s.repomanager.Feeds(s.db).GetByID(ctx, feedID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, internalError(err)
	}

	comment := &models.Comment{FeedID: feedID, UserName: user.UserName, Content: content}
	if err := s.repomanager.Comments(s.db).Create(ctx, comment, user.ID); err != nil {
		return nil, internalError(err)
	}

	return comment, nil
}

// List returns the comments of feedID, oldest first. An unknown feed has
// no comments.
func (s *CommentService) List(ctx context.Context, feedID string) ([]*models.Comment, error) {
	if _, err := uuid.Parse(feedID); err != nil {
		return []*models.Comment{}, nil
	}

	comments, err := s.repomanager.Comments(s.db).ListByFeedID(ctx, feedID)
	if err != nil {
		return nil, internalError(err)
	}
	return comments, nil
}
