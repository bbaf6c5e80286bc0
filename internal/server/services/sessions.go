package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/stargram/internal/common"
	"github.com/dmitrijs2005/stargram/internal/logging"
	"github.com/dmitrijs2005/stargram/internal/server/config"
	"github.com/dmitrijs2005/stargram/internal/server/models"
	"github.com/dmitrijs2005/stargram/internal/server/repositories/repomanager"
)

// newSessionToken is a seam for tests.
var newSessionToken = func() (string, error) {
	return common.MakeRandHexString(common.SessionTokenBytes)
}

// SessionService issues and resolves the opaque tokens clients present in
// the Authentication header.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	lifetime    time.Duration
	logger      logging.Logger
	now         func() time.Time
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) *SessionService {
	return &SessionService{
		db:          db,
		repomanager: m,
		lifetime:    cfg.SessionLifetime,
		logger:      l.With("module", "session_service"),
		now:         time.Now,
	}
}

// Issue creates a fresh token for user and makes it the user's only
// session; any earlier token stops resolving.
func (s *SessionService) Issue(ctx context.Context, user *models.User) (string, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", internalError(err)
	}

	if err := s.repomanager.Sessions(s.db).Upsert(ctx, user.ID, token); err != nil {
		return "", internalError(err)
	}

	return token, nil
}

// Resolve maps token to its user. Every failure, storage errors included,
// is reported as common.ErrorUnauthorized; the cause is only logged.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrorUnauthorized
	}

	session, err := s.repomanager.Sessions(s.db).Find(ctx, token)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "session lookup failed", "error", err)
		}
		return nil, common.ErrorUnauthorized
	}

	if s.lifetime > 0 && s.now().Sub(session.CreatedAt) > s.lifetime {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, session.UserID)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "session user lookup failed", "error", err, "user_id", session.UserID)
		}
		return nil, common.ErrorUnauthorized
	}

	return user, nil
}

// Revoke ends the session of userID, if any.
func (s *SessionService) Revoke(ctx context.Context, userID int64) error {
	if err := s.repomanager.Sessions(s.db).DeleteByUserID(ctx, userID); err != nil {
		return internalError(err)
	}
	return nil
}
