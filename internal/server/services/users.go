package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/stargram/internal/common"
	"github.com/dmitrijs2005/stargram/internal/logging"
	"github.com/dmitrijs2005/stargram/internal/server/models"
	"github.com/dmitrijs2005/stargram/internal/server/repositories/repomanager"
)

// reservedUserNames collide with fixed path segments under /feeds/.
var reservedUserNames = map[string]bool{
	"home": true,
}

// bcryptCost is lowered in tests.
var bcryptCost = bcrypt.DefaultCost

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sessions    *SessionService
	logger      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, sessions *SessionService, l logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		sessions:    sessions,
		logger:      l.With("module", "user_service"),
	}
}

// Register creates an account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, userName, password string) (*models.User, error) {
	if userName == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	}
	if reservedUserNames[userName] || strings.Contains(userName, "/") {
		return nil, fmt.Errorf("%w: username %q is not allowed", common.ErrorValidation, userName)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
		}
		return nil, internalError(err)
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{UserName: userName, Password: string(hash)})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, internalError(err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies the credentials and issues a session token. An unknown
// user and a wrong password both yield common.ErrorNotFound.
func (s *UserService) Login(ctx context.Context, userName, password string) (string, error) {
	user, err := s.repomanager.Users(s.db).GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", internalError(err)
	}

	if !checkPassword(user.Password, password) {
		return "", common.ErrorNotFound
	}

	return s.sessions.Issue(ctx, user)
}

// FindByName returns the user named userName or common.ErrorNotFound.
func (s *UserService) FindByName(ctx context.Context, userName string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, internalError(err)
	}
	return user, nil
}

// checkPassword accepts bcrypt hashes and, for rows imported from the
// legacy store, plaintext values compared in constant time.
func checkPassword(stored, candidate string) bool {
	if _, err := bcrypt.Cost([]byte(stored)); err == nil {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}
