package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/cryptox"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/repomanager"
)

// Messages returned alongside successful account operations.
const (
	MessageRegistered = "User registered successfully!"
	MessageLoggedIn   = "Login successful!"
)

// Constraint names of the users table, used to tell a lost registration race
// on username from one on email.
const (
	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"
)

// AuthResult is what a successful Register or Authenticate hands back.
type AuthResult struct {
	UserID   int64
	UserName string
	Message  string
}

type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      cryptox.PasswordHasher
	log         logging.Logger
	now         func() time.Time
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, hasher cryptox.PasswordHasher, log logging.Logger) *AccountService {
	return &AccountService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		log:         log.With("module", "accounts"),
		now:         time.Now,
	}
}

// Register creates an account. A taken username is reported before a taken
// email; both checks are repeated by the store's unique constraints.
func (s *AccountService) Register(ctx context.Context, username, email, rawPassword string) (*AuthResult, error) {
	if err := validateCredentials(username, email, rawPassword); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	taken, err := repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, s.internal(ctx, "username lookup", err)
	}
	if taken {
		return nil, common.ErrUsernameTaken
	}

	taken, err = repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, s.internal(ctx, "email lookup", err)
	}
	if taken {
		return nil, common.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(rawPassword)
	if err != nil {
		return nil, s.internal(ctx, "hash password", err)
	}

	user, err := repo.Create(ctx, &models.User{
		UserName:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		var ce *common.ConstraintError
		if errors.As(err, &ce) {
			switch ce.Constraint {
			case usernameConstraint:
				return nil, common.ErrUsernameTaken
			case emailConstraint:
				return nil, common.ErrEmailTaken
			}
		}
		return nil, s.internal(ctx, "create user", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)

	return &AuthResult{UserID: user.ID, UserName: user.UserName, Message: MessageRegistered}, nil
}

// Authenticate checks the credentials. An unknown username and a wrong
// password produce the same ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, username, rawPassword string) (*AuthResult, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, s.internal(ctx, "user lookup", err)
	}

	if !s.hasher.Verify(rawPassword, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	return &AuthResult{UserID: user.ID, UserName: user.UserName, Message: MessageLoggedIn}, nil
}

// Delete removes the caller's account together with all of its items in one
// transaction.
func (s *AccountService) Delete(ctx context.Context, callerID int64) error {
	var removedItems int64

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repomanager.Items(tx).DeleteByUser(ctx, callerID)
		if err != nil {
			return fmt.Errorf("error deleting items: %w", err)
		}
		removedItems = n

		deleted, err := s.repomanager.Users(tx).Delete(ctx, callerID)
		if err != nil {
			return fmt.Errorf("error deleting user: %w", err)
		}
		if !deleted {
			return common.ErrNotFoundOrNotOwned
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, common.ErrNotFoundOrNotOwned) {
			return err
		}
		return s.internal(ctx, "delete account", err)
	}

	s.log.Info(ctx, "account deleted", "user_id", callerID, "items", removedItems)
	return nil
}

func (s *AccountService) internal(ctx context.Context, op string, err error) error {
	s.log.Error(ctx, op+" failed", "error", err)
	return fmt.Errorf("%w: %s: %v", common.ErrorInternal, op, err)
}
