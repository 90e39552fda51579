package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/catarina/secure-login/pkg/domain"
)

// RegistrationStore is the subset of user persistence registration needs.
type RegistrationStore interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *domain.User) error
}

// UserService creates accounts.
type UserService struct {
	logger *slog.Logger
	users  RegistrationStore
}

// NewUserService creates a user registration service.
func NewUserService(logger *slog.Logger, users RegistrationStore) *UserService {
	return &UserService{logger: logger, users: users}
}

// Register creates a new user with a hashed password and zeroed brute-force
// state. Duplicate username and email are distinct result kinds so handlers
// can report them precisely.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	s.logger.Info("registering new user", "username", username)

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUsernameAlreadyExists
	}

	exists, err = s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "username", username)
	return user, nil
}
