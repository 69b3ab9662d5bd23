package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jjudge-oj/userauth/internal/auth"
	"github.com/jjudge-oj/userauth/internal/logging"
	"github.com/jjudge-oj/userauth/internal/store"
	"github.com/jjudge-oj/userauth/types"
)

// defaultPublishTimeout bounds how long a registration waits on the event broker.
const defaultPublishTimeout = 3 * time.Second

// UserRepository defines persistence operations for users.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (types.User, error)
	FindByID(ctx context.Context, id string) (types.User, error)
	Insert(ctx context.Context, user types.User) (types.User, error)
	FindAll(ctx context.Context) ([]types.User, error)
}

// TokenIssuer issues and verifies access tokens for a user id.
type TokenIssuer interface {
	Issue(subject string) (string, error)
	Verify(token string) (string, error)
}

// EventPublisher announces user lifecycle events.
type EventPublisher interface {
	UserRegistered(ctx context.Context, user types.User) (string, error)
}

type RegisterInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type LoginInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// UserService encapsulates the register, login and listing use-cases.
type UserService struct {
	repo     UserRepository
	hasher   auth.PasswordHasher
	tokens   TokenIssuer
	events   EventPublisher
	validate *validator.Validate

	publishTimeout time.Duration
}

// NewUserService wires the service. events may be nil.
func NewUserService(repo UserRepository, hasher auth.PasswordHasher, tokens TokenIssuer, events EventPublisher) *UserService {
	return &UserService{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		events:   events,
		validate: validator.New(validator.WithRequiredStructEnabled()),

		publishTimeout: defaultPublishTimeout,
	}
}

// Register creates an account. It does not log the user in.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (types.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return types.User{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return types.User{}, ErrDuplicateUser
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, fmt.Errorf("find user by email: %w", err)
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return types.User{}, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		return types.User{}, err
	}

	user, err := s.repo.Insert(ctx, types.User{
		Username:     in.Name,
		Email:        in.Email,
		PasswordHash: hashed,
	})
	if err != nil {
		// Lost the race against a concurrent registration for this email.
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, ErrDuplicateUser
		}
		return types.User{}, fmt.Errorf("insert user: %w", err)
	}

	s.announce(ctx, user)
	return user.Public(), nil
}

// Login checks credentials and returns a signed token for the user.
func (s *UserService) Login(ctx context.Context, in LoginInput) (string, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	user, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("find user by email: %w", err)
	}

	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(user.ID)
}

// ListUsers returns every user with the password hash removed.
func (s *UserService) ListUsers(ctx context.Context) ([]types.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		users[i] = users[i].Public()
	}
	return users, nil
}

// GetByID loads one user with the password hash removed.
func (s *UserService) GetByID(ctx context.Context, id string) (types.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUserNotFound
		}
		return types.User{}, fmt.Errorf("find user by id: %w", err)
	}
	return user.Public(), nil
}

// announce publishes the registration event within publishTimeout. The
// account already exists, so a broker failure is only logged.
func (s *UserService) announce(ctx context.Context, user types.User) {
	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()

	if _, err := s.events.UserRegistered(ctx, user); err != nil {
		logging.FromContext(ctx).Warn("publish user registered event failed",
			slog.String("user_id", user.ID),
			slog.Any("err", err),
		)
	}
}
