package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/SanjayNarukulla/curt-url-shortner/internal/auth"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/metrics"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/model"
	"github.com/SanjayNarukulla/curt-url-shortner/internal/repository"
)

// Auth service errors.
var (
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthService handles registration and login.
type AuthService struct {
	store      Store
	tokens     *auth.TokenIssuer
	bcryptCost int
	logger     *slog.Logger
	metrics    metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(store Store, tokens *auth.TokenIssuer, bcryptCost int, logger *slog.Logger, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		store:      store,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
		metrics:    recorder,
	}
}

// Register creates a new account and returns a signed bearer token.
// Fails with ErrEmailTaken when the email is already registered.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return "", ErrEmailTaken
		}
		return "", fmt.Errorf("create user: %w", err)
	}

	s.metrics.IncUserRegistered()
	s.logger.Info("user_registered", "user_id", user.ID)

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	return token, nil
}

// Login verifies credentials and returns a freshly signed token.
// Unknown email and wrong password both map to ErrInvalidCredentials so
// the response does not reveal which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("look up user: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("verify password: %w", err)
	}
	if !match {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	return token, nil
}
