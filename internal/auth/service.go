package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"accountsvc/internal/logging"
	"accountsvc/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUsernameRequired   = errors.New("username is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
)

const minPasswordLength = 8

// UserStore is the slice of the user persistence contract the auth service
// needs. *user.Repository implements it.
type UserStore interface {
	Create(ctx context.Context, u *user.User) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

// LoginResult carries the issued token pair together with the authenticated
// user record.
type LoginResult struct {
	User         *user.User
	AccessToken  string
	RefreshToken string
}

// Service composes the hasher, token service and user store into the
// register, login and refresh flows. It holds no mutable state; every method
// is a pure function of its inputs plus the injected configuration.
type Service struct {
	users  UserStore
	hasher PasswordHasher
	tokens TokenService
	logger *logging.Logger

	// dummyDigest is verified against when a login targets an unknown
	// email, so both failure paths cost one hash computation.
	dummyDigest string
}

func NewService(users UserStore, hasher PasswordHasher, tokens TokenService, logger *logging.Logger) *Service {
	dummyDigest, err := hasher.Hash("account-service-dummy-password")
	if err != nil {
		logger.Warn("failed to precompute dummy digest", "error", err.Error())
	}

	return &Service{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		logger:      logger,
		dummyDigest: dummyDigest,
	}
}

// Register creates a new user account with a hashed password. The email
// uniqueness check lives in the repository; a violation surfaces as
// user.ErrDuplicateEmail.
func (s *Service) Register(ctx context.Context, username, email, password string) (*user.User, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmailFormat
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.users.Create(ctx, &user.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return newUser, nil
}

// Authenticate verifies an email/password pair against the stored record.
// Unknown email and wrong password both return ErrInvalidCredentials; the
// caller can never tell which one failed.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// Burn a hash so the unknown-email path is not observably
			// faster than a wrong password.
			_, _ = s.hasher.Verify(password, s.dummyDigest)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := s.hasher.Verify(password, existing.PasswordHash)
	if err != nil && !errors.Is(err, ErrMalformedDigest) {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return existing, nil
}

// Login authenticates the credentials and issues an access/refresh token
// pair bound to the user.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	existing, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	accessToken, _, err := s.tokens.IssueAccessToken(existing.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refreshToken, _, err := s.tokens.IssueRefreshToken(existing.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", existing.ID)

	return &LoginResult{
		User:         existing,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh validates a refresh-class token and mints a new access token for
// its subject. Tokens are self-contained, so no store is consulted.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.tokens.Validate(refreshToken, TokenClassRefresh)
	if err != nil {
		return "", err
	}

	accessToken, _, err := s.tokens.IssueAccessToken(userID)
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}

	s.logger.Info("access token refreshed", "user_id", userID)

	return accessToken, nil
}
