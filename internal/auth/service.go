package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizdeck/quizdeck/internal/auth/jwt"
	"github.com/quizdeck/quizdeck/internal/errs"
)

// UserStore exposes the account persistence operations the service needs.
type UserStore interface {
	Create(ctx context.Context, email, name, passwordHash string) (Credentials, error)
	GetByEmail(ctx context.Context, email string) (Credentials, error)
	GetByID(ctx context.Context, userID uuid.UUID) (Credentials, error)
}

// Service handles registration, login, and token validation.
type Service struct {
	users    UserStore
	tokenMgr *jwt.Manager
	validate *validator.Validate
	logger   zerolog.Logger
}

// ServiceOptions configures the auth service.
type ServiceOptions struct {
	TokenConfig jwt.TokenConfig
}

// NewService creates an authentication service.
func NewService(users UserStore, opts ServiceOptions, logger zerolog.Logger) *Service {
	return &Service{
		users:    users,
		tokenMgr: jwt.NewManager(opts.TokenConfig),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With().Str("component", "auth_service").Logger(),
	}
}

// Register creates a new account. A duplicate email surfaces as a conflict.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (User, TokenPair, error) {
	if err := s.validate.Struct(req); err != nil {
		return User{}, TokenPair{}, errs.Validationf("email, password and name are required")
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return User{}, TokenPair{}, err
	}

	creds, err := s.users.Create(ctx, req.Email, req.Name, passwordHash)
	if err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return User{}, TokenPair{}, errs.Conflictf("email %s is already registered", req.Email)
		}
		return User{}, TokenPair{}, err
	}

	tokens, err := s.issueTokens(creds.User)
	if err != nil {
		return User{}, TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}

	s.logger.Info().Str("user_id", creds.ID.String()).Str("email", creds.Email).Msg("user registered")
	return creds.User, tokens, nil
}

// Login authenticates with email/password. Any mismatch, including an unknown
// email, reports the same unauthorized error.
func (s *Service) Login(ctx context.Context, req LoginRequest) (User, TokenPair, error) {
	if err := s.validate.Struct(req); err != nil {
		return User{}, TokenPair{}, errs.Validationf("email and password are required")
	}

	creds, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return User{}, TokenPair{}, fmt.Errorf("invalid credentials: %w", errs.ErrUnauthorized)
		}
		return User{}, TokenPair{}, err
	}
	if creds.PasswordHash == "" {
		return User{}, TokenPair{}, fmt.Errorf("invalid credentials: %w", errs.ErrUnauthorized)
	}
	if err := VerifyPassword(creds.PasswordHash, req.Password); err != nil {
		return User{}, TokenPair{}, fmt.Errorf("invalid credentials: %w", errs.ErrUnauthorized)
	}

	tokens, err := s.issueTokens(creds.User)
	if err != nil {
		return User{}, TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}

	s.logger.Info().Str("user_id", creds.ID.String()).Msg("user logged in")
	return creds.User, tokens, nil
}

// LoginWithProfile resolves a verified OAuth profile to a local account,
// creating a passwordless one on first sign-in.
func (s *Service) LoginWithProfile(ctx context.Context, email, name string) (User, TokenPair, error) {
	creds, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, errs.ErrNotFound) {
		creds, err = s.users.Create(ctx, email, name, "")
	}
	if err != nil {
		return User{}, TokenPair{}, err
	}

	tokens, err := s.issueTokens(creds.User)
	if err != nil {
		return User{}, TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}

	s.logger.Info().Str("user_id", creds.ID.String()).Msg("oauth sign-in")
	return creds.User, tokens, nil
}

// GetUser fetches the safe view of an account.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (User, error) {
	creds, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	return creds.User, nil
}

// ValidateToken verifies a bearer token and returns its claims.
func (s *Service) ValidateToken(token string) (*jwt.Claims, error) {
	return s.tokenMgr.Validate(token)
}

func (s *Service) issueTokens(u User) (TokenPair, error) {
	token, err := s.tokenMgr.Generate(jwt.Identity{ID: u.ID, Email: u.Email, Name: u.Name})
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken: token,
		ExpiresIn:   int64(s.tokenMgr.TTL().Seconds()),
	}, nil
}
