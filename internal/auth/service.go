package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/sweatmarket-server/internal/store"
	"github.com/vovakirdan/sweatmarket-server/internal/validation"
)

var (
	// ErrInvalidCredentials is returned when the identifier/password pair doesn't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when the username is taken.
	ErrUserExists = errors.New("user already exists")
	// ErrEmailExists is returned when the email is taken.
	ErrEmailExists = errors.New("email already registered")
)

// SignupInput is the data needed to create an account.
type SignupInput struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,strongpwd"`
}

// Session is a signed-in user with the token proving it.
type Session struct {
	Token string
	User  *store.User
}

// Service provides authentication operations.
type Service struct {
	store     store.UserStore
	jwtConfig *JWTConfig
	log       *zerolog.Logger
}

// NewService creates a new authentication service.
func NewService(userStore store.UserStore, jwtConfig *JWTConfig, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		store:     userStore,
		jwtConfig: jwtConfig,
		log:       logger,
	}
}

// Signup creates an account and signs it in.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if _, err := s.store.GetUserByUsername(ctx, in.Username); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup username: %w", err)
	}

	var email *string
	if in.Email != "" {
		if _, err := s.store.GetUserByEmail(ctx, in.Email); err == nil {
			return nil, ErrEmailExists
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("lookup email: %w", err)
		}
		email = &in.Email
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.store.CreateUser(ctx, in.Username, email, hash)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user signed up")
	return s.issue(user)
}

// Login signs in by username or email.
func (s *Service) Login(ctx context.Context, identifier, password string) (*Session, error) {
	identifier = strings.TrimSpace(identifier)

	var (
		user *store.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.store.GetUserByEmail(ctx, identifier)
	} else {
		user, err = s.store.GetUserByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !user.IsActive || !PasswordMatches(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// Identify resolves a token to the user id it was issued for.
func (s *Service) Identify(token string) (int64, bool) {
	if token == "" {
		return 0, false
	}
	claims, err := ValidateToken(s.jwtConfig, token)
	if err != nil {
		s.log.Debug().Err(err).Msg("token rejected")
		return 0, false
	}
	return claims.UserID, true
}

// User returns the account of a signed-in user.
func (s *Service) User(ctx context.Context, userID int64) (*store.User, error) {
	return s.store.GetUserByID(ctx, userID)
}

func (s *Service) issue(user *store.User) (*Session, error) {
	token, err := GenerateToken(s.jwtConfig, user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &Session{Token: token, User: user}, nil
}
