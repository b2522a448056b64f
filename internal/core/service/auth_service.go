package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/martijn/jobboard/internal/core/domain"
	"github.com/martijn/jobboard/internal/core/repository"
	"github.com/martijn/jobboard/internal/core/token"
	"github.com/rs/zerolog/log"
)

const (
	UsernameMinLength = 3
	UsernameMaxLength = 32
	PasswordMinLength = 6
	// bcrypt ignores everything past 72 bytes
	PasswordMaxBytes = 72
)

var validate = validator.New()

type AuthService struct {
	userRepo    repository.UserRepository
	credentials *Credentials
	tokens      *token.Service
	mailer      Mailer
	throttle    Throttle
	resetMaxAge time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	credentials *Credentials,
	tokens *token.Service,
	mailer Mailer,
	throttle Throttle,
	resetMaxAge time.Duration,
) *AuthService {
	if resetMaxAge <= 0 {
		resetMaxAge = token.DefaultMaxAge
	}
	return &AuthService{
		userRepo:    userRepo,
		credentials: credentials,
		tokens:      tokens,
		mailer:      mailer,
		throttle:    throttle,
		resetMaxAge: resetMaxAge,
	}
}

type RegisterInput struct {
	Username             string
	Password             string
	PasswordConfirmation string
	Employer             bool
	Email                string
}

// Register creates the account in a single insert. A taken username is
// reported by the store's unique index as ErrUsernameTaken.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password, in.PasswordConfirmation); err != nil {
		return nil, err
	}

	var email *string
	if e := strings.TrimSpace(in.Email); e != "" {
		if err := validateEmail(e); err != nil {
			return nil, err
		}
		email = &e
	}

	hash, err := s.credentials.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := domain.NewUser(username, hash, in.Employer, email)
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, storeError(err, "register user")
	}

	log.Ctx(ctx).Info().Int64("user_id", user.ID).Str("username", user.Username).
		Bool("employer", user.IsEmployer).Msg("user registered")
	return user, nil
}

// Login returns ErrInvalidCredentials both for unknown usernames and for
// wrong passwords.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		s.credentials.burn(password)
		log.Ctx(ctx).Info().Str("username", username).Msg("login failed")
		return nil, ErrInvalidCredentials
	}

	if !s.credentials.Verify(user.Password, password) {
		log.Ctx(ctx).Info().Str("username", username).Msg("login failed")
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Identify loads the user a session points at.
func (s *AuthService) Identify(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "identify user")
	}
	return user, nil
}

// RequestReset mails a reset link when email belongs to an account. The
// result is the same whether or not it does, so callers cannot test for
// registered addresses. linkFor turns a token into an absolute URL.
func (s *AuthService) RequestReset(ctx context.Context, email string, linkFor func(token string) string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return NewValidationError("email", "Email is required")
	}
	if err := validateEmail(email); err != nil {
		return err
	}

	logger := log.Ctx(ctx)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Info().Msg("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to look up email: %w", err)
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, email)
		if err != nil {
			logger.Warn().Err(err).Msg("reset throttle unavailable, allowing request")
		} else if !allowed {
			logger.Info().Msg("password reset throttled")
			return nil
		}
	}

	tok, err := s.tokens.Issue(email, user.Password)
	if err != nil {
		return err
	}

	// A delivery failure must look like any other outcome to the requester
	if err := s.mailer.Deliver(ctx, email, linkFor(tok)); err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to deliver reset link")
		return nil
	}

	logger.Info().Int64("user_id", user.ID).Msg("password reset link issued")
	return nil
}

// CheckResetToken reports whether a reset link is still usable and returns
// the account it resets. A link is spent once the password changes.
func (s *AuthService) CheckResetToken(ctx context.Context, tok string) (*domain.User, error) {
	claims, err := s.tokens.Redeem(tok, s.resetMaxAge)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOrExpiredLink, err)
	}

	user, err := s.userRepo.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidOrExpiredLink
		}
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	if !s.tokens.Current(claims, user.Password) {
		return nil, fmt.Errorf("%w: password changed since issue", ErrInvalidOrExpiredLink)
	}
	return user, nil
}

// ResetWithToken stores a new password for the account the token was issued
// to. It does not log anybody in.
func (s *AuthService) ResetWithToken(ctx context.Context, tok, password, confirmation string) error {
	user, err := s.CheckResetToken(ctx, tok)
	if err != nil {
		return err
	}
	if err := validatePassword(password, confirmation); err != nil {
		return err
	}

	hash, err := s.credentials.Hash(password)
	if err != nil {
		return err
	}

	// Swap only from the hash the token was checked against; a concurrent
	// redemption of the same link loses here.
	if err := s.userRepo.ReplacePassword(ctx, user.ID, user.Password, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidOrExpiredLink
		}
		return storeError(err, "update password")
	}

	log.Ctx(ctx).Info().Int64("user_id", user.ID).Msg("password reset")
	return nil
}

// SetPassword replaces a user's password without a token. Used by the
// users CLI.
func (s *AuthService) SetPassword(ctx context.Context, username, password, confirmation string) error {
	if err := validatePassword(password, confirmation); err != nil {
		return err
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return storeError(err, "find user")
	}
	return s.setPassword(ctx, user, password)
}

func (s *AuthService) setPassword(ctx context.Context, user *domain.User, password string) error {
	hash, err := s.credentials.Hash(password)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return storeError(err, "update password")
	}
	return nil
}

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < UsernameMinLength || n > UsernameMaxLength {
		return NewValidationError("username",
			fmt.Sprintf("Username must be between %d and %d characters", UsernameMinLength, UsernameMaxLength))
	}
	return nil
}

func validatePassword(password, confirmation string) error {
	if utf8.RuneCountInString(password) < PasswordMinLength {
		return NewValidationError("password",
			fmt.Sprintf("Password must be at least %d characters", PasswordMinLength))
	}
	if len(password) > PasswordMaxBytes {
		return NewValidationError("password", "Password is too long")
	}
	if password != confirmation {
		return NewValidationError("password2", "Passwords do not match")
	}
	return nil
}

func validateEmail(email string) error {
	if err := validate.Var(email, "email"); err != nil {
		return NewValidationError("email", "Invalid email address")
	}
	return nil
}
