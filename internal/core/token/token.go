// Package token issues and redeems stateless, HMAC-signed password reset
// tokens. A token binds an email address to the "password-reset" purpose and
// the moment it was issued; expiry is decided at redemption time from the
// embedded issue time, so no server-side table is needed. Each token also
// carries a stamp of the account's password hash at issue time, so it stops
// working once the password changes.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// PurposePasswordReset tags reset tokens so a token signed with the same
// secret for another feature (such as a session cookie) is never accepted.
const PurposePasswordReset = "password-reset"

// DefaultMaxAge is the reset link lifetime used when none is configured.
const DefaultMaxAge = time.Hour

// clockSkew tolerates issue times slightly ahead of the local clock.
const clockSkew = time.Minute

var (
	// ErrInvalid means the token is malformed, carries a bad signature, or
	// was issued for another purpose.
	ErrInvalid = errors.New("invalid token")
	// ErrExpired means the signature is good but the token is older than the
	// allowed age.
	ErrExpired = errors.New("token expired")
)

type Claims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	// Stamp fingerprints the password hash the token was issued against
	Stamp string `json:"stamp"`
	jwt.RegisteredClaims
}

type Service struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

type Option func(*Service)

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService builds a token service around the process-wide secret.
// algorithm is one of HS256, HS384 or HS512.
func NewService(secret string, algorithm string, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, errors.New("token secret must not be empty")
	}
	method, err := SigningMethod(algorithm)
	if err != nil {
		return nil, err
	}

	s := &Service{
		secret: []byte(secret),
		method: method,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SigningMethod resolves an HMAC algorithm name. An empty name means HS256.
func SigningMethod(algorithm string) (jwt.SigningMethod, error) {
	switch algorithm {
	case "", "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported signing algorithm: %s", algorithm)
	}
}

// Issue signs (email, now) for the password reset purpose. passwordHash is
// the account's current stored hash; see Current.
func (s *Service) Issue(email, passwordHash string) (string, error) {
	claims := Claims{
		Email:   email,
		Purpose: PurposePasswordReset,
		Stamp:   s.stamp(passwordHash),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now()),
			ID:       uuid.New().String(),
		},
	}

	tokenString, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Redeem verifies the token and returns its claims. It fails with
// ErrExpired when the token is older than maxAge and ErrInvalid on any
// signature, purpose or format mismatch. A non-positive maxAge means
// DefaultMaxAge. Callers still check Current against the stored hash.
func (s *Service) Redeem(tokenString string, maxAge time.Duration) (*Claims, error) {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if claims.Purpose != PurposePasswordReset || claims.Email == "" || claims.Stamp == "" || claims.IssuedAt == nil {
		return nil, ErrInvalid
	}

	now := s.now()
	issued := claims.IssuedAt.Time
	if issued.After(now.Add(clockSkew)) {
		return nil, ErrInvalid
	}
	if now.Sub(issued) > maxAge {
		return nil, ErrExpired
	}

	return &claims, nil
}

// Current reports whether claims were issued against passwordHash. bcrypt
// salts every hash, so any password change, including the reset the token
// was used for, makes older tokens stale.
func (s *Service) Current(claims *Claims, passwordHash string) bool {
	return hmac.Equal([]byte(claims.Stamp), []byte(s.stamp(passwordHash)))
}

func (s *Service) stamp(passwordHash string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte("password-reset-stamp:"))
	mac.Write([]byte(passwordHash))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)[:16])
}
