// Package session keeps the authenticated identity in a signed cookie and
// carries flash notices between a redirect and the page that follows it.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/martijn/jobboard/internal/core/domain"
	"github.com/martijn/jobboard/internal/core/token"
)

const (
	CookieName = "jobboard_session"
	// PurposeSession keeps session cookies and reset tokens apart even though
	// both are signed with the same secret.
	PurposeSession = "session"

	DefaultLifetime = 30 * 24 * time.Hour
)

type Claims struct {
	UserID     int64  `json:"uid"`
	Username   string `json:"name"`
	IsEmployer bool   `json:"employer"`
	Persistent bool   `json:"persistent"`
	Purpose    string `json:"purpose"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret   []byte
	method   jwt.SigningMethod
	lifetime time.Duration
	secure   bool
	now      func() time.Time
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager builds a session manager signing with secret. secure adds the
// Secure attribute to every cookie it writes.
func NewManager(secret, algorithm string, lifetime time.Duration, secure bool, opts ...Option) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("session secret must not be empty")
	}
	method, err := token.SigningMethod(algorithm)
	if err != nil {
		return nil, err
	}
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}

	m := &Manager{
		secret:   []byte(secret),
		method:   method,
		lifetime: lifetime,
		secure:   secure,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Establish replaces whatever session the client holds with a fresh one for
// user. A persistent session outlives the browser; otherwise the cookie is
// dropped when the browser closes.
func (m *Manager) Establish(c *gin.Context, user *domain.User, persistent bool) error {
	now := m.now()
	claims := Claims{
		UserID:     user.ID,
		Username:   user.Username,
		IsEmployer: user.IsEmployer,
		Persistent: persistent,
		Purpose:    PurposeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.lifetime)),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}

	maxAge := 0
	if persistent {
		maxAge = int(m.lifetime / time.Second)
	}
	m.setCookie(c, CookieName, signed, maxAge)
	return nil
}

// Clear expires the session cookie. Calling it without a session is fine.
func (m *Manager) Clear(c *gin.Context) {
	m.setCookie(c, CookieName, "", -1)
}

// Load returns the session carried by the request, if it is signed by us,
// unexpired and tagged as a session.
func (m *Manager) Load(c *gin.Context) (*Claims, bool) {
	raw, err := c.Cookie(CookieName)
	if err != nil || raw == "" {
		return nil, false
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	var claims Claims
	if _, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}); err != nil {
		return nil, false
	}
	if claims.Purpose != PurposeSession || claims.UserID == 0 {
		return nil, false
	}
	return &claims, true
}

// setCookie writes a cookie, dropping any Set-Cookie for the same name that
// was already queued on this response.
func (m *Manager) setCookie(c *gin.Context, name, value string, maxAge int) {
	header := c.Writer.Header()
	prefix := name + "="
	var kept []string
	for _, v := range header.Values("Set-Cookie") {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	header.Del("Set-Cookie")
	for _, v := range kept {
		header.Add("Set-Cookie", v)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", m.secure, true)
}
