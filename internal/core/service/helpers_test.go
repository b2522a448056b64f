package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/martijn/jobboard/internal/core/domain"
	"github.com/martijn/jobboard/internal/core/repository"
	"github.com/martijn/jobboard/internal/core/token"
	"github.com/martijn/jobboard/internal/infrastructure/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type sentMail struct {
	email string
	link  string
}

// captureMailer records reset links instead of sending them.
type captureMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *captureMailer) Deliver(ctx context.Context, email, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{email: email, link: link})
	return nil
}

func (m *captureMailer) messages() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

type stubThrottle struct {
	allow bool
	err   error
	keys  []string
}

func (s *stubThrottle) Allow(ctx context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allow, s.err
}

type testEnv struct {
	db        *sqlite.DB
	users     repository.UserRepository
	jobs      repository.JobRepository
	responses repository.ResponseRepository
	tokens    *token.Service
	mailer    *captureMailer
	auth      *AuthService
	jobSvc    *JobService
	profiles  *ProfileService
}

func setupTestEnv(t *testing.T, throttle Throttle) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := token.NewService("service-test-secret", "HS256")
	require.NoError(t, err)

	env := &testEnv{
		db:        db,
		users:     sqlite.NewUserRepository(db),
		jobs:      sqlite.NewJobRepository(db),
		responses: sqlite.NewResponseRepository(db),
		tokens:    tokens,
		mailer:    &captureMailer{},
	}
	env.auth = NewAuthService(env.users, NewCredentials(bcrypt.MinCost), tokens, env.mailer, throttle, time.Hour)
	env.jobSvc = NewJobService(env.jobs, env.responses)
	env.profiles = NewProfileService(env.users, env.jobs, env.responses)
	return env
}

func (env *testEnv) register(t *testing.T, username string, employer bool, email string) *domain.User {
	t.Helper()
	user, err := env.auth.Register(context.Background(), RegisterInput{
		Username:             username,
		Password:             "pw123456",
		PasswordConfirmation: "pw123456",
		Employer:             employer,
		Email:                email,
	})
	require.NoError(t, err)
	return user
}

func linkFor(tok string) string {
	return "http://jobs.test/reset_password/" + tok
}

func tokenFromLink(link string) string {
	const prefix = "http://jobs.test/reset_password/"
	return link[len(prefix):]
}
