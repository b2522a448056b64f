package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/martijn/jobboard/internal/api/middleware"
	"github.com/martijn/jobboard/internal/api/session"
	"github.com/martijn/jobboard/internal/api/templates"
	"github.com/martijn/jobboard/internal/core/repository"
	"github.com/martijn/jobboard/internal/core/service"
	"github.com/martijn/jobboard/internal/core/token"
	"github.com/martijn/jobboard/internal/infrastructure/sqlite"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "api-test-secret"

// captureMailer keeps reset links instead of sending them
type captureMailer struct {
	mu    sync.Mutex
	links map[string]string
}

func (m *captureMailer) Deliver(ctx context.Context, email, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[email] = link
	return nil
}

func (m *captureMailer) link(email string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[email]
	return l, ok
}

// testEnv holds all test dependencies
type testEnv struct {
	db        *sqlite.DB
	router    *gin.Engine
	mailer    *captureMailer
	users     repository.UserRepository
	jobs      repository.JobRepository
	responses repository.ResponseRepository
	sessions  *session.Manager
	auth      *service.AuthService
	jobSvc    *service.JobService
	profiles  *service.ProfileService
}

// setupTestEnv creates a test environment with in-memory SQLite database
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	userRepo := sqlite.NewUserRepository(db)
	jobRepo := sqlite.NewJobRepository(db)
	responseRepo := sqlite.NewResponseRepository(db)

	tokens, err := token.NewService(testSecret, "HS256")
	if err != nil {
		t.Fatalf("failed to create token service: %v", err)
	}
	sessions, err := session.NewManager(testSecret, "HS256", 30*24*time.Hour, false)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}

	mailer := &captureMailer{links: map[string]string{}}
	authService := service.NewAuthService(userRepo, service.NewCredentials(bcrypt.MinCost), tokens, mailer, nil, time.Hour)
	jobService := service.NewJobService(jobRepo, responseRepo)
	profileService := service.NewProfileService(userRepo, jobRepo, responseRepo)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.SetHTMLTemplate(templates.MustLoad())
	router.Use(middleware.ErrorHandlerMiddleware())
	router.Use(middleware.IdentityMiddleware(sessions, authService))
	Routes(router, nil, "http://jobs.test", sessions, authService, jobService, profileService)

	return &testEnv{
		db:        db,
		router:    router,
		mailer:    mailer,
		users:     userRepo,
		jobs:      jobRepo,
		responses: responseRepo,
		sessions:  sessions,
		auth:      authService,
		jobSvc:    jobService,
		profiles:  profileService,
	}
}

// browser keeps cookies between requests like a real client would
type browser struct {
	env     *testEnv
	cookies map[string]*http.Cookie
}

func (env *testEnv) newBrowser() *browser {
	return &browser{env: env, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	for _, c := range b.cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	w := httptest.NewRecorder()
	b.env.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return w
}

// get performs a GET request and returns the response
func (b *browser) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	return b.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

// post submits a form
func (b *browser) post(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(t, req)
}

// follow asserts a redirect and loads its target
func (b *browser) follow(t *testing.T, w *httptest.ResponseRecorder) (string, *httptest.ResponseRecorder) {
	t.Helper()
	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d\nBody: %s", w.Code, w.Body.String())
	}
	location := w.Header().Get("Location")
	return location, b.get(t, location)
}

func (b *browser) hasSession() bool {
	_, ok := b.cookies[session.CookieName]
	return ok
}

func (b *browser) register(t *testing.T, username string, employer bool, email string) {
	t.Helper()
	form := url.Values{
		"username":  {username},
		"password":  {"pw123456"},
		"password2": {"pw123456"},
		"email":     {email},
	}
	if employer {
		form.Set("employer", "y")
	}
	w := b.post(t, "/register", form)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("registration of %s failed: %d %s\nBody: %s", username, w.Code, w.Header().Get("Location"), w.Body.String())
	}
}

func (b *browser) login(t *testing.T, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	return b.post(t, "/login", url.Values{"username": {username}, "password": {password}})
}

func (env *testEnv) countJobs(t *testing.T) int {
	t.Helper()
	n, err := env.jobs.Count(context.Background())
	if err != nil {
		t.Fatalf("failed to count jobs: %v", err)
	}
	return n
}

func (env *testEnv) countUsers(t *testing.T) int {
	t.Helper()
	n, err := env.users.Count(context.Background())
	if err != nil {
		t.Fatalf("failed to count users: %v", err)
	}
	return n
}
