package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/martijn/jobboard/internal/core/domain"
	"github.com/martijn/jobboard/internal/core/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "session-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// newContext returns a gin context for a request carrying cookies.
func newContext(cookies ...*http.Cookie) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	c.Request = req
	return c, w
}

func responseCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	var found *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			found = ck
		}
	}
	require.NotNil(t, found, "cookie %s not set", name)
	return found
}

func testUser() *domain.User {
	return &domain.User{ID: 7, Username: "employer1", IsEmployer: true}
}

func TestEstablishAndLoad(t *testing.T) {
	m, err := NewManager(testSecret, "HS256", time.Hour, false)
	require.NoError(t, err)

	c, w := newContext()
	require.NoError(t, m.Establish(c, testUser(), false))

	ck := responseCookie(t, w, CookieName)
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	assert.Zero(t, ck.MaxAge, "non-persistent sessions end with the browser")

	next, _ := newContext(ck)
	claims, ok := m.Load(next)
	require.True(t, ok)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "employer1", claims.Username)
	assert.True(t, claims.IsEmployer)
	assert.False(t, claims.Persistent)
}

func TestPersistentSessionHasMaxAge(t *testing.T) {
	m, err := NewManager(testSecret, "", 30*24*time.Hour, true)
	require.NoError(t, err)

	c, w := newContext()
	require.NoError(t, m.Establish(c, testUser(), true))

	ck := responseCookie(t, w, CookieName)
	assert.Equal(t, 30*24*60*60, ck.MaxAge)
	assert.True(t, ck.Secure)

	next, _ := newContext(ck)
	claims, ok := m.Load(next)
	require.True(t, ok)
	assert.True(t, claims.Persistent)
}

func TestEstablishReplacesQueuedSession(t *testing.T) {
	m, err := NewManager(testSecret, "HS256", time.Hour, false)
	require.NoError(t, err)

	c, w := newContext()
	require.NoError(t, m.Establish(c, testUser(), false))
	require.NoError(t, m.Establish(c, &domain.User{ID: 9, Username: "worker1"}, false))

	var sessions int
	for _, ck := range w.Result().Cookies() {
		if ck.Name == CookieName {
			sessions++
		}
	}
	assert.Equal(t, 1, sessions)

	next, _ := newContext(responseCookie(t, w, CookieName))
	claims, ok := m.Load(next)
	require.True(t, ok)
	assert.Equal(t, "worker1", claims.Username)
}

func TestClearIsIdempotent(t *testing.T) {
	m, err := NewManager(testSecret, "HS256", time.Hour, false)
	require.NoError(t, err)

	c, w := newContext()
	m.Clear(c)
	m.Clear(c)

	ck := responseCookie(t, w, CookieName)
	assert.Empty(t, ck.Value)
	assert.Less(t, ck.MaxAge, 0)
}

func TestLoadRejectsExpiredSession(t *testing.T) {
	now := time.Now()
	m, err := NewManager(testSecret, "HS256", time.Hour, false, WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	c, w := newContext()
	require.NoError(t, m.Establish(c, testUser(), true))
	ck := responseCookie(t, w, CookieName)

	later, err := NewManager(testSecret, "HS256", time.Hour, false,
		WithClock(func() time.Time { return now.Add(2 * time.Hour) }))
	require.NoError(t, err)

	next, _ := newContext(ck)
	_, ok := later.Load(next)
	assert.False(t, ok)
}

func TestLoadRejectsForeignSecret(t *testing.T) {
	m, err := NewManager(testSecret, "HS256", time.Hour, false)
	require.NoError(t, err)
	other, err := NewManager("another-secret", "HS256", time.Hour, false)
	require.NoError(t, err)

	c, w := newContext()
	require.NoError(t, other.Establish(c, testUser(), false))

	next, _ := newContext(responseCookie(t, w, CookieName))
	_, ok := m.Load(next)
	assert.False(t, ok)
}

func TestLoadRejectsResetToken(t *testing.T) {
	m, err := NewManager(testSecret, "HS256", time.Hour, false)
	require.NoError(t, err)
	tokens, err := token.NewService(testSecret, "HS256")
	require.NoError(t, err)

	reset, err := tokens.Issue("someone@example.com", "hash")
	require.NoError(t, err)

	c, _ := newContext(&http.Cookie{Name: CookieName, Value: reset})
	_, ok := m.Load(c)
	assert.False(t, ok)
}

func TestLoadWithoutCookie(t *testing.T) {
	m, err := NewManager(testSecret, "HS256", time.Hour, false)
	require.NoError(t, err)

	c, _ := newContext(&http.Cookie{Name: CookieName, Value: "garbage"})
	_, ok := m.Load(c)
	assert.False(t, ok)

	c, _ = newContext()
	_, ok = m.Load(c)
	assert.False(t, ok)
}

func TestNewManagerValidation(t *testing.T) {
	_, err := NewManager("", "HS256", time.Hour, false)
	assert.Error(t, err)

	_, err = NewManager(testSecret, "RS256", time.Hour, false)
	assert.Error(t, err)
}

func TestFlashesSurviveRedirect(t *testing.T) {
	m, err := NewManager(testSecret, "HS256", time.Hour, false)
	require.NoError(t, err)

	c, w := newContext()
	m.AddFlash(c, FlashWarning, "first")
	m.AddFlash(c, FlashSuccess, "second")

	ck := responseCookie(t, w, FlashCookieName)

	next, nw := newContext(ck)
	flashes := m.Flashes(next)
	assert.Equal(t, []Flash{
		{Category: FlashWarning, Message: "first"},
		{Category: FlashSuccess, Message: "second"},
	}, flashes)

	cleared := responseCookie(t, nw, FlashCookieName)
	assert.Less(t, cleared.MaxAge, 0)
	assert.Empty(t, m.Flashes(next))
}

func TestFlashesIncludeThisRequest(t *testing.T) {
	m, err := NewManager(testSecret, "HS256", time.Hour, false)
	require.NoError(t, err)

	c, _ := newContext()
	m.AddFlash(c, FlashDanger, "now")

	assert.Equal(t, []Flash{{Category: FlashDanger, Message: "now"}}, m.Flashes(c))
}

func TestUnreadableFlashCookieIsIgnored(t *testing.T) {
	m, err := NewManager(testSecret, "HS256", time.Hour, false)
	require.NoError(t, err)

	c, _ := newContext(&http.Cookie{Name: FlashCookieName, Value: "%%%"})
	assert.Empty(t, m.Flashes(c))
}
