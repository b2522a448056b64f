package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCreatesUser(t *testing.T) {
	env := setupTestEnv(t, nil)

	user := env.register(t, "employer1", true, "boss@example.com")
	assert.NotZero(t, user.ID)
	assert.True(t, user.IsEmployer)
	assert.NotEqual(t, "pw123456", user.Password)

	stored, err := env.users.FindByUsername(context.Background(), "employer1")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123456", stored.Password, "password must be stored hashed")
	require.NotNil(t, stored.Email)
	assert.Equal(t, "boss@example.com", *stored.Email)
}

func TestRegisterDuplicateLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t, nil)
	env.register(t, "worker1", false, "")

	before, err := env.users.Count(ctx)
	require.NoError(t, err)

	_, err = env.auth.Register(ctx, RegisterInput{
		Username:             "worker1",
		Password:             "another1",
		PasswordConfirmation: "another1",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	after, err := env.users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRegisterValidation(t *testing.T) {
	env := setupTestEnv(t, nil)

	tests := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"short username", RegisterInput{Username: "ab", Password: "pw123456", PasswordConfirmation: "pw123456"}, "username"},
		{"short password", RegisterInput{Username: "worker1", Password: "pw1", PasswordConfirmation: "pw1"}, "password"},
		{"mismatch", RegisterInput{Username: "worker1", Password: "pw123456", PasswordConfirmation: "pw654321"}, "password2"},
		{"bad email", RegisterInput{Username: "worker1", Password: "pw123456", PasswordConfirmation: "pw123456", Email: "not-an-email"}, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(context.Background(), tt.in)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	n, err := env.users.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t, nil)
	registered := env.register(t, "worker1", false, "")

	user, err := env.auth.Login(ctx, "worker1", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, wrongPassword := env.auth.Login(ctx, "worker1", "nope-nope")
	_, unknownUser := env.auth.Login(ctx, "ghost", "pw123456")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t, nil)
	env.register(t, "worker1", false, "worker@example.com")

	require.NoError(t, env.auth.RequestReset(ctx, "worker@example.com", linkFor))

	sent := env.mailer.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "worker@example.com", sent[0].email)
	tok := tokenFromLink(sent[0].link)

	user, err := env.auth.CheckResetToken(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "worker1", user.Username)

	require.NoError(t, env.auth.ResetWithToken(ctx, tok, "newpass1", "newpass1"))

	_, err = env.auth.Login(ctx, "worker1", "pw123456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.auth.Login(ctx, "worker1", "newpass1")
	assert.NoError(t, err)
}

func TestResetLinkWorksOnce(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t, nil)
	env.register(t, "worker1", false, "worker@example.com")

	require.NoError(t, env.auth.RequestReset(ctx, "worker@example.com", linkFor))
	tok := tokenFromLink(env.mailer.messages()[0].link)

	require.NoError(t, env.auth.ResetWithToken(ctx, tok, "ownerpw1", "ownerpw1"))

	_, err := env.auth.CheckResetToken(ctx, tok)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredLink)
	err = env.auth.ResetWithToken(ctx, tok, "otherpw1", "otherpw1")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredLink)

	_, err = env.auth.Login(ctx, "worker1", "ownerpw1")
	assert.NoError(t, err, "the first reset must stick")
}

func TestPasswordChangeVoidsOlderResetLinks(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t, nil)
	env.register(t, "worker1", false, "worker@example.com")

	require.NoError(t, env.auth.RequestReset(ctx, "worker@example.com", linkFor))
	require.NoError(t, env.auth.RequestReset(ctx, "worker@example.com", linkFor))
	sent := env.mailer.messages()
	require.Len(t, sent, 2)
	first, second := tokenFromLink(sent[0].link), tokenFromLink(sent[1].link)

	require.NoError(t, env.auth.ResetWithToken(ctx, second, "newpass1", "newpass1"))
	assert.ErrorIs(t, env.auth.ResetWithToken(ctx, first, "newpass2", "newpass2"), ErrInvalidOrExpiredLink)

	// changing the password by other means spends outstanding links too
	require.NoError(t, env.auth.RequestReset(ctx, "worker@example.com", linkFor))
	third := tokenFromLink(env.mailer.messages()[2].link)
	require.NoError(t, env.auth.SetPassword(ctx, "worker1", "cliPass1", "cliPass1"))
	assert.ErrorIs(t, env.auth.ResetWithToken(ctx, third, "newpass3", "newpass3"), ErrInvalidOrExpiredLink)
}

func TestRequestResetUnknownEmailLooksTheSame(t *testing.T) {
	env := setupTestEnv(t, nil)

	err := env.auth.RequestReset(context.Background(), "nobody@example.com", linkFor)
	assert.NoError(t, err)
	assert.Empty(t, env.mailer.messages())
}

func TestRequestResetValidation(t *testing.T) {
	env := setupTestEnv(t, nil)

	var verr *ValidationError
	assert.True(t, errors.As(env.auth.RequestReset(context.Background(), "", linkFor), &verr))
	assert.True(t, errors.As(env.auth.RequestReset(context.Background(), "nope", linkFor), &verr))
}

func TestRequestResetThrottled(t *testing.T) {
	throttle := &stubThrottle{allow: false}
	env := setupTestEnv(t, throttle)
	env.register(t, "worker1", false, "worker@example.com")

	require.NoError(t, env.auth.RequestReset(context.Background(), "worker@example.com", linkFor))
	assert.Empty(t, env.mailer.messages())
	assert.Equal(t, []string{"worker@example.com"}, throttle.keys)
}

func TestRequestResetThrottleFailureAllows(t *testing.T) {
	env := setupTestEnv(t, &stubThrottle{err: errors.New("redis down")})
	env.register(t, "worker1", false, "worker@example.com")

	require.NoError(t, env.auth.RequestReset(context.Background(), "worker@example.com", linkFor))
	assert.Len(t, env.mailer.messages(), 1)
}

func TestRequestResetMailFailure(t *testing.T) {
	env := setupTestEnv(t, nil)
	env.register(t, "worker1", false, "worker@example.com")
	env.mailer.err = errors.New("smtp unavailable")

	// same outcome as for an unknown address
	err := env.auth.RequestReset(context.Background(), "worker@example.com", linkFor)
	assert.NoError(t, err)
}

func TestResetWithBadToken(t *testing.T) {
	env := setupTestEnv(t, nil)
	env.register(t, "worker1", false, "worker@example.com")

	err := env.auth.ResetWithToken(context.Background(), "not.a.token", "newpass1", "newpass1")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredLink)

	_, err = env.auth.Login(context.Background(), "worker1", "pw123456")
	assert.NoError(t, err)
}

func TestResetForVanishedEmail(t *testing.T) {
	env := setupTestEnv(t, nil)

	tok, err := env.tokens.Issue("gone@example.com", "some-hash")
	require.NoError(t, err)

	err = env.auth.ResetWithToken(context.Background(), tok, "newpass1", "newpass1")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredLink)
}

func TestResetValidatesNewPassword(t *testing.T) {
	env := setupTestEnv(t, nil)
	user := env.register(t, "worker1", false, "worker@example.com")

	tok, err := env.tokens.Issue("worker@example.com", user.Password)
	require.NoError(t, err)

	err = env.auth.ResetWithToken(context.Background(), tok, "newpass1", "different")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "password2", verr.Field)
}

func TestSetPassword(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t, nil)
	env.register(t, "worker1", false, "")

	require.NoError(t, env.auth.SetPassword(ctx, "worker1", "cli-pass", "cli-pass"))
	_, err := env.auth.Login(ctx, "worker1", "cli-pass")
	assert.NoError(t, err)

	assert.ErrorIs(t, env.auth.SetPassword(ctx, "ghost", "cli-pass", "cli-pass"), ErrNotFound)
}

func TestIdentify(t *testing.T) {
	env := setupTestEnv(t, nil)
	user := env.register(t, "worker1", false, "")

	got, err := env.auth.Identify(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "worker1", got.Username)

	_, err = env.auth.Identify(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
