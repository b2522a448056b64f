package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t, nil)
	employer := env.register(t, "employer1", true, "")
	worker := env.register(t, "worker1", false, "")

	job, err := env.jobSvc.CreateJob(ctx, employer.Identity(false), JobInput{Title: "Barista", Description: "desc"})
	require.NoError(t, err)
	_, err = env.jobSvc.Respond(ctx, worker.Identity(false), job.ID, "pick me", "")
	require.NoError(t, err)

	profile, err := env.profiles.GetProfile(ctx, "employer1")
	require.NoError(t, err)
	assert.Len(t, profile.Jobs, 1)
	assert.Empty(t, profile.Responses)

	profile, err = env.profiles.GetProfile(ctx, "worker1")
	require.NoError(t, err)
	require.Len(t, profile.Responses, 1)
	assert.Equal(t, "Barista", *profile.Responses[0].JobTitle)

	_, err = env.profiles.GetProfile(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfileOnlyByOwner(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t, nil)
	owner := env.register(t, "worker1", false, "")
	other := env.register(t, "worker2", false, "")

	err := env.profiles.UpdateProfile(ctx, other.Identity(false), "worker1", "hacked", "")
	assert.ErrorIs(t, err, ErrForbidden)
	err = env.profiles.UpdateProfile(ctx, nil, "worker1", "hacked", "")
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, env.profiles.UpdateProfile(ctx, owner.Identity(false), "worker1", "Barista with 5 years", "https://example.com/me.png"))

	profile, err := env.profiles.GetProfile(ctx, "worker1")
	require.NoError(t, err)
	assert.Equal(t, "Barista with 5 years", *profile.User.About)
	assert.Equal(t, "https://example.com/me.png", *profile.User.Avatar)
}

func TestUpdateProfileRejectsBadAvatar(t *testing.T) {
	env := setupTestEnv(t, nil)
	owner := env.register(t, "worker1", false, "")

	err := env.profiles.UpdateProfile(context.Background(), owner.Identity(false), "worker1", "", "javascript:alert(1)")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "avatar", verr.Field)
}
