package service

import (
	"context"
	"strings"

	"github.com/martijn/jobboard/internal/core/domain"
	"github.com/martijn/jobboard/internal/core/policy"
	"github.com/martijn/jobboard/internal/core/repository"
)

type ProfileService struct {
	userRepo     repository.UserRepository
	jobRepo      repository.JobRepository
	responseRepo repository.ResponseRepository
}

func NewProfileService(
	userRepo repository.UserRepository,
	jobRepo repository.JobRepository,
	responseRepo repository.ResponseRepository,
) *ProfileService {
	return &ProfileService{
		userRepo:     userRepo,
		jobRepo:      jobRepo,
		responseRepo: responseRepo,
	}
}

type Profile struct {
	User      *domain.User
	Jobs      []*domain.Job
	Responses []*domain.ResponseView
}

func (s *ProfileService) GetProfile(ctx context.Context, username string) (*Profile, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, storeError(err, "find profile")
	}

	jobs, err := s.jobRepo.ListByAuthor(ctx, user.ID)
	if err != nil {
		return nil, storeError(err, "list profile jobs")
	}

	responses, err := s.responseRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, storeError(err, "list profile responses")
	}

	return &Profile{User: user, Jobs: jobs, Responses: responses}, nil
}

// UpdateProfile replaces the bio and avatar of username's profile. Only the
// profile owner may edit it.
func (s *ProfileService) UpdateProfile(ctx context.Context, who *domain.Identity, username, about, avatar string) error {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return storeError(err, "find profile")
	}
	if !policy.CanEditProfile(who, user) {
		logForbidden(ctx, who, "edit_profile", user.ID)
		return ErrForbidden
	}

	avatarURL := optional(avatar)
	if avatarURL != nil {
		if err := validate.Var(*avatarURL, "http_url"); err != nil {
			return NewValidationError("avatar", "Avatar must be an http(s) URL")
		}
	}

	about = strings.TrimSpace(about)
	if err := s.userRepo.UpdateProfile(ctx, user.ID, &about, avatarURL); err != nil {
		return storeError(err, "update profile")
	}
	return nil
}
