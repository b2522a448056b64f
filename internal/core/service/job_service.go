package service

import (
	"context"
	"errors"
	"strings"

	"github.com/martijn/jobboard/internal/core/domain"
	"github.com/martijn/jobboard/internal/core/policy"
	"github.com/martijn/jobboard/internal/core/repository"
	"github.com/rs/zerolog/log"
)

type JobService struct {
	jobRepo      repository.JobRepository
	responseRepo repository.ResponseRepository
}

func NewJobService(jobRepo repository.JobRepository, responseRepo repository.ResponseRepository) *JobService {
	return &JobService{
		jobRepo:      jobRepo,
		responseRepo: responseRepo,
	}
}

type JobInput struct {
	Title       string
	Description string
	Tags        string
	Salary      string
}

// ListJobs returns postings newest first, optionally filtered by a
// substring of the title or description.
func (s *JobService) ListJobs(ctx context.Context, search string) ([]*domain.JobView, error) {
	jobs, err := s.jobRepo.List(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, storeError(err, "list jobs")
	}
	return jobs, nil
}

// GetJob returns a posting with its responses, newest first.
func (s *JobService) GetJob(ctx context.Context, id int64) (*domain.JobView, []*domain.ResponseView, error) {
	job, err := s.jobRepo.FindView(ctx, id)
	if err != nil {
		return nil, nil, storeError(err, "get job")
	}
	responses, err := s.responseRepo.ListByJob(ctx, id)
	if err != nil {
		return nil, nil, storeError(err, "list responses")
	}
	return job, responses, nil
}

func (s *JobService) CreateJob(ctx context.Context, who *domain.Identity, in JobInput) (*domain.Job, error) {
	if !policy.CanPostJob(who) {
		return nil, ErrForbidden
	}

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" {
		return nil, NewValidationError("title", "Title is required")
	}
	if description == "" {
		return nil, NewValidationError("description", "Description is required")
	}

	job := domain.NewJob(who.ID, title, description, optional(in.Tags), optional(in.Salary))
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, storeError(err, "create job")
	}

	log.Ctx(ctx).Info().Int64("job_id", job.ID).Int64("user_id", who.ID).Msg("job created")
	return job, nil
}

// DeleteJob removes a posting and its responses. Only the author may do so.
func (s *JobService) DeleteJob(ctx context.Context, who *domain.Identity, id int64) error {
	job, err := s.jobRepo.FindByID(ctx, id)
	if err != nil {
		return storeError(err, "find job")
	}
	if !policy.CanDeleteJob(who, job) {
		logForbidden(ctx, who, "delete_job", id)
		return ErrForbidden
	}

	if err := s.jobRepo.DeleteWithResponses(ctx, id); err != nil {
		return storeError(err, "delete job")
	}

	log.Ctx(ctx).Info().Int64("job_id", id).Int64("user_id", who.ID).Msg("job deleted")
	return nil
}

func (s *JobService) Respond(ctx context.Context, who *domain.Identity, jobID int64, text, contact string) (*domain.Response, error) {
	if who == nil {
		return nil, ErrForbidden
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, NewValidationError("text", "Write a message with your response")
	}

	if _, err := s.jobRepo.FindByID(ctx, jobID); err != nil {
		return nil, storeError(err, "find job")
	}

	response := domain.NewResponse(jobID, who.ID, text, optional(contact))
	if err := s.responseRepo.Create(ctx, response); err != nil {
		return nil, storeError(err, "create response")
	}
	return response, nil
}

// DeleteResponse removes a response when who wrote it or owns the job it
// answers. It returns the job the response belonged to.
func (s *JobService) DeleteResponse(ctx context.Context, who *domain.Identity, id int64) (int64, error) {
	response, err := s.responseRepo.FindByID(ctx, id)
	if err != nil {
		return 0, storeError(err, "find response")
	}

	job, err := s.jobRepo.FindByID(ctx, response.JobID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return 0, storeError(err, "find job")
	}

	if !policy.CanDeleteResponse(who, response, job) {
		logForbidden(ctx, who, "delete_response", id)
		return 0, ErrForbidden
	}

	if err := s.responseRepo.Delete(ctx, id); err != nil {
		return 0, storeError(err, "delete response")
	}
	return response.JobID, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func logForbidden(ctx context.Context, who *domain.Identity, action string, target int64) {
	event := log.Ctx(ctx).Warn().Str("action", action).Int64("target", target)
	if who != nil {
		event = event.Int64("user_id", who.ID)
	}
	event.Msg("forbidden")
}
