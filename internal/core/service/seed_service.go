package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/martijn/jobboard/internal/core/domain"
	"github.com/martijn/jobboard/internal/core/repository"
	"github.com/rs/zerolog/log"
)

// SeedPassword is the password of every demo account.
const SeedPassword = "password123"

// ErrAlreadySeeded is returned when the store already holds users.
var ErrAlreadySeeded = errors.New("store is not empty")

type SeedService struct {
	userRepo     repository.UserRepository
	jobRepo      repository.JobRepository
	responseRepo repository.ResponseRepository
	credentials  *Credentials
}

func NewSeedService(
	userRepo repository.UserRepository,
	jobRepo repository.JobRepository,
	responseRepo repository.ResponseRepository,
	credentials *Credentials,
) *SeedService {
	return &SeedService{
		userRepo:     userRepo,
		jobRepo:      jobRepo,
		responseRepo: responseRepo,
		credentials:  credentials,
	}
}

type SeedResult struct {
	Users     int
	Jobs      int
	Responses int
}

type seedJob struct {
	title, description, tags, salary string
}

var demoJobs = []seedJob{
	{"Barista (part-time)", "Part-time barista wanted. Free training and a flexible schedule.", "cafe,barista,flexible", "from 12 €/h"},
	{"Courier (scooter)", "Deliveries around the district. Paid per delivery plus bonuses.", "courier,delivery,scooter", "negotiable"},
	{"Front-end developer (junior)", "Looking for a junior front-end developer. HTML/CSS/JS required; React or Vue is a plus.", "frontend,react,javascript", "2 500–3 500 €"},
	{"Python developer (remote)", "Backend development with Flask or Django. 1-3 years of experience. Testing and CI are a plus.", "python,backend,flask", "from 3 000 €"},
	{"Content manager", "Keep the website filled with text and images, basic markup.", "content,editor,marketing", "1 800–2 200 €"},
}

// Seed fills an empty store with demo accounts, jobs and responses.
func (s *SeedService) Seed(ctx context.Context) (*SeedResult, error) {
	n, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if n > 0 {
		return nil, ErrAlreadySeeded
	}

	hash, err := s.credentials.Hash(SeedPassword)
	if err != nil {
		return nil, err
	}

	employerEmail := "employer@example.com"
	employerAbout := "Demo employer"
	employer := domain.NewUser("employer1", hash, true, &employerEmail)
	employer.About = &employerAbout

	workerEmail := "worker@example.com"
	workerAbout := "Demo job seeker"
	worker := domain.NewUser("worker1", hash, false, &workerEmail)
	worker.About = &workerAbout

	for _, u := range []*domain.User{employer, worker} {
		if err := s.userRepo.Create(ctx, u); err != nil {
			return nil, storeError(err, "seed user")
		}
	}

	jobs := make([]*domain.Job, 0, len(demoJobs))
	for _, j := range demoJobs {
		job := domain.NewJob(employer.ID, j.title, j.description, optional(j.tags), optional(j.salary))
		if err := s.jobRepo.Create(ctx, job); err != nil {
			return nil, storeError(err, "seed job")
		}
		jobs = append(jobs, job)
	}

	responses := []*domain.Response{
		domain.NewResponse(jobs[0].ID, worker.ID, "I would like to apply, I have cafe experience and can work evenings.", &workerEmail),
		domain.NewResponse(jobs[2].ID, worker.ID, "I know the basics of React and am happy to learn while working part-time.", &workerEmail),
	}
	for _, r := range responses {
		if err := s.responseRepo.Create(ctx, r); err != nil {
			return nil, storeError(err, "seed response")
		}
	}

	result := &SeedResult{Users: 2, Jobs: len(jobs), Responses: len(responses)}
	log.Ctx(ctx).Info().Int("users", result.Users).Int("jobs", result.Jobs).
		Int("responses", result.Responses).Msg("demo data seeded")
	return result, nil
}
