package repository

import (
	"context"

	"github.com/martijn/jobboard/internal/core/domain"
)

type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	FindByID(ctx context.Context, id int64) (*domain.Job, error)
	FindView(ctx context.Context, id int64) (*domain.JobView, error)
	// List returns jobs newest first. A non-empty search matches title or
	// description as a substring.
	List(ctx context.Context, search string) ([]*domain.JobView, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]*domain.Job, error)
	// DeleteWithResponses removes the job's responses and then the job in one
	// transaction.
	DeleteWithResponses(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}
