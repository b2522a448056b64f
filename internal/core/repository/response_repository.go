package repository

import (
	"context"

	"github.com/martijn/jobboard/internal/core/domain"
)

type ResponseRepository interface {
	Create(ctx context.Context, response *domain.Response) error
	FindByID(ctx context.Context, id int64) (*domain.Response, error)
	ListByJob(ctx context.Context, jobID int64) ([]*domain.ResponseView, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.ResponseView, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}
