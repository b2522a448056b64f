package repository

import (
	"context"

	"github.com/martijn/jobboard/internal/core/domain"
)

type UserRepository interface {
	// Create inserts the user and sets its ID. It returns ErrDuplicate when the
	// username is already taken.
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error
	// ReplacePassword swaps the hash only while it still equals oldHash and
	// returns ErrNotFound otherwise.
	ReplacePassword(ctx context.Context, id int64, oldHash, newHash string) error
	UpdateProfile(ctx context.Context, id int64, about, avatar *string) error
	List(ctx context.Context) ([]*domain.User, error)
	Count(ctx context.Context) (int, error)
}
