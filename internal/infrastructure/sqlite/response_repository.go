package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/martijn/jobboard/internal/core/domain"
	"github.com/martijn/jobboard/internal/core/repository"
)

type responseRepository struct {
	db *DB
}

func NewResponseRepository(db *DB) repository.ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) Create(ctx context.Context, response *domain.Response) error {
	query := `
		INSERT INTO responses (job_id, user_id, text, contact, created)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		response.JobID,
		response.UserID,
		response.Text,
		NullString(response.Contact),
		response.Created,
	)
	if err != nil {
		return translate(err, "create response")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get response id: %w", err)
	}
	response.ID = id
	return nil
}

func (r *responseRepository) FindByID(ctx context.Context, id int64) (*domain.Response, error) {
	query := `
		SELECT id, job_id, user_id, text, contact, created
		FROM responses
		WHERE id = ?
	`
	var response domain.Response
	err := r.db.GetContext(ctx, &response, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("response %d not found: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find response: %w", err)
	}
	return &response, nil
}

func (r *responseRepository) ListByJob(ctx context.Context, jobID int64) ([]*domain.ResponseView, error) {
	query := `
		SELECT responses.id, responses.job_id, responses.user_id, responses.text, responses.contact, responses.created,
			users.username AS user_name, jobs.title AS job_title
		FROM responses
		LEFT JOIN users ON responses.user_id = users.id
		LEFT JOIN jobs ON responses.job_id = jobs.id
		WHERE responses.job_id = ?
		ORDER BY responses.created DESC, responses.id DESC
	`
	var responses []*domain.ResponseView
	if err := r.db.SelectContext(ctx, &responses, query, jobID); err != nil {
		return nil, fmt.Errorf("failed to list responses for job: %w", err)
	}
	return responses, nil
}

func (r *responseRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.ResponseView, error) {
	query := `
		SELECT responses.id, responses.job_id, responses.user_id, responses.text, responses.contact, responses.created,
			users.username AS user_name, jobs.title AS job_title
		FROM responses
		LEFT JOIN users ON responses.user_id = users.id
		LEFT JOIN jobs ON responses.job_id = jobs.id
		WHERE responses.user_id = ?
		ORDER BY responses.created DESC, responses.id DESC
	`
	var responses []*domain.ResponseView
	if err := r.db.SelectContext(ctx, &responses, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list responses for user: %w", err)
	}
	return responses, nil
}

func (r *responseRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM responses WHERE id = ?`, id)
	if err != nil {
		return translate(err, "delete response")
	}
	return expectOne(result, "response")
}

func (r *responseRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "responses")
}
