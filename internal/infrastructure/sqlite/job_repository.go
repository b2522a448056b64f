package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/martijn/jobboard/internal/core/domain"
	"github.com/martijn/jobboard/internal/core/repository"
)

const jobViewSelect = `
	SELECT jobs.id, jobs.author_id, jobs.title, jobs.description, jobs.tags, jobs.salary, jobs.created,
		users.username AS author, users.avatar AS author_avatar
	FROM jobs
	LEFT JOIN users ON jobs.author_id = users.id
`

type jobRepository struct {
	db *DB
}

func NewJobRepository(db *DB) repository.JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *domain.Job) error {
	query := `
		INSERT INTO jobs (author_id, title, description, tags, salary, created)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		NullInt64(job.AuthorID),
		job.Title,
		job.Description,
		NullString(job.Tags),
		NullString(job.Salary),
		job.Created,
	)
	if err != nil {
		return translate(err, "create job")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get job id: %w", err)
	}
	job.ID = id
	return nil
}

func (r *jobRepository) FindByID(ctx context.Context, id int64) (*domain.Job, error) {
	query := `
		SELECT id, author_id, title, description, tags, salary, created
		FROM jobs
		WHERE id = ?
	`
	var job domain.Job
	err := r.db.GetContext(ctx, &job, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %d not found: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find job: %w", err)
	}
	return &job, nil
}

func (r *jobRepository) FindView(ctx context.Context, id int64) (*domain.JobView, error) {
	var job domain.JobView
	err := r.db.GetContext(ctx, &job, jobViewSelect+` WHERE jobs.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %d not found: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find job: %w", err)
	}
	return &job, nil
}

func (r *jobRepository) List(ctx context.Context, search string) ([]*domain.JobView, error) {
	query := jobViewSelect
	var args []interface{}

	if search != "" {
		like := "%" + escapeLike(search) + "%"
		query += ` WHERE jobs.title LIKE ? ESCAPE '\' OR jobs.description LIKE ? ESCAPE '\'`
		args = append(args, like, like)
	}
	query += ` ORDER BY jobs.created DESC, jobs.id DESC`

	var jobs []*domain.JobView
	if err := r.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

func (r *jobRepository) ListByAuthor(ctx context.Context, authorID int64) ([]*domain.Job, error) {
	query := `
		SELECT id, author_id, title, description, tags, salary, created
		FROM jobs
		WHERE author_id = ?
		ORDER BY created DESC, id DESC
	`
	var jobs []*domain.Job
	if err := r.db.SelectContext(ctx, &jobs, query, authorID); err != nil {
		return nil, fmt.Errorf("failed to list jobs by author: %w", err)
	}
	return jobs, nil
}

// DeleteWithResponses deletes dependants before the job itself; the schema
// declares no cascade.
func (r *jobRepository) DeleteWithResponses(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM responses WHERE job_id = ?`, id); err != nil {
		return translate(err, "delete job responses")
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return translate(err, "delete job")
	}
	if err := expectOne(result, "job"); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit job deletion: %w", err)
	}
	return nil
}

func (r *jobRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "jobs")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
