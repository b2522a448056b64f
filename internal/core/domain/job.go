package domain

import "time"

type Job struct {
	ID          int64     `db:"id"`
	AuthorID    *int64    `db:"author_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Tags        *string   `db:"tags"`
	Salary      *string   `db:"salary"`
	Created     time.Time `db:"created"`
}

func NewJob(authorID int64, title, description string, tags, salary *string) *Job {
	return &Job{
		AuthorID:    &authorID,
		Title:       title,
		Description: description,
		Tags:        tags,
		Salary:      salary,
		Created:     time.Now().UTC(),
	}
}

// IsAuthoredBy reports whether userID owns the job.
func (j *Job) IsAuthoredBy(userID int64) bool {
	return j.AuthorID != nil && *j.AuthorID == userID
}

// JobView is a job joined with its author's public fields.
type JobView struct {
	Job
	Author       *string `db:"author"`
	AuthorAvatar *string `db:"author_avatar"`
}
