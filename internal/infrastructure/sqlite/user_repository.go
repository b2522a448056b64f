package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/martijn/jobboard/internal/core/domain"
	"github.com/martijn/jobboard/internal/core/repository"
)

const userColumns = `id, username, password, is_employer, email, avatar, about`

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Create relies on the UNIQUE index on username; there is no prior lookup,
// so concurrent registrations of one name cannot both succeed.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (username, password, is_employer, email, avatar, about)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		user.Username,
		user.Password,
		user.IsEmployer,
		NullString(user.Email),
		NullString(user.Avatar),
		NullString(user.About),
	)
	if err != nil {
		return translate(err, "create user")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get user id: %w", err)
	}
	user.ID = id
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

// FindByEmail returns the oldest account registered with email. Emails are
// not unique.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? ORDER BY id LIMIT 1`, email)
}

func (r *userRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user not found: %w", repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET password = ? WHERE id = ?`, hashedPassword, id)
	if err != nil {
		return translate(err, "update password")
	}
	return expectOne(result, "user")
}

func (r *userRepository) ReplacePassword(ctx context.Context, id int64, oldHash, newHash string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET password = ? WHERE id = ? AND password = ?`,
		newHash, id, oldHash,
	)
	if err != nil {
		return translate(err, "replace password")
	}
	return expectOne(result, "user")
}

func (r *userRepository) UpdateProfile(ctx context.Context, id int64, about, avatar *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET about = ?, avatar = ? WHERE id = ?`,
		NullString(about), NullString(avatar), id,
	)
	if err != nil {
		return translate(err, "update profile")
	}
	return expectOne(result, "user")
}

func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "users")
}

func expectOne(result sql.Result, entity string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s not found: %w", entity, repository.ErrNotFound)
	}
	return nil
}

func count(ctx context.Context, db *DB, table string) (int, error) {
	var n int
	if err := db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}
