package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/college-board/internal/apperror"
	"github.com/sakif/college-board/internal/model"
)

const userColumns = `id, email, username, role, password_hash, created_at`

// CreateUser inserts a new user and fills in ID and CreatedAt.
// A duplicate email is reported as apperror.ErrConflict.
func (q *queries) CreateUser(ctx context.Context, user *model.User) error {
	user.CreatedAt = time.Now().UTC()

	id, err := q.insert(ctx,
		`INSERT INTO users (email, username, role, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.Email,
		user.Username,
		user.Role,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Email)
		}
		return fmt.Errorf("sqlstore: inserting user %s: %w", user.Email, err)
	}

	user.ID = id
	return nil
}

// GetUserByID retrieves a user by id.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (q *queries) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	err := q.get(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlstore: getting user %d: %w", id, err)
	}
	return &u, nil
}

// GetUserByEmail retrieves a user by email.
// Returns apperror.ErrNotFound if no user has that email.
func (q *queries) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := q.get(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlstore: getting user by email %s: %w", email, err)
	}
	return &u, nil
}

func (q *queries) ListUsers(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if err := q.list(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("sqlstore: listing users: %w", err)
	}
	return users, nil
}

// UpsertUserByEmail keeps the existing id, role and password of an account
// when the email is already registered, refreshing only the username.
func (q *queries) UpsertUserByEmail(ctx context.Context, user *model.User) error {
	existing, err := q.GetUserByEmail(ctx, user.Email)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return err
	}

	if existing == nil {
		return q.CreateUser(ctx, user)
	}

	if _, err := q.execAffected(ctx,
		`UPDATE users SET username = ? WHERE id = ?`,
		user.Username, existing.ID,
	); err != nil {
		return fmt.Errorf("sqlstore: updating user %d: %w", existing.ID, err)
	}

	existing.Username = user.Username
	*user = *existing
	return nil
}
