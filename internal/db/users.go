package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Joseda-hg/taskboard/internal/model"
)

const userColumns = "id_user, name_user, user_password, user_email"

type UserInput struct {
	Name         string
	PasswordHash string
	Email        string
}

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var user model.User
	if err := row.Scan(&user.ID, &user.Name, &user.PasswordHash, &user.Email); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// CreateUser inserts a user. A duplicate email yields ErrConflict.
func (s *Store) CreateUser(ctx context.Context, input UserInput) (model.User, error) {
	user, err := scanUser(s.queryRow(ctx,
		"INSERT INTO users (name_user, user_password, user_email) VALUES (?, ?, ?) RETURNING "+userColumns,
		input.Name, input.PasswordHash, input.Email))
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, fmt.Errorf("create user %q: %w", input.Email, ErrConflict)
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, userID int64) (model.User, error) {
	user, err := scanUser(s.queryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id_user = ?", userID))
	if err != nil {
		return model.User{}, notFound(err, "get user %d", userID)
	}
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	user, err := scanUser(s.queryRow(ctx, "SELECT "+userColumns+" FROM users WHERE user_email = ?", email))
	if err != nil {
		return model.User{}, notFound(err, "get user by email")
	}
	return user, nil
}

// UpdateUser rewrites name, password hash and email together.
func (s *Store) UpdateUser(ctx context.Context, userID int64, input UserInput) (model.User, error) {
	user, err := scanUser(s.queryRow(ctx,
		"UPDATE users SET name_user = ?, user_password = ?, user_email = ? WHERE id_user = ? RETURNING "+userColumns,
		input.Name, input.PasswordHash, input.Email, userID))
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, fmt.Errorf("update user %d: %w", userID, ErrConflict)
		}
		return model.User{}, notFound(err, "update user %d", userID)
	}
	return user, nil
}

// DeleteUser removes the user; foreign keys cascade to sections and tasks.
func (s *Store) DeleteUser(ctx context.Context, userID int64) (model.User, error) {
	user, err := scanUser(s.queryRow(ctx, "DELETE FROM users WHERE id_user = ? RETURNING "+userColumns, userID))
	if err != nil {
		return model.User{}, notFound(err, "delete user %d", userID)
	}
	return user, nil
}

func notFound(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", msg, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
