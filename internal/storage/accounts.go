package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"pfms/internal/core"
	applog "pfms/internal/log"
)

// Register stores a new user with the password exactly as given.
func (r *SQLiteRepository) Register(ctx context.Context, username, password string) (core.User, error) {
	if err := core.ValidateUsername(username); err != nil {
		return core.User{}, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO Users (username, password) VALUES (?, ?)`,
		username, password)
	if err != nil {
		if isUniqueViolation(err) {
			slog.WarnContext(ctx, "Registration rejected, username exists", applog.FieldUsername, username)
			return core.User{}, core.ErrUsernameTaken
		}
		slog.ErrorContext(ctx, "Registration failed", applog.FieldUsername, username, applog.FieldError, err)
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("read user id: %w", err)
	}

	slog.InfoContext(ctx, "User registered", applog.FieldUserID, id, applog.FieldUsername, username)
	return core.User{ID: id, Username: username, Password: password}, nil
}

// Authenticate returns the user whose username and password both match
// exactly (case-sensitive).
func (r *SQLiteRepository) Authenticate(ctx context.Context, username, password string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password FROM Users WHERE username = ? AND password = ?`,
		username, password).Scan(&u.ID, &u.Username, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrInvalidCredentials
	}
	if err != nil {
		slog.ErrorContext(ctx, "Login failed", applog.FieldUsername, username, applog.FieldError, err)
		return core.User{}, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

// ResolveID returns core.UnknownUserID and core.ErrNotFound for unknown names.
func (r *SQLiteRepository) ResolveID(ctx context.Context, username string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM Users WHERE username = ?`, username).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.UnknownUserID, core.ErrNotFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "Error retrieving user ID", applog.FieldUsername, username, applog.FieldError, err)
		return core.UnknownUserID, fmt.Errorf("query user id: %w", err)
	}
	return id, nil
}

// ResolveUsername returns core.UnknownUsername and core.ErrNotFound for unknown ids.
func (r *SQLiteRepository) ResolveUsername(ctx context.Context, id int64) (string, error) {
	var username string
	err := r.db.QueryRowContext(ctx,
		`SELECT username FROM Users WHERE id = ?`, id).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) {
		return core.UnknownUsername, core.ErrNotFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "Error retrieving username", applog.FieldUserID, id, applog.FieldError, err)
		return core.UnknownUsername, fmt.Errorf("query username: %w", err)
	}
	return username, nil
}
