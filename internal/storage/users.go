package storage

import (
	"context"
	"database/sql"
	"errors"

	"bookkeeper/internal/apperr"
	"bookkeeper/internal/models"
)

// CreateUser creates a new user with the given username and password hash.
func (db *DB) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	conn, err := db.handle()
	if err != nil {
		return nil, apperr.Store("create user", err)
	}

	result, err := conn.ExecContext(ctx,
		"INSERT INTO users (username, password_hash) VALUES (?, ?)",
		username, passwordHash,
	)
	if err != nil {
		return nil, apperr.Store("create user", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, apperr.Store("create user", err)
	}

	return db.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return db.getUser(ctx, "SELECT id, username, password_hash, created_at FROM users WHERE id = ?", id)
}

// GetUserByUsername retrieves a user by username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return db.getUser(ctx, "SELECT id, username, password_hash, created_at FROM users WHERE username = ?", username)
}

func (db *DB) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	conn, err := db.handle()
	if err != nil {
		return nil, apperr.Store("get user", err)
	}

	var u models.User
	err = conn.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperr.Store("get user", err)
	}
	return &u, nil
}

// UserCount returns the number of users in the database.
func (db *DB) UserCount(ctx context.Context) (int, error) {
	conn, err := db.handle()
	if err != nil {
		return 0, apperr.Store("count users", err)
	}

	var count int
	if err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, apperr.Store("count users", err)
	}
	return count, nil
}
