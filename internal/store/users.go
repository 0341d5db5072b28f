package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// CreateUser inserts a new account. Email is stored lowercased.
func (s *Store) CreateUser(ctx context.Context, email, username, passwordHash, role string) (*User, error) {
	id, err := generateID()
	if err != nil {
		return nil, err
	}
	if role == "" {
		role = RoleStudent
	}
	now := time.Now().UTC()

	q := s.bind(`
INSERT INTO users(id, email, username, password_hash, role, created_at)
VALUES(?, ?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, q, id, strings.ToLower(email), username, passwordHash, role, now); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &User{
		ID:           id,
		Email:        strings.ToLower(email),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
	}, nil
}

// GetUser retrieves an account by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	q := s.bind(`
SELECT id, email, username, password_hash, role, created_at
FROM users
WHERE id = ?`)
	return s.scanUser(s.db.QueryRowContext(ctx, q, id))
}

// GetUserByEmail retrieves an account by email, case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	q := s.bind(`
SELECT id, email, username, password_hash, role, created_at
FROM users
WHERE email = ?`)
	return s.scanUser(s.db.QueryRowContext(ctx, q, strings.ToLower(email)))
}

func (s *Store) scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
