package store

import (
	"context"

	"github.com/paydash/backend/internal/models"
)

const userColumns = "id, email, full_name, password_hash, created_at"

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser inserts a new user
func (s *Store) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		"INSERT INTO users (id, email, full_name, password_hash) VALUES ($1, $2, $3, $4) RETURNING "+userColumns,
		u.ID, u.Email, u.FullName, u.PasswordHash)
	user, err := scanUser(row)
	if err != nil {
		return nil, wrap("failed to create user", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1", email))
	if err != nil {
		return nil, wrap("failed to get user", err)
	}
	return user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil {
		return nil, wrap("failed to get user", err)
	}
	return user, nil
}
