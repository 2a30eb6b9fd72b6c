package store

import (
	"context"
	"database/sql"
	"fmt"

	"scentstore/internal/models"
)

// CreateUser inserts a new account
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.GetContext(ctx, user, `
		INSERT INTO users (name, email, password_hash, phone, address, avatar_url, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		user.Name, user.Email, user.PasswordHash, user.Phone, user.Address, user.AvatarURL, user.Role)
}

// GetUserByID retrieves a user by ID
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email, nil when absent
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE email = $1", email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUserProfile updates the mutable profile fields
func (s *Store) UpdateUserProfile(ctx context.Context, user *models.User) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET name = $1, phone = $2, address = $3, avatar_url = $4, updated_at = NOW()
		WHERE id = $5`,
		user.Name, user.Phone, user.Address, user.AvatarURL, user.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %d: %w", user.ID, ErrNotFound)
	}
	return nil
}
