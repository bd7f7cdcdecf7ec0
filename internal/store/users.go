package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tasleem/internal/models"
)

// CreateUser creates a new user
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	user.CreatedAt = now()
	query := s.db.Rebind(`
		INSERT INTO users (phone, password_hash, store_name, address, role, merchant_code, balance, pending_balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?)
		RETURNING id`)

	err := s.db.GetContext(ctx, &user.ID, query,
		user.Phone, user.PasswordHash, user.StoreName, user.Address, user.Role, user.MerchantCode, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.Balance, user.PendingBalance = 0, 0
	return nil
}

// GetUserByID retrieves a user by ID
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx, "SELECT * FROM users WHERE id = ?", id)
}

// GetUserByPhone retrieves a user by phone number
func (s *Store) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	return s.getUser(ctx, "SELECT * FROM users WHERE phone = ?", phone)
}

func (s *Store) getUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, s.db.Rebind(query), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers retrieves all users
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := s.db.SelectContext(ctx, &users, "SELECT * FROM users ORDER BY id")
	return users, err
}

// UpdateProfile updates the non-ledger fields of a user. Balances are never touched here.
func (s *Store) UpdateProfile(ctx context.Context, id int64, storeName, phone, address string) (*models.User, error) {
	res, err := s.db.ExecContext(ctx,
		s.db.Rebind("UPDATE users SET store_name = ?, phone = ?, address = ? WHERE id = ?"),
		storeName, phone, address, id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrNotFound
	}
	return s.GetUserByID(ctx, id)
}
