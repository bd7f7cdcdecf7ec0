package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tasleem/internal/models"

	"github.com/jmoiron/sqlx"
)

// CreateWithdrawal debits the merchant's balance and records the withdrawal
// in one transaction. The debit is a conditional update, so a concurrent
// request can never drive the balance below zero.
func (s *Store) CreateWithdrawal(ctx context.Context, w *models.Withdrawal) error {
	w.CreatedAt = now()
	w.UpdatedAt = w.CreatedAt

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			tx.Rebind("UPDATE users SET balance = balance - ? WHERE id = ? AND balance >= ?"),
			w.Amount, w.MerchantID, w.Amount)
		if err != nil {
			return fmt.Errorf("failed to debit balance: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			var exists bool
			if err := tx.GetContext(ctx, &exists,
				tx.Rebind("SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)"), w.MerchantID); err != nil {
				return err
			}
			if !exists {
				return ErrNotFound
			}
			return ErrInsufficientFunds
		}

		query := tx.Rebind(`
			INSERT INTO withdrawals (merchant_id, amount, method, account_details, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			RETURNING id`)
		if err := tx.GetContext(ctx, &w.ID, query,
			w.MerchantID, w.Amount, w.Method, w.AccountDetails, w.Status, w.CreatedAt, w.UpdatedAt); err != nil {
			return fmt.Errorf("failed to create withdrawal: %w", err)
		}
		return nil
	})
}

// GetWithdrawalByID retrieves a withdrawal by ID
func (s *Store) GetWithdrawalByID(ctx context.Context, id int64) (*models.Withdrawal, error) {
	var w models.Withdrawal
	err := s.db.GetContext(ctx, &w, s.db.Rebind("SELECT * FROM withdrawals WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// ListWithdrawals retrieves withdrawals newest first. A nil merchantID lists all.
func (s *Store) ListWithdrawals(ctx context.Context, merchantID *int64) ([]models.Withdrawal, error) {
	list := []models.Withdrawal{}
	if merchantID != nil {
		err := s.db.SelectContext(ctx, &list,
			s.db.Rebind("SELECT * FROM withdrawals WHERE merchant_id = ? ORDER BY id DESC"), *merchantID)
		return list, err
	}
	err := s.db.SelectContext(ctx, &list, "SELECT * FROM withdrawals ORDER BY id DESC")
	return list, err
}

// UpdateWithdrawalStatus changes a withdrawal's status if it is still in the
// expected previous status. Balances are not touched.
func (s *Store) UpdateWithdrawalStatus(ctx context.Context, id int64, from, to string) (*models.Withdrawal, error) {
	res, err := s.db.ExecContext(ctx,
		s.db.Rebind("UPDATE withdrawals SET status = ?, updated_at = ? WHERE id = ? AND status = ?"),
		to, now(), id, from)
	if err != nil {
		return nil, fmt.Errorf("failed to update withdrawal status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrStatusConflict
	}
	return s.GetWithdrawalByID(ctx, id)
}
