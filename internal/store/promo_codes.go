package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tasleem/internal/models"
)

// CreatePromoCode creates a promo code. The code must already be normalised.
func (s *Store) CreatePromoCode(ctx context.Context, p *models.PromoCode) error {
	p.CreatedAt = now()
	query := s.db.Rebind(`
		INSERT INTO promo_codes (code, discount_percent, is_active, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`)

	if err := s.db.GetContext(ctx, &p.ID, query, p.Code, p.DiscountPercent, p.IsActive, p.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create promo code: %w", err)
	}
	return nil
}

// GetPromoCodeByCode retrieves a promo code by its normalised code
func (s *Store) GetPromoCodeByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var p models.PromoCode
	err := s.db.GetContext(ctx, &p, s.db.Rebind("SELECT * FROM promo_codes WHERE code = ?"), code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPromoCodes retrieves all promo codes, newest first
func (s *Store) ListPromoCodes(ctx context.Context) ([]models.PromoCode, error) {
	list := []models.PromoCode{}
	err := s.db.SelectContext(ctx, &list, "SELECT * FROM promo_codes ORDER BY id DESC")
	return list, err
}

// DeletePromoCode deletes a promo code
func (s *Store) DeletePromoCode(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM promo_codes WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete promo code: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
