package service

import (
	"context"
	"errors"

	"tasleem/internal/models"
	"tasleem/internal/store"
	"tasleem/internal/util"

	"go.uber.org/zap"
)

// PromoService manages promo codes
type PromoService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewPromoService creates a new promo service
func NewPromoService(store *store.Store) *PromoService {
	return &PromoService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// PromoRequest represents a new promo code
type PromoRequest struct {
	Code            string `json:"code"`
	DiscountPercent int64  `json:"discountPercent"`
	IsActive        *bool  `json:"isActive"`
}

// ListPromoCodes lists every promo code
func (ps *PromoService) ListPromoCodes(ctx context.Context) ([]models.PromoCode, error) {
	codes, err := ps.store.ListPromoCodes(ctx)
	if err != nil {
		return nil, Unexpected(err)
	}
	return codes, nil
}

// CreatePromoCode stores a normalised code. Codes are active unless stated otherwise.
func (ps *PromoService) CreatePromoCode(ctx context.Context, req *PromoRequest) (*models.PromoCode, error) {
	code := NormalizePromoCode(req.Code)
	if code == "" {
		return nil, newError(KindValidation, MsgPromoInvalid)
	}
	if req.DiscountPercent < 1 || req.DiscountPercent > 100 {
		return nil, newError(KindValidation, MsgPromoBadPercent)
	}

	promo := &models.PromoCode{
		Code:            code,
		DiscountPercent: req.DiscountPercent,
		IsActive:        true,
	}
	if req.IsActive != nil {
		promo.IsActive = *req.IsActive
	}

	if err := ps.store.CreatePromoCode(ctx, promo); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, newError(KindValidation, MsgPromoTaken)
		}
		return nil, Unexpected(err)
	}

	ps.logger.Info("Promo code created",
		zap.String("code", promo.Code),
		zap.Int64("discount_percent", promo.DiscountPercent))
	return promo, nil
}

// DeletePromoCode removes a promo code
func (ps *PromoService) DeletePromoCode(ctx context.Context, id int64) error {
	err := ps.store.DeletePromoCode(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return newError(KindNotFound, MsgPromoNotFound)
	}
	if err != nil {
		return Unexpected(err)
	}
	return nil
}

// VerifyPromoCode returns the active promo for code
func (ps *PromoService) VerifyPromoCode(ctx context.Context, code string) (*models.PromoCode, error) {
	code = NormalizePromoCode(code)
	if code == "" {
		return nil, newError(KindValidation, MsgPromoInvalid)
	}

	promo, err := ps.store.GetPromoCodeByCode(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(KindValidation, MsgPromoInvalid)
	}
	if err != nil {
		return nil, Unexpected(err)
	}
	if !promo.IsActive {
		return nil, newError(KindValidation, MsgPromoInvalid)
	}
	return promo, nil
}
