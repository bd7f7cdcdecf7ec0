package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tasleem/internal/models"
	"tasleem/internal/store"
	"tasleem/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultWithdrawalMethod is used when a request names no payout method
const DefaultWithdrawalMethod = "manual"

// WithdrawalService handles merchant payouts
type WithdrawalService struct {
	store     *store.Store
	publisher EventPublisher
	logger    *zap.Logger
}

// NewWithdrawalService creates a new withdrawal service
func NewWithdrawalService(store *store.Store, publisher EventPublisher) *WithdrawalService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &WithdrawalService{
		store:     store,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// WithdrawalRequest represents a payout request
type WithdrawalRequest struct {
	Amount         int64  `json:"amount"`
	Method         string `json:"method"`
	AccountDetails string `json:"accountDetails"`
}

// RequestWithdrawal debits amount from the merchant's withdrawable balance
// and records a pending withdrawal.
func (ws *WithdrawalService) RequestWithdrawal(ctx context.Context, merchant *models.User, req *WithdrawalRequest) (w *models.Withdrawal, err error) {
	ctx, span := util.StartSpan(ctx, "WithdrawalService.RequestWithdrawal")
	defer func() { util.EndSpan(span, err) }()

	if req.Amount <= 0 {
		util.WithdrawalsRejectedTotal.WithLabelValues("invalid_amount").Inc()
		return nil, newError(KindValidation, MsgInvalidAmount)
	}

	method := strings.TrimSpace(req.Method)
	if method == "" {
		method = DefaultWithdrawalMethod
	}

	w = &models.Withdrawal{
		MerchantID:     merchant.ID,
		Amount:         req.Amount,
		Method:         method,
		AccountDetails: req.AccountDetails,
		Status:         models.WithdrawalStatusPending,
	}

	err = ws.store.CreateWithdrawal(ctx, w)
	switch {
	case errors.Is(err, store.ErrInsufficientFunds):
		util.WithdrawalsRejectedTotal.WithLabelValues("insufficient_funds").Inc()
		ws.logger.Info("Withdrawal rejected",
			zap.Int64("merchant_id", merchant.ID),
			zap.Int64("amount", req.Amount))
		return nil, newError(KindInsufficientFunds, MsgInsufficientFunds)
	case errors.Is(err, store.ErrNotFound):
		return nil, newError(KindNotFound, MsgUserNotFound)
	case err != nil:
		return nil, Unexpected(fmt.Errorf("failed to create withdrawal: %w", err))
	}

	util.WithdrawalsRequestedTotal.Inc()
	ws.logger.Info("Withdrawal requested",
		zap.Int64("withdrawal_id", w.ID),
		zap.Int64("merchant_id", merchant.ID),
		zap.Int64("amount", w.Amount))

	ws.publish(ctx, models.EventTypeWithdrawalRequested, w, "")
	return w, nil
}

// UpdateWithdrawalStatus moves a withdrawal through its lifecycle. Balances
// are not touched: the amount left the balance when the request was made.
func (ws *WithdrawalService) UpdateWithdrawalStatus(ctx context.Context, id int64, status string) (w *models.Withdrawal, err error) {
	ctx, span := util.StartSpan(ctx, "WithdrawalService.UpdateWithdrawalStatus")
	defer func() { util.EndSpan(span, err) }()

	status = strings.ToLower(strings.TrimSpace(status))
	if !models.IsValidWithdrawalStatus(status) {
		return nil, newError(KindValidation, MsgInvalidStatus)
	}

	current, err := ws.store.GetWithdrawalByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(KindNotFound, MsgWithdrawalNotFound)
	}
	if err != nil {
		return nil, Unexpected(err)
	}

	if current.Status == status {
		return current, nil
	}
	if !models.CanTransitionWithdrawal(current.Status, status) {
		return nil, newError(KindValidation, fmt.Sprintf("لا يمكن تغيير حالة السحب من %s إلى %s", current.Status, status))
	}

	w, err = ws.store.UpdateWithdrawalStatus(ctx, id, current.Status, status)
	if errors.Is(err, store.ErrStatusConflict) {
		return nil, newError(KindConflict, MsgStatusConflict)
	}
	if err != nil {
		return nil, Unexpected(err)
	}

	ws.logger.Info("Withdrawal status updated",
		zap.Int64("withdrawal_id", id),
		zap.String("from", current.Status),
		zap.String("to", status))

	ws.publish(ctx, models.EventTypeWithdrawalStatusChanged, w, current.Status)
	return w, nil
}

// ListWithdrawals lists the user's withdrawals, or every withdrawal for admins
func (ws *WithdrawalService) ListWithdrawals(ctx context.Context, user *models.User) ([]models.Withdrawal, error) {
	var merchantID *int64
	if !user.IsAdmin() {
		merchantID = &user.ID
	}
	withdrawals, err := ws.store.ListWithdrawals(ctx, merchantID)
	if err != nil {
		return nil, Unexpected(err)
	}
	return withdrawals, nil
}

func (ws *WithdrawalService) publish(ctx context.Context, eventType string, w *models.Withdrawal, previous string) {
	withdrawalID := w.ID
	event := &models.LedgerEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: eventType,
			Timestamp: time.Now().UTC(),
		},
		MerchantID:     w.MerchantID,
		WithdrawalID:   &withdrawalID,
		Amount:         w.Amount,
		PreviousStatus: previous,
		Status:         w.Status,
	}

	if err := ws.publisher.PublishLedgerEvent(ctx, event); err != nil {
		ws.logger.Error("Failed to publish ledger event",
			zap.String("event_type", eventType),
			zap.Int64("withdrawal_id", w.ID),
			zap.Error(err))
	}
}
