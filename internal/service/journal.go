package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tasleem/internal/models"
	"tasleem/internal/store"
	"tasleem/internal/util"

	"go.uber.org/zap"
)

// JournalRecorder writes consumed ledger events into the audit journal
type JournalRecorder struct {
	store  *store.Store
	logger *zap.Logger
}

// NewJournalRecorder creates a new journal recorder
func NewJournalRecorder(store *store.Store) *JournalRecorder {
	return &JournalRecorder{
		store:  store,
		logger: util.GetLogger(),
	}
}

// HandleLedgerEvent records event once. Redelivered events are acknowledged
// without a second row.
func (jr *JournalRecorder) HandleLedgerEvent(ctx context.Context, event *models.LedgerEvent) (err error) {
	ctx, span := util.StartSpan(ctx, "JournalRecorder.HandleLedgerEvent")
	defer func() { util.EndSpan(span, err) }()

	if event.EventID == "" {
		util.JournalEntriesTotal.WithLabelValues("invalid").Inc()
		jr.logger.Warn("Skipping ledger event without id", zap.String("event_type", event.EventType))
		return nil
	}

	recorded, err := jr.store.AppendJournalEntry(ctx, event.JournalEntry(time.Now().UTC()))
	if err != nil {
		util.JournalEntriesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to append journal entry: %w", err)
	}

	if !recorded {
		util.JournalEntriesTotal.WithLabelValues("duplicate").Inc()
		jr.logger.Info("Event already recorded", zap.String("event_id", event.EventID))
		return nil
	}

	util.JournalEntriesTotal.WithLabelValues("recorded").Inc()
	jr.logger.Debug("Ledger event recorded",
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
		zap.Int64("merchant_id", event.MerchantID))
	return nil
}

// ListJournal returns a merchant's recorded ledger events, newest first
func (jr *JournalRecorder) ListJournal(ctx context.Context, merchantID int64) ([]models.JournalEntry, error) {
	if _, err := jr.store.GetUserByID(ctx, merchantID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(KindNotFound, MsgUserNotFound)
		}
		return nil, Unexpected(err)
	}

	entries, err := jr.store.ListJournal(ctx, merchantID)
	if err != nil {
		return nil, Unexpected(err)
	}
	return entries, nil
}
