package store

import (
	"context"

	"tasleem/internal/models"
)

// AppendJournalEntry records a ledger event once. It reports false when the
// event was already recorded.
func (s *Store) AppendJournalEntry(ctx context.Context, e *models.JournalEntry) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO ledger_journal (event_id, event_type, merchant_id, order_id, withdrawal_id, amount, status, occurred_at, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (event_id) DO NOTHING`),
		e.EventID, e.EventType, e.MerchantID, e.OrderID, e.WithdrawalID, e.Amount, e.Status, e.OccurredAt, e.RecordedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListJournal retrieves a merchant's journal, newest first
func (s *Store) ListJournal(ctx context.Context, merchantID int64) ([]models.JournalEntry, error) {
	entries := []models.JournalEntry{}
	err := s.db.SelectContext(ctx, &entries, s.db.Rebind(`
		SELECT * FROM ledger_journal
		WHERE merchant_id = ?
		ORDER BY occurred_at DESC, event_id`), merchantID)
	return entries, err
}
