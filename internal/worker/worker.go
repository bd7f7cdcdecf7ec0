package worker

import (
	"context"
	"errors"

	"tasleem/internal/broker"
	"tasleem/internal/service"
	"tasleem/internal/util"

	"go.uber.org/zap"
)

// MessageSource delivers broker messages to a handler until ctx ends
type MessageSource interface {
	StartConsuming(ctx context.Context, handler broker.MessageHandler) error
	Close() error
}

// JournalWorker consumes the ledger event stream into the audit journal
type JournalWorker struct {
	source       MessageSource
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewJournalWorker creates a new journal worker
func NewJournalWorker(source MessageSource, recorder *service.JournalRecorder) *JournalWorker {
	eventHandler := broker.NewEventHandler()
	eventHandler.OnLedgerEvent(recorder.HandleLedgerEvent)

	return &JournalWorker{
		source:       source,
		eventHandler: eventHandler,
		logger:       util.GetLogger(),
	}
}

// Start blocks until ctx is cancelled. Cancellation is not reported as an error.
func (w *JournalWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting journal worker")
	err := w.source.StartConsuming(ctx, w.eventHandler.HandleMessage)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stop stops the worker
func (w *JournalWorker) Stop() error {
	w.logger.Info("Stopping journal worker")
	return w.source.Close()
}
